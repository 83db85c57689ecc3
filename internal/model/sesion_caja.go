package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una sesion de caja.
const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// SesionCaja represents the lifecycle of a cash register session for one POS.
// Estado: "abierta" | "cerrada". The transition to "cerrada" is terminal.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PuntoDeVenta string          `gorm:"type:varchar(50);not null;index"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoCierre is the physically counted cash, set once at close.
	MontoCierre *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// VentasCalculadas is the running total of cash sales linked to this
	// session. It is only ever mutated via single-statement conditional
	// increments while Estado = "abierta".
	VentasCalculadas decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Diferencia = MontoCierre - MontoInicial - VentasCalculadas,
	// computed at close and frozen thereafter.
	Diferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'abierta';index"`
	OpenedAt   time.Time
	ClosedAt   *time.Time

	Ventas []Venta `gorm:"foreignKey:SesionCajaID"`
}
