package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metodos de pago aceptados.
const (
	PagoEfectivo      = "efectivo"
	PagoDebito        = "debito"
	PagoCredito       = "credito"
	PagoTransferencia = "transferencia"
)

// Venta is a completed sale, immutable except for Comentario.
type Venta struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;not null;index"`
	PuntoDeVenta string    `gorm:"type:varchar(50);not null;index"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha        time.Time       `gorm:"not null;index"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	MontoPagado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Vuelto       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Comentario   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []VentaItem `gorm:"foreignKey:VentaID"`
}

// VentaItem is a cart line frozen at checkout time. Product data is copied
// from the external catalog snapshot — the catalog itself is never persisted.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU            string          `gorm:"type:varchar(50);not null"`
	Nombre         string          `gorm:"not null"`
	Categoria      string          `gorm:"type:varchar(100)"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad       int             `gorm:"not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// ContribucionCaja returns the amount this sale adds to its session's
// VentasCalculadas counter. Only cash moves the physical drawer, so card and
// transfer sales contribute zero.
func (v *Venta) ContribucionCaja() decimal.Decimal {
	if v.MetodoPago == PagoEfectivo {
		return v.Total
	}
	return decimal.Zero
}
