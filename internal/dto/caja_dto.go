package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	PuntoDeVenta string          `json:"punto_de_venta" validate:"required,min=1,max=50"`
	MontoInicial decimal.Decimal `json:"monto_inicial"  validate:"min=0"`
}

type CerrarCajaRequest struct {
	PuntoDeVenta string          `json:"punto_de_venta" validate:"required,min=1,max=50"`
	MontoCierre  decimal.Decimal `json:"monto_cierre"   validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionResponse struct {
	ID               string           `json:"id"`
	PuntoDeVenta     string           `json:"punto_de_venta"`
	MontoInicial     decimal.Decimal  `json:"monto_inicial"`
	MontoCierre      *decimal.Decimal `json:"monto_cierre"`
	VentasCalculadas decimal.Decimal  `json:"ventas_calculadas"`
	Diferencia       decimal.Decimal  `json:"diferencia"`
	Estado           string           `json:"estado"`
	OpenedAt         string           `json:"opened_at"`
	ClosedAt         *string          `json:"closed_at"`
}

type SesionListResponse struct {
	Data  []SesionResponse `json:"data"`
	Total int              `json:"total"`
}
