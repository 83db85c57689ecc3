package dto

import "github.com/shopspring/decimal"

type PedidoItemRequest struct {
	SKU      string          `json:"sku"      validate:"required"`
	Nombre   string          `json:"nombre"   validate:"required"`
	Precio   decimal.Decimal `json:"precio"   validate:"min=0"`
	Cantidad int             `json:"cantidad" validate:"required,min=1"`
}

type CrearPedidoRequest struct {
	PuntoDeVenta string              `json:"punto_de_venta" validate:"required,min=1,max=50"`
	Nombre       string              `json:"nombre"         validate:"omitempty,max=100"`
	Items        []PedidoItemRequest `json:"items"          validate:"required,min=1,dive"`
}
