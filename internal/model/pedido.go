package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de un pedido pendiente.
const (
	PedidoPendiente = "pendiente"
	PedidoPagado    = "pagado"
	PedidoCancelado = "cancelado"
)

// Pedido is a named cart saved for later ("para llevar en 10 minutos").
// Pedidos live in Redis only: they are short-lived scratch state, not
// financial records.
type Pedido struct {
	ID           uuid.UUID       `json:"id"`
	PuntoDeVenta string          `json:"punto_de_venta"`
	Nombre       string          `json:"nombre"`
	Items        []PedidoItem    `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Estado       string          `json:"estado"` // pendiente | pagado | cancelado
	CreatedAt    time.Time       `json:"created_at"`
}

// PedidoItem mirrors a cart line; quantities may still change before checkout.
type PedidoItem struct {
	SKU      string          `json:"sku"`
	Nombre   string          `json:"nombre"`
	Precio   decimal.Decimal `json:"precio"`
	Cantidad int             `json:"cantidad"`
}
