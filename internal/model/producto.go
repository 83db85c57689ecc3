package model

import "github.com/shopspring/decimal"

// Producto is the normalized product from the external inventory API.
// It is transient: re-fetched (or served from the Redis cache) on demand and
// never written to Postgres.
type Producto struct {
	SKU       string          `json:"sku"`
	Nombre    string          `json:"nombre"`
	Categoria string          `json:"categoria"`
	Precio    decimal.Decimal `json:"precio"`
	Stock     int             `json:"stock"`
}
