package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// RangoFilter is bound from the query string of listing endpoints.
// Rango resolves against local time; custom uses desde/hasta inclusive.
type RangoFilter struct {
	Rango        string `form:"rango"          validate:"omitempty,oneof=hoy semana mes custom"`
	Desde        string `form:"desde"          validate:"omitempty,datetime=2006-01-02"`
	Hasta        string `form:"hasta"          validate:"omitempty,datetime=2006-01-02"`
	PuntoDeVenta string `form:"punto_de_venta" validate:"omitempty,max=50"`
	// SesionID narrows the listing to one caja session; it overrides rango.
	SesionID string `form:"sesion_id" validate:"omitempty,uuid"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemCarritoRequest is one cart line sent at checkout. The client sends the
// product snapshot it sold from; the server recomputes every subtotal.
type ItemCarritoRequest struct {
	SKU       string          `json:"sku"       validate:"required"`
	Nombre    string          `json:"nombre"    validate:"required"`
	Categoria string          `json:"categoria"`
	Precio    decimal.Decimal `json:"precio"    validate:"min=0"`
	Cantidad  int             `json:"cantidad"  validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	PuntoDeVenta string               `json:"punto_de_venta" validate:"required,min=1,max=50"`
	Items        []ItemCarritoRequest `json:"items"          validate:"required,min=1,dive"`
	MetodoPago   string               `json:"metodo_pago"    validate:"required,oneof=efectivo debito credito transferencia"`
	MontoPagado  decimal.Decimal      `json:"monto_pagado"   validate:"min=0"`
	Comentario   *string              `json:"comentario"`
	// PedidoID: when the cart was loaded from a pending order, the order is
	// marked "pagado" after the sale commits.
	PedidoID *string `json:"pedido_id"     validate:"omitempty,uuid"`
	// ClienteEmail: optional — when present, the email worker mails the PDF receipt.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

type ActualizarComentarioRequest struct {
	Comentario string `json:"comentario" validate:"required,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	SKU            string          `json:"sku"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID           string              `json:"id"`
	SesionCajaID string              `json:"sesion_caja_id"`
	PuntoDeVenta string              `json:"punto_de_venta"`
	Items        []ItemVentaResponse `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	MetodoPago   string              `json:"metodo_pago"`
	MontoPagado  decimal.Decimal     `json:"monto_pagado"`
	Vuelto       decimal.Decimal     `json:"vuelto"`
	Comentario   *string             `json:"comentario"`
	Fecha        string              `json:"fecha"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int             `json:"total"`
}
