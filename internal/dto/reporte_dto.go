package dto

import "github.com/shopspring/decimal"

// MontosPorMetodo groups sale totals by payment method.
type MontosPorMetodo struct {
	Efectivo      decimal.Decimal `json:"efectivo"`
	Debito        decimal.Decimal `json:"debito"`
	Credito       decimal.Decimal `json:"credito"`
	Transferencia decimal.Decimal `json:"transferencia"`
	Total         decimal.Decimal `json:"total"`
}

type TopProductoResponse struct {
	SKU      string          `json:"sku"`
	Nombre   string          `json:"nombre"`
	Cantidad int             `json:"cantidad"`
	Monto    decimal.Decimal `json:"monto"`
}

type ResumenResponse struct {
	CantidadVentas int                   `json:"cantidad_ventas"`
	PorMetodo      MontosPorMetodo       `json:"por_metodo"`
	TopProductos   []TopProductoResponse `json:"top_productos"`
}

// ExportRequest enqueues an async spreadsheet export of a sales range.
type ExportRequest struct {
	Rango        string `json:"rango"          validate:"omitempty,oneof=hoy semana mes custom"`
	Desde        string `json:"desde"          validate:"omitempty,datetime=2006-01-02"`
	Hasta        string `json:"hasta"          validate:"omitempty,datetime=2006-01-02"`
	PuntoDeVenta string `json:"punto_de_venta" validate:"omitempty,max=50"`
}

type ExportResponse struct {
	Archivo string `json:"archivo"` // file name under EXPORT_STORAGE_PATH once the job runs
	Estado  string `json:"estado"`  // "encolado"
}
