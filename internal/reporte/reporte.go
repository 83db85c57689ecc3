// Package reporte holds the pure aggregation functions used by the reporting
// endpoints and the spreadsheet export worker. Everything here operates on
// already-loaded collections — no I/O.
package reporte

import (
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/apierror"
	"github.com/felipecalderon/food-truck-pos/internal/dto"
	"github.com/felipecalderon/food-truck-pos/internal/model"
)

// VentasPorMetodo sums sale totals grouped by payment method.
func VentasPorMetodo(ventas []model.Venta) dto.MontosPorMetodo {
	var m dto.MontosPorMetodo
	for _, v := range ventas {
		switch v.MetodoPago {
		case model.PagoEfectivo:
			m.Efectivo = m.Efectivo.Add(v.Total)
		case model.PagoDebito:
			m.Debito = m.Debito.Add(v.Total)
		case model.PagoCredito:
			m.Credito = m.Credito.Add(v.Total)
		case model.PagoTransferencia:
			m.Transferencia = m.Transferencia.Add(v.Total)
		}
		m.Total = m.Total.Add(v.Total)
	}
	return m
}

// TopProductos aggregates quantity per SKU across all sales, descending by
// quantity. Ties keep first-encountered order, so results are stable for a
// given input ordering.
func TopProductos(ventas []model.Venta, n int) []dto.TopProductoResponse {
	if n <= 0 {
		n = 5
	}

	idx := make(map[string]int)
	var acc []dto.TopProductoResponse
	for _, v := range ventas {
		for _, item := range v.Items {
			if i, ok := idx[item.SKU]; ok {
				acc[i].Cantidad += item.Cantidad
				acc[i].Monto = acc[i].Monto.Add(item.Subtotal)
				continue
			}
			idx[item.SKU] = len(acc)
			acc = append(acc, dto.TopProductoResponse{
				SKU:      item.SKU,
				Nombre:   item.Nombre,
				Cantidad: item.Cantidad,
				Monto:    item.Subtotal,
			})
		}
	}

	// Insertion sort keeps the first-encountered order among equals.
	for i := 1; i < len(acc); i++ {
		for j := i; j > 0 && acc[j].Cantidad > acc[j-1].Cantidad; j-- {
			acc[j], acc[j-1] = acc[j-1], acc[j]
		}
	}

	if len(acc) > n {
		acc = acc[:n]
	}
	return acc
}

// ResolverRango turns a named range into a half-open interval
// [desde, hastaExclusivo) in local time.
//   - "hoy":    the current calendar day
//   - "semana": the current calendar week, Monday through Sunday
//   - "mes":    the current calendar month
//   - "custom": inclusive desde/hasta dates (hasta extends to end of day)
//
// An empty rango defaults to "hoy".
func ResolverRango(rango, desde, hasta string, now time.Time) (time.Time, time.Time, error) {
	dia := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch rango {
	case "", "hoy":
		return dia, dia.AddDate(0, 0, 1), nil
	case "semana":
		offset := int(dia.Weekday()) - int(time.Monday)
		if offset < 0 {
			offset = 6 // Sunday
		}
		inicio := dia.AddDate(0, 0, -offset)
		return inicio, inicio.AddDate(0, 0, 7), nil
	case "mes":
		inicio := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return inicio, inicio.AddDate(0, 1, 0), nil
	case "custom":
		if desde == "" || hasta == "" {
			return time.Time{}, time.Time{}, apierror.Validacionf("desde y hasta son obligatorios para rango custom")
		}
		d, err := time.ParseInLocation("2006-01-02", desde, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, apierror.Validacionf("desde debe ser YYYY-MM-DD")
		}
		h, err := time.ParseInLocation("2006-01-02", hasta, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, apierror.Validacionf("hasta debe ser YYYY-MM-DD")
		}
		if h.Before(d) {
			return time.Time{}, time.Time{}, apierror.Validacionf("hasta no puede ser anterior a desde")
		}
		return d, h.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, apierror.Validacionf("rango desconocido: %s", rango)
	}
}
