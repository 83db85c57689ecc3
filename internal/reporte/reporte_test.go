package reporte

import (
	"testing"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/apierror"
	"github.com/felipecalderon/food-truck-pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func venta(metodo string, total float64, items ...model.VentaItem) model.Venta {
	return model.Venta{
		MetodoPago: metodo,
		Total:      decimal.NewFromFloat(total),
		Items:      items,
	}
}

func item(sku string, cantidad int, subtotal float64) model.VentaItem {
	return model.VentaItem{
		SKU:      sku,
		Nombre:   sku,
		Cantidad: cantidad,
		Subtotal: decimal.NewFromFloat(subtotal),
	}
}

func TestVentasPorMetodo(t *testing.T) {
	ventas := []model.Venta{
		venta(model.PagoEfectivo, 3000),
		venta(model.PagoEfectivo, 2000),
		venta(model.PagoDebito, 4500),
		venta(model.PagoCredito, 1200),
		venta(model.PagoTransferencia, 800),
	}

	m := VentasPorMetodo(ventas)
	assert.Equal(t, "5000", m.Efectivo.String())
	assert.Equal(t, "4500", m.Debito.String())
	assert.Equal(t, "1200", m.Credito.String())
	assert.Equal(t, "800", m.Transferencia.String())
	assert.Equal(t, "11500", m.Total.String())
}

func TestVentasPorMetodoVacio(t *testing.T) {
	m := VentasPorMetodo(nil)
	assert.True(t, m.Total.IsZero())
	assert.True(t, m.Efectivo.IsZero())
}

func TestTopProductos(t *testing.T) {
	ventas := []model.Venta{
		venta(model.PagoEfectivo, 0, item("CAFE", 2, 5000), item("EMP", 1, 1500)),
		venta(model.PagoDebito, 0, item("CAFE", 3, 7500), item("HOT", 4, 12000)),
	}

	top := TopProductos(ventas, 5)
	require.Len(t, top, 3)
	assert.Equal(t, "CAFE", top[0].SKU)
	assert.Equal(t, 5, top[0].Cantidad)
	assert.Equal(t, "12500", top[0].Monto.String())
	assert.Equal(t, "HOT", top[1].SKU)
	assert.Equal(t, "EMP", top[2].SKU)
}

func TestTopProductosEmpate(t *testing.T) {
	// Equal quantities keep first-encountered order
	ventas := []model.Venta{
		venta(model.PagoEfectivo, 0, item("A", 2, 100), item("B", 2, 200)),
	}
	top := TopProductos(ventas, 5)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].SKU)
	assert.Equal(t, "B", top[1].SKU)
}

func TestTopProductosLimite(t *testing.T) {
	ventas := []model.Venta{
		venta(model.PagoEfectivo, 0,
			item("A", 5, 1), item("B", 4, 1), item("C", 3, 1), item("D", 2, 1)),
	}
	top := TopProductos(ventas, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].SKU)
	assert.Equal(t, "B", top[1].SKU)
}

func TestResolverRangoHoy(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.Local) // Wednesday
	desde, hasta, err := ResolverRango("hoy", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local), desde)
	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, time.Local), hasta)

	// Empty rango defaults to hoy
	d2, h2, err := ResolverRango("", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, desde, d2)
	assert.Equal(t, hasta, h2)
}

func TestResolverRangoSemana(t *testing.T) {
	// Wednesday 2025-03-12 -> week starts Monday 2025-03-10
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.Local)
	desde, hasta, err := ResolverRango("semana", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local), desde)
	assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, time.Local), hasta)
}

func TestResolverRangoSemanaDomingo(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday
	now := time.Date(2025, 3, 16, 10, 0, 0, 0, time.Local)
	desde, _, err := ResolverRango("semana", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local), desde)
}

func TestResolverRangoMes(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.Local)
	desde, hasta, err := ResolverRango("mes", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), desde)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local), hasta)
}

func TestResolverRangoCustom(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.Local)
	desde, hasta, err := ResolverRango("custom", "2025-01-05", "2025-01-07", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local), desde)
	// hasta is inclusive: the interval extends to end of 2025-01-07
	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, time.Local), hasta)
}

func TestResolverRangoCustomInvalido(t *testing.T) {
	now := time.Now()

	_, _, err := ResolverRango("custom", "", "", now)
	assert.ErrorIs(t, err, apierror.ErrValidacion)

	_, _, err = ResolverRango("custom", "2025-01-07", "2025-01-05", now)
	assert.ErrorIs(t, err, apierror.ErrValidacion)

	_, _, err = ResolverRango("custom", "07/01/2025", "08/01/2025", now)
	assert.ErrorIs(t, err, apierror.ErrValidacion)

	_, _, err = ResolverRango("ayer", "", "", now)
	assert.ErrorIs(t, err, apierror.ErrValidacion)
}
