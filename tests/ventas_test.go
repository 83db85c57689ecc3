package tests

import (
	"context"
	"testing"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/apierror"
	"github.com/felipecalderon/food-truck-pos/internal/dto"
	"github.com/felipecalderon/food-truck-pos/internal/model"
	"github.com/felipecalderon/food-truck-pos/internal/repository"
	"github.com/felipecalderon/food-truck-pos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory VentaRepository ────────────────────────────────────────────────

type memVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newMemVentaRepo() *memVentaRepo {
	return &memVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *memVentaRepo) DB() *gorm.DB { return nil }

func (r *memVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *memVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *memVentaRepo) ListPorPos(_ context.Context, pdv string) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.PuntoDeVenta == pdv {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memVentaRepo) ListPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.SesionCajaID == sesionID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memVentaRepo) List(_ context.Context, desde, hasta time.Time, pdv string) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.Fecha.Before(desde) || !v.Fecha.Before(hasta) {
			continue
		}
		if pdv != "" && v.PuntoDeVenta != pdv {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (r *memVentaRepo) UpdateComentario(_ context.Context, id uuid.UUID, comentario string) (int64, error) {
	v, ok := r.ventas[id]
	if !ok {
		return 0, nil
	}
	v.Comentario = &comentario
	return 1, nil
}

func (r *memVentaRepo) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(r.ventas, id)
	return nil
}

func (r *memVentaRepo) CountPorSesion(_ context.Context, sesionID uuid.UUID) (int64, error) {
	var n int64
	for _, v := range r.ventas {
		if v.SesionCajaID == sesionID {
			n++
		}
	}
	return n, nil
}

var _ repository.VentaRepository = (*memVentaRepo)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

type ventaFixture struct {
	cajaRepo  *memCajaRepo
	ventaRepo *memVentaRepo
	cajaSvc   service.CajaService
	ventaSvc  service.VentaService
}

func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()
	cajaRepo := newMemCajaRepo()
	ventaRepo := newMemVentaRepo()
	return &ventaFixture{
		cajaRepo:  cajaRepo,
		ventaRepo: ventaRepo,
		cajaSvc:   service.NewCajaService(cajaRepo, ventaRepo),
		ventaSvc:  service.NewVentaService(ventaRepo, cajaRepo, nil, nil, fakeRecibo),
	}
}

func fakeRecibo(_ *model.Venta) ([]byte, error) { return []byte("%PDF-1.4"), nil }

func carritoCafe() []dto.ItemCarritoRequest {
	return []dto.ItemCarritoRequest{
		{SKU: "CAFE-01", Nombre: "Cafe americano", Categoria: "Bebidas", Precio: decimal.NewFromFloat(2500), Cantidad: 2},
		{SKU: "EMP-03", Nombre: "Empanada de pino", Categoria: "Comida", Precio: decimal.NewFromFloat(1500), Cantidad: 1},
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestRegistrarVentaSinCajaAbierta(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(10000),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrCajaCerrada)
	assert.Empty(t, f.ventaRepo.ventas, "no debe persistir nada sin caja abierta")
}

func TestRegistrarVentaEfectivoAcumulaContador(t *testing.T) {
	f := newVentaFixture(t)
	sesion := abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(sesion.ID)

	resp, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(10000),
	})
	require.NoError(t, err)

	// 2 x 2500 + 1 x 1500 = 6500, vuelto 3500
	assert.Equal(t, "6500", resp.Total.String())
	assert.Equal(t, "3500", resp.Vuelto.String())
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, "6500", f.cajaRepo.sesiones[sesionID].VentasCalculadas.String())
}

func TestRegistrarVentaTarjetaNoAcumula(t *testing.T) {
	f := newVentaFixture(t)
	sesion := abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(sesion.ID)

	resp, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoDebito,
	})
	require.NoError(t, err)

	// Card pays exact and leaves the cash counter untouched
	assert.Equal(t, "6500", resp.Total.String())
	assert.Equal(t, "6500", resp.MontoPagado.String())
	assert.True(t, resp.Vuelto.IsZero())
	assert.True(t, f.cajaRepo.sesiones[sesionID].VentasCalculadas.IsZero())
}

func TestRegistrarVentaPagoInsuficiente(t *testing.T) {
	f := newVentaFixture(t)
	abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)

	_, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(5000), // total is 6500
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrValidacion)
	assert.Empty(t, f.ventaRepo.ventas)
}

func TestVentasDeVariosMetodosYCierre(t *testing.T) {
	f := newVentaFixture(t)
	abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)

	registrar := func(metodo string, precio float64) {
		t.Helper()
		_, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
			PuntoDeVenta: "foodtruck-1",
			Items: []dto.ItemCarritoRequest{
				{SKU: "HOT-01", Nombre: "Completo italiano", Categoria: "Comida", Precio: decimal.NewFromFloat(precio), Cantidad: 1},
			},
			MetodoPago:  metodo,
			MontoPagado: decimal.NewFromFloat(precio),
		})
		require.NoError(t, err)
	}

	registrar(model.PagoEfectivo, 3000)
	registrar(model.PagoEfectivo, 2000)
	registrar(model.PagoCredito, 4500)
	registrar(model.PagoTransferencia, 1000)

	// Only the 5000 in cash counts against the register
	cerrada, err := f.cajaSvc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, "5000", cerrada.VentasCalculadas.String())
	assert.True(t, cerrada.Diferencia.IsZero())
}

func TestRegistrarVentaConCajaCerradaBajoCarrera(t *testing.T) {
	f := newVentaFixture(t)
	sesion := abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(sesion.ID)

	// The session closes between the lookup and the insert: simulate by
	// closing directly on the repo after the service read it.
	svcConCarrera := service.NewVentaService(f.ventaRepo, &cierreEnMedio{memCajaRepo: f.cajaRepo, sesionID: sesionID}, nil, nil, fakeRecibo)

	_, err := svcConCarrera.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(10000),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrCajaCerrada)
}

// cierreEnMedio closes the session right before the counter increment, as a
// concurrent close would.
type cierreEnMedio struct {
	*memCajaRepo
	sesionID uuid.UUID
}

func (r *cierreEnMedio) IncrementVentasCalculadasTx(tx *gorm.DB, sesionID uuid.UUID, monto decimal.Decimal) (int64, error) {
	_, _ = r.memCajaRepo.CerrarSesion(context.Background(), r.sesionID, decimal.Zero, time.Now())
	return r.memCajaRepo.IncrementVentasCalculadasTx(tx, sesionID, monto)
}

func TestEliminarVentaRevierteContador(t *testing.T) {
	f := newVentaFixture(t)
	sesion := abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(sesion.ID)

	resp, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(6500),
	})
	require.NoError(t, err)
	require.Equal(t, "6500", f.cajaRepo.sesiones[sesionID].VentasCalculadas.String())

	err = f.ventaSvc.Eliminar(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)

	// Create + delete leaves the counter exactly where it started
	assert.True(t, f.cajaRepo.sesiones[sesionID].VentasCalculadas.IsZero())
	assert.Empty(t, f.ventaRepo.ventas)
}

func TestEliminarVentaDeSesionCerrada(t *testing.T) {
	f := newVentaFixture(t)
	sesion := abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(sesion.ID)

	resp, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(6500),
	})
	require.NoError(t, err)

	_, err = f.cajaSvc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(11500),
	})
	require.NoError(t, err)
	diferenciaAlCierre := f.cajaRepo.sesiones[sesionID].Diferencia

	// Deleting the sale afterwards does not rewrite the frozen totals
	err = f.ventaSvc.Eliminar(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "6500", f.cajaRepo.sesiones[sesionID].VentasCalculadas.String())
	assert.Equal(t, diferenciaAlCierre.String(), f.cajaRepo.sesiones[sesionID].Diferencia.String())
}

func TestEliminarVentaInexistente(t *testing.T) {
	f := newVentaFixture(t)
	err := f.ventaSvc.Eliminar(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestActualizarComentario(t *testing.T) {
	f := newVentaFixture(t)
	abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)

	resp, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(6500),
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	require.NoError(t, f.ventaSvc.ActualizarComentario(context.Background(), id, "cliente frecuente"))

	venta, err := f.ventaSvc.Obtener(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, venta.Comentario)
	assert.Equal(t, "cliente frecuente", *venta.Comentario)
}

func TestActualizarComentarioVentaInexistente(t *testing.T) {
	f := newVentaFixture(t)
	err := f.ventaSvc.ActualizarComentario(context.Background(), uuid.New(), "nada")
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestReciboPDF(t *testing.T) {
	f := newVentaFixture(t)
	abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)

	resp, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(6500),
	})
	require.NoError(t, err)

	pdf, err := f.ventaSvc.ReciboPDF(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestVentasPorPos(t *testing.T) {
	f := newVentaFixture(t)
	abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)
	abrirCaja(t, f.cajaSvc, "foodtruck-2", 3000)

	for _, pdv := range []string{"foodtruck-1", "foodtruck-1", "foodtruck-2"} {
		_, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
			PuntoDeVenta: pdv,
			Items:        carritoCafe(),
			MetodoPago:   model.PagoDebito,
			MontoPagado:  decimal.NewFromFloat(6500),
		})
		require.NoError(t, err)
	}

	ventas, err := f.ventaSvc.PorPos(context.Background(), "foodtruck-1")
	require.NoError(t, err)
	require.Len(t, ventas, 2)
	for _, v := range ventas {
		assert.Equal(t, "foodtruck-1", v.PuntoDeVenta)
	}

	// A POS that never sold yields an empty list, not an error
	vacias, err := f.ventaSvc.PorPos(context.Background(), "foodtruck-9")
	require.NoError(t, err)
	assert.Empty(t, vacias)
}

func TestVentasPorSesion(t *testing.T) {
	f := newVentaFixture(t)
	primera := abrirCaja(t, f.cajaSvc, "foodtruck-1", 5000)
	primeraID := uuid.MustParse(primera.ID)

	_, err := f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(10000),
	})
	require.NoError(t, err)

	// Close and reopen: the next sale belongs to the new session
	_, err = f.cajaSvc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(11500),
	})
	require.NoError(t, err)
	segunda := abrirCaja(t, f.cajaSvc, "foodtruck-1", 3000)

	_, err = f.ventaSvc.Registrar(context.Background(), dto.RegistrarVentaRequest{
		PuntoDeVenta: "foodtruck-1",
		Items:        carritoCafe(),
		MetodoPago:   model.PagoEfectivo,
		MontoPagado:  decimal.NewFromFloat(6500),
	})
	require.NoError(t, err)

	ventas, err := f.ventaSvc.PorSesion(context.Background(), primeraID)
	require.NoError(t, err)
	require.Len(t, ventas, 1)
	assert.Equal(t, primera.ID, ventas[0].SesionCajaID)

	otras, err := f.ventaSvc.PorSesion(context.Background(), uuid.MustParse(segunda.ID))
	require.NoError(t, err)
	require.Len(t, otras, 1)
	assert.Equal(t, segunda.ID, otras[0].SesionCajaID)
}
