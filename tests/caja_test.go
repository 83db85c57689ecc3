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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory CajaRepository ─────────────────────────────────────────────────

type memCajaRepo struct {
	sesiones map[uuid.UUID]*model.SesionCaja
}

func newMemCajaRepo() *memCajaRepo {
	return &memCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *memCajaRepo) DB() *gorm.DB { return nil }

func (r *memCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *memCajaRepo) FindSesionAbiertaPorPDV(_ context.Context, pdv string) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.PuntoDeVenta == pdv && s.Estado == model.SesionAbierta {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *memCajaRepo) CerrarSesion(_ context.Context, id uuid.UUID, montoCierre decimal.Decimal, closedAt time.Time) (int64, error) {
	s, ok := r.sesiones[id]
	if !ok || s.Estado != model.SesionAbierta {
		return 0, nil
	}
	s.Estado = model.SesionCerrada
	s.MontoCierre = &montoCierre
	s.Diferencia = montoCierre.Sub(s.MontoInicial).Sub(s.VentasCalculadas)
	s.ClosedAt = &closedAt
	return 1, nil
}

func (r *memCajaRepo) IncrementVentasCalculadasTx(_ *gorm.DB, sesionID uuid.UUID, monto decimal.Decimal) (int64, error) {
	s, ok := r.sesiones[sesionID]
	if !ok || s.Estado != model.SesionAbierta {
		return 0, nil
	}
	s.VentasCalculadas = s.VentasCalculadas.Add(monto)
	return 1, nil
}

func (r *memCajaRepo) ListSesiones(_ context.Context, desde, hasta time.Time, pdv string) ([]model.SesionCaja, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		if s.OpenedAt.Before(desde) || !s.OpenedAt.Before(hasta) {
			continue
		}
		if pdv != "" && s.PuntoDeVenta != pdv {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *memCajaRepo) DeleteSesion(_ context.Context, id uuid.UUID) error {
	if _, ok := r.sesiones[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.sesiones, id)
	return nil
}

var _ repository.CajaRepository = (*memCajaRepo)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func abrirCaja(t *testing.T, svc service.CajaService, pdv string, monto float64) *dto.SesionResponse {
	t.Helper()
	resp, err := svc.Abrir(context.Background(), dto.AbrirCajaRequest{
		PuntoDeVenta: pdv,
		MontoInicial: decimal.NewFromFloat(monto),
	})
	require.NoError(t, err)
	return resp
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestAbrirCaja(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	resp := abrirCaja(t, svc, "foodtruck-1", 5000)

	assert.Equal(t, model.SesionAbierta, resp.Estado)
	assert.Equal(t, "foodtruck-1", resp.PuntoDeVenta)
	assert.Equal(t, "5000", resp.MontoInicial.String())
	assert.True(t, resp.VentasCalculadas.IsZero())
}

func TestAbrirCajaDuplicada(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	abrirCaja(t, svc, "foodtruck-1", 5000)

	// Second open on the same punto de venta must be rejected
	_, err := svc.Abrir(context.Background(), dto.AbrirCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoInicial: decimal.NewFromFloat(2000),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrConflicto)

	// A different POS can still open
	otra := abrirCaja(t, svc, "foodtruck-2", 1000)
	assert.Equal(t, model.SesionAbierta, otra.Estado)
}

func TestAbrirCajaMontoNegativo(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	_, err := svc.Abrir(context.Background(), dto.AbrirCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoInicial: decimal.NewFromFloat(-100),
	})
	assert.ErrorIs(t, err, apierror.ErrValidacion)
}

func TestReabrirTrasCierre(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	abrirCaja(t, svc, "foodtruck-1", 5000)
	_, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(5000),
	})
	require.NoError(t, err)

	// Closed session no longer blocks a new open
	resp := abrirCaja(t, svc, "foodtruck-1", 3000)
	assert.Equal(t, model.SesionAbierta, resp.Estado)
}

func TestCerrarCajaCalculaDiferencia(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	resp := abrirCaja(t, svc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(resp.ID)

	// Cash sales accumulated during the day: 10000
	rows, err := repo.IncrementVentasCalculadasTx(nil, sesionID, decimal.NewFromFloat(10000))
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	// Counted 13000 at close: 13000 - 5000 - 10000 = -2000 (missing cash)
	cerrada, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(13000),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SesionCerrada, cerrada.Estado)
	assert.Equal(t, "-2000", cerrada.Diferencia.String())
	require.NotNil(t, cerrada.MontoCierre)
	assert.Equal(t, "13000", cerrada.MontoCierre.String())
	require.NotNil(t, cerrada.ClosedAt)
}

func TestCerrarCajaSinVentas(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	abrirCaja(t, svc, "foodtruck-1", 5000)
	cerrada, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(5000),
	})
	require.NoError(t, err)
	assert.True(t, cerrada.Diferencia.IsZero())
}

func TestCerrarSinCajaAbierta(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	_, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(1000),
	})
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestCerrarCajaDosVeces(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	abrirCaja(t, svc, "foodtruck-1", 5000)
	_, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(5000),
	})
	require.NoError(t, err)

	// The session is already closed: there is nothing left to close
	_, err = svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(9999),
	})
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestCierreCongelaContador(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	resp := abrirCaja(t, svc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(resp.ID)

	_, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoCierre:  decimal.NewFromFloat(5000),
	})
	require.NoError(t, err)

	// Increments against a closed session match zero rows
	rows, err := repo.IncrementVentasCalculadasTx(nil, sesionID, decimal.NewFromFloat(999))
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)
	assert.True(t, repo.sesiones[sesionID].VentasCalculadas.IsZero())
}

func TestActualSinSesion(t *testing.T) {
	repo := newMemCajaRepo()
	svc := service.NewCajaService(repo, newMemVentaRepo())

	resp, err := svc.Actual(context.Background(), "foodtruck-1")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestEliminarSesionConVentas(t *testing.T) {
	cajaRepo := newMemCajaRepo()
	ventaRepo := newMemVentaRepo()
	svc := service.NewCajaService(cajaRepo, ventaRepo)

	resp := abrirCaja(t, svc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(resp.ID)

	ventaRepo.ventas[uuid.New()] = &model.Venta{
		ID:           uuid.New(),
		SesionCajaID: sesionID,
		PuntoDeVenta: "foodtruck-1",
		Total:        decimal.NewFromFloat(1500),
		MetodoPago:   model.PagoEfectivo,
	}

	err := svc.Eliminar(context.Background(), sesionID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrConflicto)

	// The session is still there
	_, err = cajaRepo.FindSesionByID(context.Background(), sesionID)
	assert.NoError(t, err)
}

func TestEliminarSesionVacia(t *testing.T) {
	cajaRepo := newMemCajaRepo()
	svc := service.NewCajaService(cajaRepo, newMemVentaRepo())

	resp := abrirCaja(t, svc, "foodtruck-1", 5000)
	sesionID := uuid.MustParse(resp.ID)

	require.NoError(t, svc.Eliminar(context.Background(), sesionID))
	_, err := cajaRepo.FindSesionByID(context.Background(), sesionID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEliminarSesionInexistente(t *testing.T) {
	cajaRepo := newMemCajaRepo()
	svc := service.NewCajaService(cajaRepo, newMemVentaRepo())

	err := svc.Eliminar(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

// aperturaPerdedora simulates losing a concurrent open: the pre-check sees no
// open session, but the insert hits the partial unique index.
type aperturaPerdedora struct {
	*memCajaRepo
}

func (r *aperturaPerdedora) CreateSesion(_ context.Context, _ *model.SesionCaja) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "idx_sesion_abierta_por_pdv"}
}

func TestAbrirCajaCarreraEntreAperturas(t *testing.T) {
	repo := &aperturaPerdedora{memCajaRepo: newMemCajaRepo()}
	svc := service.NewCajaService(repo, newMemVentaRepo())

	_, err := svc.Abrir(context.Background(), dto.AbrirCajaRequest{
		PuntoDeVenta: "foodtruck-1",
		MontoInicial: decimal.NewFromFloat(5000),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrConflicto)
}
