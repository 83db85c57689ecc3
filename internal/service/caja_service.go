package service

import (
	"context"
	"errors"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/apierror"
	"github.com/felipecalderon/food-truck-pos/internal/dto"
	"github.com/felipecalderon/food-truck-pos/internal/model"
	"github.com/felipecalderon/food-truck-pos/internal/reporte"
	"github.com/felipecalderon/food-truck-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, req dto.AbrirCajaRequest) (*dto.SesionResponse, error)
	// Actual returns the open session for the POS, or (nil, nil) when there
	// is none.
	Actual(ctx context.Context, puntoDeVenta string) (*dto.SesionResponse, error)
	Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.SesionResponse, error)
	Listar(ctx context.Context, filter dto.RangoFilter) (*dto.SesionListResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type cajaService struct {
	repo      repository.CajaRepository
	ventaRepo repository.VentaRepository
}

func NewCajaService(repo repository.CajaRepository, ventaRepo repository.VentaRepository) CajaService {
	return &cajaService{repo: repo, ventaRepo: ventaRepo}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, req dto.AbrirCajaRequest) (*dto.SesionResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, apierror.Validacionf("el monto inicial no puede ser negativo")
	}

	// Guard: no duplicate open session per punto de venta. The partial unique
	// index on (punto_de_venta) WHERE estado='abierta' backs this up under
	// concurrent opens.
	existing, err := s.repo.FindSesionAbiertaPorPDV(ctx, req.PuntoDeVenta)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Persistenciaf("consultando caja abierta")
	}
	if existing != nil {
		return nil, apierror.Conflictof("ya existe una caja abierta en %s", req.PuntoDeVenta)
	}

	sesion := &model.SesionCaja{
		PuntoDeVenta: req.PuntoDeVenta,
		MontoInicial: req.MontoInicial,
		Estado:       model.SesionAbierta,
		OpenedAt:     time.Now(),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		// Concurrent open: the partial unique index rejects the loser.
		if isUniqueViolation(err) {
			return nil, apierror.Conflictof("ya existe una caja abierta en %s", req.PuntoDeVenta)
		}
		return nil, apierror.Persistenciaf("creando sesion de caja")
	}

	return sesionToResponse(sesion), nil
}

// ── Actual ────────────────────────────────────────────────────────────────────

func (s *cajaService) Actual(ctx context.Context, puntoDeVenta string) (*dto.SesionResponse, error) {
	sesion, err := s.repo.FindSesionAbiertaPorPDV(ctx, puntoDeVenta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apierror.Persistenciaf("consultando caja abierta")
	}
	return sesionToResponse(sesion), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Cierre is terminal: the conditional UPDATE matches only estado='abierta',
// so a second close (or a close racing another) finds zero rows.

func (s *cajaService) Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.SesionResponse, error) {
	if req.MontoCierre.IsNegative() {
		return nil, apierror.Validacionf("el monto de cierre no puede ser negativo")
	}

	sesion, err := s.repo.FindSesionAbiertaPorPDV(ctx, req.PuntoDeVenta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("no hay una sesion de caja abierta en %s", req.PuntoDeVenta)
		}
		return nil, apierror.Persistenciaf("consultando caja abierta")
	}

	rows, err := s.repo.CerrarSesion(ctx, sesion.ID, req.MontoCierre, time.Now())
	if err != nil {
		return nil, apierror.Persistenciaf("cerrando sesion de caja")
	}
	if rows == 0 {
		return nil, apierror.NoEncontradof("no hay una sesion de caja abierta en %s", req.PuntoDeVenta)
	}

	cerrada, err := s.repo.FindSesionByID(ctx, sesion.ID)
	if err != nil {
		return nil, apierror.Persistenciaf("releyendo sesion cerrada")
	}
	return sesionToResponse(cerrada), nil
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Listar(ctx context.Context, filter dto.RangoFilter) (*dto.SesionListResponse, error) {
	desde, hasta, err := reporte.ResolverRango(filter.Rango, filter.Desde, filter.Hasta, time.Now())
	if err != nil {
		return nil, err
	}

	sesiones, err := s.repo.ListSesiones(ctx, desde, hasta, filter.PuntoDeVenta)
	if err != nil {
		// Read path degrades gracefully: report empty instead of failing.
		log.Error().Err(err).Msg("caja: listado de sesiones fallo, devolviendo vacio")
		sesiones = nil
	}

	resp := &dto.SesionListResponse{Data: make([]dto.SesionResponse, 0, len(sesiones))}
	for i := range sesiones {
		resp.Data = append(resp.Data, *sesionToResponse(&sesiones[i]))
	}
	resp.Total = len(resp.Data)
	return resp, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────
// Sessions with linked sales are never deleted: the sale records reference
// the session for reconciliation, so the caller must delete those first.

func (s *cajaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindSesionByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NoEncontradof("sesion %s no existe", id)
		}
		return apierror.Persistenciaf("consultando sesion")
	}

	n, err := s.ventaRepo.CountPorSesion(ctx, id)
	if err != nil {
		return apierror.Persistenciaf("contando ventas de la sesion")
	}
	if n > 0 {
		return apierror.Conflictof("la sesion tiene %d ventas asociadas", n)
	}

	if err := s.repo.DeleteSesion(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NoEncontradof("sesion %s no existe", id)
		}
		return apierror.Persistenciaf("eliminando sesion")
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func sesionToResponse(s *model.SesionCaja) *dto.SesionResponse {
	resp := &dto.SesionResponse{
		ID:               s.ID.String(),
		PuntoDeVenta:     s.PuntoDeVenta,
		MontoInicial:     s.MontoInicial,
		MontoCierre:      s.MontoCierre,
		VentasCalculadas: s.VentasCalculadas,
		Diferencia:       s.Diferencia,
		Estado:           s.Estado,
		OpenedAt:         s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
