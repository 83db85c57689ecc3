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
	"github.com/felipecalderon/food-truck-pos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	PorPos(ctx context.Context, puntoDeVenta string) ([]dto.VentaResponse, error)
	PorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.RangoFilter) (*dto.VentaListResponse, error)
	ActualizarComentario(ctx context.Context, id uuid.UUID, comentario string) error
	Eliminar(ctx context.Context, id uuid.UUID) error
	// ReciboPDF renders the printable receipt for a sale.
	ReciboPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type ventaService struct {
	repo       repository.VentaRepository
	cajaRepo   repository.CajaRepository
	pedidos    PedidoService
	dispatcher *worker.Dispatcher
	recibos    func(*model.Venta) ([]byte, error)
}

func NewVentaService(
	repo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	pedidos PedidoService,
	dispatcher *worker.Dispatcher,
	recibos func(*model.Venta) ([]byte, error),
) VentaService {
	return &ventaService{
		repo:       repo,
		cajaRepo:   cajaRepo,
		pedidos:    pedidos,
		dispatcher: dispatcher,
		recibos:    recibos,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Checkout. Single atomic unit:
//   1. Validate the POS has an open session
//   2. Recompute totals server-side from the cart lines
//   3. Validate payment (cash must cover the total; other methods pay exact)
//   4. BEGIN TX: insert venta + items, conditional increment of the session's
//      ventas_calculadas (matches only estado='abierta')
//   5. COMMIT: a zero-row increment means the session closed underneath us,
//      so the whole sale rolls back and nothing is visible
//   6. (async, best-effort) mark linked pedido as pagado, mail the receipt

func (s *ventaService) Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	// 1. Open session required
	sesion, err := s.cajaRepo.FindSesionAbiertaPorPDV(ctx, req.PuntoDeVenta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.ErrCajaCerrada
		}
		return nil, apierror.Persistenciaf("consultando caja abierta")
	}

	// 2. Server-side totals: the client snapshot is data, not arithmetic.
	total := decimal.Zero
	items := make([]model.VentaItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Cantidad < 1 {
			return nil, apierror.Validacionf("cantidad invalida para %s", it.SKU)
		}
		if it.Precio.IsNegative() {
			return nil, apierror.Validacionf("precio invalido para %s", it.SKU)
		}
		subtotal := it.Precio.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		total = total.Add(subtotal)
		items = append(items, model.VentaItem{
			SKU:            it.SKU,
			Nombre:         it.Nombre,
			Categoria:      it.Categoria,
			PrecioUnitario: it.Precio,
			Cantidad:       it.Cantidad,
			Subtotal:       subtotal,
		})
	}

	// 3. Payment
	montoPagado := req.MontoPagado
	vuelto := decimal.Zero
	if req.MetodoPago == model.PagoEfectivo {
		if montoPagado.LessThan(total) {
			return nil, apierror.Validacionf("el monto pagado es insuficiente")
		}
		vuelto = montoPagado.Sub(total)
	} else {
		// Non-cash always pays exact.
		montoPagado = total
	}

	venta := model.Venta{
		SesionCajaID: sesion.ID,
		PuntoDeVenta: req.PuntoDeVenta,
		Total:        total,
		Fecha:        time.Now(),
		MetodoPago:   req.MetodoPago,
		MontoPagado:  montoPagado,
		Vuelto:       vuelto,
		Comentario:   req.Comentario,
		Items:        items,
	}

	// 4-5. All-or-nothing: sale insert + counter increment
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(ctx, tx, &venta); err != nil {
			return apierror.Persistenciaf("guardando venta")
		}
		// The increment doubles as the open-session re-check: zero rows
		// means the session closed between the lookup and the commit.
		rows, err := s.cajaRepo.IncrementVentasCalculadasTx(tx, sesion.ID, venta.ContribucionCaja())
		if err != nil {
			return apierror.Persistenciaf("actualizando ventas calculadas")
		}
		if rows == 0 {
			return apierror.ErrCajaCerrada
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// 6. Side effects after commit, never fail the sale for these.
	if req.PedidoID != nil && s.pedidos != nil {
		if pid, err := uuid.Parse(*req.PedidoID); err == nil {
			if err := s.pedidos.MarcarPagado(ctx, req.PuntoDeVenta, pid); err != nil {
				log.Warn().Err(err).Str("pedido_id", *req.PedidoID).Msg("venta: no se pudo marcar el pedido como pagado")
			}
		}
	}
	if req.ClienteEmail != nil && *req.ClienteEmail != "" && s.dispatcher != nil {
		payload := worker.ReciboJobPayload{VentaID: venta.ID.String(), ToEmail: *req.ClienteEmail}
		if err := s.dispatcher.EnqueueRecibo(ctx, payload); err != nil {
			log.Warn().Err(err).Msg("venta: no se pudo encolar el envio del recibo")
		}
	}

	return ventaToResponse(&venta), nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────
// Read paths degrade gracefully: a failing backend yields an empty list.

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("venta %s no existe", id)
		}
		return nil, apierror.Persistenciaf("consultando venta")
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) PorPos(ctx context.Context, puntoDeVenta string) ([]dto.VentaResponse, error) {
	ventas, err := s.repo.ListPorPos(ctx, puntoDeVenta)
	if err != nil {
		log.Error().Err(err).Str("punto_de_venta", puntoDeVenta).Msg("ventas: listado por pos fallo, devolviendo vacio")
		ventas = nil
	}
	return ventasToResponses(ventas), nil
}

func (s *ventaService) PorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.VentaResponse, error) {
	ventas, err := s.repo.ListPorSesion(ctx, sesionID)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", sesionID.String()).Msg("ventas: listado por sesion fallo, devolviendo vacio")
		ventas = nil
	}
	return ventasToResponses(ventas), nil
}

func (s *ventaService) Listar(ctx context.Context, filter dto.RangoFilter) (*dto.VentaListResponse, error) {
	desde, hasta, err := reporte.ResolverRango(filter.Rango, filter.Desde, filter.Hasta, time.Now())
	if err != nil {
		return nil, err
	}
	ventas, err := s.repo.List(ctx, desde, hasta, filter.PuntoDeVenta)
	if err != nil {
		log.Error().Err(err).Msg("ventas: listado fallo, devolviendo vacio")
		ventas = nil
	}
	data := ventasToResponses(ventas)
	return &dto.VentaListResponse{Data: data, Total: len(data)}, nil
}

// ── ActualizarComentario ──────────────────────────────────────────────────────
// The comment is the only mutable field of a sale.

func (s *ventaService) ActualizarComentario(ctx context.Context, id uuid.UUID, comentario string) error {
	rows, err := s.repo.UpdateComentario(ctx, id, comentario)
	if err != nil {
		return apierror.Persistenciaf("actualizando comentario")
	}
	if rows == 0 {
		return apierror.NoEncontradof("venta %s no existe", id)
	}
	return nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────
// Symmetric inverse of Registrar: removing the sale reverses its contribution
// to the owning session's counter, but only while that session is still the
// current open one. Closed sessions are frozen history.

func (s *ventaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NoEncontradof("venta %s no existe", id)
		}
		return apierror.Persistenciaf("consultando venta")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(ctx, tx, id); err != nil {
			return apierror.Persistenciaf("eliminando venta")
		}
		// Conditional decrement: matches only while the owning session is
		// still open. Zero rows = session already closed; keep its totals.
		if _, err := s.cajaRepo.IncrementVentasCalculadasTx(tx, venta.SesionCajaID, venta.ContribucionCaja().Neg()); err != nil {
			return apierror.Persistenciaf("revirtiendo ventas calculadas")
		}
		return nil
	})
}

// ── ReciboPDF ─────────────────────────────────────────────────────────────────

func (s *ventaService) ReciboPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("venta %s no existe", id)
		}
		return nil, apierror.Persistenciaf("consultando venta")
	}
	return s.recibos(venta)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			SKU:            item.SKU,
			Nombre:         item.Nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		SesionCajaID: v.SesionCajaID.String(),
		PuntoDeVenta: v.PuntoDeVenta,
		Items:        items,
		Total:        v.Total,
		MetodoPago:   v.MetodoPago,
		MontoPagado:  v.MontoPagado,
		Vuelto:       v.Vuelto,
		Comentario:   v.Comentario,
		Fecha:        v.Fecha.Format(time.RFC3339),
	}
}

func ventasToResponses(ventas []model.Venta) []dto.VentaResponse {
	out := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, *ventaToResponse(&ventas[i]))
	}
	return out
}
