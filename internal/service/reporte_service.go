package service

import (
	"context"
	"fmt"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/dto"
	"github.com/felipecalderon/food-truck-pos/internal/model"
	"github.com/felipecalderon/food-truck-pos/internal/reporte"
	"github.com/felipecalderon/food-truck-pos/internal/repository"
	"github.com/felipecalderon/food-truck-pos/internal/worker"

	"github.com/rs/zerolog/log"
)

// ReporteService aggregates sales into summaries and async xlsx exports.
type ReporteService interface {
	Resumen(ctx context.Context, filtro dto.RangoFilter) (*dto.ResumenResponse, error)
	Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error)
}

type reporteService struct {
	ventaRepo  repository.VentaRepository
	dispatcher *worker.Dispatcher
}

func NewReporteService(ventaRepo repository.VentaRepository, dispatcher *worker.Dispatcher) ReporteService {
	return &reporteService{ventaRepo: ventaRepo, dispatcher: dispatcher}
}

// Resumen computes the per-method totals and top products of a range.
// Persistence failures degrade to an empty summary so dashboards keep working.
func (s *reporteService) Resumen(ctx context.Context, filtro dto.RangoFilter) (*dto.ResumenResponse, error) {
	desde, hasta, err := reporte.ResolverRango(filtro.Rango, filtro.Desde, filtro.Hasta, time.Now())
	if err != nil {
		return nil, err
	}

	ventas, err := s.ventaRepo.List(ctx, desde, hasta, filtro.PuntoDeVenta)
	if err != nil {
		log.Error().Err(err).Msg("error consultando ventas para el resumen")
		ventas = []model.Venta{}
	}

	return &dto.ResumenResponse{
		CantidadVentas: len(ventas),
		PorMetodo:      reporte.VentasPorMetodo(ventas),
		TopProductos:   reporte.TopProductos(ventas, 5),
	}, nil
}

// Export validates the range and enqueues an xlsx export job. The workbook
// is written by the worker pool under EXPORT_STORAGE_PATH.
func (s *reporteService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error) {
	desde, hasta, err := reporte.ResolverRango(req.Rango, req.Desde, req.Hasta, time.Now())
	if err != nil {
		return nil, err
	}

	archivo := fmt.Sprintf("ventas_%s.xlsx", time.Now().Format("20060102_150405"))
	payload := worker.ExportJobPayload{
		Archivo:      archivo,
		Desde:        desde.Format(time.RFC3339),
		Hasta:        hasta.Format(time.RFC3339),
		PuntoDeVenta: req.PuntoDeVenta,
	}
	if err := s.dispatcher.EnqueueExport(ctx, payload); err != nil {
		return nil, err
	}

	return &dto.ExportResponse{Archivo: archivo, Estado: "encolado"}, nil
}
