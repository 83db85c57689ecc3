package worker

// export_worker.go
// Processes export jobs from QueueExport: loads the sales of the requested
// range and writes an .xlsx workbook (detail sheet + summary sheet) under
// the configured storage path.

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/model"
	"github.com/felipecalderon/food-truck-pos/internal/reporte"
	"github.com/felipecalderon/food-truck-pos/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ExportJobPayload is the job envelope sent to QueueExport.
// Desde/Hasta carry the already-resolved half-open range in RFC 3339.
type ExportJobPayload struct {
	Archivo      string `json:"archivo"`
	Desde        string `json:"desde"`
	Hasta        string `json:"hasta"`
	PuntoDeVenta string `json:"punto_de_venta,omitempty"`
}

// ExportWorker builds xlsx sales reports.
type ExportWorker struct {
	ventaRepo   repository.VentaRepository
	storagePath string
}

func NewExportWorker(ventaRepo repository.VentaRepository, storagePath string) *ExportWorker {
	return &ExportWorker{ventaRepo: ventaRepo, storagePath: storagePath}
}

func (w *ExportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ExportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("export_worker: payload invalido")
		return
	}

	desde, err := time.Parse(time.RFC3339, payload.Desde)
	if err != nil {
		log.Error().Str("desde", payload.Desde).Msg("export_worker: rango invalido")
		return
	}
	hasta, err := time.Parse(time.RFC3339, payload.Hasta)
	if err != nil {
		log.Error().Str("hasta", payload.Hasta).Msg("export_worker: rango invalido")
		return
	}

	ventas, err := w.ventaRepo.List(ctx, desde, hasta, payload.PuntoDeVenta)
	if err != nil {
		log.Error().Err(err).Str("archivo", payload.Archivo).Msg("export_worker: no se pudieron cargar las ventas")
		return
	}

	destino := filepath.Join(w.storagePath, payload.Archivo)
	if err := writeXLSX(ventas, destino); err != nil {
		log.Error().Err(err).Str("archivo", destino).Msg("export_worker: fallo la escritura del xlsx")
		return
	}
	log.Info().Str("archivo", destino).Int("ventas", len(ventas)).Msg("export_worker: export generado")
}

func writeXLSX(ventas []model.Venta, destino string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	writeHeaders := func(sheet string, headers []string) {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
	}

	sheetVentas := "Ventas"
	f.SetSheetName("Sheet1", sheetVentas)
	writeHeaders(sheetVentas, []string{
		"ID",
		"Fecha",
		"Punto de Venta",
		"Metodo de Pago",
		"Total",
		"Monto Pagado",
		"Vuelto",
		"Items",
	})

	row := 2
	for i := range ventas {
		v := &ventas[i]
		values := []interface{}{
			v.ID.String(),
			v.Fecha.Format("2006-01-02 15:04"),
			v.PuntoDeVenta,
			v.MetodoPago,
			v.Total.InexactFloat64(),
			v.MontoPagado.InexactFloat64(),
			v.Vuelto.InexactFloat64(),
			len(v.Items),
		}
		for i, val := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetVentas, cell, val)
		}
		row++
	}
	f.AutoFilter(sheetVentas, "A1:H1", []excelize.AutoFilterOptions{})
	f.SetPanes(sheetVentas, &excelize.Panes{Freeze: true, Split: true, YSplit: 1})

	sheetResumen := "Resumen"
	f.NewSheet(sheetResumen)
	writeHeaders(sheetResumen, []string{"Concepto", "Monto"})

	montos := reporte.VentasPorMetodo(ventas)
	resumen := [][2]interface{}{
		{"Cantidad de ventas", len(ventas)},
		{"Efectivo", montos.Efectivo.InexactFloat64()},
		{"Debito", montos.Debito.InexactFloat64()},
		{"Credito", montos.Credito.InexactFloat64()},
		{"Transferencia", montos.Transferencia.InexactFloat64()},
		{"Total", montos.Total.InexactFloat64()},
	}
	rowR := 2
	for _, par := range resumen {
		f.SetCellValue(sheetResumen, fmt.Sprintf("A%d", rowR), par[0])
		f.SetCellValue(sheetResumen, fmt.Sprintf("B%d", rowR), par[1])
		rowR++
	}

	rowR++
	f.SetCellValue(sheetResumen, fmt.Sprintf("A%d", rowR), "Top productos")
	rowR++
	for _, top := range reporte.TopProductos(ventas, 5) {
		f.SetCellValue(sheetResumen, fmt.Sprintf("A%d", rowR), top.Nombre)
		f.SetCellValue(sheetResumen, fmt.Sprintf("B%d", rowR), top.Monto.InexactFloat64())
		rowR++
	}

	f.SetActiveSheet(0)
	return f.SaveAs(destino)
}
