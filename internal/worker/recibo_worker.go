package worker

// recibo_worker.go
// Processes receipt jobs from QueueRecibo: renders the sale receipt as PDF
// and emails it to the customer. Sending is best effort; a sale is never
// rolled back because its receipt could not be delivered.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felipecalderon/food-truck-pos/internal/infra"
	"github.com/felipecalderon/food-truck-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReciboJobPayload is the job envelope sent to QueueRecibo.
type ReciboJobPayload struct {
	VentaID string `json:"venta_id"`
	ToEmail string `json:"to_email"`
}

// ReciboWorker loads the sale, renders its PDF receipt and mails it.
type ReciboWorker struct {
	ventaRepo repository.VentaRepository
	mailer    *infra.Mailer
}

func NewReciboWorker(ventaRepo repository.VentaRepository, mailer *infra.Mailer) *ReciboWorker {
	return &ReciboWorker{ventaRepo: ventaRepo, mailer: mailer}
}

func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReciboJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("recibo_worker: payload invalido")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Str("venta_id", payload.VentaID).Msg("recibo_worker: sin email de destino, se omite")
		return
	}
	if !w.mailer.Enabled() {
		log.Warn().Str("venta_id", payload.VentaID).Msg("recibo_worker: SMTP no configurado, se omite")
		return
	}

	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		log.Error().Str("venta_id", payload.VentaID).Msg("recibo_worker: venta_id invalido")
		return
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		log.Error().Err(err).Str("venta_id", payload.VentaID).Msg("recibo_worker: venta no encontrada")
		return
	}

	pdfBytes, err := infra.GenerarReciboPDF(venta)
	if err != nil {
		log.Error().Err(err).Str("venta_id", payload.VentaID).Msg("recibo_worker: fallo la generacion del PDF")
		return
	}

	subject := fmt.Sprintf("Recibo de compra - %s", venta.PuntoDeVenta)
	body := fmt.Sprintf("Adjuntamos el recibo de tu compra.\nTotal: $%s", venta.Total.StringFixed(2))
	if err := w.mailer.SendRecibo(payload.ToEmail, subject, body, pdfBytes); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("recibo_worker: fallo el envio del email")
		return
	}
	log.Info().Str("to", payload.ToEmail).Str("venta_id", payload.VentaID).Msg("recibo_worker: recibo enviado")
}
