package handler

import (
	"net/http"

	"github.com/felipecalderon/food-truck-pos/internal/dto"
	"github.com/felipecalderon/food-truck-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Resumen godoc
// @Summary  Resumen de ventas por rango
// @Tags     reportes
// @Produce  json
// @Security BearerAuth
// @Param    rango          query string false "hoy | semana | mes | custom"
// @Param    desde          query string false "YYYY-MM-DD (solo custom)"
// @Param    hasta          query string false "YYYY-MM-DD (solo custom)"
// @Param    punto_de_venta query string false "Filtra por POS"
// @Success  200 {object} dto.ResumenResponse
// @Router   /v1/reportes/resumen [get]
func (h *ReportesHandler) Resumen(c *gin.Context) {
	var filtro dto.RangoFilter
	if !bindQueryAndValidate(c, &filtro) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), filtro)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export enqueues an xlsx export of a sales range. The job runs in the
// worker pool; the response carries the future file name.
func (h *ReportesHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Export(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
