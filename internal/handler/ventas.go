package handler

import (
	"fmt"
	"net/http"

	"github.com/felipecalderon/food-truck-pos/internal/apierror"
	"github.com/felipecalderon/food-truck-pos/internal/dto"
	"github.com/felipecalderon/food-truck-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar una nueva venta
// @Description  Crea una venta ligada a la caja abierta del punto de venta. Las ventas en efectivo acumulan sobre el contador de la sesion.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener returns a single sale with its items.
func (h *VentasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar ventas
// @Description  Retorna ventas filtradas por rango (hoy/semana/mes/custom) y punto de venta.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        rango          query string false "hoy | semana | mes | custom"
// @Param        desde          query string false "YYYY-MM-DD (solo custom)"
// @Param        hasta          query string false "YYYY-MM-DD (solo custom)"
// @Param        punto_de_venta query string false "Filtra por POS"
// @Param        sesion_id      query string false "Filtra por sesion de caja (ignora rango)"
// @Success      200 {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filtro dto.RangoFilter
	if !bindQueryAndValidate(c, &filtro) {
		return
	}

	if filtro.SesionID != "" {
		sesionID, err := uuid.Parse(filtro.SesionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("sesion_id invalido"))
			return
		}
		data, err := h.svc.PorSesion(c.Request.Context(), sesionID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.VentaListResponse{Data: data, Total: len(data)})
		return
	}

	// POS filter without a range means the full history of that POS.
	if filtro.PuntoDeVenta != "" && filtro.Rango == "" && filtro.Desde == "" && filtro.Hasta == "" {
		data, err := h.svc.PorPos(c.Request.Context(), filtro.PuntoDeVenta)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.VentaListResponse{Data: data, Total: len(data)})
		return
	}

	resp, err := h.svc.Listar(c.Request.Context(), filtro)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PorSesion godoc
// @Summary      Ventas de una sesion de caja
// @Description  Retorna todas las ventas registradas contra la sesion indicada.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la sesion"
// @Success      200 {object} dto.VentaListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/caja/sesiones/{id}/ventas [get]
func (h *VentasHandler) PorSesion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	data, err := h.svc.PorSesion(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VentaListResponse{Data: data, Total: len(data)})
}

// ActualizarComentario edits the free-text note of a sale.
func (h *VentasHandler) ActualizarComentario(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarComentarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ActualizarComentario(c.Request.Context(), id, req.Comentario); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Eliminar deletes a sale and reverses its contribution to the session
// counter when the session is still open.
func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Recibo streams the printable PDF receipt of a sale.
func (h *VentasHandler) Recibo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	pdfBytes, err := h.svc.ReciboPDF(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=recibo_%s.pdf", id.String()[:8]))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
