package handler

import (
	"net/http"

	"github.com/felipecalderon/food-truck-pos/internal/apierror"
	"github.com/felipecalderon/food-truck-pos/internal/dto"
	"github.com/felipecalderon/food-truck-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PedidosHandler struct{ svc service.PedidoService }

func NewPedidosHandler(svc service.PedidoService) *PedidosHandler {
	return &PedidosHandler{svc: svc}
}

// Crear registers a pending order for the POS queue.
func (h *PedidosHandler) Crear(c *gin.Context) {
	var req dto.CrearPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	pedido, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pedido)
}

// Listar returns the order queue of a POS, newest first.
func (h *PedidosHandler) Listar(c *gin.Context) {
	puntoDeVenta := c.Query("punto_de_venta")
	if puntoDeVenta == "" {
		c.JSON(http.StatusBadRequest, apierror.New("punto_de_venta es requerido"))
		return
	}
	pedidos, err := h.svc.Listar(c.Request.Context(), puntoDeVenta)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pedidos)
}

// Cancelar marks a pending order as cancelled.
func (h *PedidosHandler) Cancelar(c *gin.Context) {
	puntoDeVenta, id, ok := pedidoKey(c)
	if !ok {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), puntoDeVenta, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Eliminar removes an order from the queue.
func (h *PedidosHandler) Eliminar(c *gin.Context) {
	puntoDeVenta, id, ok := pedidoKey(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), puntoDeVenta, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pedidoKey(c *gin.Context) (string, uuid.UUID, bool) {
	puntoDeVenta := c.Query("punto_de_venta")
	if puntoDeVenta == "" {
		c.JSON(http.StatusBadRequest, apierror.New("punto_de_venta es requerido"))
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return "", uuid.Nil, false
	}
	return puntoDeVenta, id, true
}
