package handler

import (
	"net/http"

	"github.com/felipecalderon/food-truck-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.CatalogoService }

func NewProductosHandler(svc service.CatalogoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Listar godoc
// @Summary  Listar productos del catalogo
// @Tags     productos
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} model.Producto
// @Router   /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	productos := h.svc.Productos(c.Request.Context())
	c.JSON(http.StatusOK, productos)
}
