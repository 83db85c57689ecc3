package router

import (
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/config"
	"github.com/felipecalderon/food-truck-pos/internal/handler"
	"github.com/felipecalderon/food-truck-pos/internal/infra"
	"github.com/felipecalderon/food-truck-pos/internal/middleware"
	"github.com/felipecalderon/food-truck-pos/internal/repository"
	"github.com/felipecalderon/food-truck-pos/internal/service"
	"github.com/felipecalderon/food-truck-pos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler <- Service <- Repository <- DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, catalogoCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	catalogoClient := infra.NewCatalogoClient(cfg.CatalogoURL, cfg.CatalogoToken, cfg.CatalogoCompany, cfg.CatalogoCategoriaID)

	// ── Repositories ─────────────────────────────────────────────────────────
	cajaRepo := repository.NewCajaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(cfg)
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo)
	pedidoSvc := service.NewPedidoService(rdb)
	ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, pedidoSvc, dispatcher, infra.GenerarReciboPDF)
	catalogoSvc := service.NewCatalogoService(catalogoClient, rdb, catalogoCB, time.Duration(cfg.CatalogoCacheSeconds)*time.Second)
	reporteSvc := service.NewReporteService(ventaRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	productosH := handler.NewProductosHandler(catalogoSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, catalogoCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", cajaH.Abrir)
			caja.POST("/cerrar", cajaH.Cerrar)
			caja.GET("/actual", cajaH.Actual)
			caja.GET("/sesiones", cajaH.Listar)
			caja.GET("/sesiones/:id/ventas", ventasH.PorSesion)
			caja.DELETE("/sesiones/:id", cajaH.Eliminar)
		}

		v1.POST("/ventas", ventasH.Registrar)
		v1.GET("/ventas", ventasH.Listar)
		v1.GET("/ventas/:id", ventasH.Obtener)
		v1.PATCH("/ventas/:id/comentario", ventasH.ActualizarComentario)
		v1.DELETE("/ventas/:id", ventasH.Eliminar)
		v1.GET("/ventas/:id/recibo", ventasH.Recibo)

		v1.GET("/productos", productosH.Listar)

		reportes := v1.Group("/reportes")
		{
			reportes.GET("/resumen", reportesH.Resumen)
			reportes.POST("/export", reportesH.Export)
		}

		pedidos := v1.Group("/pedidos")
		{
			pedidos.POST("", pedidosH.Crear)
			pedidos.GET("", pedidosH.Listar)
			pedidos.POST("/:id/cancelar", pedidosH.Cancelar)
			pedidos.DELETE("/:id", pedidosH.Eliminar)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
