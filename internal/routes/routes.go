package routes

import (
	"net/http"

	"suministros-dashboard/internal/handlers"
	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers todos los handlers que expone el BFF
type Handlers struct {
	Sesion             *handlers.SesionHandler
	Solicitud          *handlers.SolicitudHandler
	Formulario         *handlers.FormularioHandler
	Detalle            *handlers.DetalleHandler
	SuministroParcial  *handlers.SuministroParcialHandler
	Catalogo           *handlers.CatalogoHandler
	Dashboard          *handlers.DashboardHandler
	Monitoring         *handlers.MonitoringHandler
	HealthChecker      *middleware.HealthChecker
	MetricsHTTPHandler http.Handler
}

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(router *gin.Engine, h Handlers, registro *session.Registro, logger *zap.Logger) {
	v1 := router.Group("/api/v1")
	{
		// Monitoring routes
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/metrics", h.Monitoring.GetMetrics)
			monitoring.GET("/metrics/summary", h.Monitoring.GetMetricsSummary)
		}

		// Todo lo demás trabaja sobre la sesión del token
		api := v1.Group("")
		api.Use(middleware.SesionRequerida(registro, logger))

		api.GET("/sesion", h.Sesion.ObtenerSesion)
		api.DELETE("/sesion", h.Sesion.CerrarSesion)
		api.PUT("/sesion/color-perfil", h.Sesion.ActualizarColorPerfil)
		api.GET("/notificaciones/ws", h.Sesion.Notificaciones)

		solicitudes := api.Group("/solicitudes")
		{
			solicitudes.GET("/mias", h.Solicitud.ListarMias)
			solicitudes.GET("/todas", h.Solicitud.ListarTodas)
			solicitudes.GET("/tabla", h.Solicitud.Tabla)
			solicitudes.GET("/:id", h.Solicitud.Obtener)
			solicitudes.POST("/:id/editar", h.Solicitud.Editar)
			solicitudes.DELETE("/:id", h.Solicitud.Eliminar)
			solicitudes.PUT("/:id/status", h.Solicitud.CambiarStatus)
		}

		formulario := api.Group("/formulario")
		{
			formulario.POST("/abrir", h.Formulario.Abrir)
			formulario.GET("", h.Formulario.Obtener)
			formulario.PATCH("", h.Formulario.CambiarCampo)
			formulario.POST("/productos", h.Formulario.AgregarProducto)
			formulario.PATCH("/productos/:indice", h.Formulario.CambiarProducto)
			formulario.DELETE("/productos/:indice", h.Formulario.EliminarProducto)
			formulario.POST("/guardar", h.Formulario.Guardar)
			formulario.POST("/cerrar", h.Formulario.Cerrar)
		}

		detalle := api.Group("/detalle")
		{
			detalle.GET("", h.Detalle.Obtener)
			detalle.PATCH("", h.Detalle.Editar)
			detalle.PATCH("/entregas/:indice", h.Detalle.ActualizarEntrega)
			detalle.POST("/cerrar", h.Detalle.Cerrar)
			detalle.POST("/:id", h.Detalle.Abrir)
		}

		parciales := api.Group("/suministros-parciales")
		{
			parciales.GET("/:solicitudId", h.SuministroParcial.Listar)
			parciales.DELETE("/:id", h.SuministroParcial.Eliminar)
		}

		api.GET("/productos", h.Catalogo.ListarProductos)
		api.GET("/unidades-medida", h.Catalogo.ListarUnidades)
		api.DELETE("/catalogos/cache", h.Catalogo.InvalidarCache)

		api.GET("/dashboard", h.Dashboard.Obtener)
		api.GET("/dashboard/resumen", h.Dashboard.Resumen)
	}

	// Health check y Prometheus en raíz
	router.GET("/health", h.HealthChecker.HealthCheck)
	router.GET("/metrics", gin.WrapH(h.MetricsHTTPHandler))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Suministros Dashboard BFF",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health":  "/health",
				"metrics": "/metrics",
				"api":     "/api/v1",
				"solicitudes": gin.H{
					"mias":  "GET /api/v1/solicitudes/mias",
					"todas": "GET /api/v1/solicitudes/todas",
					"tabla": "GET /api/v1/solicitudes/tabla",
				},
				"formulario": "POST /api/v1/formulario/abrir",
				"detalle":    "POST /api/v1/detalle/:id",
			},
		})
	})
}
