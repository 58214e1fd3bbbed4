package handlers

import (
	"net/http"
	"time"

	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogoHandler productos y unidades para capturar renglones
type CatalogoHandler struct {
	base
	catalogo services.CatalogoService
}

func NewCatalogoHandler(catalogo services.CatalogoService, logger *zap.Logger) *CatalogoHandler {
	return &CatalogoHandler{
		base:     newBase(logger, "catalogo"),
		catalogo: catalogo,
	}
}

// ListarProductos GET /productos
func (h *CatalogoHandler) ListarProductos(c *gin.Context) {
	start := time.Now()
	sesion := middleware.SesionDe(c)

	productos, err := h.catalogo.ListarProductos(c.Request.Context(), sesion.Credenciales.Token())
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	h.logDebug("Productos servidos",
		zap.Int("total", len(productos)),
		zap.Duration("latency", time.Since(start)))
	responderOK(c, http.StatusOK, "Productos obtenidos", productos)
}

// ListarUnidades GET /unidades-medida
func (h *CatalogoHandler) ListarUnidades(c *gin.Context) {
	sesion := middleware.SesionDe(c)

	unidades, err := h.catalogo.ListarUnidades(c.Request.Context(), sesion.Credenciales.Token())
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	responderOK(c, http.StatusOK, "Unidades de medida obtenidas", unidades)
}

// InvalidarCache DELETE /catalogos/cache; solo administradores
func (h *CatalogoHandler) InvalidarCache(c *gin.Context) {
	sesion := middleware.SesionDe(c)
	if !sesion.Usuario().Rol.EsAdmin() {
		h.responderFalla(c, services.ErrSinPermiso, nil)
		return
	}
	if err := h.catalogo.Invalidar(c.Request.Context()); err != nil {
		h.logError("Error invalidando catálogos", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error invalidando catálogos",
			"error":   err.Error(),
		})
		return
	}
	h.logSuccess("Catálogos invalidados", zap.String("usuario", sesion.Usuario().User))
	responderOK(c, http.StatusOK, "Catálogos invalidados", nil)
}
