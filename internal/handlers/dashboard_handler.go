package handlers

import (
	"net/http"
	"strconv"
	"time"

	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	base
}

func NewDashboardHandler(logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{base: newBase(logger, "dashboard")}
}

// Obtener GET /dashboard: métricas calculadas por el backend
func (h *DashboardHandler) Obtener(c *gin.Context) {
	sesion := middleware.SesionDe(c)

	data, err := sesion.Dashboard.Obtener(c.Request.Context())
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	responderOK(c, http.StatusOK, "Dashboard obtenido", data)
}

// Resumen GET /dashboard/resumen?recargar=true: agregados sobre la colección local
func (h *DashboardHandler) Resumen(c *gin.Context) {
	sesion := middleware.SesionDe(c)
	store := sesion.Solicitudes

	if recargar, _ := strconv.ParseBool(c.Query("recargar")); recargar {
		var err error
		if sesion.Usuario().Rol.EsAdmin() {
			err = store.ListarTodas(c.Request.Context())
		} else {
			err = store.ListarMias(c.Request.Context())
		}
		// Si falla se resume la colección que ya había
		if err != nil {
			h.logDebug("Resumen sobre colección anterior", zap.Error(err))
		}
	}

	resumen := services.ResumirSolicitudes(store.Datos(), store.Pipeline(), time.Now())
	responderOK(c, http.StatusOK, "Resumen de solicitudes", resumen)
}
