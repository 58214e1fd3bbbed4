package handlers

import (
	"net/http"

	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SuministroParcialHandler historial de entregas parciales
type SuministroParcialHandler struct {
	base
}

func NewSuministroParcialHandler(logger *zap.Logger) *SuministroParcialHandler {
	return &SuministroParcialHandler{base: newBase(logger, "suministros_parciales")}
}

// Listar GET /suministros-parciales/:solicitudId
func (h *SuministroParcialHandler) Listar(c *gin.Context) {
	parciales := middleware.SesionDe(c).Parciales
	solicitudID := models.ID(c.Param("solicitudId"))

	registros, err := parciales.Obtener(c.Request.Context(), solicitudID)
	if err != nil {
		// La lista ya quedó vacía
		h.responderFalla(c, err, []models.SuministroParcial{})
		return
	}
	h.logDebug("Entregas parciales obtenidas",
		zap.String("solicitud_id", solicitudID.String()),
		zap.Int("total", len(registros)))
	responderOK(c, http.StatusOK, "Entregas parciales", registros)
}

// Eliminar DELETE /suministros-parciales/:id
func (h *SuministroParcialHandler) Eliminar(c *gin.Context) {
	parciales := middleware.SesionDe(c).Parciales
	if parciales.Cargando() {
		responderOcupado(c)
		return
	}
	id := models.ID(c.Param("id"))

	if _, err := parciales.Eliminar(c.Request.Context(), id); err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	h.logSuccess("Entrega parcial eliminada", zap.String("id", id.String()))
	responderOK(c, http.StatusOK, "Entrega parcial eliminada", parciales.Registros())
}
