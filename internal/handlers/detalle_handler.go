package handlers

import (
	"errors"
	"net/http"

	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DetalleHandler modal de detalle y checklist de entrega parcial
type DetalleHandler struct {
	base
}

func NewDetalleHandler(logger *zap.Logger) *DetalleHandler {
	return &DetalleHandler{base: newBase(logger, "detalle")}
}

// Abrir POST /detalle/:id
func (h *DetalleHandler) Abrir(c *gin.Context) {
	detalle := middleware.SesionDe(c).Detalle
	id := models.ID(c.Param("id"))

	if err := detalle.Abrir(c.Request.Context(), id); err != nil {
		h.responderFalla(c, err, detalle.Vista())
		return
	}
	h.logDebug("Detalle abierto", zap.String("id", id.String()))
	responderOK(c, http.StatusOK, "Detalle abierto", detalle.Vista())
}

// Obtener GET /detalle
func (h *DetalleHandler) Obtener(c *gin.Context) {
	responderOK(c, http.StatusOK, "Detalle", middleware.SesionDe(c).Detalle.Vista())
}

// Editar PATCH /detalle: status y comentario del borrador
func (h *DetalleHandler) Editar(c *gin.Context) {
	detalle := middleware.SesionDe(c).Detalle

	var req models.BorradorDetalleBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responderInvalido(c, "Error en el formato de datos", err)
		return
	}

	if req.Status != nil {
		status, err := models.ParseStatus(*req.Status)
		if err != nil {
			h.responderFalla(c, errors.Join(services.ErrStatusInvalido, err), nil)
			return
		}
		if err := detalle.CambiarStatus(status); err != nil {
			h.responderFalla(c, err, nil)
			return
		}
	}
	if req.ComentarioAdmin != nil {
		if err := detalle.CambiarComentario(*req.ComentarioAdmin); err != nil {
			h.responderFalla(c, err, nil)
			return
		}
	}
	responderOK(c, http.StatusOK, "Borrador actualizado", detalle.Vista())
}

// ActualizarEntrega PATCH /detalle/entregas/:indice
func (h *DetalleHandler) ActualizarEntrega(c *gin.Context) {
	detalle := middleware.SesionDe(c).Detalle

	indice, err := indiceDe(c)
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	var req models.EntregaParcialBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responderInvalido(c, "Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.responderInvalido(c, "Datos de entrega inválidos", err)
		return
	}

	cambio := services.CambioEntrega{Marcado: req.Marcado, Cantidad: req.Cantidad, Unidad: req.Unidad}
	if err := detalle.ActualizarEntrega(indice, cambio); err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	responderOK(c, http.StatusOK, "Entrega actualizada", detalle.Vista())
}

// Cerrar POST /detalle/cerrar: guarda primero si hay cambios del administrador
func (h *DetalleHandler) Cerrar(c *gin.Context) {
	detalle := middleware.SesionDe(c).Detalle

	resultado, err := detalle.Cerrar(c.Request.Context())
	if err != nil {
		h.responderFalla(c, err, gin.H{"resultado": resultado, "detalle": detalle.Vista()})
		return
	}

	if resultado.Guardado {
		h.logSuccess("Detalle guardado y cerrado")
	}
	responderOK(c, http.StatusOK, "Detalle cerrado", gin.H{"resultado": resultado, "detalle": detalle.Vista()})
}
