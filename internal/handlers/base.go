package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/services"
	"suministros-dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// base logging y respuestas comunes de los handlers
type base struct {
	validator *validator.Validate
	logger    *zap.Logger
}

func newBase(logger *zap.Logger, handler string) base {
	return base{
		validator: validator.New(),
		logger:    logger.With(zap.String("handler", handler)),
	}
}

// logDebug logs solo en modo debug
func (h base) logDebug(msg string, fields ...zap.Field) {
	h.logger.Debug("🔍 [DEBUG] "+msg, fields...)
}

func (h base) logInfo(msg string, fields ...zap.Field) {
	h.logger.Info("ℹ️ "+msg, fields...)
}

func (h base) logError(msg string, fields ...zap.Field) {
	h.logger.Error("❌ "+msg, fields...)
}

func (h base) logSuccess(msg string, fields ...zap.Field) {
	h.logger.Info("✅ "+msg, fields...)
}

func responderOK(c *gin.Context, status int, mensaje string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Message: "✅ " + mensaje,
		Data:    data,
	})
}

// responderFalla traduce el error al status HTTP y a la misma
// notificación que recibe el usuario
func (h base) responderFalla(c *gin.Context, err error, data interface{}) {
	status := statusDeFalla(err)
	aviso := services.NotificacionDeFalla(err)
	mensaje, texto := aviso.Titulo, aviso.Texto
	if client.Clasificar(err) == client.CategoriaInesperada {
		mensaje, texto = "Operación rechazada", err.Error()
	}
	if status >= http.StatusInternalServerError {
		h.logError("Falla atendiendo petición", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logDebug("Petición rechazada", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, models.APIResponse{
		Success: false,
		Message: "❌ " + mensaje,
		Data:    data,
		Error:   texto,
	})
}

func (h base) responderInvalido(c *gin.Context, mensaje string, err error) {
	h.logError("Datos inválidos", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, models.APIResponse{
		Success: false,
		Message: "❌ " + mensaje,
		Error:   err.Error(),
	})
}

// responderOcupado el mismo store tiene una operación en curso
func responderOcupado(c *gin.Context) {
	c.JSON(http.StatusConflict, models.APIResponse{
		Success: false,
		Message: "❌ Operación en curso",
		Error:   "espere a que termine la operación anterior",
	})
}

func statusDeFalla(err error) int {
	var serverErr *client.ServerError
	var validacion *services.ValidacionError
	switch {
	case errors.Is(err, client.ErrSinToken), errors.Is(err, session.ErrTokenExpirado):
		return http.StatusUnauthorized
	case errors.As(err, &serverErr):
		switch serverErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
			return serverErr.Status
		}
		if serverErr.Status < http.StatusInternalServerError {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	case client.Clasificar(err) == client.CategoriaConexion:
		return http.StatusBadGateway
	case errors.As(err, &validacion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSinPermiso):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNoEditable),
		errors.Is(err, services.ErrSinConfirmar),
		errors.Is(err, services.ErrFormularioCerrado),
		errors.Is(err, services.ErrDetalleNoAbierto),
		errors.Is(err, services.ErrGuardandoEnCurso),
		errors.Is(err, services.ErrChecklistNoDisponible):
		return http.StatusConflict
	case errors.Is(err, services.ErrStatusInvalido),
		errors.Is(err, services.ErrIndiceInvalido),
		errors.Is(err, services.ErrCampoInvalido),
		errors.Is(err, services.ErrCantidadFueraDeRango):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func indiceDe(c *gin.Context) (int, error) {
	indice, err := strconv.Atoi(c.Param("indice"))
	if err != nil {
		return 0, services.ErrIndiceInvalido
	}
	return indice, nil
}
