package handlers

import (
	"net/http"

	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/notify"
	"suministros-dashboard/internal/services"
	"suministros-dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SesionHandler perfil, logout y canal de notificaciones
type SesionHandler struct {
	base
	registro *session.Registro
	auth     services.AuthService
	hub      *notify.Hub
}

func NewSesionHandler(registro *session.Registro, auth services.AuthService, hub *notify.Hub, logger *zap.Logger) *SesionHandler {
	return &SesionHandler{
		base:     newBase(logger, "sesion"),
		registro: registro,
		auth:     auth,
		hub:      hub,
	}
}

// ObtenerSesion actor, vencimiento y avisos recientes
func (h *SesionHandler) ObtenerSesion(c *gin.Context) {
	sesion := middleware.SesionDe(c)
	usuario := sesion.Usuario()

	h.logDebug("Sesión consultada", zap.String("usuario", usuario.User))

	responderOK(c, http.StatusOK, "Sesión activa", gin.H{
		"usuario":        usuario,
		"expira":         sesion.Expira(),
		"pipeline":       sesion.Solicitudes.Pipeline().Nombre,
		"notificaciones": sesion.Notificaciones.Recientes(),
	})
}

// CerrarSesion logout: descarta el espacio de trabajo
func (h *SesionHandler) CerrarSesion(c *gin.Context) {
	sesion := middleware.SesionDe(c)
	usuario := sesion.Usuario()

	h.registro.Cerrar(sesion.Clave)

	h.logSuccess("Sesión cerrada", zap.String("usuario", usuario.User))
	responderOK(c, http.StatusOK, "Sesión cerrada", nil)
}

// ActualizarColorPerfil PUT /sesion/color-perfil
func (h *SesionHandler) ActualizarColorPerfil(c *gin.Context) {
	sesion := middleware.SesionDe(c)

	var req models.ColorPerfilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responderInvalido(c, "Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.responderInvalido(c, "Color de perfil inválido", err)
		return
	}

	if err := h.auth.ActualizarColorPerfil(c.Request.Context(), sesion.Credenciales.Token(), req.ColorPerfil); err != nil {
		sesion.Notificaciones.Notificar(services.NotificacionDeFalla(err))
		h.responderFalla(c, err, nil)
		return
	}
	sesion.FijarColorPerfil(req.ColorPerfil)

	h.logSuccess("Color de perfil actualizado", zap.String("color", req.ColorPerfil))
	responderOK(c, http.StatusOK, "Color de perfil actualizado", sesion.Usuario())
}

// Notificaciones websocket con los avisos de la sesión
func (h *SesionHandler) Notificaciones(c *gin.Context) {
	sesion := middleware.SesionDe(c)
	h.logInfo("Conexión de notificaciones", zap.Int("conectados", h.hub.Conectados(sesion.Clave)))
	h.hub.ServeWs(c, sesion.Clave)
}
