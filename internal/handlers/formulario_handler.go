package handlers

import (
	"errors"
	"io"
	"net/http"

	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FormularioHandler formulario de captura de la sesión
type FormularioHandler struct {
	base
}

func NewFormularioHandler(logger *zap.Logger) *FormularioHandler {
	return &FormularioHandler{base: newBase(logger, "formulario")}
}

// vista responde el estado del formulario con la bandera de guardado
func (h *FormularioHandler) vista(c *gin.Context, status int, mensaje string) {
	sesion := middleware.SesionDe(c)
	vista := sesion.Formulario.Vista()
	vista.Guardando = sesion.Solicitudes.Cargando()
	responderOK(c, status, mensaje, vista)
}

// Abrir POST /formulario/abrir: borrador vacío o precargado, modo crear
func (h *FormularioHandler) Abrir(c *gin.Context) {
	sesion := middleware.SesionDe(c)

	var req models.AbrirFormularioBody
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.responderInvalido(c, "Error en el formato de datos", err)
		return
	}
	sesion.Formulario.Abrir(req.Formulario, models.ModoCrear, "")

	h.logDebug("Formulario abierto", zap.Bool("precargado", req.Formulario != nil))
	h.vista(c, http.StatusOK, "Formulario abierto")
}

// Obtener GET /formulario
func (h *FormularioHandler) Obtener(c *gin.Context) {
	h.vista(c, http.StatusOK, "Formulario")
}

// CambiarCampo PATCH /formulario
func (h *FormularioHandler) CambiarCampo(c *gin.Context) {
	sesion := middleware.SesionDe(c)

	var req models.CampoFormularioBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responderInvalido(c, "Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.responderInvalido(c, "Campo inválido", err)
		return
	}
	if err := sesion.Formulario.CambiarCampo(req.Campo, req.Valor); err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	h.vista(c, http.StatusOK, "Formulario actualizado")
}

// AgregarProducto POST /formulario/productos
func (h *FormularioHandler) AgregarProducto(c *gin.Context) {
	if err := middleware.SesionDe(c).Formulario.AgregarProducto(); err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	h.vista(c, http.StatusCreated, "Producto agregado")
}

// CambiarProducto PATCH /formulario/productos/:indice
func (h *FormularioHandler) CambiarProducto(c *gin.Context) {
	sesion := middleware.SesionDe(c)

	indice, err := indiceDe(c)
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	var req models.CampoProductoBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responderInvalido(c, "Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.responderInvalido(c, "Campo inválido", err)
		return
	}
	if err := sesion.Formulario.CambiarProducto(indice, req.Campo, req.Valor); err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	h.vista(c, http.StatusOK, "Producto actualizado")
}

// EliminarProducto DELETE /formulario/productos/:indice; el último renglón se conserva
func (h *FormularioHandler) EliminarProducto(c *gin.Context) {
	indice, err := indiceDe(c)
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	if err := middleware.SesionDe(c).Formulario.EliminarProducto(indice); err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	h.vista(c, http.StatusOK, "Producto eliminado")
}

// Guardar POST /formulario/guardar: crea o actualiza según el modo
func (h *FormularioHandler) Guardar(c *gin.Context) {
	sesion := middleware.SesionDe(c)
	if sesion.Solicitudes.Cargando() {
		responderOcupado(c)
		return
	}

	modo, id := sesion.Formulario.Modo()
	sol, err := services.GuardarFormulario(c.Request.Context(), sesion.Formulario, sesion.Solicitudes)
	if err != nil {
		var validacion *services.ValidacionError
		if errors.As(err, &validacion) {
			h.logDebug("Formulario con errores", zap.Int("errores", len(validacion.Errores)))
			h.responderFalla(c, err, sesion.Formulario.Vista())
			return
		}
		h.responderFalla(c, err, nil)
		return
	}

	h.logSuccess("Formulario guardado",
		zap.String("modo", string(modo)),
		zap.String("id", id.String()),
		zap.String("folio", sol.Folio))
	status := http.StatusCreated
	if modo == models.ModoEditar {
		status = http.StatusOK
	}
	responderOK(c, status, "Solicitud guardada", sol)
}

// Cerrar POST /formulario/cerrar
func (h *FormularioHandler) Cerrar(c *gin.Context) {
	middleware.SesionDe(c).Formulario.Cerrar()
	h.vista(c, http.StatusOK, "Formulario cerrado")
}
