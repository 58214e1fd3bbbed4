package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SolicitudHandler colección de solicitudes de la sesión
type SolicitudHandler struct {
	base
}

func NewSolicitudHandler(logger *zap.Logger) *SolicitudHandler {
	return &SolicitudHandler{base: newBase(logger, "solicitudes")}
}

// ListarMias GET /solicitudes/mias
func (h *SolicitudHandler) ListarMias(c *gin.Context) {
	h.listar(c, false)
}

// ListarTodas GET /solicitudes/todas (administración)
func (h *SolicitudHandler) ListarTodas(c *gin.Context) {
	h.listar(c, true)
}

func (h *SolicitudHandler) listar(c *gin.Context, todas bool) {
	start := time.Now()
	store := middleware.SesionDe(c).Solicitudes

	var err error
	if todas {
		err = store.ListarTodas(c.Request.Context())
	} else {
		err = store.ListarMias(c.Request.Context())
	}
	// Si falla la colección anterior se conserva y se devuelve igual
	if err != nil {
		h.responderFalla(c, err, store.Datos())
		return
	}

	datos := store.Datos()
	h.logSuccess("Solicitudes obtenidas",
		zap.Bool("todas", todas),
		zap.Int("total", len(datos)),
		zap.Duration("latency", time.Since(start)))
	responderOK(c, http.StatusOK, "Solicitudes obtenidas", datos)
}

// Tabla GET /solicitudes/tabla: búsqueda, filtro y paginación sobre la colección local
func (h *SolicitudHandler) Tabla(c *gin.Context) {
	store := middleware.SesionDe(c).Solicitudes

	var q models.TablaQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.responderInvalido(c, "Parámetros de tabla inválidos", err)
		return
	}
	if err := h.validator.Struct(q); err != nil {
		h.responderInvalido(c, "Parámetros de tabla inválidos", err)
		return
	}

	// Un estado desconocido muestra todos
	filtro, _ := models.ParseStatus(q.Estado)
	tabla := services.ConstruirTabla(store.Datos(), filtro, q.Busqueda, q.Pagina, q.Entradas, store.Pipeline())
	tabla.Cargando = store.CargandoDatos()

	h.logDebug("Tabla construida",
		zap.String("q", q.Busqueda),
		zap.String("estado", q.Estado),
		zap.Int("filas", len(tabla.Filas)),
		zap.Int("total", tabla.Total))
	responderOK(c, http.StatusOK, "Tabla de solicitudes", tabla)
}

// Obtener GET /solicitudes/:id
func (h *SolicitudHandler) Obtener(c *gin.Context) {
	store := middleware.SesionDe(c).Solicitudes
	id := models.ID(c.Param("id"))

	sol, err := store.Obtener(c.Request.Context(), id)
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	responderOK(c, http.StatusOK, "Solicitud obtenida", sol)
}

// Editar POST /solicitudes/:id/editar abre el formulario precargado
func (h *SolicitudHandler) Editar(c *gin.Context) {
	sesion := middleware.SesionDe(c)
	if sesion.Solicitudes.Cargando() {
		responderOcupado(c)
		return
	}
	id := models.ID(c.Param("id"))

	formulario, err := sesion.Solicitudes.CargarParaEditar(c.Request.Context(), id)
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	sesion.Formulario.Abrir(formulario, models.ModoEditar, id)

	h.logInfo("Formulario abierto para edición", zap.String("id", id.String()))
	responderOK(c, http.StatusOK, "Formulario listo para edición", sesion.Formulario.Vista())
}

// Eliminar DELETE /solicitudes/:id?confirmar=true.
// Sin confirmar responde 409 con la pregunta que debe mostrarse.
func (h *SolicitudHandler) Eliminar(c *gin.Context) {
	store := middleware.SesionDe(c).Solicitudes
	if store.Cargando() {
		responderOcupado(c)
		return
	}
	id := models.ID(c.Param("id"))

	folio := id.String()
	if actual, ok := store.Buscar(id); ok && actual.Folio != "" {
		folio = actual.Folio
	}

	confirmado, _ := strconv.ParseBool(c.Query("confirmar"))
	var pregunta services.Confirmacion
	confirmar := func(_ context.Context, p services.Confirmacion) bool {
		pregunta = p
		return confirmado
	}

	eliminada, err := store.Eliminar(c.Request.Context(), id, folio, confirmar)
	if err != nil {
		h.responderFalla(c, err, nil)
		return
	}
	if !eliminada {
		h.responderFalla(c, services.ErrSinConfirmar, gin.H{"confirmacion": pregunta})
		return
	}

	h.logSuccess("Solicitud eliminada", zap.String("id", id.String()), zap.String("folio", folio))
	responderOK(c, http.StatusOK, "Solicitud eliminada", gin.H{"id": id})
}

// CambiarStatus PUT /solicitudes/:id/status
func (h *SolicitudHandler) CambiarStatus(c *gin.Context) {
	store := middleware.SesionDe(c).Solicitudes
	if store.Cargando() {
		responderOcupado(c)
		return
	}
	id := models.ID(c.Param("id"))

	var req models.CambiarStatusBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responderInvalido(c, "Error en el formato de datos", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.responderInvalido(c, "Datos de entrada inválidos", err)
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		h.responderFalla(c, errors.Join(services.ErrStatusInvalido, err), nil)
		return
	}

	resultado, err := store.CambiarStatus(c.Request.Context(), id, status, req.ComentarioAdmin)
	if err != nil {
		h.responderFalla(c, err, resultado)
		return
	}

	h.logSuccess("Status actualizado", zap.String("id", id.String()), zap.String("status", status.String()))
	responderOK(c, http.StatusOK, "Status actualizado", resultado)
}
