package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/notify"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Backend llamadas HTTP autenticadas al backend de solicitudes
type Backend interface {
	Get(ctx context.Context, token, path string, out interface{}) error
	Post(ctx context.Context, token, path string, body, out interface{}) error
	Put(ctx context.Context, token, path string, body, out interface{}) error
	Delete(ctx context.Context, token, path string, out interface{}) error
}

// Confirmacion pregunta que se hace antes de una acción destructiva
type Confirmacion struct {
	Titulo string `json:"titulo"`
	Texto  string `json:"texto"`
}

// Confirmador responde la pregunta; false cancela sin llamar al backend
type Confirmador func(ctx context.Context, c Confirmacion) bool

// ResultadoStatus resultado de un cambio de status
type ResultadoStatus struct {
	Exito     bool              `json:"success"`
	Solicitud *models.Solicitud `json:"solicitud,omitempty"`
}

// SolicitudStore colección de solicitudes de la sesión y sus operaciones
type SolicitudStore interface {
	ListarMias(ctx context.Context) error
	ListarTodas(ctx context.Context) error
	Datos() []models.Solicitud
	Buscar(id models.ID) (models.Solicitud, bool)
	Obtener(ctx context.Context, id models.ID) (*models.Solicitud, error)
	Crear(ctx context.Context, formulario models.Formulario) (*models.Solicitud, error)
	CargarParaEditar(ctx context.Context, id models.ID) (*models.Formulario, error)
	Actualizar(ctx context.Context, id models.ID, formulario models.Formulario) (*models.Solicitud, error)
	Eliminar(ctx context.Context, id models.ID, folio string, confirmar Confirmador) (bool, error)
	CambiarStatus(ctx context.Context, id models.ID, status models.Status, comentario string) (ResultadoStatus, error)
	PuedeEditarEliminar(s models.Solicitud) bool
	Pipeline() models.Pipeline
	Cargando() bool
	CargandoDatos() bool
}

type solicitudStore struct {
	backend   Backend
	tokens    client.TokenSource
	actor     models.Usuario
	pipeline  models.Pipeline
	notifier  notify.Notifier
	validator *validator.Validate
	logger    *zap.Logger

	mu    sync.RWMutex
	datos []models.Solicitud

	ops *operaciones
}

// NewSolicitudStore crea el store de solicitudes de una sesión
func NewSolicitudStore(
	backend Backend,
	tokens client.TokenSource,
	actor models.Usuario,
	pipeline models.Pipeline,
	notifier notify.Notifier,
	logger *zap.Logger,
) SolicitudStore {
	return &solicitudStore{
		backend:   backend,
		tokens:    tokens,
		actor:     actor,
		pipeline:  pipeline,
		notifier:  notifier,
		validator: validator.New(),
		logger:    logger.With(zap.String("store", "solicitudes")),
		ops:       nuevasOperaciones(),
	}
}

func rutaSolicitud(id models.ID) string {
	return "/solicitudes/" + url.PathEscape(id.String())
}

func (s *solicitudStore) Pipeline() models.Pipeline { return s.pipeline }

func (s *solicitudStore) Cargando() bool { return s.ops.enCurso(opAccion) }

func (s *solicitudStore) CargandoDatos() bool { return s.ops.enCurso(opDatos) }

func (s *solicitudStore) PuedeEditarEliminar(sol models.Solicitud) bool {
	return s.pipeline.PuedeEditarEliminar(sol)
}

// ListarMias GET /solicitudes/usuario; si falla conserva la colección
func (s *solicitudStore) ListarMias(ctx context.Context) error {
	return s.listar(ctx, "/solicitudes/usuario", "listar_mias")
}

// ListarTodas GET /solicitudes; si falla conserva la colección
func (s *solicitudStore) ListarTodas(ctx context.Context) error {
	return s.listar(ctx, "/solicitudes", "listar_todas")
}

func (s *solicitudStore) listar(ctx context.Context, ruta, operacion string) error {
	logger := s.logger.With(zap.String("operation", operacion))
	op := s.ops.iniciar(opDatos)
	defer s.ops.terminar(op)

	var resp models.SolicitudesResponse
	if err := s.backend.Get(ctx, s.tokens.Token(), ruta, &resp); err != nil {
		logger.Warn("❌ No se pudo obtener el listado", zap.Error(err))
		notificarFalla(s.notifier, err)
		return fmt.Errorf("error listando solicitudes: %w", err)
	}

	nuevas := make([]models.Solicitud, 0, len(resp.Solicitudes))
	for _, row := range resp.Solicitudes {
		nuevas = append(nuevas, row.Normalizar())
	}

	s.mu.Lock()
	s.datos = nuevas
	s.mu.Unlock()

	logger.Debug("📋 Listado actualizado", zap.Int("total", len(nuevas)))
	return nil
}

func (s *solicitudStore) Datos() []models.Solicitud {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Solicitud, len(s.datos))
	for i, sol := range s.datos {
		out[i] = sol.Clonar()
	}
	return out
}

func (s *solicitudStore) Buscar(id models.ID) (models.Solicitud, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sol := range s.datos {
		if sol.ID == id {
			return sol.Clonar(), true
		}
	}
	return models.Solicitud{}, false
}

// Obtener GET /solicitudes/:id; no toca la colección
func (s *solicitudStore) Obtener(ctx context.Context, id models.ID) (*models.Solicitud, error) {
	op := s.ops.iniciar(opAccion)
	defer s.ops.terminar(op)

	var resp models.SolicitudResponse
	if err := s.backend.Get(ctx, s.tokens.Token(), rutaSolicitud(id), &resp); err != nil {
		s.logger.Warn("❌ No se pudo obtener la solicitud",
			zap.String("operation", "obtener"),
			zap.String("id", id.String()),
			zap.Error(err))
		notificarFalla(s.notifier, err)
		return nil, fmt.Errorf("error obteniendo solicitud %s: %w", id, err)
	}
	sol := resp.Solicitud.Normalizar()
	return &sol, nil
}

// Crear valida el borrador, hace POST y antepone la nueva solicitud
func (s *solicitudStore) Crear(ctx context.Context, formulario models.Formulario) (*models.Solicitud, error) {
	logger := s.logger.With(zap.String("operation", "crear"))

	if errores := ValidarFormulario(s.validator, formulario); len(errores) > 0 {
		return nil, &ValidacionError{Errores: errores}
	}
	payload, err := formulario.Payload()
	if err != nil {
		return nil, &ValidacionError{Errores: map[string]string{"formulario": err.Error()}}
	}

	op := s.ops.iniciar(opAccion)
	defer s.ops.terminar(op)

	var resp models.SolicitudResponse
	if err := s.backend.Post(ctx, s.tokens.Token(), "/solicitudes", payload, &resp); err != nil {
		logger.Warn("❌ No se pudo crear la solicitud", zap.Error(err))
		notificarFalla(s.notifier, err)
		return nil, fmt.Errorf("error creando solicitud: %w", err)
	}

	nueva := resp.Solicitud.Normalizar()
	s.mu.Lock()
	s.datos = append([]models.Solicitud{nueva}, s.datos...)
	s.mu.Unlock()

	logger.Info("✅ Solicitud creada", zap.String("folio", nueva.Folio))
	s.notifier.Notificar(models.Notificacion{
		Tipo:   models.NotificacionExito,
		Titulo: "¡Solicitud creada!",
		Texto:  fmt.Sprintf("La solicitud con folio %s ha sido creada exitosamente", nueva.Folio),
	})
	return &nueva, nil
}

// CargarParaEditar trae la solicitud y la convierte en borrador.
// Rechaza la edición si el status ya no es el inicial.
func (s *solicitudStore) CargarParaEditar(ctx context.Context, id models.ID) (*models.Formulario, error) {
	sol, err := s.Obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.PuedeEditarEliminar(*sol) {
		notificarNoEditable(s.notifier, "editar")
		return nil, ErrNoEditable
	}
	formulario := models.FormularioDesdeSolicitud(*sol)
	return &formulario, nil
}

// Actualizar PUT /solicitudes/:id con el juego completo de renglones
func (s *solicitudStore) Actualizar(ctx context.Context, id models.ID, formulario models.Formulario) (*models.Solicitud, error) {
	logger := s.logger.With(zap.String("operation", "actualizar"), zap.String("id", id.String()))

	if err := s.verificarEditable(ctx, id, "editar"); err != nil {
		return nil, err
	}
	if errores := ValidarFormulario(s.validator, formulario); len(errores) > 0 {
		return nil, &ValidacionError{Errores: errores}
	}
	payload, err := formulario.Payload()
	if err != nil {
		return nil, &ValidacionError{Errores: map[string]string{"formulario": err.Error()}}
	}

	op := s.ops.iniciar(opAccion)
	defer s.ops.terminar(op)

	var resp models.SolicitudResponse
	if err := s.backend.Put(ctx, s.tokens.Token(), rutaSolicitud(id), payload, &resp); err != nil {
		logger.Warn("❌ No se pudo actualizar la solicitud", zap.Error(err))
		notificarFalla(s.notifier, err)
		return nil, fmt.Errorf("error actualizando solicitud %s: %w", id, err)
	}

	actualizada := resp.Solicitud.Normalizar()
	s.reemplazar(actualizada)

	logger.Info("✅ Solicitud actualizada", zap.String("folio", actualizada.Folio))
	s.notifier.Notificar(models.Notificacion{
		Tipo:   models.NotificacionExito,
		Titulo: "¡Solicitud actualizada!",
		Texto:  fmt.Sprintf("La solicitud %s se actualizó correctamente", actualizada.Folio),
	})
	return &actualizada, nil
}

// verificarEditable revisa el status con la fila local o, si no está en la
// colección, con la del backend. Si no se puede obtener la fila no se edita.
func (s *solicitudStore) verificarEditable(ctx context.Context, id models.ID, accion string) error {
	actual, ok := s.Buscar(id)
	if !ok {
		sol, err := s.Obtener(ctx, id)
		if err != nil {
			return err
		}
		actual = *sol
	}
	if !s.PuedeEditarEliminar(actual) {
		notificarNoEditable(s.notifier, accion)
		return ErrNoEditable
	}
	return nil
}

// reemplazar sustituye en su lugar la fila con el mismo id
func (s *solicitudStore) reemplazar(sol models.Solicitud) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.datos {
		if s.datos[i].ID == sol.ID {
			s.datos[i] = sol
			return
		}
	}
}

// Eliminar pide confirmación y hace DELETE; solo en el status inicial
func (s *solicitudStore) Eliminar(ctx context.Context, id models.ID, folio string, confirmar Confirmador) (bool, error) {
	logger := s.logger.With(zap.String("operation", "eliminar"), zap.String("id", id.String()))

	if err := s.verificarEditable(ctx, id, "eliminar"); err != nil {
		return false, err
	}

	pregunta := Confirmacion{
		Titulo: "¿Eliminar Solicitud?",
		Texto:  fmt.Sprintf("¿Está seguro de eliminar la solicitud con folio %s? Esta acción no se puede deshacer.", folio),
	}
	if confirmar == nil || !confirmar(ctx, pregunta) {
		logger.Debug("Eliminación cancelada")
		return false, nil
	}

	op := s.ops.iniciar(opAccion)
	defer s.ops.terminar(op)

	if err := s.backend.Delete(ctx, s.tokens.Token(), rutaSolicitud(id), nil); err != nil {
		logger.Warn("❌ No se pudo eliminar la solicitud", zap.Error(err))
		notificarFalla(s.notifier, err)
		return false, fmt.Errorf("error eliminando solicitud %s: %w", id, err)
	}

	s.mu.Lock()
	filtradas := s.datos[:0:0]
	for _, sol := range s.datos {
		if sol.ID != id {
			filtradas = append(filtradas, sol)
		}
	}
	s.datos = filtradas
	s.mu.Unlock()

	logger.Info("✅ Solicitud eliminada", zap.String("folio", folio))
	s.notifier.Notificar(models.Notificacion{
		Tipo:   models.NotificacionExito,
		Titulo: "¡Solicitud eliminada!",
		Texto:  fmt.Sprintf("La solicitud con folio %s ha sido eliminada exitosamente", folio),
	})
	return true, nil
}

// CambiarStatus PUT /solicitudes/:id/status; el comentario vacío no se envía
func (s *solicitudStore) CambiarStatus(ctx context.Context, id models.ID, status models.Status, comentario string) (ResultadoStatus, error) {
	logger := s.logger.With(zap.String("operation", "cambiar_status"), zap.String("id", id.String()))

	if !s.actor.Rol.EsAdmin() {
		s.notifier.Notificar(models.Notificacion{
			Tipo:   models.NotificacionError,
			Titulo: "Acción no permitida",
			Texto:  "Solo un administrador puede cambiar el status de una solicitud",
		})
		return ResultadoStatus{}, ErrSinPermiso
	}
	if !s.pipeline.Contiene(status) {
		return ResultadoStatus{}, fmt.Errorf("%w: %q", ErrStatusInvalido, status.String())
	}

	payload := models.CambiarStatusRequest{Status: status}
	if recortado := strings.TrimSpace(comentario); recortado != "" {
		payload.ComentarioAdmin = &recortado
	}

	op := s.ops.iniciar(opAccion)
	defer s.ops.terminar(op)

	var resp models.SolicitudResponse
	if err := s.backend.Put(ctx, s.tokens.Token(), rutaSolicitud(id)+"/status", payload, &resp); err != nil {
		logger.Warn("❌ No se pudo cambiar el status", zap.Error(err))
		notificarFalla(s.notifier, err)
		return ResultadoStatus{}, fmt.Errorf("error cambiando status de %s: %w", id, err)
	}

	actualizada := resp.Solicitud.Normalizar()
	s.reemplazar(actualizada)

	logger.Info("✅ Status actualizado",
		zap.String("folio", actualizada.Folio),
		zap.String("status", actualizada.Status.String()))
	s.notifier.Notificar(models.Notificacion{
		Tipo:   models.NotificacionExito,
		Titulo: "¡Status actualizado!",
		Texto:  fmt.Sprintf("El status de la solicitud %s se actualizó a %s", actualizada.Folio, actualizada.Status.String()),
	})
	return ResultadoStatus{Exito: true, Solicitud: &actualizada}, nil
}
