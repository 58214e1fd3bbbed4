package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/notify"

	"go.uber.org/zap"
)

// EstadoDetalle fase del modal de detalle
type EstadoDetalle string

const (
	DetalleCerrado   EstadoDetalle = "cerrado"
	DetalleCargando  EstadoDetalle = "cargando"
	DetalleAbierto   EstadoDetalle = "abierto"
	DetalleGuardando EstadoDetalle = "guardando"
)

var (
	ErrDetalleNoAbierto      = errors.New("no hay una solicitud abierta en el detalle")
	ErrGuardandoEnCurso      = errors.New("se están guardando los cambios")
	ErrChecklistNoDisponible = errors.New("el checklist solo aplica a entrega parcial")
	ErrCantidadFueraDeRango  = errors.New("la cantidad entregada debe estar entre 0 y la solicitada")
)

// CambioEntrega cambios sobre un renglón del checklist; nil no modifica
type CambioEntrega struct {
	Marcado  *bool
	Cantidad *int
	Unidad   *string
}

// ResultadoCierre qué pasó al intentar cerrar el detalle
type ResultadoCierre struct {
	Cerrado  bool `json:"cerrado"`
	Guardado bool `json:"guardado"`
}

// DetalleSolicitud máquina de estados del modal de detalle:
// cerrado -> cargando -> abierto <-> guardando -> cerrado
type DetalleSolicitud struct {
	solicitudes SolicitudStore
	parciales   SuministroParcialStore
	actor       models.Usuario
	notifier    notify.Notifier
	logger      *zap.Logger

	mu        sync.Mutex
	estado    EstadoDetalle
	version   uint64
	solicitud *models.Solicitud
	snapshot  models.SnapshotDetalle
	borrador  models.BorradorDetalle
}

func NewDetalleSolicitud(
	solicitudes SolicitudStore,
	parciales SuministroParcialStore,
	actor models.Usuario,
	notifier notify.Notifier,
	logger *zap.Logger,
) *DetalleSolicitud {
	return &DetalleSolicitud{
		solicitudes: solicitudes,
		parciales:   parciales,
		actor:       actor,
		notifier:    notifier,
		logger:      logger.With(zap.String("component", "detalle_solicitud")),
		estado:      DetalleCerrado,
	}
}

func (d *DetalleSolicitud) Estado() EstadoDetalle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.estado
}

// Abrir carga la solicitud, toma el snapshot y siembra borrador y checklist
func (d *DetalleSolicitud) Abrir(ctx context.Context, id models.ID) error {
	d.mu.Lock()
	if d.estado == DetalleGuardando {
		d.mu.Unlock()
		return ErrGuardandoEnCurso
	}
	d.version++
	version := d.version
	d.estado = DetalleCargando
	d.solicitud = nil
	d.mu.Unlock()

	sol, err := d.solicitudes.Obtener(ctx, id)

	d.mu.Lock()
	if d.version != version {
		// Otro Abrir o Cerrar llegó mientras se cargaba
		d.mu.Unlock()
		return err
	}
	if err != nil {
		d.reiniciarLocked()
		d.mu.Unlock()
		return err
	}

	status := sol.Status
	if !status.Valido() {
		status = d.solicitudes.Pipeline().Inicial
		sol.Status = status
	}
	d.solicitud = sol
	d.snapshot = models.SnapshotDetalle{Status: status, ComentarioAdmin: sol.ComentarioAdmin}
	d.borrador = models.BorradorDetalle{
		Status:          status,
		ComentarioAdmin: sol.ComentarioAdmin,
		Entregas:        models.EntregasIniciales(sol.Suministros),
	}
	d.estado = DetalleAbierto
	tieneRenglones := len(sol.Suministros) > 0
	d.mu.Unlock()

	if !tieneRenglones {
		d.parciales.Limpiar()
		return nil
	}
	if _, err := d.parciales.Obtener(ctx, id); err != nil {
		d.logger.Debug("Historial de entregas parciales no disponible", zap.Error(err))
	}
	return nil
}

func (d *DetalleSolicitud) editableLocked() error {
	switch d.estado {
	case DetalleGuardando:
		return ErrGuardandoEnCurso
	case DetalleAbierto:
	case DetalleCerrado, DetalleCargando:
		return ErrDetalleNoAbierto
	}
	if d.solicitud == nil {
		return ErrDetalleNoAbierto
	}
	if !d.actor.Rol.EsAdmin() {
		return ErrSinPermiso
	}
	return nil
}

// CambiarStatus status del borrador; cualquier estado del pipeline activo
func (d *DetalleSolicitud) CambiarStatus(status models.Status) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.editableLocked(); err != nil {
		return err
	}
	if !d.solicitudes.Pipeline().Contiene(status) {
		return fmt.Errorf("%w: %q", ErrStatusInvalido, status.String())
	}
	d.borrador.Status = status
	return nil
}

func (d *DetalleSolicitud) CambiarComentario(comentario string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.editableLocked(); err != nil {
		return err
	}
	d.borrador.ComentarioAdmin = comentario
	return nil
}

// ActualizarEntrega modifica un renglón del checklist de entrega parcial
func (d *DetalleSolicitud) ActualizarEntrega(indice int, cambio CambioEntrega) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.editableLocked(); err != nil {
		return err
	}
	if d.borrador.Status != models.StatusEntregaParcial {
		return ErrChecklistNoDisponible
	}
	if indice < 0 || indice >= len(d.borrador.Entregas) {
		return ErrIndiceInvalido
	}
	entrega := d.borrador.Entregas[indice]
	if cambio.Cantidad != nil {
		if *cambio.Cantidad < 0 || *cambio.Cantidad > entrega.Solicitada {
			return ErrCantidadFueraDeRango
		}
		entrega.Cantidad = *cambio.Cantidad
	}
	if cambio.Marcado != nil {
		entrega.Marcado = *cambio.Marcado
	}
	if cambio.Unidad != nil {
		entrega.Unidad = *cambio.Unidad
	}
	d.borrador.Entregas[indice] = entrega
	return nil
}

// HayCambios true si el borrador difiere del snapshot
func (d *DetalleSolicitud) HayCambios() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hayCambiosLocked()
}

func (d *DetalleSolicitud) hayCambiosLocked() bool {
	if d.solicitud == nil {
		return false
	}
	return models.HayCambiosPendientes(d.snapshot, d.borrador)
}

// Cerrar guarda antes de cerrar cuando un administrador dejó cambios.
// El lote parcial va primero; si falla no se toca el status y el detalle sigue abierto.
func (d *DetalleSolicitud) Cerrar(ctx context.Context) (ResultadoCierre, error) {
	d.mu.Lock()
	switch d.estado {
	case DetalleGuardando:
		d.mu.Unlock()
		return ResultadoCierre{}, ErrGuardandoEnCurso
	case DetalleCerrado, DetalleCargando:
		d.reiniciarLocked()
		d.mu.Unlock()
		return ResultadoCierre{Cerrado: true}, nil
	case DetalleAbierto:
	}

	if !d.actor.Rol.EsAdmin() || !d.hayCambiosLocked() {
		d.reiniciarLocked()
		d.mu.Unlock()
		return ResultadoCierre{Cerrado: true}, nil
	}

	d.estado = DetalleGuardando
	id := d.solicitud.ID
	borrador := d.borrador
	borrador.Entregas = append([]models.EntregaParcial(nil), d.borrador.Entregas...)
	d.mu.Unlock()

	logger := d.logger.With(zap.String("operation", "guardar_y_cerrar"), zap.String("id", id.String()))

	if borrador.Status == models.StatusEntregaParcial {
		if lote := models.EntregasSeleccionadas(borrador.Entregas); len(lote) > 0 {
			ok, err := d.parciales.Registrar(ctx, id, lote)
			if !ok {
				texto, hayMsg := client.MensajeServidor(err)
				if !hayMsg {
					texto = "Error al registrar entrega parcial"
				}
				d.notifier.Notificar(models.Notificacion{
					Tipo:   models.NotificacionError,
					Titulo: "Error",
					Texto:  texto,
				})
				logger.Warn("❌ Entrega parcial rechazada, no se cambia el status", zap.Error(err))
				d.volverAAbierto()
				if err == nil {
					err = errors.New("entrega parcial no registrada")
				}
				return ResultadoCierre{}, err
			}
		}
	}

	resultado, err := d.solicitudes.CambiarStatus(ctx, id, borrador.Status, borrador.ComentarioAdmin)
	if err != nil || !resultado.Exito {
		logger.Warn("❌ No se guardó el status, el detalle sigue abierto", zap.Error(err))
		d.volverAAbierto()
		if err == nil {
			err = errors.New("status no actualizado")
		}
		return ResultadoCierre{}, err
	}

	d.mu.Lock()
	d.reiniciarLocked()
	d.mu.Unlock()
	logger.Info("✅ Cambios guardados, detalle cerrado")
	return ResultadoCierre{Cerrado: true, Guardado: true}, nil
}

func (d *DetalleSolicitud) volverAAbierto() {
	d.mu.Lock()
	d.estado = DetalleAbierto
	d.mu.Unlock()
}

func (d *DetalleSolicitud) reiniciarLocked() {
	d.version++
	d.estado = DetalleCerrado
	d.solicitud = nil
	d.snapshot = models.SnapshotDetalle{}
	d.borrador = models.BorradorDetalle{}
	d.parciales.Limpiar()
}

// Vista modelo de render del detalle
func (d *DetalleSolicitud) Vista() models.DetalleVista {
	d.mu.Lock()
	defer d.mu.Unlock()

	esAdmin := d.actor.Rol.EsAdmin()
	vista := models.DetalleVista{
		Estado:         string(d.estado),
		Snapshot:       d.snapshot,
		Borrador:       d.borrador,
		HayCambios:     d.hayCambiosLocked(),
		PuedeGestionar: esAdmin && d.solicitud != nil,
	}
	vista.Borrador.Entregas = append([]models.EntregaParcial(nil), d.borrador.Entregas...)
	vista.ChecklistVisible = vista.PuedeGestionar && d.borrador.Status == models.StatusEntregaParcial
	if esAdmin {
		vista.Opciones = d.solicitudes.Pipeline().Opciones()
	}

	if d.solicitud != nil {
		sol := d.solicitud.Clonar()
		vista.Solicitud = &sol
		for _, sum := range sol.Suministros {
			registros := d.parciales.EntregasDe(sum)
			entregada := 0
			for _, r := range registros {
				entregada += r.Cantidad
			}
			vista.Historial = append(vista.Historial, models.HistorialEntrega{
				Nombre:     sum.Nombre,
				Solicitada: sum.Cantidad,
				Entregada:  entregada,
				Registros:  registros,
			})
		}
	}

	switch {
	case d.estado == DetalleGuardando:
		vista.Boton = models.BotonCerrar{Texto: "Guardando...", Deshabilitado: true}
	case esAdmin && vista.HayCambios:
		vista.Boton = models.BotonCerrar{Texto: "Guardar y Cerrar"}
	default:
		vista.Boton = models.BotonCerrar{Texto: "Cerrar"}
	}
	return vista
}
