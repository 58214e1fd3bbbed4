package services

import (
	"errors"
	"fmt"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/notify"
)

var (
	// ErrNoEditable la solicitud ya salió del estado inicial
	ErrNoEditable = errors.New("la solicitud ya no puede ser modificada")
	// ErrSinConfirmar la eliminación requiere confirmación explícita
	ErrSinConfirmar = errors.New("eliminación sin confirmar")
	// ErrSinPermiso el rol del usuario no permite la operación
	ErrSinPermiso = errors.New("operación no permitida para el rol")
	// ErrStatusInvalido el status no pertenece al pipeline activo
	ErrStatusInvalido = errors.New("status no válido para el flujo configurado")
)

// ValidacionError el formulario tiene errores por campo
type ValidacionError struct {
	Errores map[string]string
}

func (e *ValidacionError) Error() string {
	return fmt.Sprintf("formulario con %d errores", len(e.Errores))
}

const (
	textoSinToken    = "No hay token de autenticación"
	textoSinConexion = "verifique su conexión a internet"
	textoInesperado  = "Ocurrió un error inesperado"
)

// NotificacionDeFalla traduce una falla a la notificación que ve el usuario
func NotificacionDeFalla(err error) models.Notificacion {
	switch client.Clasificar(err) {
	case client.CategoriaSinToken:
		return models.Notificacion{Tipo: models.NotificacionError, Titulo: "Error de autenticación", Texto: textoSinToken}
	case client.CategoriaServidor:
		texto, ok := client.MensajeServidor(err)
		if !ok {
			texto = "El servidor respondió con un error"
		}
		return models.Notificacion{Tipo: models.NotificacionError, Titulo: "Error de conexión", Texto: texto}
	case client.CategoriaConexion:
		return models.Notificacion{Tipo: models.NotificacionError, Titulo: "Error de conexión", Texto: textoSinConexion}
	case client.CategoriaInesperada:
		return models.Notificacion{Tipo: models.NotificacionError, Titulo: "Error", Texto: textoInesperado}
	}
	return models.Notificacion{Tipo: models.NotificacionError, Titulo: "Error", Texto: textoInesperado}
}

func notificarFalla(n notify.Notifier, err error) {
	n.Notificar(NotificacionDeFalla(err))
}

func notificarNoEditable(n notify.Notifier, accion string) {
	n.Notificar(models.Notificacion{
		Tipo:   models.NotificacionAdvertencia,
		Titulo: "No se puede " + accion,
		Texto:  "Esta solicitud ya no puede ser modificada porque su estado ha cambiado.",
	})
}
