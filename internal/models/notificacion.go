package models

import "time"

// TipoNotificacion icono con el que se muestra el aviso
type TipoNotificacion string

const (
	NotificacionExito       TipoNotificacion = "success"
	NotificacionError       TipoNotificacion = "error"
	NotificacionAdvertencia TipoNotificacion = "warning"
	NotificacionInfo        TipoNotificacion = "info"
)

// Notificacion aviso bloqueante o temporal para el usuario
type Notificacion struct {
	ID        string           `json:"id"`
	Tipo      TipoNotificacion `json:"tipo"`
	Titulo    string           `json:"titulo"`
	Texto     string           `json:"texto"`
	Timestamp time.Time        `json:"timestamp"`
}
