package models

import "strings"

// Prioridad urgencia declarada por el solicitante
type Prioridad string

const (
	PrioridadMuyAlto  Prioridad = "muy alto"
	PrioridadAlto     Prioridad = "alto"
	PrioridadModerado Prioridad = "moderado"
)

// ParsePrioridad cualquier valor desconocido o vacío queda como moderado
func ParsePrioridad(valor string) Prioridad {
	switch Prioridad(strings.ToLower(strings.TrimSpace(valor))) {
	case PrioridadMuyAlto:
		return PrioridadMuyAlto
	case PrioridadAlto:
		return PrioridadAlto
	}
	return PrioridadModerado
}

func (p Prioridad) Etiqueta() string {
	switch p {
	case PrioridadMuyAlto:
		return "Muy Alto"
	case PrioridadAlto:
		return "Alto"
	}
	return "Moderado"
}

// Rol nivel de acceso del usuario autenticado
type Rol string

const (
	RolUser       Rol = "user"
	RolAdmin      Rol = "admin"
	RolSuperAdmin Rol = "superadmin"
)

// EsAdmin admin y superadmin gestionan el status de las solicitudes
func (r Rol) EsAdmin() bool {
	return r == RolAdmin || r == RolSuperAdmin
}

// Usuario actor autenticado según /usuarios/perfil
type Usuario struct {
	ID           ID     `json:"id"`
	User         string `json:"user"`
	Rol          Rol    `json:"rol"`
	Area         string `json:"area"`
	ColorPerfil  string `json:"colorPerfil,omitempty"`
	ImagenPerfil string `json:"imagenPerfil,omitempty"`
	Confirmado   bool   `json:"confirmado"`
}

// ColorPerfilRequest DTO para actualizar el color del avatar
type ColorPerfilRequest struct {
	ColorPerfil string `json:"colorPerfil" validate:"required,hexcolor"`
}
