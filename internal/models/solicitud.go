package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID identificador opaco asignado por el backend (texto o número)
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id inválido: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Suministro renglón de una solicitud
type Suministro struct {
	ID       ID     `json:"id,omitempty"`
	Nombre   string `json:"nombre" validate:"required"`
	Cantidad int    `json:"cantidad" validate:"gt=0"`
	Unidad   string `json:"unidad" validate:"required"`
}

// Solicitud requisición de suministros ya normalizada para la tabla
type Solicitud struct {
	ID              ID           `json:"id"`
	Folio           string       `json:"folio"`
	Area            string       `json:"area"`
	FechaHora       string       `json:"fechaHora"`
	Solicitante     string       `json:"solicitante"`
	Prioridad       Prioridad    `json:"prioridad"`
	Status          Status       `json:"status"`
	ComentarioUser  string       `json:"comentarioUser"`
	ComentarioAdmin string       `json:"comentarioAdmin"`
	Suministros     []Suministro `json:"suministros"`
}

// SolicitudRow forma en que el backend entrega una solicitud
type SolicitudRow struct {
	ID              ID           `json:"id"`
	Folio           string       `json:"folio"`
	Area            string       `json:"area"`
	FechaHora       string       `json:"fechaHora"`
	CreatedAt       string       `json:"createdAt"`
	Prioridad       string       `json:"prioridad"`
	Status          Status       `json:"status"`
	ComentarioUser  *string      `json:"comentarioUser"`
	ComentarioAdmin *string      `json:"comentarioAdmin"`
	Usuario         *UsuarioRef  `json:"usuario"`
	Suministros     []Suministro `json:"suministros"`
}

// UsuarioRef referencia al solicitante incluida en la fila
type UsuarioRef struct {
	ID   ID     `json:"id"`
	User string `json:"user"`
	Area string `json:"area"`
}

// Normalizar aplica las reglas de presentación sobre la fila del backend.
// fechaHora cae a createdAt y el solicitante sale del usuario anidado.
func (r SolicitudRow) Normalizar() Solicitud {
	s := Solicitud{
		ID:          r.ID,
		Folio:       r.Folio,
		Area:        r.Area,
		FechaHora:   r.FechaHora,
		Prioridad:   ParsePrioridad(r.Prioridad),
		Status:      r.Status,
		Suministros: make([]Suministro, len(r.Suministros)),
	}
	copy(s.Suministros, r.Suministros)

	if s.FechaHora == "" {
		s.FechaHora = r.CreatedAt
	}
	if r.Usuario != nil {
		s.Solicitante = r.Usuario.User
		if s.Area == "" {
			s.Area = r.Usuario.Area
		}
	}
	if r.ComentarioUser != nil {
		s.ComentarioUser = *r.ComentarioUser
	}
	if r.ComentarioAdmin != nil {
		s.ComentarioAdmin = *r.ComentarioAdmin
	}
	return s
}

// Clonar copia profunda para entregar fuera de un store
func (s Solicitud) Clonar() Solicitud {
	c := s
	c.Suministros = make([]Suministro, len(s.Suministros))
	copy(c.Suministros, s.Suministros)
	return c
}

// Coincide búsqueda libre sobre folio, área, solicitante y status
func (s Solicitud) Coincide(termino string) bool {
	termino = strings.ToLower(strings.TrimSpace(termino))
	if termino == "" {
		return true
	}
	campos := []string{s.Folio, s.Area, s.Solicitante, s.Status.String()}
	for _, campo := range campos {
		if strings.Contains(strings.ToLower(campo), termino) {
			return true
		}
	}
	return false
}

// ===== Respuestas del backend =====

type SolicitudesResponse struct {
	Solicitudes []SolicitudRow `json:"solicitudes"`
}

type SolicitudResponse struct {
	Solicitud SolicitudRow `json:"solicitud"`
}
