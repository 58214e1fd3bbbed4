package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status estado de una solicitud dentro del flujo de surtido
type Status uint8

const (
	// El valor cero no es un estado válido
	statusInvalido Status = iota
	StatusPendienteSurtido
	StatusEnProceso
	StatusPendienteAutorizacion
	StatusAutorizada
	StatusRechazada
	StatusEntregaParcial
	StatusSurtido
)

var todosLosStatus = []Status{
	StatusPendienteSurtido,
	StatusEnProceso,
	StatusPendienteAutorizacion,
	StatusAutorizada,
	StatusRechazada,
	StatusEntregaParcial,
	StatusSurtido,
}

// ParseStatus convierte el texto del backend en un Status.
// Ignora mayúsculas, espacios repetidos y acentos en "autorización".
func ParseStatus(valor string) (Status, error) {
	normalizado := strings.Join(strings.Fields(strings.ToLower(valor)), " ")
	normalizado = strings.ReplaceAll(normalizado, "ó", "o")

	for _, s := range todosLosStatus {
		if s.String() == normalizado {
			return s, nil
		}
	}
	return statusInvalido, fmt.Errorf("status desconocido: %q", valor)
}

// String valor canónico que se envía al backend
func (s Status) String() string {
	switch s {
	case StatusPendienteSurtido:
		return "pendiente surtido"
	case StatusEnProceso:
		return "en proceso"
	case StatusPendienteAutorizacion:
		return "pendiente autorizacion"
	case StatusAutorizada:
		return "autorizada"
	case StatusRechazada:
		return "rechazada"
	case StatusEntregaParcial:
		return "entrega parcial"
	case StatusSurtido:
		return "surtido"
	case statusInvalido:
		return ""
	}
	return ""
}

// Valido indica si el status pertenece al conjunto cerrado
func (s Status) Valido() bool {
	return s != statusInvalido && s <= StatusSurtido
}

// Etiqueta texto para mostrar en la interfaz
func (s Status) Etiqueta() string {
	switch s {
	case StatusPendienteSurtido:
		return "Pendiente Surtido"
	case StatusEnProceso:
		return "En Proceso"
	case StatusPendienteAutorizacion:
		return "Pendiente Autorización"
	case StatusAutorizada:
		return "Autorizada"
	case StatusRechazada:
		return "Rechazada"
	case StatusEntregaParcial:
		return "Entrega Parcial"
	case StatusSurtido:
		return "Surtido"
	case statusInvalido:
		return "Desconocido"
	}
	return "Desconocido"
}

// Color nombre del color del badge en la tabla
func (s Status) Color() string {
	switch s {
	case StatusPendienteSurtido, StatusPendienteAutorizacion:
		return "yellow"
	case StatusEnProceso:
		return "blue"
	case StatusAutorizada:
		return "purple"
	case StatusRechazada:
		return "red"
	case StatusEntregaParcial:
		return "orange"
	case StatusSurtido:
		return "green"
	case statusInvalido:
		return "gray"
	}
	return "gray"
}

// Terminal indica si el flujo ya no avanza desde este estado
func (s Status) Terminal() bool {
	switch s {
	case StatusRechazada, StatusSurtido:
		return true
	case StatusPendienteSurtido, StatusEnProceso, StatusPendienteAutorizacion,
		StatusAutorizada, StatusEntregaParcial, statusInvalido:
		return false
	}
	return false
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valido() {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var texto *string
	if err := json.Unmarshal(data, &texto); err != nil {
		return err
	}
	if texto == nil || strings.TrimSpace(*texto) == "" {
		*s = statusInvalido
		return nil
	}
	parsed, err := ParseStatus(*texto)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Pipeline conjunto ordenado de estados que maneja un despliegue
type Pipeline struct {
	Nombre  string   `json:"nombre"`
	Inicial Status   `json:"inicial"`
	Estados []Status `json:"estados"`
}

const (
	PipelineNombreSurtido      = "surtido"
	PipelineNombreAutorizacion = "autorizacion"
)

// PipelineSurtido flujo vigente
func PipelineSurtido() Pipeline {
	return Pipeline{
		Nombre:  PipelineNombreSurtido,
		Inicial: StatusPendienteSurtido,
		Estados: []Status{
			StatusPendienteSurtido,
			StatusEnProceso,
			StatusRechazada,
			StatusEntregaParcial,
			StatusSurtido,
		},
	}
}

// PipelineAutorizacion flujo anterior con paso de autorización
func PipelineAutorizacion() Pipeline {
	return Pipeline{
		Nombre:  PipelineNombreAutorizacion,
		Inicial: StatusPendienteAutorizacion,
		Estados: []Status{
			StatusPendienteAutorizacion,
			StatusAutorizada,
			StatusRechazada,
			StatusEntregaParcial,
			StatusSurtido,
		},
	}
}

// ParsePipeline obtiene el pipeline por nombre de configuración
func ParsePipeline(nombre string) (Pipeline, error) {
	switch strings.ToLower(strings.TrimSpace(nombre)) {
	case "", PipelineNombreSurtido:
		return PipelineSurtido(), nil
	case PipelineNombreAutorizacion:
		return PipelineAutorizacion(), nil
	}
	return Pipeline{}, fmt.Errorf("pipeline de status desconocido: %q", nombre)
}

// Contiene indica si el status es una opción válida del pipeline
func (p Pipeline) Contiene(s Status) bool {
	for _, e := range p.Estados {
		if e == s {
			return true
		}
	}
	return false
}

// PuedeEditarEliminar una solicitud solo se modifica en el estado inicial
func (p Pipeline) PuedeEditarEliminar(s Solicitud) bool {
	return s.Status == p.Inicial
}

// Opciones estados disponibles para el selector del detalle
func (p Pipeline) Opciones() []OpcionStatus {
	opciones := make([]OpcionStatus, 0, len(p.Estados))
	for _, e := range p.Estados {
		opciones = append(opciones, OpcionStatus{Valor: e, Etiqueta: e.Etiqueta()})
	}
	return opciones
}

// OpcionStatus elemento del selector de status
type OpcionStatus struct {
	Valor    Status `json:"valor"`
	Etiqueta string `json:"etiqueta"`
}
