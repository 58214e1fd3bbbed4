package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ModoFormulario indica si el modal crea o edita
type ModoFormulario string

const (
	ModoCrear  ModoFormulario = "crear"
	ModoEditar ModoFormulario = "editar"
)

// ProductoFormulario renglón editable; la cantidad se captura como texto
type ProductoFormulario struct {
	SuministroID ID     `json:"suministroId,omitempty"`
	Producto     string `json:"producto"`
	Cantidad     string `json:"cantidad"`
	Unidad       string `json:"unidad"`
}

// Formulario borrador de una solicitud
type Formulario struct {
	Prioridad  Prioridad            `json:"prioridad"`
	Comentario string               `json:"comentario"`
	Productos  []ProductoFormulario `json:"productos"`
}

var ErrCantidadInvalida = errors.New("cantidad inválida")

// FormularioInicial borrador vacío con un renglón en blanco
func FormularioInicial() Formulario {
	return Formulario{
		Prioridad: PrioridadModerado,
		Productos: []ProductoFormulario{{}},
	}
}

// FormularioDesdeSolicitud arma el borrador de edición.
// Una solicitud sin renglones produce un renglón vacío.
func FormularioDesdeSolicitud(s Solicitud) Formulario {
	f := Formulario{
		Prioridad:  ParsePrioridad(string(s.Prioridad)),
		Comentario: s.ComentarioUser,
	}
	for _, sum := range s.Suministros {
		f.Productos = append(f.Productos, ProductoFormulario{
			SuministroID: sum.ID,
			Producto:     sum.Nombre,
			Cantidad:     strconv.Itoa(sum.Cantidad),
			Unidad:       sum.Unidad,
		})
	}
	if len(f.Productos) == 0 {
		f.Productos = []ProductoFormulario{{}}
	}
	return f
}

// Clonar copia el borrador para que nadie comparta el slice de productos
func (f Formulario) Clonar() Formulario {
	c := f
	c.Productos = make([]ProductoFormulario, len(f.Productos))
	copy(c.Productos, f.Productos)
	return c
}

// ParseCantidad convierte el texto capturado a entero truncando decimales
func ParseCantidad(valor string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(valor), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrCantidadInvalida
	}
	if v > math.MaxInt32 {
		return 0, ErrCantidadInvalida
	}
	return int(math.Trunc(v)), nil
}

// Payload cuerpo que espera POST/PUT /solicitudes. Requiere un borrador validado.
func (f Formulario) Payload() (CrearSolicitudRequest, error) {
	req := CrearSolicitudRequest{
		Prioridad:      ParsePrioridad(string(f.Prioridad)),
		ComentarioUser: strings.TrimSpace(f.Comentario),
		Suministros:    make([]Suministro, 0, len(f.Productos)),
	}
	for _, p := range f.Productos {
		cantidad, err := ParseCantidad(p.Cantidad)
		if err != nil || cantidad <= 0 {
			return CrearSolicitudRequest{}, ErrCantidadInvalida
		}
		req.Suministros = append(req.Suministros, Suministro{
			ID:       p.SuministroID,
			Nombre:   strings.TrimSpace(p.Producto),
			Cantidad: cantidad,
			Unidad:   strings.TrimSpace(p.Unidad),
		})
	}
	return req, nil
}

// CrearSolicitudRequest DTO de creación y actualización
type CrearSolicitudRequest struct {
	Prioridad      Prioridad    `json:"prioridad" validate:"required,oneof='muy alto' alto moderado"`
	ComentarioUser string       `json:"comentarioUser"`
	Suministros    []Suministro `json:"suministros" validate:"required,min=1,dive"`
}

// CambiarStatusRequest DTO de PUT /solicitudes/:id/status
type CambiarStatusRequest struct {
	Status          Status  `json:"status"`
	ComentarioAdmin *string `json:"comentarioAdmin,omitempty"`
}
