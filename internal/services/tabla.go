package services

import (
	"fmt"
	"time"

	"suministros-dashboard/internal/models"
)

const entradasPorDefecto = 10

var mesesES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var formatosFecha = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseFechaHora interpreta las fechas del backend; sin zona se toma hora local
func ParseFechaHora(valor string) (time.Time, bool) {
	for _, formato := range formatosFecha {
		if t, err := time.ParseInLocation(formato, valor, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatearFechaHora "15 de enero de 2026" y "14:05"; "-" si no se reconoce
func FormatearFechaHora(valor string) (string, string) {
	t, ok := ParseFechaHora(valor)
	if !ok {
		return "-", "-"
	}
	fecha := fmt.Sprintf("%02d de %s de %d", t.Day(), mesesES[t.Month()-1], t.Year())
	return fecha, t.Format("15:04")
}

// AccionesPara lápiz y bote si se puede editar; candado si no
func AccionesPara(sol models.Solicitud, pipeline models.Pipeline) models.AccionesFila {
	if pipeline.PuedeEditarEliminar(sol) {
		return models.AccionesFila{Editable: true, IconoEditar: "pencil", IconoEliminar: "trash"}
	}
	return models.AccionesFila{Editable: false, IconoEditar: "lock", IconoEliminar: "lock"}
}

// ContarPorEstado opciones del filtro: "Todos" y luego cada estado del pipeline
func ContarPorEstado(datos []models.Solicitud, pipeline models.Pipeline) []models.ConteoFiltro {
	conteo := make(map[models.Status]int)
	for _, s := range datos {
		conteo[s.Status]++
	}
	filtros := []models.ConteoFiltro{{Valor: "Todos", Etiqueta: "Todos", Cantidad: len(datos)}}
	for _, estado := range pipeline.Estados {
		filtros = append(filtros, models.ConteoFiltro{
			Valor:    estado.String(),
			Etiqueta: estado.Etiqueta(),
			Cantidad: conteo[estado],
		})
	}
	return filtros
}

// ConstruirTabla aplica filtro de estado, búsqueda y paginación (páginas desde 1).
// Un filtro sin status válido equivale a "Todos".
func ConstruirTabla(datos []models.Solicitud, filtro models.Status, busqueda string, pagina, entradas int, pipeline models.Pipeline) models.TablaSolicitudes {
	if entradas != 5 && entradas != 10 && entradas != 15 {
		entradas = entradasPorDefecto
	}

	var filtradas []models.Solicitud
	for _, s := range datos {
		if filtro.Valido() && s.Status != filtro {
			continue
		}
		if !s.Coincide(busqueda) {
			continue
		}
		filtradas = append(filtradas, s)
	}

	totalPaginas := (len(filtradas) + entradas - 1) / entradas
	if totalPaginas < 1 {
		totalPaginas = 1
	}
	if pagina < 1 {
		pagina = 1
	}
	if pagina > totalPaginas {
		pagina = totalPaginas
	}

	inicio := (pagina - 1) * entradas
	fin := inicio + entradas
	if fin > len(filtradas) {
		fin = len(filtradas)
	}

	filas := make([]models.FilaSolicitud, 0, fin-inicio)
	for _, s := range filtradas[inicio:fin] {
		fecha, hora := FormatearFechaHora(s.FechaHora)
		filas = append(filas, models.FilaSolicitud{
			Solicitud:         s,
			Fecha:             fecha,
			Hora:              hora,
			StatusEtiqueta:    s.Status.Etiqueta(),
			StatusColor:       s.Status.Color(),
			PrioridadEtiqueta: s.Prioridad.Etiqueta(),
			Acciones:          AccionesPara(s, pipeline),
		})
	}

	return models.TablaSolicitudes{
		Filas:        filas,
		Total:        len(filtradas),
		Pagina:       pagina,
		TotalPaginas: totalPaginas,
		Entradas:     entradas,
		Filtros:      ContarPorEstado(datos, pipeline),
	}
}
