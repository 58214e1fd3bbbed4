package models

import "strings"

// SnapshotDetalle valores del servidor capturados al abrir el detalle
type SnapshotDetalle struct {
	Status          Status `json:"status"`
	ComentarioAdmin string `json:"comentarioAdmin"`
}

// EntregaParcial renglón del checklist de entrega parcial
type EntregaParcial struct {
	SuministroID ID     `json:"suministroId,omitempty"`
	Nombre       string `json:"nombre"`
	Solicitada   int    `json:"solicitada"`
	UnidadBase   string `json:"unidadBase"`
	Marcado      bool   `json:"marcado"`
	Cantidad     int    `json:"cantidad"`
	Unidad       string `json:"unidad"`
}

// BorradorDetalle cambios del administrador aún sin guardar
type BorradorDetalle struct {
	Status          Status           `json:"status"`
	ComentarioAdmin string           `json:"comentarioAdmin"`
	Entregas        []EntregaParcial `json:"entregas"`
}

// HayCambiosPendientes compara el borrador contra el snapshot.
// El comentario del borrador se compara recortado.
func HayCambiosPendientes(snapshot SnapshotDetalle, borrador BorradorDetalle) bool {
	if snapshot.Status != borrador.Status {
		return true
	}
	return snapshot.ComentarioAdmin != strings.TrimSpace(borrador.ComentarioAdmin)
}

// EntregasIniciales checklist sin marcar con la cantidad y unidad solicitadas
func EntregasIniciales(suministros []Suministro) []EntregaParcial {
	entregas := make([]EntregaParcial, 0, len(suministros))
	for _, s := range suministros {
		entregas = append(entregas, EntregaParcial{
			SuministroID: s.ID,
			Nombre:       s.Nombre,
			Solicitada:   s.Cantidad,
			UnidadBase:   s.Unidad,
			Cantidad:     s.Cantidad,
			Unidad:       s.Unidad,
		})
	}
	return entregas
}

// EntregasSeleccionadas solo los renglones marcados con cantidad positiva
func EntregasSeleccionadas(entregas []EntregaParcial) []SuministroParcialPayload {
	var lote []SuministroParcialPayload
	for _, e := range entregas {
		if !e.Marcado || e.Cantidad <= 0 {
			continue
		}
		unidad := e.Unidad
		if strings.TrimSpace(unidad) == "" {
			unidad = e.UnidadBase
		}
		lote = append(lote, SuministroParcialPayload{
			SuministroID: e.SuministroID,
			Nombre:       e.Nombre,
			Cantidad:     e.Cantidad,
			Unidad:       unidad,
		})
	}
	return lote
}
