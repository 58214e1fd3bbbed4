package models

import "strings"

// SuministroParcial registro de una entrega parcial de un renglón
type SuministroParcial struct {
	ID           ID     `json:"id"`
	SolicitudID  ID     `json:"solicitudId"`
	SuministroID ID     `json:"suministroId,omitempty"`
	Nombre       string `json:"nombre"`
	Cantidad     int    `json:"cantidad"`
	Unidad       string `json:"unidad"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// Corresponde relaciona el registro con un renglón de la solicitud.
// Con ambos ids presentes manda el id; las filas viejas se comparan por nombre.
func (p SuministroParcial) Corresponde(s Suministro) bool {
	if p.SuministroID != "" && s.ID != "" {
		return p.SuministroID == s.ID
	}
	return strings.EqualFold(strings.TrimSpace(p.Nombre), strings.TrimSpace(s.Nombre))
}

// SuministroParcialPayload renglón enviado en el lote de entrega parcial
type SuministroParcialPayload struct {
	SuministroID ID     `json:"suministroId,omitempty"`
	Nombre       string `json:"nombre" validate:"required"`
	Cantidad     int    `json:"cantidad" validate:"gt=0"`
	Unidad       string `json:"unidad" validate:"required"`
}

type SuministrosParcialesRequest struct {
	SuministrosParciales []SuministroParcialPayload `json:"suministrosParciales" validate:"required,min=1,dive"`
}

type SuministrosParcialesResponse struct {
	SuministrosParciales []SuministroParcial `json:"suministrosParciales"`
}
