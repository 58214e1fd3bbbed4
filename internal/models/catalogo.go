package models

// Producto artículo del catálogo que se puede solicitar
type Producto struct {
	ID          ID     `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	Unidad      string `json:"unidad,omitempty"`
	Activo      *bool  `json:"activo,omitempty"`
}

// UnidadMedida unidad disponible para los renglones
type UnidadMedida struct {
	ID          ID     `json:"id"`
	Nombre      string `json:"nombre"`
	Abreviatura string `json:"abreviatura,omitempty"`
}

type ProductosResponse struct {
	Productos []Producto `json:"productos"`
}

type UnidadesResponse struct {
	Unidades []UnidadMedida `json:"unidades"`
}
