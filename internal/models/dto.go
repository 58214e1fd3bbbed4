package models

// ===== REQUEST DTOs =====

// TablaQuery parámetros de la tabla de solicitudes
type TablaQuery struct {
	Busqueda string `form:"q"`
	Estado   string `form:"estado"`
	Pagina   int    `form:"pagina" validate:"gte=0"`
	Entradas int    `form:"entradas" validate:"omitempty,oneof=5 10 15"`
}

// CambiarStatusBody cambio directo de status desde la tabla de administración
type CambiarStatusBody struct {
	Status          string `json:"status" validate:"required"`
	ComentarioAdmin string `json:"comentarioAdmin"`
}

// AbrirFormularioBody datos opcionales para precargar el formulario
type AbrirFormularioBody struct {
	Formulario *Formulario `json:"formulario"`
}

// CampoFormularioBody cambio de prioridad o comentario
type CampoFormularioBody struct {
	Campo string `json:"campo" validate:"required,oneof=prioridad comentario"`
	Valor string `json:"valor"`
}

// CampoProductoBody cambio de un campo de un renglón
type CampoProductoBody struct {
	Campo string `json:"campo" validate:"required,oneof=producto cantidad unidad"`
	Valor string `json:"valor"`
}

// BorradorDetalleBody cambios del administrador en el detalle
type BorradorDetalleBody struct {
	Status          *string `json:"status"`
	ComentarioAdmin *string `json:"comentarioAdmin"`
}

// EntregaParcialBody cambios sobre un renglón del checklist
type EntregaParcialBody struct {
	Marcado  *bool   `json:"marcado"`
	Cantidad *int    `json:"cantidad" validate:"omitempty,gte=0"`
	Unidad   *string `json:"unidad"`
}

// ===== RESPONSE DTOs =====

// APIResponse envoltura común de las respuestas del BFF
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AccionesFila iconos de editar/eliminar de cada fila
type AccionesFila struct {
	Editable      bool   `json:"editable"`
	IconoEditar   string `json:"iconoEditar"`
	IconoEliminar string `json:"iconoEliminar"`
}

// FilaSolicitud solicitud lista para pintar en la tabla
type FilaSolicitud struct {
	Solicitud
	Fecha             string       `json:"fecha"`
	Hora              string       `json:"hora"`
	StatusEtiqueta    string       `json:"statusEtiqueta"`
	StatusColor       string       `json:"statusColor"`
	PrioridadEtiqueta string       `json:"prioridadEtiqueta"`
	Acciones          AccionesFila `json:"acciones"`
}

// ConteoFiltro opción del filtro de estado con su total
type ConteoFiltro struct {
	Valor    string `json:"valor"`
	Etiqueta string `json:"etiqueta"`
	Cantidad int    `json:"cantidad"`
}

// TablaSolicitudes página de la tabla con filtros aplicados
type TablaSolicitudes struct {
	Filas        []FilaSolicitud `json:"filas"`
	Total        int             `json:"total"`
	Pagina       int             `json:"pagina"`
	TotalPaginas int             `json:"totalPaginas"`
	Entradas     int             `json:"entradas"`
	Filtros      []ConteoFiltro  `json:"filtros"`
	Cargando     bool            `json:"cargando"`
}

// BotonCerrar estado del botón inferior del detalle
type BotonCerrar struct {
	Texto         string `json:"texto"`
	Deshabilitado bool   `json:"deshabilitado"`
}

// HistorialEntrega entregas parciales registradas para un renglón
type HistorialEntrega struct {
	Nombre     string              `json:"nombre"`
	Solicitada int                 `json:"solicitada"`
	Entregada  int                 `json:"entregada"`
	Registros  []SuministroParcial `json:"registros"`
}

// DetalleVista modelo de render del modal de detalle
type DetalleVista struct {
	Estado           string             `json:"estado"`
	Solicitud        *Solicitud         `json:"solicitud"`
	Snapshot         SnapshotDetalle    `json:"snapshot"`
	Borrador         BorradorDetalle    `json:"borrador"`
	HayCambios       bool               `json:"hayCambios"`
	PuedeGestionar   bool               `json:"puedeGestionar"`
	ChecklistVisible bool               `json:"checklistVisible"`
	Opciones         []OpcionStatus     `json:"opciones"`
	Historial        []HistorialEntrega `json:"historial"`
	Boton            BotonCerrar        `json:"boton"`
}

// FormularioVista estado del modal de nueva solicitud / edición
type FormularioVista struct {
	Abierto    bool              `json:"abierto"`
	Modo       ModoFormulario    `json:"modo"`
	EditandoID ID                `json:"editandoId,omitempty"`
	Formulario Formulario        `json:"formulario"`
	Errores    map[string]string `json:"errores"`
	Guardando  bool              `json:"guardando"`
}
