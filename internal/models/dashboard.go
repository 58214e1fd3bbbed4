package models

import "github.com/shopspring/decimal"

// DashboardData respuesta de GET /dashboard/usuario
type DashboardData struct {
	EstadoSolicitudes       []ConteoStatus       `json:"estadoSolicitudes"`
	SolicitudesPorMes       []SolicitudMes       `json:"solicitudesPorMes"`
	SolicitudesPorPrioridad []ConteoPrioridad    `json:"solicitudesPorPrioridad"`
	ProductosMasSolicitados []ProductoSolicitado `json:"productosMasSolicitados"`
	Metricas                MetricasDashboard    `json:"metricas"`
}

type ConteoStatus struct {
	Status   string `json:"status"`
	Cantidad int    `json:"cantidad"`
}

type ConteoPrioridad struct {
	Prioridad string `json:"prioridad"`
	Cantidad  int    `json:"cantidad"`
}

// SolicitudMes fechaHora llega como "dd/mm/yyyy HH:mm"
type SolicitudMes struct {
	FechaHora string `json:"fechaHora"`
}

type ProductoSolicitado struct {
	Nombre          string `json:"nombre"`
	TotalSolicitado int    `json:"totalSolicitado"`
	VecesSolicitado int    `json:"vecesSolicitado"`
}

type MetricasDashboard struct {
	TotalSolicitudes      int             `json:"totalSolicitudes"`
	SolicitudesPendientes int             `json:"solicitudesPendientes"`
	SolicitudesDelMes     int             `json:"solicitudesDelMes"`
	TasaAprobacion        decimal.Decimal `json:"tasaAprobacion"`
}

// ConteoMes total de solicitudes por año-mes
type ConteoMes struct {
	Mes      string `json:"mes"`
	Cantidad int    `json:"cantidad"`
}

// ResumenSolicitudes agregados calculados sobre la colección en memoria
type ResumenSolicitudes struct {
	EstadoSolicitudes       []ConteoStatus       `json:"estadoSolicitudes"`
	SolicitudesPorMes       []ConteoMes          `json:"solicitudesPorMes"`
	SolicitudesPorPrioridad []ConteoPrioridad    `json:"solicitudesPorPrioridad"`
	ProductosMasSolicitados []ProductoSolicitado `json:"productosMasSolicitados"`
	Metricas                MetricasDashboard    `json:"metricas"`
}
