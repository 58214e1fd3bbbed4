package models

import "time"

// MonitoringResponse métricas del BFF y de su backend remoto
type MonitoringResponse struct {
	Requests    RequestMetrics     `json:"requests"`
	Upstream    UpstreamMetrics    `json:"upstream"`
	Performance PerformanceMetrics `json:"performance"`
	Cache       CacheMetrics       `json:"cache"`
	Sesiones    SesionMetrics      `json:"sesiones"`
	System      SystemMetrics      `json:"system"`
	Redis       RedisMetrics       `json:"redis"`
	Timestamp   string             `json:"timestamp"`
	Version     string             `json:"version"`
}

// RequestMetrics requests recibidos por el BFF
type RequestMetrics struct {
	Endpoints         int                        `json:"endpoints"`
	ByEndpoint        map[string]EndpointMetrics `json:"byEndpoint"`
	SlowRequests      []SlowRequest              `json:"slowRequests"`
	Errors            []RequestError             `json:"errors"`
	TotalRequests     int                        `json:"total_requests"`
	SlowRequestsCount int                        `json:"slow_requests_count"`
	ErrorsCount       int                        `json:"errors_count"`
	TopEndpoints      []TopEndpoint              `json:"top_endpoints"`
}

// UpstreamMetrics llamadas al backend de solicitudes
type UpstreamMetrics struct {
	TotalLlamadas   int                        `json:"total_llamadas"`
	ByRuta          map[string]EndpointMetrics `json:"byRuta"`
	ErroresServidor int                        `json:"errores_servidor"`
	ErroresConexion int                        `json:"errores_conexion"`
	UltimosErrores  []RequestError             `json:"ultimos_errores"`
}

// EndpointMetrics acumulado por endpoint
type EndpointMetrics struct {
	Count     int     `json:"count"`
	AvgTime   float64 `json:"avgTime"`
	TotalTime int64   `json:"totalTime"`
	MaxTime   int64   `json:"maxTime"`
}

type SlowRequest struct {
	Endpoint  string    `json:"endpoint"`
	Duration  int64     `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

type RequestError struct {
	Endpoint   string    `json:"endpoint"`
	StatusCode int       `json:"statusCode"`
	Mensaje    string    `json:"mensaje,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type TopEndpoint struct {
	Endpoint  string `json:"endpoint"`
	Count     int    `json:"count"`
	AvgTimeMs string `json:"avg_time_ms"`
}

type PerformanceMetrics struct {
	AvgResponseTime   float64 `json:"avgResponseTime"`
	MaxResponseTime   int64   `json:"maxResponseTime"`
	AvgResponseTimeMs string  `json:"avg_response_time_ms"`
	MaxResponseTimeMs string  `json:"max_response_time_ms"`
}

// CacheMetrics caché de catálogos
type CacheMetrics struct {
	L2Habilitado      bool    `json:"l2_habilitado"`
	TotalKeys         int     `json:"totalKeys"`
	HitRate           float64 `json:"hitRate"`
	HitRatePercentage string  `json:"hit_rate_percentage"`
	TotalHits         int64   `json:"total_hits"`
	TotalMisses       int64   `json:"total_misses"`
	TotalRequests     int64   `json:"total_requests"`
}

type SesionMetrics struct {
	Activas int `json:"activas"`
}

type SystemMetrics struct {
	MemoryUsage string  `json:"memoryUsage"`
	HeapUsed    string  `json:"heapUsed"`
	Goroutines  int     `json:"goroutines"`
	Uptime      float64 `json:"uptime"`
	UptimeHours string  `json:"uptime_hours"`
	GoVersion   string  `json:"go_version"`
	Platform    string  `json:"platform"`
	Environment string  `json:"environment"`
}

type RedisMetrics struct {
	Connected bool   `json:"connected"`
	Keys      int    `json:"keys"`
	Status    string `json:"status"`
	MemoryMB  string `json:"memory_mb"`
}

// RequestData datos de un request al BFF
type RequestData struct {
	Endpoint   string
	Method     string
	Duration   time.Duration
	StatusCode int
	Timestamp  time.Time
	Error      error
}

// LlamadaUpstream datos de una llamada al backend remoto
type LlamadaUpstream struct {
	Metodo     string
	Ruta       string
	StatusCode int
	Duracion   time.Duration
	Timestamp  time.Time
	Error      error
}
