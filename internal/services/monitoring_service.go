package services

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"suministros-dashboard/internal/cache"
	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/config"
	"suministros-dashboard/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	maxRegistros   = 100
	umbralLentoMs  = 1000
	maxTopEndpoint = 10
)

// ContadorSesiones sesiones de trabajo vivas
type ContadorSesiones interface {
	Activas() int
}

// ContadorFunc adapta una función a ContadorSesiones
type ContadorFunc func() int

func (f ContadorFunc) Activas() int { return f() }

type MonitoringService interface {
	GetMetrics(ctx context.Context) *models.MonitoringResponse
	RecordRequest(data models.RequestData)
	ObservarLlamada(llamada models.LlamadaUpstream)
	GetCacheStats() models.CacheMetrics
	GetSystemStats() models.SystemMetrics
	GetRedisStats(ctx context.Context) models.RedisMetrics
	GetUpstreamStats() models.UpstreamMetrics
}

type monitoringService struct {
	logger        *zap.Logger
	config        *config.Config
	redisClient   *redis.Client
	catalogoCache *cache.CatalogoCache
	sesiones      ContadorSesiones

	requestsMutex sync.RWMutex
	requests      map[string]*models.EndpointMetrics
	slowRequests  []models.SlowRequest
	requestErrors []models.RequestError
	totalRequests int64

	upstreamMutex   sync.RWMutex
	upstream        map[string]*models.EndpointMetrics
	upstreamErrors  []models.RequestError
	totalUpstream   int64
	erroresServidor int64
	erroresConexion int64

	httpRequests     *prometheus.CounterVec
	upstreamLlamadas *prometheus.CounterVec
	upstreamDuracion *prometheus.HistogramVec

	startTime time.Time
}

// NewMonitoringService redisClient y sesiones pueden ser nil
func NewMonitoringService(
	logger *zap.Logger,
	config *config.Config,
	redisClient *redis.Client,
	catalogoCache *cache.CatalogoCache,
	sesiones ContadorSesiones,
	registerer prometheus.Registerer,
) MonitoringService {
	factory := promauto.With(registerer)
	return &monitoringService{
		logger:        logger.With(zap.String("service", "monitoring")),
		config:        config,
		redisClient:   redisClient,
		catalogoCache: catalogoCache,
		sesiones:      sesiones,
		requests:      make(map[string]*models.EndpointMetrics),
		upstream:      make(map[string]*models.EndpointMetrics),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "suministros_http_requests_total",
			Help: "Requests recibidos por el BFF.",
		}, []string{"method", "endpoint", "status"}),
		upstreamLlamadas: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "suministros_upstream_requests_total",
			Help: "Llamadas al backend de solicitudes por ruta y resultado.",
		}, []string{"method", "ruta", "resultado"}),
		upstreamDuracion: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "suministros_upstream_request_duration_seconds",
			Help:    "Latencia de las llamadas al backend de solicitudes.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "ruta"}),
		startTime: time.Now(),
	}
}

func acumular(metrics *models.EndpointMetrics, durationMs int64) {
	metrics.Count++
	metrics.TotalTime += durationMs
	metrics.AvgTime = float64(metrics.TotalTime) / float64(metrics.Count)
	if durationMs > metrics.MaxTime {
		metrics.MaxTime = durationMs
	}
}

func (s *monitoringService) RecordRequest(data models.RequestData) {
	s.httpRequests.WithLabelValues(data.Method, data.Endpoint, strconv.Itoa(data.StatusCode)).Inc()

	s.requestsMutex.Lock()
	defer s.requestsMutex.Unlock()

	endpointKey := fmt.Sprintf("%s %s", data.Method, data.Endpoint)
	metrics, exists := s.requests[endpointKey]
	if !exists {
		metrics = &models.EndpointMetrics{}
		s.requests[endpointKey] = metrics
	}

	durationMs := data.Duration.Milliseconds()
	acumular(metrics, durationMs)
	s.totalRequests++

	if durationMs > umbralLentoMs {
		s.slowRequests = append(s.slowRequests, models.SlowRequest{
			Endpoint:  endpointKey,
			Duration:  durationMs,
			Timestamp: data.Timestamp,
		})
		if len(s.slowRequests) > maxRegistros {
			s.slowRequests = s.slowRequests[1:]
		}
	}

	if data.Error != nil || data.StatusCode >= 400 {
		reqErr := models.RequestError{
			Endpoint:   endpointKey,
			StatusCode: data.StatusCode,
			Timestamp:  data.Timestamp,
		}
		if data.Error != nil {
			reqErr.Mensaje = data.Error.Error()
		}
		s.requestErrors = append(s.requestErrors, reqErr)
		if len(s.requestErrors) > maxRegistros {
			s.requestErrors = s.requestErrors[1:]
		}
	}
}

// ObservarLlamada registra cada llamada que hace el cliente del backend
func (s *monitoringService) ObservarLlamada(llamada models.LlamadaUpstream) {
	resultado := "ok"
	switch client.Clasificar(llamada.Error) {
	case client.CategoriaServidor:
		resultado = "error_servidor"
	case client.CategoriaConexion:
		resultado = "error_conexion"
	case client.CategoriaSinToken:
		resultado = "sin_token"
	case client.CategoriaInesperada:
		if llamada.Error != nil {
			resultado = "error_inesperado"
		}
	}
	s.upstreamLlamadas.WithLabelValues(llamada.Metodo, llamada.Ruta, resultado).Inc()
	s.upstreamDuracion.WithLabelValues(llamada.Metodo, llamada.Ruta).Observe(llamada.Duracion.Seconds())

	s.upstreamMutex.Lock()
	defer s.upstreamMutex.Unlock()

	key := fmt.Sprintf("%s %s", llamada.Metodo, llamada.Ruta)
	metrics, exists := s.upstream[key]
	if !exists {
		metrics = &models.EndpointMetrics{}
		s.upstream[key] = metrics
	}
	acumular(metrics, llamada.Duracion.Milliseconds())
	s.totalUpstream++

	switch resultado {
	case "error_servidor":
		s.erroresServidor++
	case "error_conexion":
		s.erroresConexion++
	}
	if llamada.Error != nil {
		s.upstreamErrors = append(s.upstreamErrors, models.RequestError{
			Endpoint:   key,
			StatusCode: llamada.StatusCode,
			Mensaje:    llamada.Error.Error(),
			Timestamp:  llamada.Timestamp,
		})
		if len(s.upstreamErrors) > maxRegistros {
			s.upstreamErrors = s.upstreamErrors[1:]
		}
	}
}

func (s *monitoringService) GetMetrics(ctx context.Context) *models.MonitoringResponse {
	s.requestsMutex.RLock()
	requestMetrics := s.calculateRequestMetrics()
	performanceMetrics := s.calculatePerformanceMetrics()
	s.requestsMutex.RUnlock()

	sesiones := models.SesionMetrics{}
	if s.sesiones != nil {
		sesiones.Activas = s.sesiones.Activas()
	}

	return &models.MonitoringResponse{
		Requests:    requestMetrics,
		Upstream:    s.GetUpstreamStats(),
		Performance: performanceMetrics,
		Cache:       s.GetCacheStats(),
		Sesiones:    sesiones,
		System:      s.GetSystemStats(),
		Redis:       s.GetRedisStats(ctx),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     "1.0",
	}
}

func (s *monitoringService) calculateRequestMetrics() models.RequestMetrics {
	type endpoint struct {
		key     string
		metrics *models.EndpointMetrics
	}
	endpoints := make([]endpoint, 0, len(s.requests))
	byEndpoint := make(map[string]models.EndpointMetrics, len(s.requests))
	for key, metrics := range s.requests {
		endpoints = append(endpoints, endpoint{key, metrics})
		byEndpoint[key] = *metrics
	}

	sort.Slice(endpoints, func(i, j int) bool {
		return endpoints[i].metrics.Count > endpoints[j].metrics.Count
	})

	var topEndpoints []models.TopEndpoint
	for i, e := range endpoints {
		if i >= maxTopEndpoint {
			break
		}
		topEndpoints = append(topEndpoints, models.TopEndpoint{
			Endpoint:  e.key,
			Count:     e.metrics.Count,
			AvgTimeMs: fmt.Sprintf("%.2fms", e.metrics.AvgTime),
		})
	}

	return models.RequestMetrics{
		Endpoints:         len(s.requests),
		ByEndpoint:        byEndpoint,
		SlowRequests:      append([]models.SlowRequest(nil), s.slowRequests...),
		Errors:            append([]models.RequestError(nil), s.requestErrors...),
		TotalRequests:     int(s.totalRequests),
		SlowRequestsCount: len(s.slowRequests),
		ErrorsCount:       len(s.requestErrors),
		TopEndpoints:      topEndpoints,
	}
}

func (s *monitoringService) calculatePerformanceMetrics() models.PerformanceMetrics {
	var totalTime int64
	var maxTime int64
	var count int

	for _, metrics := range s.requests {
		totalTime += metrics.TotalTime
		if metrics.MaxTime > maxTime {
			maxTime = metrics.MaxTime
		}
		count += metrics.Count
	}

	var avgTime float64
	if count > 0 {
		avgTime = float64(totalTime) / float64(count)
	}

	return models.PerformanceMetrics{
		AvgResponseTime:   math.Round(avgTime*100) / 100,
		MaxResponseTime:   maxTime,
		AvgResponseTimeMs: fmt.Sprintf("%.2fms", avgTime),
		MaxResponseTimeMs: fmt.Sprintf("%dms", maxTime),
	}
}

func (s *monitoringService) GetUpstreamStats() models.UpstreamMetrics {
	s.upstreamMutex.RLock()
	defer s.upstreamMutex.RUnlock()

	byRuta := make(map[string]models.EndpointMetrics, len(s.upstream))
	for key, metrics := range s.upstream {
		byRuta[key] = *metrics
	}
	return models.UpstreamMetrics{
		TotalLlamadas:   int(s.totalUpstream),
		ByRuta:          byRuta,
		ErroresServidor: int(s.erroresServidor),
		ErroresConexion: int(s.erroresConexion),
		UltimosErrores:  append([]models.RequestError(nil), s.upstreamErrors...),
	}
}

func (s *monitoringService) GetCacheStats() models.CacheMetrics {
	if s.catalogoCache == nil {
		return models.CacheMetrics{}
	}
	cacheStats := s.catalogoCache.GetStats()

	var hitRate float64
	if cacheStats.TotalRequests > 0 {
		hitRate = float64(cacheStats.Hits) / float64(cacheStats.TotalRequests)
	}

	return models.CacheMetrics{
		L2Habilitado:      cacheStats.L2Habilitado,
		TotalKeys:         cacheStats.TotalKeys,
		HitRate:           hitRate,
		HitRatePercentage: fmt.Sprintf("%.2f%%", hitRate*100),
		TotalHits:         cacheStats.Hits,
		TotalMisses:       cacheStats.Misses,
		TotalRequests:     cacheStats.TotalRequests,
	}
}

func (s *monitoringService) GetSystemStats() models.SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(s.startTime).Seconds()

	environment := "production"
	if s.config != nil && s.config.Server.GinMode == "debug" {
		environment = "development"
	}

	return models.SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
		HeapUsed:    fmt.Sprintf("%.2f MB", float64(m.HeapAlloc)/1024/1024),
		Goroutines:  runtime.NumGoroutine(),
		Uptime:      uptime,
		UptimeHours: fmt.Sprintf("%.2fh", uptime/3600),
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS,
		Environment: environment,
	}
}

func (s *monitoringService) GetRedisStats(ctx context.Context) models.RedisMetrics {
	if s.redisClient == nil {
		return models.RedisMetrics{Status: "disabled"}
	}

	connected := s.redisClient.Ping(ctx).Err() == nil
	metrics := models.RedisMetrics{Connected: connected, Status: "offline"}
	if !connected {
		return metrics
	}
	metrics.Status = "online"

	if keys, err := s.redisClient.DBSize(ctx).Result(); err == nil {
		metrics.Keys = int(keys)
	}
	if info, err := s.redisClient.Info(ctx, "memory").Result(); err == nil {
		for _, line := range strings.Split(info, "\n") {
			if !strings.HasPrefix(line, "used_memory:") {
				continue
			}
			valor := strings.TrimSpace(strings.TrimPrefix(line, "used_memory:"))
			if memBytes, err := strconv.ParseInt(valor, 10, 64); err == nil {
				metrics.MemoryMB = fmt.Sprintf("%.2f MB", float64(memBytes)/1024/1024)
			}
			break
		}
	}
	return metrics
}
