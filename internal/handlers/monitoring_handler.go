package handlers

import (
	"errors"
	"net/http"
	"time"

	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MonitoringHandler struct {
	monitoringService services.MonitoringService
	logger            *zap.Logger
}

func NewMonitoringHandler(monitoringService services.MonitoringService, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		monitoringService: monitoringService,
		logger:            logger,
	}
}

// GetMetrics GET /api/v1/monitoring/metrics
func (h *MonitoringHandler) GetMetrics(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "get_metrics"))

	metrics := h.monitoringService.GetMetrics(c.Request.Context())

	logger.Debug("Métricas obtenidas",
		zap.Int("total_requests", metrics.Requests.TotalRequests),
		zap.Int("llamadas_backend", metrics.Upstream.TotalLlamadas),
		zap.Int("sesiones", metrics.Sesiones.Activas))

	c.JSON(http.StatusOK, metrics)
}

// GetMetricsSummary GET /api/v1/monitoring/metrics/summary
func (h *MonitoringHandler) GetMetricsSummary(c *gin.Context) {
	metrics := h.monitoringService.GetMetrics(c.Request.Context())

	summary := gin.H{
		"requests": gin.H{
			"total":         metrics.Requests.TotalRequests,
			"endpoints":     metrics.Requests.Endpoints,
			"errors":        metrics.Requests.ErrorsCount,
			"slow_requests": metrics.Requests.SlowRequestsCount,
		},
		"backend": gin.H{
			"llamadas":         metrics.Upstream.TotalLlamadas,
			"errores_servidor": metrics.Upstream.ErroresServidor,
			"errores_conexion": metrics.Upstream.ErroresConexion,
		},
		"performance": gin.H{
			"avg_response_time": metrics.Performance.AvgResponseTimeMs,
			"max_response_time": metrics.Performance.MaxResponseTimeMs,
		},
		"cache": gin.H{
			"hit_rate":   metrics.Cache.HitRatePercentage,
			"total_keys": metrics.Cache.TotalKeys,
			"l2":         metrics.Cache.L2Habilitado,
		},
		"sesiones": metrics.Sesiones.Activas,
		"system": gin.H{
			"memory_usage": metrics.System.MemoryUsage,
			"uptime":       metrics.System.UptimeHours,
			"goroutines":   metrics.System.Goroutines,
		},
		"redis": gin.H{
			"connected": metrics.Redis.Connected,
			"status":    metrics.Redis.Status,
		},
		"timestamp": metrics.Timestamp,
	}

	c.JSON(http.StatusOK, summary)
}

// RecordRequestMiddleware registra cada request con su ruta plantilla
func (h *MonitoringHandler) RecordRequestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "sin_ruta"
		}
		if h.shouldSkipMonitoring(endpoint) {
			return
		}

		var reqErr error
		if len(c.Errors) > 0 {
			reqErr = errors.New(c.Errors.String())
		}

		h.monitoringService.RecordRequest(models.RequestData{
			Endpoint:   endpoint,
			Method:     c.Request.Method,
			Duration:   time.Since(start),
			StatusCode: c.Writer.Status(),
			Timestamp:  time.Now(),
			Error:      reqErr,
		})
	}
}

// shouldSkipMonitoring excluye los endpoints del propio monitoreo
func (h *MonitoringHandler) shouldSkipMonitoring(path string) bool {
	switch path {
	case "/api/v1/monitoring/metrics",
		"/api/v1/monitoring/metrics/summary",
		"/api/v1/notificaciones/ws",
		"/metrics",
		"/health",
		"/":
		return true
	}
	return false
}
