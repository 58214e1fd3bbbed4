package middleware

import (
	"context"
	"net/http"
	"time"

	"suministros-dashboard/internal/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Sondeo dependencia que se puede verificar con un ping
type Sondeo interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	backend Sondeo
	redisDB *database.RedisDB
	logger  *zap.Logger
}

// NewHealthChecker redisDB nil cuando Redis está deshabilitado
func NewHealthChecker(backend Sondeo, redisDB *database.RedisDB, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		backend: backend,
		redisDB: redisDB,
		logger:  logger,
	}
}

func (h *HealthChecker) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	services := gin.H{}
	status := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}

	// Backend de solicitudes: sin él el BFF no sirve
	backendStatus := "healthy"
	if err := h.backend.Ping(ctx); err != nil {
		backendStatus = "unhealthy"
		status["status"] = "unhealthy"
		h.logger.Error("Backend health check failed", zap.Error(err))
	}
	services["backend"] = gin.H{"status": backendStatus}

	// Redis solo degrada: el cache sigue en memoria
	if h.redisDB == nil {
		services["redis"] = gin.H{"status": "disabled"}
	} else {
		redisStatus := "healthy"
		if err := h.redisDB.Ping(ctx); err != nil {
			redisStatus = "unhealthy"
			if status["status"] == "healthy" {
				status["status"] = "degraded"
			}
			h.logger.Error("Redis health check failed", zap.Error(err))
		}
		services["redis"] = gin.H{"status": redisStatus}
	}

	httpStatus := http.StatusOK
	if status["status"] == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, status)
}
