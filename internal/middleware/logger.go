package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	resetColor = "\033[0m"
	negrita    = "\033[1m"
	rojo       = "\033[31m"
	verde      = "\033[32m"
	amarillo   = "\033[33m"
	azul       = "\033[34m"
	magenta    = "\033[35m"
	cian       = "\033[36m"
	blanco     = "\033[37m"
)

var coloresMetodo = map[string]string{
	"GET":    verde,
	"POST":   azul,
	"PUT":    amarillo,
	"PATCH":  magenta,
	"DELETE": rojo,
}

// LoggerMiddleware línea de acceso con color en consola y campos estructurados en zap
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		statusColor := colorStatus(param.StatusCode)
		methodColor := colorMetodo(param.Method)

		requestID, _ := param.Keys[ClaveRequestID].(string)

		logLine := fmt.Sprintf("%s %s%-6s%s %s%d%s %4dms %s %s\n",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			methodColor, param.Method, resetColor,
			statusColor, param.StatusCode, resetColor,
			param.Latency.Milliseconds(),
			param.Path,
			requestID,
		)

		campos := []zap.Field{
			zap.String("method", param.Method),
			zap.String("path", param.Path),
			zap.String("request_id", requestID),
			zap.String("client_ip", param.ClientIP),
			zap.Int("status_code", param.StatusCode),
			zap.Duration("latency", param.Latency),
		}
		if param.ErrorMessage != "" {
			campos = append(campos, zap.String("error", param.ErrorMessage))
		}
		if param.StatusCode >= 500 {
			logger.Warn("HTTP Request", campos...)
		} else {
			logger.Debug("HTTP Request", campos...)
		}

		return logLine
	})
}

// ClaveRequestID llave del contexto con el id de la petición
const ClaveRequestID = "request_id"

// RequestIDMiddleware respeta el X-Request-ID entrante o genera uno
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set(ClaveRequestID, requestID)
		c.Next()
	}
}

// colorStatus por familia de código HTTP
func colorStatus(statusCode int) string {
	switch statusCode / 100 {
	case 2:
		return verde
	case 3:
		return cian
	case 4:
		return amarillo
	case 5:
		return rojo
	}
	return blanco
}

func colorMetodo(method string) string {
	if color, ok := coloresMetodo[method]; ok {
		return color
	}
	return blanco
}
