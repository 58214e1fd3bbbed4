package middleware

import (
	"errors"
	"net/http"
	"strings"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClaveSesion llave del contexto de gin con la *session.Sesion
const ClaveSesion = "sesion"

// TokenDe lee el bearer del header; el websocket del navegador no puede
// mandar headers, así que ahí se acepta ?token=
func TokenDe(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// SesionRequerida resuelve la sesión del token y la deja en el contexto
func SesionRequerida(registro *session.Registro, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenDe(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "❌ Error de autenticación",
				"error":   "No hay token de autenticación",
			})
			return
		}

		sesion, err := registro.Resolver(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			var connErr *client.ConnectionError
			if errors.As(err, &connErr) {
				status = http.StatusBadGateway
			}
			logger.Warn("❌ Sesión rechazada",
				zap.String("path", c.FullPath()),
				zap.Int("status", status),
				zap.Error(err))
			c.AbortWithStatusJSON(status, gin.H{
				"success": false,
				"message": "❌ Error de autenticación",
				"error":   err.Error(),
			})
			return
		}

		c.Set(ClaveSesion, sesion)
		c.Next()
	}
}

// SesionDe sesión ya resuelta por SesionRequerida
func SesionDe(c *gin.Context) *session.Sesion {
	return c.MustGet(ClaveSesion).(*session.Sesion)
}
