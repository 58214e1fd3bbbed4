package middleware

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"suministros-dashboard/internal/config"

	"go.uber.org/zap"
)

// ServerInfo banner de arranque
func ServerInfo(cfg *config.Config, redisHabilitado bool, logger *zap.Logger) {
	hostname, _ := os.Hostname()
	goVersion := runtime.Version()
	startTime := time.Now().Format("2006-01-02 15:04:05")
	port := cfg.Server.Port

	cache := "Memoria (L1)"
	if redisHabilitado {
		cache = "Memoria (L1) + Redis (L2)"
	}

	fmt.Println("")
	fmt.Println("🚀 " + negrita + "Suministros Dashboard BFF" + resetColor)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("📅 Started at: " + startTime)
	fmt.Println("🌐 Server URL: " + cian + "http://localhost:" + port + resetColor)
	fmt.Println("🔗 Backend: " + cian + cfg.API.BaseURL + resetColor)
	fmt.Println("💻 Hostname: " + hostname)
	fmt.Println("🔧 Go Version: " + goVersion)
	fmt.Println("")
	fmt.Println("📊 " + negrita + "Endpoints:" + resetColor)
	fmt.Println("   " + verde + "/api/v1/solicitudes" + resetColor + "   - Solicitudes de suministro")
	fmt.Println("   " + verde + "/api/v1/formulario" + resetColor + "    - Formulario de captura")
	fmt.Println("   " + verde + "/api/v1/detalle" + resetColor + "       - Detalle y entrega parcial")
	fmt.Println("   " + verde + "/health" + resetColor + "               - Health Check")
	fmt.Println("   " + verde + "/metrics" + resetColor + "              - Prometheus")
	fmt.Println("")
	fmt.Println("⚙️  " + negrita + "Environment:" + resetColor)
	fmt.Println("   🔀 Pipeline: " + cfg.Pipeline.Nombre)
	fmt.Println("   🗃️  Cache: " + cache)
	fmt.Println("   📝 Logging: Structured (Zap)")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("")

	logger.Info("Server started successfully",
		zap.String("port", port),
		zap.String("hostname", hostname),
		zap.String("go_version", goVersion),
		zap.String("pipeline", cfg.Pipeline.Nombre),
		zap.Bool("redis", redisHabilitado),
		zap.String("start_time", startTime),
	)
}
