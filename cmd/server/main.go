package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"suministros-dashboard/internal/cache"
	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/config"
	"suministros-dashboard/internal/database"
	"suministros-dashboard/internal/handlers"
	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/notify"
	"suministros-dashboard/internal/routes"
	"suministros-dashboard/internal/services"
	"suministros-dashboard/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error cargando configuración: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Error creando logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisDB, err := database.NewRedisDB(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		// Sin Redis el cache de catálogos sigue en memoria
		logger.Warn("⚠️ Redis no disponible, se continúa sin L2", zap.Error(err))
		redisDB = nil
	}
	defer func() { _ = redisDB.Close() }()

	catalogoCache := cache.NewCatalogoCache(redisDB.Cliente(), cfg.Cache.L1Size, cfg.Cache.TTL, logger)
	go catalogoCache.Iniciar(ctx, time.Minute)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// El registro de sesiones se crea después; el contador lo lee al consultar
	var registro *session.Registro
	sesiones := services.ContadorFunc(func() int {
		if registro == nil {
			return 0
		}
		return registro.Activas()
	})
	monitoringService := services.NewMonitoringService(logger, cfg, redisDB.Cliente(), catalogoCache, sesiones, registry)

	apiClient := client.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout, logger, monitoringService)

	hub := notify.NewHub(logger)
	go hub.Run(ctx)

	authService := services.NewAuthService(apiClient, logger)
	catalogoService := services.NewCatalogoService(apiClient, catalogoCache, logger)

	registro = session.NewRegistro(apiClient, authService, cfg.Pipeline, hub, cfg.Sesion.TTL, cfg.Sesion.Historial, logger)
	go registro.Iniciar(ctx, time.Minute)

	monitoringHandler := handlers.NewMonitoringHandler(monitoringService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(monitoringHandler.RecordRequestMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Handlers{
		Sesion:             handlers.NewSesionHandler(registro, authService, hub, logger),
		Solicitud:          handlers.NewSolicitudHandler(logger),
		Formulario:         handlers.NewFormularioHandler(logger),
		Detalle:            handlers.NewDetalleHandler(logger),
		SuministroParcial:  handlers.NewSuministroParcialHandler(logger),
		Catalogo:           handlers.NewCatalogoHandler(catalogoService, logger),
		Dashboard:          handlers.NewDashboardHandler(logger),
		Monitoring:         monitoringHandler,
		HealthChecker:      middleware.NewHealthChecker(apiClient, redisDB, logger),
		MetricsHTTPHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, registro, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Error iniciando servidor", zap.Error(err))
		}
	}()

	middleware.ServerInfo(cfg, redisDB != nil, logger)

	<-ctx.Done()
	logger.Info("Apagando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error en apagado ordenado", zap.Error(err))
	}
	logger.Info("Servidor detenido")
}

// newLogger logger de desarrollo en modo debug, de producción en los demás
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Server.GinMode == gin.DebugMode {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "suministros-dashboard")), nil
}
