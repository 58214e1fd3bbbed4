package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"suministros-dashboard/internal/models"

	"github.com/joho/godotenv"
)

type Config struct {
	API      APIConfig
	Pipeline models.Pipeline
	Redis    RedisConfig
	Cache    CacheConfig
	Server   ServerConfig
	Sesion   SesionConfig
	Logging  LoggingConfig
}

// APIConfig backend remoto de solicitudes
type APIConfig struct {
	BaseURL string
	// 0 = sin límite propio
	Timeout time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type CacheConfig struct {
	TTL    time.Duration
	L1Size int
}

type ServerConfig struct {
	Port        string
	GinMode     string
	CORSOrigins []string
}

type SesionConfig struct {
	TTL       time.Duration
	Historial int
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Cargar .env si existe
	_ = godotenv.Load()

	pipeline, err := models.ParsePipeline(getEnv("STATUS_PIPELINE", models.PipelineNombreSurtido))
	if err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}

	config := &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:4000/api"),
			Timeout: time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		Pipeline: pipeline,
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTL:    time.Duration(getEnvAsInt("CATALOGO_CACHE_TTL_MINUTES", 10)) * time.Minute,
			L1Size: getEnvAsInt("CATALOGO_CACHE_L1_SIZE", 100),
		},
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "release"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Sesion: SesionConfig{
			TTL:       time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 480)) * time.Minute,
			Historial: getEnvAsInt("SESSION_NOTIFICATION_HISTORY", 50),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList lista separada por comas
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
