package config

import (
	"testing"
	"time"

	"suministros-dashboard/internal/models"
)

func TestLoad_PorDefecto(t *testing.T) {
	t.Setenv("STATUS_PIPELINE", "")
	t.Setenv("API_TIMEOUT_SECONDS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.Nombre != models.PipelineNombreSurtido || cfg.Pipeline.Inicial != models.StatusPendienteSurtido {
		t.Fatalf("pipeline por defecto incorrecto: %+v", cfg.Pipeline)
	}
	if cfg.API.Timeout != 0 {
		t.Fatalf("sin timeout por defecto, obtuve %v", cfg.API.Timeout)
	}
}

func TestLoad_PipelineAutorizacion(t *testing.T) {
	t.Setenv("STATUS_PIPELINE", "autorizacion")
	t.Setenv("API_TIMEOUT_SECONDS", "15")
	t.Setenv("CORS_ORIGINS", "https://a.mx, https://b.mx")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.Inicial != models.StatusPendienteAutorizacion {
		t.Fatalf("inicial = %v", cfg.Pipeline.Inicial)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("timeout = %v", cfg.API.Timeout)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.mx" {
		t.Fatalf("origins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_PipelineDesconocido(t *testing.T) {
	t.Setenv("STATUS_PIPELINE", "otro")
	if _, err := Load(); err == nil {
		t.Fatal("esperaba error con pipeline desconocido")
	}
}
