package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"

	"go.uber.org/zap"
)

// SuministroParcialStore historial de entregas parciales de la solicitud abierta
type SuministroParcialStore interface {
	Obtener(ctx context.Context, solicitudID models.ID) ([]models.SuministroParcial, error)
	Registrar(ctx context.Context, solicitudID models.ID, lote []models.SuministroParcialPayload) (bool, error)
	Eliminar(ctx context.Context, id models.ID) (bool, error)
	Registros() []models.SuministroParcial
	EntregasDe(s models.Suministro) []models.SuministroParcial
	Limpiar()
	Cargando() bool
}

type suministroParcialStore struct {
	backend Backend
	tokens  client.TokenSource
	logger  *zap.Logger

	mu        sync.RWMutex
	registros []models.SuministroParcial

	ops *operaciones
}

func NewSuministroParcialStore(backend Backend, tokens client.TokenSource, logger *zap.Logger) SuministroParcialStore {
	return &suministroParcialStore{
		backend: backend,
		tokens:  tokens,
		logger:  logger.With(zap.String("store", "suministros_parciales")),
		ops:     nuevasOperaciones(),
	}
}

func rutaParciales(id models.ID) string {
	return "/suministros-parciales/" + url.PathEscape(id.String())
}

func (s *suministroParcialStore) Cargando() bool {
	return s.ops.enCurso(opDatos) || s.ops.enCurso(opAccion)
}

// Obtener reemplaza el historial; si falla lo deja vacío
func (s *suministroParcialStore) Obtener(ctx context.Context, solicitudID models.ID) ([]models.SuministroParcial, error) {
	op := s.ops.iniciar(opDatos)
	defer s.ops.terminar(op)

	var resp models.SuministrosParcialesResponse
	if err := s.backend.Get(ctx, s.tokens.Token(), rutaParciales(solicitudID), &resp); err != nil {
		s.logger.Warn("❌ Error al obtener suministros parciales",
			zap.String("operation", "obtener"),
			zap.String("solicitud_id", solicitudID.String()),
			zap.Error(err))
		s.Limpiar()
		return nil, fmt.Errorf("error obteniendo suministros parciales: %w", err)
	}

	registros := resp.SuministrosParciales
	if registros == nil {
		registros = []models.SuministroParcial{}
	}
	s.mu.Lock()
	s.registros = registros
	s.mu.Unlock()
	return s.Registros(), nil
}

// Registrar envía el lote en una sola llamada; no modifica el historial local
func (s *suministroParcialStore) Registrar(ctx context.Context, solicitudID models.ID, lote []models.SuministroParcialPayload) (bool, error) {
	logger := s.logger.With(zap.String("operation", "registrar"), zap.String("solicitud_id", solicitudID.String()))
	op := s.ops.iniciar(opAccion)
	defer s.ops.terminar(op)

	body := models.SuministrosParcialesRequest{SuministrosParciales: lote}
	if err := s.backend.Post(ctx, s.tokens.Token(), rutaParciales(solicitudID), body, nil); err != nil {
		logger.Warn("❌ Error al registrar entrega parcial", zap.Error(err))
		return false, fmt.Errorf("error registrando entrega parcial: %w", err)
	}
	logger.Info("✅ Entrega parcial registrada", zap.Int("renglones", len(lote)))
	return true, nil
}

// Eliminar borra un registro y lo quita del historial local
func (s *suministroParcialStore) Eliminar(ctx context.Context, id models.ID) (bool, error) {
	op := s.ops.iniciar(opAccion)
	defer s.ops.terminar(op)

	if err := s.backend.Delete(ctx, s.tokens.Token(), rutaParciales(id), nil); err != nil {
		s.logger.Warn("❌ Error al eliminar suministro parcial",
			zap.String("operation", "eliminar"),
			zap.String("id", id.String()),
			zap.Error(err))
		return false, fmt.Errorf("error eliminando suministro parcial: %w", err)
	}

	s.mu.Lock()
	restantes := s.registros[:0:0]
	for _, r := range s.registros {
		if r.ID != id {
			restantes = append(restantes, r)
		}
	}
	s.registros = restantes
	s.mu.Unlock()
	return true, nil
}

func (s *suministroParcialStore) Registros() []models.SuministroParcial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SuministroParcial, len(s.registros))
	copy(out, s.registros)
	return out
}

// EntregasDe registros que corresponden a un renglón de la solicitud
func (s *suministroParcialStore) EntregasDe(sum models.Suministro) []models.SuministroParcial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SuministroParcial
	for _, r := range s.registros {
		if r.Corresponde(sum) {
			out = append(out, r)
		}
	}
	return out
}

func (s *suministroParcialStore) Limpiar() {
	s.mu.Lock()
	s.registros = nil
	s.mu.Unlock()
}
