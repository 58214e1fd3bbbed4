package services

import (
	"context"
	"fmt"

	"suministros-dashboard/internal/cache"
	"suministros-dashboard/internal/models"

	"go.uber.org/zap"
)

const (
	llaveProductos = "productos"
	llaveUnidades  = "unidades"
)

// CatalogoService catálogos de solo lectura para capturar renglones
type CatalogoService interface {
	ListarProductos(ctx context.Context, token string) ([]models.Producto, error)
	ListarUnidades(ctx context.Context, token string) ([]models.UnidadMedida, error)
	Invalidar(ctx context.Context) error
}

type catalogoService struct {
	backend Backend
	cache   *cache.CatalogoCache
	logger  *zap.Logger
}

func NewCatalogoService(backend Backend, catalogoCache *cache.CatalogoCache, logger *zap.Logger) CatalogoService {
	return &catalogoService{
		backend: backend,
		cache:   catalogoCache,
		logger:  logger.With(zap.String("service", "catalogo")),
	}
}

func (s *catalogoService) ListarProductos(ctx context.Context, token string) ([]models.Producto, error) {
	logger := s.logger.With(zap.String("operation", "listar_productos"))

	var productos []models.Producto
	if err := s.cache.Get(ctx, llaveProductos, &productos); err == nil {
		return productos, nil
	}

	var resp models.ProductosResponse
	if err := s.backend.Get(ctx, token, "/productos", &resp); err != nil {
		logger.Warn("❌ No se pudo obtener el catálogo de productos", zap.Error(err))
		return nil, fmt.Errorf("error obteniendo productos: %w", err)
	}
	if err := s.cache.Set(ctx, llaveProductos, resp.Productos); err != nil {
		logger.Warn("⚠️ No se pudo guardar productos en caché L2", zap.Error(err))
	}
	logger.Debug("📦 Productos obtenidos del backend", zap.Int("total", len(resp.Productos)))
	return resp.Productos, nil
}

func (s *catalogoService) ListarUnidades(ctx context.Context, token string) ([]models.UnidadMedida, error) {
	logger := s.logger.With(zap.String("operation", "listar_unidades"))

	var unidades []models.UnidadMedida
	if err := s.cache.Get(ctx, llaveUnidades, &unidades); err == nil {
		return unidades, nil
	}

	var resp models.UnidadesResponse
	if err := s.backend.Get(ctx, token, "/unidades-medida", &resp); err != nil {
		logger.Warn("❌ No se pudo obtener el catálogo de unidades", zap.Error(err))
		return nil, fmt.Errorf("error obteniendo unidades de medida: %w", err)
	}
	if err := s.cache.Set(ctx, llaveUnidades, resp.Unidades); err != nil {
		logger.Warn("⚠️ No se pudo guardar unidades en caché L2", zap.Error(err))
	}
	return resp.Unidades, nil
}

// Invalidar fuerza recargar ambos catálogos en la siguiente consulta
func (s *catalogoService) Invalidar(ctx context.Context) error {
	if err := s.cache.Invalidar(ctx, llaveProductos); err != nil {
		return err
	}
	return s.cache.Invalidar(ctx, llaveUnidades)
}
