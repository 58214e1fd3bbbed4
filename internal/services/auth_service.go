package services

import (
	"context"
	"fmt"

	"suministros-dashboard/internal/models"

	"go.uber.org/zap"
)

// AuthService perfil del usuario autenticado
type AuthService interface {
	Perfil(ctx context.Context, token string) (*models.Usuario, error)
	ActualizarColorPerfil(ctx context.Context, token, color string) error
}

type authService struct {
	backend Backend
	logger  *zap.Logger
}

func NewAuthService(backend Backend, logger *zap.Logger) AuthService {
	return &authService{
		backend: backend,
		logger:  logger.With(zap.String("service", "auth")),
	}
}

// Perfil GET /usuarios/perfil
func (s *authService) Perfil(ctx context.Context, token string) (*models.Usuario, error) {
	var usuario models.Usuario
	if err := s.backend.Get(ctx, token, "/usuarios/perfil", &usuario); err != nil {
		s.logger.Warn("❌ No se pudo resolver el perfil", zap.String("operation", "perfil"), zap.Error(err))
		return nil, fmt.Errorf("error obteniendo perfil: %w", err)
	}
	return &usuario, nil
}

// ActualizarColorPerfil PUT /usuarios/color-perfil; la respuesta no se usa
func (s *authService) ActualizarColorPerfil(ctx context.Context, token, color string) error {
	body := models.ColorPerfilRequest{ColorPerfil: color}
	if err := s.backend.Put(ctx, token, "/usuarios/color-perfil", body, nil); err != nil {
		s.logger.Warn("❌ No se pudo actualizar el color de perfil",
			zap.String("operation", "color_perfil"),
			zap.Error(err))
		return fmt.Errorf("error actualizando color de perfil: %w", err)
	}
	return nil
}
