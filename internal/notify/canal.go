package notify

import (
	"encoding/json"
	"sync"
	"time"

	"suministros-dashboard/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier canal de avisos al usuario de una sesión
type Notifier interface {
	Notificar(n models.Notificacion)
}

// Publicador destino de las notificaciones serializadas
type Publicador interface {
	Publicar(clave string, data []byte)
}

// Canal notifier de una sesión: registra, guarda historial y publica
type Canal struct {
	clave      string
	publicador Publicador
	logger     *zap.Logger

	mu        sync.RWMutex
	historial []models.Notificacion
	max       int
}

// NewCanal publicador puede ser nil (solo historial)
func NewCanal(clave string, publicador Publicador, max int, logger *zap.Logger) *Canal {
	if max <= 0 {
		max = 50
	}
	return &Canal{
		clave:      clave,
		publicador: publicador,
		max:        max,
		logger:     logger,
	}
}

func (c *Canal) Notificar(n models.Notificacion) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	campos := []zap.Field{
		zap.String("tipo", string(n.Tipo)),
		zap.String("titulo", n.Titulo),
		zap.String("texto", n.Texto),
	}
	if n.Tipo == models.NotificacionError {
		c.logger.Warn("📣 Notificación", campos...)
	} else {
		c.logger.Info("📣 Notificación", campos...)
	}

	c.mu.Lock()
	c.historial = append(c.historial, n)
	if len(c.historial) > c.max {
		c.historial = c.historial[len(c.historial)-c.max:]
	}
	c.mu.Unlock()

	if c.publicador == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		c.logger.Error("❌ Error serializando notificación", zap.Error(err))
		return
	}
	c.publicador.Publicar(c.clave, data)
}

// Recientes historial de la sesión, la más nueva al final
func (c *Canal) Recientes() []models.Notificacion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Notificacion, len(c.historial))
	copy(out, c.historial)
	return out
}

// Ultima notificación más reciente, si existe
func (c *Canal) Ultima() (models.Notificacion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.historial) == 0 {
		return models.Notificacion{}, false
	}
	return c.historial[len(c.historial)-1], true
}
