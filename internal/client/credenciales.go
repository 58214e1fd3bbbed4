package client

import "sync"

// TokenSource entrega el token vigente de la sesión ("" si no hay)
type TokenSource interface {
	Token() string
}

// Credenciales token bearer de una sesión; se puede descartar al cerrar sesión
type Credenciales struct {
	mu    sync.RWMutex
	token string
}

func NewCredenciales(token string) *Credenciales {
	return &Credenciales{token: token}
}

func (c *Credenciales) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Limpiar descarta el token; las llamadas siguientes fallan con ErrSinToken
func (c *Credenciales) Limpiar() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
