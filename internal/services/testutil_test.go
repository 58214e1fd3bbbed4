package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// llamada petición recibida por el backend falso
type llamada struct {
	Metodo string
	Ruta   string
	Token  string
	Body   []byte
}

// backendFalso backend remoto montado con gin sobre httptest
type backendFalso struct {
	router *gin.Engine
	server *httptest.Server

	mu       sync.Mutex
	llamadas []llamada
}

func nuevoBackend(t *testing.T) *backendFalso {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &backendFalso{router: gin.New()}
	b.router.Use(func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		b.mu.Lock()
		b.llamadas = append(b.llamadas, llamada{
			Metodo: c.Request.Method,
			Ruta:   c.Request.URL.Path,
			Token:  c.GetHeader("Authorization"),
			Body:   body,
		})
		b.mu.Unlock()
		c.Next()
	})
	b.server = httptest.NewServer(b.router)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backendFalso) cliente() *client.APIClient {
	return client.NewAPIClient(b.server.URL, 0, zap.NewNop(), nil)
}

// llamadasA peticiones recibidas con ese método y ruta
func (b *backendFalso) llamadasA(metodo, ruta string) []llamada {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []llamada
	for _, l := range b.llamadas {
		if l.Metodo == metodo && l.Ruta == ruta {
			out = append(out, l)
		}
	}
	return out
}

func (b *backendFalso) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.llamadas)
}

// notificadorFalso guarda los avisos en orden
type notificadorFalso struct {
	mu     sync.Mutex
	avisos []models.Notificacion
}

func (n *notificadorFalso) Notificar(a models.Notificacion) {
	n.mu.Lock()
	n.avisos = append(n.avisos, a)
	n.mu.Unlock()
}

func (n *notificadorFalso) todos() []models.Notificacion {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notificacion(nil), n.avisos...)
}

func (n *notificadorFalso) ultima(t *testing.T) models.Notificacion {
	t.Helper()
	avisos := n.todos()
	if len(avisos) == 0 {
		t.Fatal("no hubo notificaciones")
	}
	return avisos[len(avisos)-1]
}

func decodificar(t *testing.T, data []byte, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("body inválido %s: %v", data, err)
	}
}

func texto(s string) *string { return &s }

func fila(id, folio, status string, suministros ...models.Suministro) gin.H {
	return gin.H{
		"id":              id,
		"folio":           folio,
		"area":            "Mantenimiento",
		"fechaHora":       "2024-03-05 09:30:00",
		"prioridad":       "alto",
		"status":          status,
		"comentarioUser":  "urgente",
		"comentarioAdmin": nil,
		"usuario":         gin.H{"id": 3, "user": "juan", "area": "Mantenimiento"},
		"suministros":     suministros,
	}
}

var (
	usuarioAdmin  = models.Usuario{ID: "1", User: "admin", Rol: models.RolAdmin}
	usuarioNormal = models.Usuario{ID: "3", User: "juan", Rol: models.RolUser}
)
