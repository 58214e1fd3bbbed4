package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// El origen ya lo filtra el middleware de CORS
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Cliente conexión websocket de una sesión
type Cliente struct {
	hub   *Hub
	clave string
	conn  *websocket.Conn
	send  chan []byte
}

type mensaje struct {
	clave string
	data  []byte
}

// Hub reparte las notificaciones a los websockets de cada sesión
type Hub struct {
	clientes   map[string]map[*Cliente]bool
	publicar   chan mensaje
	register   chan *Cliente
	unregister chan *Cliente
	cerrar     chan string
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clientes:   make(map[string]map[*Cliente]bool),
		publicar:   make(chan mensaje, 256),
		register:   make(chan *Cliente),
		unregister: make(chan *Cliente),
		cerrar:     make(chan string, 16),
		done:       make(chan struct{}),
		logger:     logger.With(zap.String("component", "notify_hub")),
	}
}

// Run despacha registros y mensajes hasta que el contexto termina
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for clave, clientes := range h.clientes {
				for cliente := range clientes {
					close(cliente.send)
				}
				delete(h.clientes, clave)
			}
			h.mu.Unlock()
			return
		case cliente := <-h.register:
			h.mu.Lock()
			if h.clientes[cliente.clave] == nil {
				h.clientes[cliente.clave] = make(map[*Cliente]bool)
			}
			h.clientes[cliente.clave][cliente] = true
			h.mu.Unlock()
			h.logger.Debug("🔌 Cliente websocket conectado")
		case cliente := <-h.unregister:
			h.quitar(cliente)
		case clave := <-h.cerrar:
			h.mu.Lock()
			for cliente := range h.clientes[clave] {
				close(cliente.send)
			}
			delete(h.clientes, clave)
			h.mu.Unlock()
		case m := <-h.publicar:
			h.mu.Lock()
			for cliente := range h.clientes[m.clave] {
				select {
				case cliente.send <- m.data:
				default:
					// Cliente lento: se descarta
					close(cliente.send)
					delete(h.clientes[m.clave], cliente)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) quitar(cliente *Cliente) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clientes[cliente.clave][cliente]; ok {
		delete(h.clientes[cliente.clave], cliente)
		close(cliente.send)
		if len(h.clientes[cliente.clave]) == 0 {
			delete(h.clientes, cliente.clave)
		}
		h.logger.Debug("🔌 Cliente websocket desconectado")
	}
}

// desregistrar no bloquea si Run ya terminó
func (h *Hub) desregistrar(cliente *Cliente) {
	select {
	case h.unregister <- cliente:
	case <-h.done:
	}
}

// Publicar nunca bloquea a quien notifica
func (h *Hub) Publicar(clave string, data []byte) {
	select {
	case h.publicar <- mensaje{clave: clave, data: data}:
	default:
		h.logger.Warn("⚠️ Cola de notificaciones llena, se descarta el mensaje")
	}
}

// CerrarSesion desconecta los websockets de una sesión
func (h *Hub) CerrarSesion(clave string) {
	select {
	case h.cerrar <- clave:
	default:
		h.logger.Warn("⚠️ No se pudo encolar el cierre de websockets")
	}
}

// Conectados número de websockets abiertos para una sesión
func (h *Hub) Conectados(clave string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientes[clave])
}

// ServeWs actualiza la conexión y la asocia a la sesión ya autenticada
func (h *Hub) ServeWs(c *gin.Context, clave string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("❌ Error actualizando a WebSocket", zap.Error(err))
		return
	}
	cliente := &Cliente{hub: h, clave: clave, conn: conn, send: make(chan []byte, 32)}
	select {
	case h.register <- cliente:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go cliente.writePump()
	go cliente.readPump()
}

func (c *Cliente) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump solo mantiene viva la conexión; el navegador no envía mensajes
func (c *Cliente) readPump() {
	defer func() {
		c.hub.desregistrar(c)
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("Websocket cerrado inesperadamente", zap.Error(err))
			}
			return
		}
	}
}
