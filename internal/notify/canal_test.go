package notify

import (
	"encoding/json"
	"sync"
	"testing"

	"suministros-dashboard/internal/models"

	"go.uber.org/zap"
)

type publicadorFalso struct {
	mu       sync.Mutex
	mensajes map[string][][]byte
}

func (p *publicadorFalso) Publicar(clave string, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mensajes == nil {
		p.mensajes = make(map[string][][]byte)
	}
	p.mensajes[clave] = append(p.mensajes[clave], data)
}

func TestCanal_CompletaYPublica(t *testing.T) {
	pub := &publicadorFalso{}
	canal := NewCanal("sesion-1", pub, 10, zap.NewNop())

	canal.Notificar(models.Notificacion{Tipo: models.NotificacionExito, Titulo: "¡Solicitud creada!", Texto: "ok"})

	ultima, ok := canal.Ultima()
	if !ok {
		t.Fatal("esperaba una notificación en el historial")
	}
	if ultima.ID == "" || ultima.Timestamp.IsZero() {
		t.Fatalf("id y timestamp deben completarse: %+v", ultima)
	}
	if len(pub.mensajes["sesion-1"]) != 1 {
		t.Fatalf("esperaba 1 mensaje publicado, hay %d", len(pub.mensajes["sesion-1"]))
	}
	var decodificada models.Notificacion
	if err := json.Unmarshal(pub.mensajes["sesion-1"][0], &decodificada); err != nil {
		t.Fatalf("mensaje publicado ilegible: %v", err)
	}
	if decodificada.Titulo != "¡Solicitud creada!" {
		t.Fatalf("titulo = %q", decodificada.Titulo)
	}
}

func TestCanal_HistorialAcotado(t *testing.T) {
	canal := NewCanal("s", nil, 3, zap.NewNop())
	for i := 0; i < 5; i++ {
		canal.Notificar(models.Notificacion{Tipo: models.NotificacionInfo, Texto: string(rune('a' + i))})
	}
	recientes := canal.Recientes()
	if len(recientes) != 3 {
		t.Fatalf("esperaba 3 notificaciones, hay %d", len(recientes))
	}
	if recientes[0].Texto != "c" || recientes[2].Texto != "e" {
		t.Fatalf("historial debe conservar las más nuevas: %+v", recientes)
	}
}
