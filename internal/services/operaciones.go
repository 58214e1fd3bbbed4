package services

import (
	"sync"

	"github.com/google/uuid"
)

type tipoOperacion int

const (
	// opDatos carga de listados
	opDatos tipoOperacion = iota
	// opAccion lecturas puntuales y escrituras
	opAccion
)

// operaciones registro de llamadas en curso; los indicadores de carga
// se derivan de aquí y no de banderas sueltas.
type operaciones struct {
	mu      sync.Mutex
	activas map[uuid.UUID]tipoOperacion
}

func nuevasOperaciones() *operaciones {
	return &operaciones{activas: make(map[uuid.UUID]tipoOperacion)}
}

func (o *operaciones) iniciar(tipo tipoOperacion) uuid.UUID {
	id := uuid.New()
	o.mu.Lock()
	o.activas[id] = tipo
	o.mu.Unlock()
	return id
}

func (o *operaciones) terminar(id uuid.UUID) {
	o.mu.Lock()
	delete(o.activas, id)
	o.mu.Unlock()
}

func (o *operaciones) enCurso(tipo tipoOperacion) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, t := range o.activas {
		if t == tipo {
			return true
		}
	}
	return false
}
