package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type entornoDetalle struct {
	backend  *backendFalso
	detalle  *DetalleSolicitud
	store    SolicitudStore
	notifica *notificadorFalso
}

// backendDetalle solicitud 9 en el estado dado con dos renglones y un registro parcial previo
func backendDetalle(t *testing.T, status string) *backendFalso {
	t.Helper()
	b := nuevoBackend(t)
	b.router.GET("/solicitudes/:id", func(c *gin.Context) {
		row := fila(c.Param("id"), "F-9", status,
			models.Suministro{ID: "91", Nombre: "Guantes", Cantidad: 10, Unidad: "par"},
			models.Suministro{ID: "92", Nombre: "Cinta", Cantidad: 3, Unidad: "rollo"},
		)
		row["comentarioAdmin"] = "revisado"
		c.JSON(http.StatusOK, gin.H{"solicitud": row})
	})
	b.router.GET("/suministros-parciales/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"suministrosParciales": []gin.H{
			{"id": 1, "solicitudId": 9, "suministroId": 91, "nombre": "Guantes", "cantidad": 2, "unidad": "par"},
		}})
	})
	return b
}

func nuevoDetalle(t *testing.T, b *backendFalso, actor models.Usuario) entornoDetalle {
	t.Helper()
	n := &notificadorFalso{}
	creds := client.NewCredenciales("tok")
	store := NewSolicitudStore(b.cliente(), creds, actor, models.PipelineSurtido(), n, zap.NewNop())
	parciales := NewSuministroParcialStore(b.cliente(), creds, zap.NewNop())
	return entornoDetalle{
		backend:  b,
		detalle:  NewDetalleSolicitud(store, parciales, actor, n, zap.NewNop()),
		store:    store,
		notifica: n,
	}
}

func (e entornoDetalle) abrir(t *testing.T) {
	t.Helper()
	if err := e.detalle.Abrir(context.Background(), "9"); err != nil {
		t.Fatalf("Abrir: %v", err)
	}
	if e.detalle.Estado() != DetalleAbierto {
		t.Fatalf("estado = %s", e.detalle.Estado())
	}
}

func marcar(t *testing.T, d *DetalleSolicitud, indice, cantidad int) {
	t.Helper()
	si := true
	if err := d.ActualizarEntrega(indice, CambioEntrega{Marcado: &si, Cantidad: &cantidad}); err != nil {
		t.Fatalf("ActualizarEntrega(%d): %v", indice, err)
	}
}

func TestDetalle_AbrirTomaSnapshotEHistorial(t *testing.T) {
	e := nuevoDetalle(t, backendDetalle(t, "en proceso"), usuarioAdmin)
	e.abrir(t)

	vista := e.detalle.Vista()
	if vista.Snapshot.Status != models.StatusEnProceso || vista.Snapshot.ComentarioAdmin != "revisado" {
		t.Fatalf("snapshot = %+v", vista.Snapshot)
	}
	if vista.HayCambios {
		t.Fatal("recién abierto no hay cambios")
	}
	if len(vista.Borrador.Entregas) != 2 || vista.Borrador.Entregas[0].Solicitada != 10 {
		t.Fatalf("checklist = %+v", vista.Borrador.Entregas)
	}
	if vista.Boton.Texto != "Cerrar" || vista.Boton.Deshabilitado {
		t.Fatalf("botón = %+v", vista.Boton)
	}
	if len(vista.Historial) == 0 || vista.Historial[0].Entregada != 2 {
		t.Fatalf("historial = %+v", vista.Historial)
	}
}

func TestDetalle_SinCambiosCierraSinLlamadas(t *testing.T) {
	e := nuevoDetalle(t, backendDetalle(t, "en proceso"), usuarioAdmin)
	e.abrir(t)

	// Solo espacios en el comentario no cuentan como cambio
	if err := e.detalle.CambiarComentario("  revisado  "); err != nil {
		t.Fatalf("CambiarComentario: %v", err)
	}
	antes := e.backend.total()

	res, err := e.detalle.Cerrar(context.Background())
	if err != nil || !res.Cerrado || res.Guardado {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if e.backend.total() != antes {
		t.Fatal("cerrar sin cambios no debe llamar al backend")
	}
	if e.detalle.Estado() != DetalleCerrado {
		t.Fatalf("estado = %s", e.detalle.Estado())
	}
}

func TestDetalle_EntregaParcialEnviaLoteAntesDelStatus(t *testing.T) {
	b := backendDetalle(t, "en proceso")
	b.router.POST("/suministros-parciales/:id", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"msg": "ok"})
	})
	b.router.PUT("/solicitudes/:id/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"solicitud": fila(c.Param("id"), "F-9", "entrega parcial")})
	})
	e := nuevoDetalle(t, b, usuarioAdmin)
	e.abrir(t)

	if err := e.detalle.CambiarStatus(models.StatusEntregaParcial); err != nil {
		t.Fatalf("CambiarStatus: %v", err)
	}
	marcar(t, e.detalle, 0, 5)
	if !e.detalle.Vista().ChecklistVisible {
		t.Fatal("el checklist debe mostrarse en entrega parcial")
	}

	res, err := e.detalle.Cerrar(context.Background())
	if err != nil || !res.Guardado || !res.Cerrado {
		t.Fatalf("res=%+v err=%v", res, err)
	}

	lotes := b.llamadasA(http.MethodPost, "/suministros-parciales/9")
	status := b.llamadasA(http.MethodPut, "/solicitudes/9/status")
	if len(lotes) != 1 || len(status) != 1 {
		t.Fatalf("lotes=%d status=%d", len(lotes), len(status))
	}
	var lote models.SuministrosParcialesRequest
	decodificar(t, lotes[0].Body, &lote)
	if len(lote.SuministrosParciales) != 1 {
		t.Fatalf("lote = %+v", lote)
	}
	item := lote.SuministrosParciales[0]
	if item.SuministroID != "91" || item.Cantidad != 5 || item.Unidad != "par" {
		t.Fatalf("item = %+v", item)
	}

	b.mu.Lock()
	var orden []string
	for _, l := range b.llamadas {
		if l.Metodo != http.MethodGet {
			orden = append(orden, l.Metodo)
		}
	}
	b.mu.Unlock()
	if len(orden) != 2 || orden[0] != http.MethodPost || orden[1] != http.MethodPut {
		t.Fatalf("el lote debe enviarse antes del status: %v", orden)
	}
	if e.detalle.Estado() != DetalleCerrado {
		t.Fatalf("estado = %s", e.detalle.Estado())
	}
}

func TestDetalle_SinRenglonesMarcadosNoEnviaLote(t *testing.T) {
	b := backendDetalle(t, "en proceso")
	b.router.POST("/suministros-parciales/:id", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})
	b.router.PUT("/solicitudes/:id/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"solicitud": fila(c.Param("id"), "F-9", "entrega parcial")})
	})
	e := nuevoDetalle(t, b, usuarioAdmin)
	e.abrir(t)

	if err := e.detalle.CambiarStatus(models.StatusEntregaParcial); err != nil {
		t.Fatalf("CambiarStatus: %v", err)
	}
	// Marcado con cantidad cero no cuenta
	marcar(t, e.detalle, 1, 0)

	if _, err := e.detalle.Cerrar(context.Background()); err != nil {
		t.Fatalf("Cerrar: %v", err)
	}
	if n := len(b.llamadasA(http.MethodPost, "/suministros-parciales/9")); n != 0 {
		t.Fatalf("no debe enviarse lote, hubo %d", n)
	}
	if n := len(b.llamadasA(http.MethodPut, "/solicitudes/9/status")); n != 1 {
		t.Fatalf("status enviados = %d", n)
	}
}

func TestDetalle_SoloComentarioEnviaUnPut(t *testing.T) {
	b := backendDetalle(t, "en proceso")
	b.router.PUT("/solicitudes/:id/status", func(c *gin.Context) {
		row := fila(c.Param("id"), "F-9", "en proceso")
		row["comentarioAdmin"] = "nuevo"
		c.JSON(http.StatusOK, gin.H{"solicitud": row})
	})
	e := nuevoDetalle(t, b, usuarioAdmin)
	e.abrir(t)

	if err := e.detalle.CambiarComentario("nuevo"); err != nil {
		t.Fatalf("CambiarComentario: %v", err)
	}
	res, err := e.detalle.Cerrar(context.Background())
	if err != nil || !res.Guardado || !res.Cerrado {
		t.Fatalf("res=%+v err=%v", res, err)
	}

	status := b.llamadasA(http.MethodPut, "/solicitudes/9/status")
	if len(status) != 1 {
		t.Fatalf("status enviados = %d", len(status))
	}
	if n := len(b.llamadasA(http.MethodPost, "/suministros-parciales/9")); n != 0 {
		t.Fatalf("no debe enviarse lote, hubo %d", n)
	}
	var body models.CambiarStatusRequest
	decodificar(t, status[0].Body, &body)
	if body.Status != models.StatusEnProceso || body.ComentarioAdmin == nil || *body.ComentarioAdmin != "nuevo" {
		t.Fatalf("body = %s", status[0].Body)
	}
}

func TestDetalle_FallaDelLoteNoCambiaStatus(t *testing.T) {
	b := backendDetalle(t, "en proceso")
	b.router.POST("/suministros-parciales/:id", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Cantidad mayor a la pendiente"})
	})
	b.router.PUT("/solicitudes/:id/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"solicitud": fila(c.Param("id"), "F-9", "entrega parcial")})
	})
	e := nuevoDetalle(t, b, usuarioAdmin)
	e.abrir(t)

	if err := e.detalle.CambiarStatus(models.StatusEntregaParcial); err != nil {
		t.Fatalf("CambiarStatus: %v", err)
	}
	marcar(t, e.detalle, 0, 3)

	res, err := e.detalle.Cerrar(context.Background())
	if err == nil || res.Cerrado {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if n := len(b.llamadasA(http.MethodPut, "/solicitudes/9/status")); n != 0 {
		t.Fatalf("no debe cambiarse el status, hubo %d llamadas", n)
	}
	if e.detalle.Estado() != DetalleAbierto {
		t.Fatalf("el detalle debe seguir abierto, estado = %s", e.detalle.Estado())
	}
	vista := e.detalle.Vista()
	if vista.Borrador.Status != models.StatusEntregaParcial || !vista.HayCambios {
		t.Fatalf("el borrador debe conservarse: %+v", vista.Borrador)
	}
	aviso := e.notifica.ultima(t)
	if aviso.Titulo != "Error" || aviso.Texto != "Cantidad mayor a la pendiente" {
		t.Fatalf("aviso = %+v", aviso)
	}
}

func TestDetalle_FallaDelStatusMantieneAbierto(t *testing.T) {
	b := backendDetalle(t, "en proceso")
	b.router.PUT("/solicitudes/:id/status", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "No se pudo actualizar"})
	})
	e := nuevoDetalle(t, b, usuarioAdmin)
	e.abrir(t)

	if err := e.detalle.CambiarStatus(models.StatusSurtido); err != nil {
		t.Fatalf("CambiarStatus: %v", err)
	}
	if _, err := e.detalle.Cerrar(context.Background()); err == nil {
		t.Fatal("esperaba error")
	}
	if e.detalle.Estado() != DetalleAbierto {
		t.Fatalf("estado = %s", e.detalle.Estado())
	}
	if e.notifica.ultima(t).Texto != "No se pudo actualizar" {
		t.Fatalf("aviso = %+v", e.notifica.ultima(t))
	}
}

func TestDetalle_CerrarMientrasGuarda(t *testing.T) {
	b := backendDetalle(t, "en proceso")
	liberar := make(chan struct{})
	var enCurso atomic.Bool
	b.router.PUT("/solicitudes/:id/status", func(c *gin.Context) {
		enCurso.Store(true)
		<-liberar
		c.JSON(http.StatusOK, gin.H{"solicitud": fila(c.Param("id"), "F-9", "surtido")})
	})
	e := nuevoDetalle(t, b, usuarioAdmin)
	e.abrir(t)
	if err := e.detalle.CambiarStatus(models.StatusSurtido); err != nil {
		t.Fatalf("CambiarStatus: %v", err)
	}

	listo := make(chan error, 1)
	go func() {
		_, err := e.detalle.Cerrar(context.Background())
		listo <- err
	}()

	limite := time.Now().Add(5 * time.Second)
	for !enCurso.Load() {
		if time.Now().After(limite) {
			close(liberar)
			t.Fatal("el guardado nunca llegó al backend")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if e.detalle.Estado() != DetalleGuardando {
		t.Fatalf("estado = %s", e.detalle.Estado())
	}
	if vista := e.detalle.Vista(); vista.Boton.Texto != "Guardando..." || !vista.Boton.Deshabilitado {
		t.Fatalf("botón = %+v", vista.Boton)
	}
	if _, err := e.detalle.Cerrar(context.Background()); !errors.Is(err, ErrGuardandoEnCurso) {
		t.Fatalf("esperaba ErrGuardandoEnCurso, obtuve %v", err)
	}
	if err := e.detalle.CambiarComentario("otro"); !errors.Is(err, ErrGuardandoEnCurso) {
		t.Fatalf("esperaba ErrGuardandoEnCurso, obtuve %v", err)
	}

	close(liberar)
	if err := <-listo; err != nil {
		t.Fatalf("Cerrar: %v", err)
	}
	if e.detalle.Estado() != DetalleCerrado {
		t.Fatalf("estado = %s", e.detalle.Estado())
	}
}

func TestDetalle_RangoDelChecklist(t *testing.T) {
	e := nuevoDetalle(t, backendDetalle(t, "en proceso"), usuarioAdmin)
	e.abrir(t)

	cinco := 5
	if err := e.detalle.ActualizarEntrega(0, CambioEntrega{Cantidad: &cinco}); !errors.Is(err, ErrChecklistNoDisponible) {
		t.Fatalf("fuera de entrega parcial: %v", err)
	}
	if err := e.detalle.CambiarStatus(models.StatusEntregaParcial); err != nil {
		t.Fatalf("CambiarStatus: %v", err)
	}

	casos := []struct {
		nombre   string
		indice   int
		cantidad int
		err      error
	}{
		{"dentro del rango", 1, 3, nil},
		{"cero", 1, 0, nil},
		{"mayor a la solicitada", 1, 4, ErrCantidadFueraDeRango},
		{"negativa", 0, -1, ErrCantidadFueraDeRango},
		{"índice inexistente", 2, 1, ErrIndiceInvalido},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			cantidad := tc.cantidad
			err := e.detalle.ActualizarEntrega(tc.indice, CambioEntrega{Cantidad: &cantidad})
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, esperaba %v", err, tc.err)
			}
		})
	}
}

func TestDetalle_UsuarioSinRolNoGestiona(t *testing.T) {
	e := nuevoDetalle(t, backendDetalle(t, "pendiente surtido"), usuarioNormal)
	e.abrir(t)

	if err := e.detalle.CambiarStatus(models.StatusSurtido); !errors.Is(err, ErrSinPermiso) {
		t.Fatalf("esperaba ErrSinPermiso, obtuve %v", err)
	}
	vista := e.detalle.Vista()
	if vista.PuedeGestionar || len(vista.Opciones) != 0 {
		t.Fatalf("vista = %+v", vista)
	}
	res, err := e.detalle.Cerrar(context.Background())
	if err != nil || !res.Cerrado || res.Guardado {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestDetalle_AbrirFallidoQuedaCerrado(t *testing.T) {
	b := nuevoBackend(t)
	b.router.GET("/solicitudes/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Solicitud no encontrada"})
	})
	e := nuevoDetalle(t, b, usuarioAdmin)

	err := e.detalle.Abrir(context.Background(), "404")
	if client.Clasificar(err) != client.CategoriaServidor {
		t.Fatalf("err = %v", err)
	}
	if e.detalle.Estado() != DetalleCerrado {
		t.Fatalf("estado = %s", e.detalle.Estado())
	}
	if e.notifica.ultima(t).Texto != "Solicitud no encontrada" {
		t.Fatalf("aviso = %+v", e.notifica.ultima(t))
	}
}
