package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func formularioAbierto(t *testing.T, productos ...models.ProductoFormulario) *FormularioSolicitud {
	t.Helper()
	f := NewFormularioSolicitud()
	var inicial *models.Formulario
	if len(productos) > 0 {
		inicial = &models.Formulario{Prioridad: models.PrioridadAlto, Productos: productos}
	}
	f.Abrir(inicial, models.ModoCrear, "")
	return f
}

func TestFormulario_CerradoRechazaCambios(t *testing.T) {
	f := NewFormularioSolicitud()

	if err := f.CambiarCampo("comentario", "x"); !errors.Is(err, ErrFormularioCerrado) {
		t.Fatalf("CambiarCampo: %v", err)
	}
	if err := f.AgregarProducto(); !errors.Is(err, ErrFormularioCerrado) {
		t.Fatalf("AgregarProducto: %v", err)
	}
	if _, err := GuardarFormulario(context.Background(), f, nil); !errors.Is(err, ErrFormularioCerrado) {
		t.Fatalf("GuardarFormulario: %v", err)
	}
}

func TestFormulario_AbrirVacioTieneUnRenglon(t *testing.T) {
	f := formularioAbierto(t)

	vista := f.Vista()
	if !vista.Abierto || vista.Modo != models.ModoCrear {
		t.Fatalf("vista = %+v", vista)
	}
	if len(vista.Formulario.Productos) != 1 || vista.Formulario.Prioridad != models.PrioridadModerado {
		t.Fatalf("formulario = %+v", vista.Formulario)
	}
}

func TestFormulario_EliminarUltimoRenglonNoHaceNada(t *testing.T) {
	f := formularioAbierto(t)

	if err := f.EliminarProducto(0); err != nil {
		t.Fatalf("EliminarProducto: %v", err)
	}
	if n := len(f.Formulario().Productos); n != 1 {
		t.Fatalf("renglones = %d", n)
	}
}

func TestFormulario_EliminarRecorreErrores(t *testing.T) {
	f := formularioAbierto(t,
		models.ProductoFormulario{Producto: "", Cantidad: "1", Unidad: "pz"},
		models.ProductoFormulario{Producto: "Guantes", Cantidad: "0", Unidad: "par"},
		models.ProductoFormulario{Producto: "Cinta", Cantidad: "2", Unidad: ""},
	)
	if f.Validar() {
		t.Fatal("el formulario no debía ser válido")
	}

	if err := f.EliminarProducto(0); err != nil {
		t.Fatalf("EliminarProducto: %v", err)
	}

	errores := f.Errores()
	if _, ok := errores["producto_0"]; ok {
		t.Fatalf("el error del renglón eliminado debía desaparecer: %v", errores)
	}
	if errores["cantidad_0"] != msgCantidadPositiva || errores["unidad_1"] != msgUnidadObligatoria {
		t.Fatalf("errores = %v", errores)
	}
	if len(errores) != 2 {
		t.Fatalf("errores = %v", errores)
	}
	if p := f.Formulario().Productos; len(p) != 2 || p[0].Producto != "Guantes" {
		t.Fatalf("productos = %+v", p)
	}
}

func TestFormulario_CambiarLimpiaSoloSuError(t *testing.T) {
	f := formularioAbierto(t,
		models.ProductoFormulario{Producto: "", Cantidad: "abc", Unidad: "pz"},
	)
	f.Validar()

	if err := f.CambiarProducto(0, "producto", "Guantes"); err != nil {
		t.Fatalf("CambiarProducto: %v", err)
	}
	errores := f.Errores()
	if _, ok := errores["producto_0"]; ok {
		t.Fatalf("producto_0 debía limpiarse: %v", errores)
	}
	if errores["cantidad_0"] != msgCantidadPositiva {
		t.Fatalf("cantidad_0 debía quedarse: %v", errores)
	}

	if err := f.CambiarProducto(3, "producto", "x"); !errors.Is(err, ErrIndiceInvalido) {
		t.Fatalf("índice inválido: %v", err)
	}
	if err := f.CambiarProducto(0, "color", "x"); !errors.Is(err, ErrCampoInvalido) {
		t.Fatalf("campo inválido: %v", err)
	}
}

func TestFormulario_CerrarReinicia(t *testing.T) {
	f := NewFormularioSolicitud()
	f.Abrir(&models.Formulario{Comentario: "hola", Productos: []models.ProductoFormulario{{Producto: "Guantes"}}}, models.ModoEditar, "9")
	f.Validar()

	f.Cerrar()

	vista := f.Vista()
	if vista.Abierto || vista.Modo != models.ModoCrear || vista.EditandoID != "" {
		t.Fatalf("vista = %+v", vista)
	}
	if vista.Formulario.Comentario != "" || len(vista.Formulario.Productos) != 1 || len(vista.Errores) != 0 {
		t.Fatalf("formulario = %+v errores = %v", vista.Formulario, vista.Errores)
	}
}

func TestValidarFormulario(t *testing.T) {
	f := formularioAbierto(t)
	casos := []struct {
		nombre   string
		producto models.ProductoFormulario
		errores  []string
	}{
		{"completo", models.ProductoFormulario{Producto: "Guantes", Cantidad: "2", Unidad: "par"}, nil},
		{"decimal se trunca", models.ProductoFormulario{Producto: "Guantes", Cantidad: "1.9", Unidad: "par"}, nil},
		{"trunca a cero", models.ProductoFormulario{Producto: "Guantes", Cantidad: "0.5", Unidad: "par"}, []string{"cantidad_0"}},
		{"espacios", models.ProductoFormulario{Producto: "  ", Cantidad: "2", Unidad: " "}, []string{"producto_0", "unidad_0"}},
		{"texto", models.ProductoFormulario{Producto: "Guantes", Cantidad: "dos", Unidad: "par"}, []string{"cantidad_0"}},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			errores := ValidarFormulario(f.validator, models.Formulario{Productos: []models.ProductoFormulario{tc.producto}})
			if len(errores) != len(tc.errores) {
				t.Fatalf("errores = %v, esperaba %v", errores, tc.errores)
			}
			for _, llave := range tc.errores {
				if _, ok := errores[llave]; !ok {
					t.Fatalf("falta %s en %v", llave, errores)
				}
			}
		})
	}
}

func storeFormulario(t *testing.T, b *backendFalso) (SolicitudStore, *notificadorFalso) {
	t.Helper()
	n := &notificadorFalso{}
	return NewSolicitudStore(b.cliente(), client.NewCredenciales("tok"), usuarioNormal, models.PipelineSurtido(), n, zap.NewNop()), n
}

func TestGuardarFormulario_CrearCierraAlConfirmar(t *testing.T) {
	b := nuevoBackend(t)
	b.router.POST("/solicitudes", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"solicitud": fila("40", "F-40", "pendiente surtido")})
	})
	store, _ := storeFormulario(t, b)
	f := formularioAbierto(t, models.ProductoFormulario{Producto: "Guantes", Cantidad: "3", Unidad: "par"})

	sol, err := GuardarFormulario(context.Background(), f, store)
	if err != nil {
		t.Fatalf("GuardarFormulario: %v", err)
	}
	if sol.Folio != "F-40" {
		t.Fatalf("solicitud = %+v", sol)
	}
	if f.Abierto() {
		t.Fatal("el formulario debía cerrarse")
	}
}

func TestGuardarFormulario_EditarUsaElID(t *testing.T) {
	b := nuevoBackend(t)
	b.router.PUT("/solicitudes/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"solicitud": fila(c.Param("id"), "F-12", "pendiente surtido")})
	})
	store, _ := storeFormulario(t, b)
	f := NewFormularioSolicitud()
	f.Abrir(&models.Formulario{Productos: []models.ProductoFormulario{{SuministroID: "5", Producto: "Cinta", Cantidad: "1", Unidad: "rollo"}}}, models.ModoEditar, "12")

	if _, err := GuardarFormulario(context.Background(), f, store); err != nil {
		t.Fatalf("GuardarFormulario: %v", err)
	}
	llamadas := b.llamadasA(http.MethodPut, "/solicitudes/12")
	if len(llamadas) != 1 {
		t.Fatalf("llamadas = %d", len(llamadas))
	}
	var body models.CrearSolicitudRequest
	decodificar(t, llamadas[0].Body, &body)
	if len(body.Suministros) != 1 || body.Suministros[0].ID != "5" {
		t.Fatalf("body = %+v", body)
	}
}

func TestGuardarFormulario_InvalidoConservaErrores(t *testing.T) {
	b := nuevoBackend(t)
	store, _ := storeFormulario(t, b)
	f := formularioAbierto(t)

	_, err := GuardarFormulario(context.Background(), f, store)
	var validacion *ValidacionError
	if !errors.As(err, &validacion) {
		t.Fatalf("esperaba ValidacionError, obtuve %v", err)
	}
	if !f.Abierto() || len(f.Errores()) == 0 {
		t.Fatalf("el formulario debía seguir abierto con errores: %v", f.Errores())
	}
	if b.total() != 0 {
		t.Fatal("no debía llamarse al backend")
	}
}

func TestGuardarFormulario_FallaDelBackendNoCierra(t *testing.T) {
	b := nuevoBackend(t)
	b.router.POST("/solicitudes", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Base de datos caída"})
	})
	store, n := storeFormulario(t, b)
	f := formularioAbierto(t, models.ProductoFormulario{Producto: "Guantes", Cantidad: "3", Unidad: "par"})

	if _, err := GuardarFormulario(context.Background(), f, store); err == nil {
		t.Fatal("esperaba error")
	}
	if !f.Abierto() || f.Formulario().Productos[0].Producto != "Guantes" {
		t.Fatal("el borrador debía conservarse")
	}
	if n.ultima(t).Texto != "Base de datos caída" {
		t.Fatalf("aviso = %+v", n.ultima(t))
	}
}
