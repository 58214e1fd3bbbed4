package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/middleware"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/notify"
	"suministros-dashboard/internal/services"
	"suministros-dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestStatusDeFalla(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		status int
	}{
		{"sin token", client.ErrSinToken, http.StatusUnauthorized},
		{"token expirado", session.ErrTokenExpirado, http.StatusUnauthorized},
		{"backend 404", &client.ServerError{Status: 404}, http.StatusNotFound},
		{"backend 400", fmt.Errorf("envuelto: %w", &client.ServerError{Status: 400}), http.StatusUnprocessableEntity},
		{"backend 500", &client.ServerError{Status: 500}, http.StatusBadGateway},
		{"sin conexión", &client.ConnectionError{Err: errors.New("refused")}, http.StatusBadGateway},
		{"validación", &services.ValidacionError{Errores: map[string]string{"producto_0": "x"}}, http.StatusUnprocessableEntity},
		{"sin permiso", services.ErrSinPermiso, http.StatusForbidden},
		{"no editable", services.ErrNoEditable, http.StatusConflict},
		{"sin confirmar", services.ErrSinConfirmar, http.StatusConflict},
		{"guardando", services.ErrGuardandoEnCurso, http.StatusConflict},
		{"status inválido", errors.Join(services.ErrStatusInvalido, errors.New("x")), http.StatusBadRequest},
		{"rango", services.ErrCantidadFueraDeRango, http.StatusBadRequest},
		{"otro", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			if got := statusDeFalla(tc.err); got != tc.status {
				t.Fatalf("statusDeFalla = %d, esperaba %d", got, tc.status)
			}
		})
	}
}

// entorno router del BFF con una sesión fija contra un backend falso
type entorno struct {
	router  *gin.Engine
	backend *gin.Engine
	sesion  *session.Sesion
}

func nuevoEntorno(t *testing.T, actor models.Usuario) entorno {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := gin.New()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	api := client.NewAPIClient(srv.URL, 0, zap.NewNop(), nil)
	creds := client.NewCredenciales("tok")
	canal := notify.NewCanal("clave", nil, 10, zap.NewNop())
	pipeline := models.PipelineSurtido()
	solicitudes := services.NewSolicitudStore(api, creds, actor, pipeline, canal, zap.NewNop())
	parciales := services.NewSuministroParcialStore(api, creds, zap.NewNop())
	sesion := &session.Sesion{
		Clave:          "clave",
		Credenciales:   creds,
		Notificaciones: canal,
		Solicitudes:    solicitudes,
		Parciales:      parciales,
		Formulario:     services.NewFormularioSolicitud(),
		Detalle:        services.NewDetalleSolicitud(solicitudes, parciales, actor, canal, zap.NewNop()),
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ClaveSesion, sesion)
		c.Next()
	})
	form := NewFormularioHandler(zap.NewNop())
	router.POST("/formulario/abrir", form.Abrir)
	router.POST("/formulario/productos", form.AgregarProducto)
	router.PATCH("/formulario/productos/:indice", form.CambiarProducto)
	router.DELETE("/formulario/productos/:indice", form.EliminarProducto)
	router.POST("/formulario/guardar", form.Guardar)

	sol := NewSolicitudHandler(zap.NewNop())
	router.DELETE("/solicitudes/:id", sol.Eliminar)

	det := NewDetalleHandler(zap.NewNop())
	router.PATCH("/detalle", det.Editar)

	return entorno{router: router, backend: backend, sesion: sesion}
}

func (e entorno) hacer(t *testing.T, metodo, ruta string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("body: %v", err)
		}
	}
	req := httptest.NewRequest(metodo, ruta, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("respuesta inválida %s: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestFormularioHandler_CapturaYGuarda(t *testing.T) {
	e := nuevoEntorno(t, models.Usuario{ID: "3", User: "juan", Rol: models.RolUser})
	e.backend.POST("/solicitudes", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"solicitud": gin.H{
			"id": 50, "folio": "F-50", "status": "pendiente surtido", "prioridad": "moderado",
		}})
	})

	if w, _ := e.hacer(t, http.MethodPost, "/formulario/abrir", nil); w.Code != http.StatusOK {
		t.Fatalf("abrir = %d", w.Code)
	}

	// Borrador vacío: 422 con los errores por renglón
	w, resp := e.hacer(t, http.MethodPost, "/formulario/guardar", nil)
	if w.Code != http.StatusUnprocessableEntity || resp.Success {
		t.Fatalf("guardar vacío = %d %+v", w.Code, resp)
	}
	if errores := e.sesion.Formulario.Errores(); errores["producto_0"] == "" || errores["unidad_0"] == "" {
		t.Fatalf("errores = %v", errores)
	}

	for campo, valor := range map[string]string{"producto": "Guantes", "cantidad": "2", "unidad": "par"} {
		w, _ := e.hacer(t, http.MethodPatch, "/formulario/productos/0", gin.H{"campo": campo, "valor": valor})
		if w.Code != http.StatusOK {
			t.Fatalf("cambiar %s = %d", campo, w.Code)
		}
	}
	if w, _ := e.hacer(t, http.MethodPatch, "/formulario/productos/0", gin.H{"campo": "color", "valor": "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("campo desconocido = %d", w.Code)
	}
	if w, _ := e.hacer(t, http.MethodPatch, "/formulario/productos/x", gin.H{"campo": "unidad", "valor": "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("índice no numérico = %d", w.Code)
	}

	w, resp = e.hacer(t, http.MethodPost, "/formulario/guardar", nil)
	if w.Code != http.StatusCreated || !resp.Success {
		t.Fatalf("guardar = %d %+v", w.Code, resp)
	}
	if e.sesion.Formulario.Abierto() {
		t.Fatal("el formulario debía cerrarse")
	}
	if datos := e.sesion.Solicitudes.Datos(); len(datos) != 1 || datos[0].Folio != "F-50" {
		t.Fatalf("datos = %+v", datos)
	}
}

func TestSolicitudHandler_EliminarPideConfirmacion(t *testing.T) {
	e := nuevoEntorno(t, models.Usuario{ID: "3", User: "juan", Rol: models.RolUser})
	var borradas atomic.Int32
	e.backend.DELETE("/solicitudes/:id", func(c *gin.Context) {
		borradas.Add(1)
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})
	e.backend.GET("/solicitudes/usuario", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"solicitudes": []gin.H{
			{"id": 8, "folio": "F-8", "status": "pendiente surtido", "prioridad": "alto"},
		}})
	})
	if err := e.sesion.Solicitudes.ListarMias(context.Background()); err != nil {
		t.Fatalf("ListarMias: %v", err)
	}

	w, resp := e.hacer(t, http.MethodDelete, "/solicitudes/8", nil)
	if w.Code != http.StatusConflict || resp.Success || borradas.Load() != 0 {
		t.Fatalf("sin confirmar = %d %+v borradas=%d", w.Code, resp, borradas.Load())
	}

	w, resp = e.hacer(t, http.MethodDelete, "/solicitudes/8?confirmar=true", nil)
	if w.Code != http.StatusOK || !resp.Success || borradas.Load() != 1 {
		t.Fatalf("confirmada = %d %+v borradas=%d", w.Code, resp, borradas.Load())
	}
}

func TestDetalleHandler_Editar(t *testing.T) {
	e := nuevoEntorno(t, models.Usuario{ID: "1", User: "admin", Rol: models.RolAdmin})

	if w, _ := e.hacer(t, http.MethodPatch, "/detalle", gin.H{"status": "archivada"}); w.Code != http.StatusBadRequest {
		t.Fatalf("status desconocido = %d", w.Code)
	}
	if w, _ := e.hacer(t, http.MethodPatch, "/detalle", gin.H{"status": "surtido"}); w.Code != http.StatusConflict {
		t.Fatalf("sin detalle abierto = %d", w.Code)
	}
}

func TestSolicitudHandler_EliminarBloqueada(t *testing.T) {
	e := nuevoEntorno(t, models.Usuario{ID: "3", User: "juan", Rol: models.RolUser})
	var borradas atomic.Int32
	e.backend.DELETE("/solicitudes/:id", func(c *gin.Context) {
		borradas.Add(1)
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})
	e.backend.GET("/solicitudes/usuario", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"solicitudes": []gin.H{
			{"id": 8, "folio": "F-8", "status": "surtido", "prioridad": "alto"},
		}})
	})
	e.backend.GET("/solicitudes/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"solicitud": gin.H{
			"id": c.Param("id"), "folio": "F-" + c.Param("id"), "status": "entrega parcial", "prioridad": "alto",
		}})
	})
	if err := e.sesion.Solicitudes.ListarMias(context.Background()); err != nil {
		t.Fatalf("ListarMias: %v", err)
	}

	// En la colección
	w, resp := e.hacer(t, http.MethodDelete, "/solicitudes/8?confirmar=true", nil)
	if w.Code != http.StatusConflict || resp.Success || borradas.Load() != 0 {
		t.Fatalf("listada = %d %+v borradas=%d", w.Code, resp, borradas.Load())
	}

	// Nunca listada: se consulta al backend
	w, resp = e.hacer(t, http.MethodDelete, "/solicitudes/12?confirmar=true", nil)
	if w.Code != http.StatusConflict || resp.Success || borradas.Load() != 0 {
		t.Fatalf("sin listar = %d %+v borradas=%d", w.Code, resp, borradas.Load())
	}
}
