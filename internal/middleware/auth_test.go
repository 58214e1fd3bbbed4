package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestTokenDe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	casos := []struct {
		nombre   string
		header   string
		url      string
		esperado string
	}{
		{"bearer", "Bearer abc", "/", "abc"},
		{"bearer minúsculas", "bearer  abc ", "/", "abc"},
		{"otro esquema", "Basic abc", "/?token=xyz", ""},
		{"query del websocket", "", "/?token=xyz", "xyz"},
		{"sin token", "", "/", ""},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.header != "" {
				c.Request.Header.Set("Authorization", tc.header)
			}
			if got := TokenDe(c); got != tc.esperado {
				t.Fatalf("TokenDe = %q, esperaba %q", got, tc.esperado)
			}
		})
	}
}

func TestSesionRequerida_SinToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	llego := false
	router.GET("/privado", SesionRequerida(nil, zap.NewNop()), func(c *gin.Context) {
		llego = true
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/privado", nil))

	if w.Code != http.StatusUnauthorized || llego {
		t.Fatalf("status = %d llegó = %v", w.Code, llego)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ClaveRequestID))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.Len() == 0 || w.Header().Get("X-Request-ID") != w.Body.String() {
		t.Fatalf("request id = %q header = %q", w.Body.String(), w.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" {
		t.Fatalf("debía conservar el id recibido, obtuve %q", w.Body.String())
	}
}
