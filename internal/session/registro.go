package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"
	"suministros-dashboard/internal/notify"
	"suministros-dashboard/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrTokenExpirado = errors.New("el token de sesión ya expiró")

// Difusor entrega notificaciones a los websockets de una sesión
type Difusor interface {
	notify.Publicador
	CerrarSesion(clave string)
}

// Sesion espacio de trabajo de un token: stores, formulario, detalle y avisos
type Sesion struct {
	Clave          string
	Credenciales   *client.Credenciales
	Notificaciones *notify.Canal
	Solicitudes    services.SolicitudStore
	Parciales      services.SuministroParcialStore
	Formulario     *services.FormularioSolicitud
	Detalle        *services.DetalleSolicitud
	Dashboard      services.DashboardService

	mu        sync.RWMutex
	usuario   models.Usuario
	expira    time.Time
	ultimoUso time.Time
}

func (s *Sesion) Usuario() models.Usuario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usuario
}

func (s *Sesion) Expira() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expira
}

// FijarColorPerfil refleja localmente un cambio ya aceptado por el backend
func (s *Sesion) FijarColorPerfil(color string) {
	s.mu.Lock()
	s.usuario.ColorPerfil = color
	s.mu.Unlock()
}

func (s *Sesion) tocar(ahora time.Time) {
	s.mu.Lock()
	s.ultimoUso = ahora
	s.mu.Unlock()
}

func (s *Sesion) vencida(ahora time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !ahora.Before(s.expira)
}

// Registro sesiones vivas indexadas por el hash del token
type Registro struct {
	backend   services.Backend
	auth      services.AuthService
	pipeline  models.Pipeline
	difusor   Difusor
	ttl       time.Duration
	historial int
	logger    *zap.Logger
	ahora     func() time.Time

	mu       sync.Mutex
	sesiones map[string]*Sesion
}

// NewRegistro difusor puede ser nil (sin websockets)
func NewRegistro(
	backend services.Backend,
	auth services.AuthService,
	pipeline models.Pipeline,
	difusor Difusor,
	ttl time.Duration,
	historial int,
	logger *zap.Logger,
) *Registro {
	return &Registro{
		backend:   backend,
		auth:      auth,
		pipeline:  pipeline,
		difusor:   difusor,
		ttl:       ttl,
		historial: historial,
		logger:    logger.With(zap.String("component", "sesiones")),
		ahora:     time.Now,
		sesiones:  make(map[string]*Sesion),
	}
}

// Clave identificador estable de un token; el token nunca se usa como llave
func Clave(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Resolver devuelve la sesión del token y la crea la primera vez,
// resolviendo el perfil contra el backend
func (r *Registro) Resolver(ctx context.Context, token string) (*Sesion, error) {
	if token == "" {
		return nil, client.ErrSinToken
	}
	clave := Clave(token)
	ahora := r.ahora()

	if s, ok := r.Obtener(clave); ok {
		s.tocar(ahora)
		return s, nil
	}

	expira, err := r.expiracion(token, ahora)
	if err != nil {
		return nil, err
	}

	usuario, err := r.auth.Perfil(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir la sesión: %w", err)
	}

	nueva := r.construir(clave, token, *usuario, expira, ahora)

	r.mu.Lock()
	defer r.mu.Unlock()
	// Otra petición concurrente pudo crearla mientras se resolvía el perfil
	if existente, ok := r.sesiones[clave]; ok {
		nueva.Credenciales.Limpiar()
		return existente, nil
	}
	r.sesiones[clave] = nueva

	r.logger.Info("✅ Sesión abierta",
		zap.String("usuario", usuario.User),
		zap.String("rol", string(usuario.Rol)),
		zap.Time("expira", expira))
	return nueva, nil
}

func (r *Registro) construir(clave, token string, usuario models.Usuario, expira, ahora time.Time) *Sesion {
	logger := r.logger.With(zap.String("sesion", clave[:12]))

	var publicador notify.Publicador
	if r.difusor != nil {
		publicador = r.difusor
	}

	credenciales := client.NewCredenciales(token)
	canal := notify.NewCanal(clave, publicador, r.historial, logger)
	solicitudes := services.NewSolicitudStore(r.backend, credenciales, usuario, r.pipeline, canal, logger)
	parciales := services.NewSuministroParcialStore(r.backend, credenciales, logger)

	return &Sesion{
		Clave:          clave,
		Credenciales:   credenciales,
		Notificaciones: canal,
		Solicitudes:    solicitudes,
		Parciales:      parciales,
		Formulario:     services.NewFormularioSolicitud(),
		Detalle:        services.NewDetalleSolicitud(solicitudes, parciales, usuario, canal, logger),
		Dashboard:      services.NewDashboardService(r.backend, credenciales, logger),
		usuario:        usuario,
		expira:         expira,
		ultimoUso:      ahora,
	}
}

// expiracion usa el claim exp si el token es un JWT legible; si no, el TTL configurado.
// La firma la valida el backend, aquí solo se lee.
func (r *Registro) expiracion(token string, ahora time.Time) (time.Time, error) {
	limite := ahora.Add(r.ttl)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return limite, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return limite, nil
	}
	if !ahora.Before(exp.Time) {
		return time.Time{}, ErrTokenExpirado
	}
	if exp.Time.Before(limite) {
		return exp.Time, nil
	}
	return limite, nil
}

// Obtener sesión viva por clave
func (r *Registro) Obtener(clave string) (*Sesion, bool) {
	r.mu.Lock()
	s, ok := r.sesiones[clave]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	if s.vencida(r.ahora()) {
		r.Cerrar(clave)
		return nil, false
	}
	return s, true
}

// Cerrar logout: borra credenciales, estado de la sesión y websockets
func (r *Registro) Cerrar(clave string) bool {
	r.mu.Lock()
	s, ok := r.sesiones[clave]
	delete(r.sesiones, clave)
	r.mu.Unlock()
	if !ok {
		return false
	}

	s.Credenciales.Limpiar()
	s.Formulario.Cerrar()
	s.Parciales.Limpiar()
	if r.difusor != nil {
		r.difusor.CerrarSesion(clave)
	}
	r.logger.Info("Sesión cerrada", zap.String("usuario", s.Usuario().User))
	return true
}

func (r *Registro) Activas() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sesiones)
}

// Barrer cierra las sesiones vencidas y devuelve cuántas cerró
func (r *Registro) Barrer() int {
	ahora := r.ahora()
	var vencidas []string

	r.mu.Lock()
	for clave, s := range r.sesiones {
		if s.vencida(ahora) {
			vencidas = append(vencidas, clave)
		}
	}
	r.mu.Unlock()

	cerradas := 0
	for _, clave := range vencidas {
		if r.Cerrar(clave) {
			cerradas++
		}
	}
	if cerradas > 0 {
		r.logger.Debug("Sesiones vencidas eliminadas", zap.Int("cerradas", cerradas))
	}
	return cerradas
}

// Iniciar barrido periódico hasta que el contexto termina
func (r *Registro) Iniciar(ctx context.Context, intervalo time.Duration) {
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Barrer()
		}
	}
}
