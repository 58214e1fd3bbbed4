package client

import (
	"errors"
	"fmt"
)

// ErrSinToken la sesión no tiene token; no se hace la llamada
var ErrSinToken = errors.New("no hay token de autenticación")

// ServerError el backend respondió con un status de error
type ServerError struct {
	Status int
	Msg    string
}

func (e *ServerError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend respondió %d", e.Status)
	}
	return fmt.Sprintf("backend respondió %d: %s", e.Status, e.Msg)
}

// ConnectionError la petición salió pero no hubo respuesta
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "sin respuesta del backend: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Categoria clasificación de fallas que se muestra al usuario
type Categoria int

const (
	CategoriaInesperada Categoria = iota
	CategoriaSinToken
	CategoriaServidor
	CategoriaConexion
)

// Clasificar ubica un error dentro de la taxonomía de fallas
func Clasificar(err error) Categoria {
	var serverErr *ServerError
	var connErr *ConnectionError
	switch {
	case errors.Is(err, ErrSinToken):
		return CategoriaSinToken
	case errors.As(err, &serverErr):
		return CategoriaServidor
	case errors.As(err, &connErr):
		return CategoriaConexion
	}
	return CategoriaInesperada
}

// MensajeServidor mensaje del backend si el error lo trae
func MensajeServidor(err error) (string, bool) {
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Msg != "" {
		return serverErr.Msg, true
	}
	return "", false
}

// EsNoAutorizado 401 del backend
func EsNoAutorizado(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr) && serverErr.Status == 401
}
