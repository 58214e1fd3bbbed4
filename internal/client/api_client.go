package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"suministros-dashboard/internal/models"

	"go.uber.org/zap"
)

// Observer recibe cada llamada hecha al backend
type Observer interface {
	ObservarLlamada(llamada models.LlamadaUpstream)
}

// APIClient cliente HTTP del backend de solicitudes
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	observer   Observer
}

// NewAPIClient timeout 0 deja la petición sin límite propio; solo el contexto la corta
func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger, observer Observer) *APIClient {
	return &APIClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger.With(zap.String("component", "api_client")),
		observer: observer,
	}
}

func (c *APIClient) Get(ctx context.Context, token, path string, out interface{}) error {
	return c.do(ctx, token, http.MethodGet, path, nil, out)
}

func (c *APIClient) Post(ctx context.Context, token, path string, body, out interface{}) error {
	return c.do(ctx, token, http.MethodPost, path, body, out)
}

func (c *APIClient) Put(ctx context.Context, token, path string, body, out interface{}) error {
	return c.do(ctx, token, http.MethodPut, path, body, out)
}

func (c *APIClient) Delete(ctx context.Context, token, path string, out interface{}) error {
	return c.do(ctx, token, http.MethodDelete, path, nil, out)
}

// errorPayload cuerpo de error del backend
type errorPayload struct {
	Msg string `json:"msg"`
}

func (c *APIClient) do(ctx context.Context, token, method, path string, body, out interface{}) (err error) {
	if token == "" {
		return ErrSinToken
	}

	start := time.Now()
	statusCode := 0
	defer func() {
		c.observar(method, path, statusCode, time.Since(start), err)
	}()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return fmt.Errorf("error serializando body: %w", marshalErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creando request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend sin respuesta",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectionError{Err: fmt.Errorf("error leyendo respuesta: %w", err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var payload errorPayload
		_ = json.Unmarshal(respBody, &payload)
		c.logger.Debug("Backend respondió con error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("msg", payload.Msg))
		return &ServerError{Status: resp.StatusCode, Msg: payload.Msg}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error decodificando respuesta de %s %s: %w", method, path, err)
	}
	return nil
}

func (c *APIClient) observar(method, path string, statusCode int, duracion time.Duration, err error) {
	if c.observer == nil {
		return
	}
	c.observer.ObservarLlamada(models.LlamadaUpstream{
		Metodo:     method,
		Ruta:       PlantillaRuta(path),
		StatusCode: statusCode,
		Duracion:   duracion,
		Timestamp:  time.Now(),
		Error:      err,
	})
}

// PlantillaRuta reemplaza los segmentos que contienen dígitos por :id
// para no abrir una serie de métricas por solicitud.
func PlantillaRuta(path string) string {
	segmentos := strings.Split(path, "/")
	for i, seg := range segmentos {
		if strings.IndexFunc(seg, unicode.IsDigit) >= 0 {
			segmentos[i] = ":id"
		}
	}
	return strings.Join(segmentos, "/")
}

// Ping comprueba que el backend responde; cualquier status cuenta como vivo
func (c *APIClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("error creando request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
