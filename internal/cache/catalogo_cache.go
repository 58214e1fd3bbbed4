package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrNoEncontrado la llave no está en ningún nivel
var ErrNoEncontrado = errors.New("llave no encontrada en caché")

// CacheStats estadísticas del caché
type CacheStats struct {
	Hits          int64
	Misses        int64
	TotalRequests int64
	TotalKeys     int
	L2Habilitado  bool
}

type entradaL1 struct {
	data   []byte
	expira time.Time
}

// CatalogoCache caché de dos niveles para catálogos compartidos entre sesiones
type CatalogoCache struct {
	// L1: memoria local
	l1Cache map[string]entradaL1
	l1Mutex sync.RWMutex

	// L2: Redis, opcional
	redisClient *redis.Client

	maxL1Size int
	ttl       time.Duration
	prefijo   string

	logger *zap.Logger

	statsMutex sync.RWMutex
	hits       int64
	misses     int64
}

// NewCatalogoCache redisClient nil deja solo el nivel en memoria
func NewCatalogoCache(redisClient *redis.Client, maxL1Size int, ttl time.Duration, logger *zap.Logger) *CatalogoCache {
	if maxL1Size <= 0 {
		maxL1Size = 100
	}
	return &CatalogoCache{
		l1Cache:     make(map[string]entradaL1),
		redisClient: redisClient,
		maxL1Size:   maxL1Size,
		ttl:         ttl,
		prefijo:     "catalogo:",
		logger:      logger,
	}
}

// Iniciar limpia periódicamente las entradas vencidas del L1
func (cc *CatalogoCache) Iniciar(ctx context.Context, intervalo time.Duration) {
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cc.limpiarVencidos(time.Now())
		}
	}
}

func (cc *CatalogoCache) GetStats() CacheStats {
	cc.statsMutex.RLock()
	defer cc.statsMutex.RUnlock()

	cc.l1Mutex.RLock()
	totalKeys := len(cc.l1Cache)
	cc.l1Mutex.RUnlock()

	return CacheStats{
		Hits:          cc.hits,
		Misses:        cc.misses,
		TotalRequests: cc.hits + cc.misses,
		TotalKeys:     totalKeys,
		L2Habilitado:  cc.redisClient != nil,
	}
}

// Get busca la llave en L1 y luego en L2; decodifica en dest
func (cc *CatalogoCache) Get(ctx context.Context, llave string, dest interface{}) error {
	start := time.Now()

	if data, ok := cc.getFromL1(llave, start); ok {
		if err := json.Unmarshal(data, dest); err == nil {
			cc.recordHit()
			cc.logger.Debug("L1 cache hit", zap.String("llave", llave), zap.Duration("latency", time.Since(start)))
			return nil
		}
	}

	if data, err := cc.getFromL2(ctx, llave); err == nil {
		if err := json.Unmarshal(data, dest); err == nil {
			cc.setToL1(llave, data)
			cc.recordHit()
			cc.logger.Debug("L2 cache hit", zap.String("llave", llave), zap.Duration("latency", time.Since(start)))
			return nil
		}
	}

	cc.recordMiss()
	cc.logger.Debug("Cache miss", zap.String("llave", llave), zap.Duration("latency", time.Since(start)))
	return ErrNoEncontrado
}

// Set guarda en ambos niveles; un fallo de Redis no invalida el L1
func (cc *CatalogoCache) Set(ctx context.Context, llave string, valor interface{}) error {
	data, err := json.Marshal(valor)
	if err != nil {
		return fmt.Errorf("error serializando %s: %w", llave, err)
	}
	cc.setToL1(llave, data)
	return cc.setToL2(ctx, llave, data)
}

// Invalidar borra la llave en ambos niveles
func (cc *CatalogoCache) Invalidar(ctx context.Context, llave string) error {
	cc.l1Mutex.Lock()
	delete(cc.l1Cache, llave)
	cc.l1Mutex.Unlock()

	if cc.redisClient == nil {
		return nil
	}
	return cc.redisClient.Del(ctx, cc.prefijo+llave).Err()
}

func (cc *CatalogoCache) recordHit() {
	cc.statsMutex.Lock()
	cc.hits++
	cc.statsMutex.Unlock()
}

func (cc *CatalogoCache) recordMiss() {
	cc.statsMutex.Lock()
	cc.misses++
	cc.statsMutex.Unlock()
}

func (cc *CatalogoCache) getFromL1(llave string, ahora time.Time) ([]byte, bool) {
	cc.l1Mutex.RLock()
	defer cc.l1Mutex.RUnlock()
	entrada, ok := cc.l1Cache[llave]
	if !ok || (cc.ttl > 0 && ahora.After(entrada.expira)) {
		return nil, false
	}
	return entrada.data, true
}

func (cc *CatalogoCache) setToL1(llave string, data []byte) {
	cc.l1Mutex.Lock()
	defer cc.l1Mutex.Unlock()

	if _, existe := cc.l1Cache[llave]; !existe && len(cc.l1Cache) >= cc.maxL1Size {
		cc.evictMasViejo()
	}
	cc.l1Cache[llave] = entradaL1{data: data, expira: time.Now().Add(cc.ttl)}
}

// evictMasViejo saca la entrada que vence primero
func (cc *CatalogoCache) evictMasViejo() {
	var llaveVieja string
	var expira time.Time
	for llave, entrada := range cc.l1Cache {
		if llaveVieja == "" || entrada.expira.Before(expira) {
			llaveVieja = llave
			expira = entrada.expira
		}
	}
	delete(cc.l1Cache, llaveVieja)
}

func (cc *CatalogoCache) getFromL2(ctx context.Context, llave string) ([]byte, error) {
	if cc.redisClient == nil {
		return nil, ErrNoEncontrado
	}
	data, err := cc.redisClient.Get(ctx, cc.prefijo+llave).Bytes()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (cc *CatalogoCache) setToL2(ctx context.Context, llave string, data []byte) error {
	if cc.redisClient == nil {
		return nil
	}
	return cc.redisClient.Set(ctx, cc.prefijo+llave, data, cc.ttl).Err()
}

func (cc *CatalogoCache) limpiarVencidos(ahora time.Time) {
	if cc.ttl <= 0 {
		return
	}
	cc.l1Mutex.Lock()
	defer cc.l1Mutex.Unlock()
	eliminadas := 0
	for llave, entrada := range cc.l1Cache {
		if ahora.After(entrada.expira) {
			delete(cc.l1Cache, llave)
			eliminadas++
		}
	}
	cc.logger.Debug("L1 cache cleanup", zap.Int("eliminadas", eliminadas), zap.Int("items", len(cc.l1Cache)))
}
