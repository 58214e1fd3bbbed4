package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisDB segundo nivel del cache de catálogos; opcional
type RedisDB struct {
	Client *redis.Client
}

// NewRedisDB devuelve nil, nil cuando no hay URL configurada
func NewRedisDB(ctx context.Context, url, password string, db int, logger *zap.Logger) (*RedisDB, error) {
	if url == "" {
		logger.Info("Redis deshabilitado, el cache de catálogos queda solo en memoria")
		return nil, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Si se proporciona una contraseña separada, usarla
	if password != "" {
		opt.Password = password
	}
	opt.DB = db

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Redis connection established",
		zap.String("addr", opt.Addr),
		zap.Int("db", db),
	)

	return &RedisDB{Client: client}, nil
}

// Cliente nil-safe para pasar a cache y monitoreo
func (r *RedisDB) Cliente() *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}

func (r *RedisDB) Close() error {
	if r == nil {
		return nil
	}
	return r.Client.Close()
}

func (r *RedisDB) Ping(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.Client.Ping(ctx).Err()
}
