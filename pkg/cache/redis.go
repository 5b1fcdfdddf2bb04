// Package cache connects the Redis instance that serves as the board's local
// durable store.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/padel-board-api/pkg/config"
)

const defaultTimeout = 5 * time.Second

// Options maps the Redis settings onto client options. Every network step is
// bounded by timeout so an unreachable cache fails fast and the gateway can
// move on to the other backend.
func Options(cfg config.RedisConfig, timeout time.Duration) *redis.Options {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   1,
	}
}

// NewRedis returns a connected Redis client, or an error when the server does
// not answer a ping within timeout.
func NewRedis(ctx context.Context, cfg config.RedisConfig, timeout time.Duration) (*redis.Client, error) {
	opts := Options(cfg, timeout)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", opts.Addr, err)
	}

	return client, nil
}
