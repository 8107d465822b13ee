package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second

	// Per-command deadlines for cache traffic.
	cacheReadTimeout  = 500 * time.Millisecond
	cacheWriteTimeout = 500 * time.Millisecond
)

// Config holds the connection settings for the book cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	Timeout  time.Duration
}

// Connect opens the cache client and pings it. The ping uses Timeout, or
// defaultTimeout when none is set; regular commands use the short cache
// deadlines.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cacheReadTimeout,
		WriteTimeout: cacheWriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}
