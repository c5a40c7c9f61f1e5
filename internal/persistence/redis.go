package persistence

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/config"
)

// NewRedisClient dials Redis for the geo cache and the login limiter. Both
// fall back when the server is down, so a failed ping only logs.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, continuing without cache", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("redis connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return client
}

// RedisProbe adapts a client to the readiness check.
type RedisProbe struct {
	client *redis.Client
}

// NewRedisProbe wraps client.
func NewRedisProbe(client *redis.Client) RedisProbe {
	return RedisProbe{client: client}
}

// Ping reports whether Redis answers.
func (p RedisProbe) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
