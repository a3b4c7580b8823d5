package locking

import (
	"context"
	"strings"

	"github.com/arklabs/arkloyalty/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("locking",
	fx.Provide(
		NewRedisClient,
		NewLocker,
	),
)

// NewRedisClient returns nil when REDIS_ADDR is unset. Consumers treat a
// nil client as "feature disabled" rather than an error.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Named("locking").Info("redis disabled, distributed locks and price cache are off")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client
}
