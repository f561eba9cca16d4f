package idempotency

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Store remembers which result a client supplied key produced.
type Store interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// Module provides Redis backed storage when configured and an in-process
// fallback otherwise.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newStore(p storeParams) (Store, error) {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("redis not configured, idempotency keys are kept in memory")
		return NewMemoryStore(p.Config.IdempotencyTTL), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     p.Config.RedisAddr,
		Password: p.Config.RedisPassword,
	})
	if err := rdb.Ping(p.Ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", p.Config.RedisAddr, err)
	}

	s := NewRedisStore(rdb, p.Config.IdempotencyTTL)
	p.Lifecycle.Append(fx.StopHook(s.Close))
	return s, nil
}
