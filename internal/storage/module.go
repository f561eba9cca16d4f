package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/storage/memory"
	"github.com/polkiloo/storefront/internal/storage/mongo"
	"github.com/polkiloo/storefront/internal/storage/postgres"
)

// Module wires the configured storage backend and its repositories.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.UserRepository { return f.Users() },
		func(f repository.Factory) repository.ProductRepository { return f.Products() },
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
		func(f repository.Factory) repository.CategoryRepository { return f.Categories() },
	),
	fx.Invoke(registerLifecycle),
)

type factoryParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newFactory(p factoryParams) (repository.Factory, error) {
	return Open(p.Ctx, p.Config, p.Logger)
}

// Open connects to the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Factory, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		s, err := postgres.New(ctx, cfg.DatabaseURI, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageMongo:
		s, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func registerLifecycle(lc fx.Lifecycle, f repository.Factory, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := f.Close(ctx); err != nil {
				logger.Error("close storage", slog.Any("error", err))
				return err
			}
			return nil
		},
	})
}
