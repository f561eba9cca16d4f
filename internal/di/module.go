package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/events"
	"github.com/polkiloo/storefront/internal/adapter/idempotency"
	"github.com/polkiloo/storefront/internal/adapter/payment"
	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/logger"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/router"
	"github.com/polkiloo/storefront/internal/storage"
	"github.com/polkiloo/storefront/internal/usecase"
	"github.com/polkiloo/storefront/internal/worker"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		storage.Module,
		metrics.Module,
		payment.Module,
		events.Module,
		idempotency.Module,
		fx.Provide(
			func(g payment.Gateway) usecase.PaymentGateway { return g },
			func(p events.Publisher) worker.Publisher { return p },
			func(d *worker.EventDispatcher) usecase.EventSink { return d },
			func(s idempotency.Store) usecase.IdempotencyStore { return s },
			func(m *metrics.Orders) usecase.OrderMetrics { return m },
			func(f *app.StorefrontFacade) handlers.StorefrontFacade { return f },
		),
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
