package usecase

import (
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pkg/retry"
)

const maxRetryDelay = 2 * time.Second

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewValidator,
	newRetryPolicy,
	newPricing,
	NewAuthUseCase,
	NewCatalogUseCase,
	NewCategoryUseCase,
	NewCustomerUseCase,
	newOrderUseCase,
)

func newRetryPolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{
		Attempts:  cfg.StoreRetryAttempts,
		BaseDelay: cfg.StoreRetryBackoff,
		MaxDelay:  maxRetryDelay,
	}
}

func newPricing(cfg *config.Config) Pricing {
	return Pricing{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFee:           cfg.ShippingFee,
	}
}

type orderParams struct {
	fx.In

	Orders      repository.OrderRepository
	Products    repository.ProductRepository
	Payments    PaymentGateway
	Events      EventSink        `optional:"true"`
	Idempotency IdempotencyStore `optional:"true"`
	Metrics     OrderMetrics     `optional:"true"`
	Validator   *Validator
	Pricing     Pricing
	Retry       retry.Policy
	Logger      *slog.Logger
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(OrderDeps{
		Orders:      p.Orders,
		Products:    p.Products,
		Payments:    p.Payments,
		Events:      p.Events,
		Idempotency: p.Idempotency,
		Metrics:     p.Metrics,
		Validator:   p.Validator,
		Pricing:     p.Pricing,
		Retry:       p.Retry,
		Logger:      p.Logger,
	})
}
