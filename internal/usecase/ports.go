package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// EventSink accepts order events for asynchronous delivery.
// Enqueue must not block; it reports false when the event was dropped.
type EventSink interface {
	Enqueue(event model.OrderEvent) bool
}

// IdempotencyStore remembers which order a client key produced.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// PaymentGateway settles the payment of a freshly priced order.
type PaymentGateway interface {
	Charge(ctx context.Context, order *model.Order) (model.PaymentStatus, error)
}

// OrderMetrics observes order workflow outcomes.
type OrderMetrics interface {
	OrderCreated(total decimal.Decimal)
	OrderCancelled()
	StockConflict()
}

type nopEvents struct{}

func (nopEvents) Enqueue(model.OrderEvent) bool { return true }

type nopMetrics struct{}

func (nopMetrics) OrderCreated(decimal.Decimal) {}
func (nopMetrics) OrderCancelled()              {}
func (nopMetrics) StockConflict()               {}
