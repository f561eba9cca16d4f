package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int, error)

	// Transition sets the order status to `to` only if the current status is
	// one of `from`. When payment is non-nil the payment status is updated in
	// the same step. Returns ErrInvalidState when the current status does not
	// match and ErrNotFound when the order does not exist.
	Transition(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus, payment *model.PaymentStatus) (*model.Order, error)
	// UpdatePayment changes payment status only.
	UpdatePayment(ctx context.Context, id string, status model.PaymentStatus) (*model.Order, error)

	CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error)
	// TotalSales sums totals of paid orders that are not cancelled.
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	// TotalSpent sums totals of a user's paid orders that are not cancelled.
	TotalSpent(ctx context.Context, userID string) (decimal.Decimal, error)
	// SalesTrend aggregates paid, non-cancelled orders per day since the given instant.
	SalesTrend(ctx context.Context, since time.Time) ([]model.SalesPoint, error)
}
