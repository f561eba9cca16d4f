package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pkg/retry"
)

const (
	customerPageLimit = 10
	adminPageLimit    = 20
	recentOrdersLimit = 5
	salesTrendDays    = 7

	orderNumberAttempts = 3
	compensationTimeout = 10 * time.Second
)

// OrderLine is a requested quantity of one product.
type OrderLine struct {
	ProductID string `json:"product" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// CreateOrderInput describes a checkout request.
type CreateOrderInput struct {
	Items           []OrderLine           `json:"items" validate:"min=1,dive"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   model.PaymentMethod   `json:"paymentMethod" validate:"required,payment_method"`
	Notes           string                `json:"notes" validate:"max=500"`
	// IdempotencyKey makes retried submissions return the first order.
	IdempotencyKey string `json:"idempotencyKey" validate:"max=128"`
}

// StatusUpdate carries an administrative change; empty fields stay untouched.
type StatusUpdate struct {
	OrderStatus   model.OrderStatus   `json:"orderStatus" validate:"omitempty,order_status"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus" validate:"omitempty,payment_status"`
}

// OrderDeps groups collaborators of OrderUseCase. Events, Idempotency and
// Metrics are optional.
type OrderDeps struct {
	Orders      repository.OrderRepository
	Products    repository.ProductRepository
	Payments    PaymentGateway
	Events      EventSink
	Idempotency IdempotencyStore
	Metrics     OrderMetrics
	Validator   *Validator
	Pricing     Pricing
	Retry       retry.Policy
	Logger      *slog.Logger
}

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	payments PaymentGateway
	events   EventSink
	idem     IdempotencyStore
	metrics  OrderMetrics
	validate *Validator
	pricing  Pricing
	retry    retry.Policy
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(d OrderDeps) *OrderUseCase {
	u := &OrderUseCase{
		orders:   d.Orders,
		products: d.Products,
		payments: d.Payments,
		events:   d.Events,
		idem:     d.Idempotency,
		metrics:  d.Metrics,
		validate: d.Validator,
		pricing:  d.Pricing,
		retry:    d.Retry,
		logger:   d.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if u.events == nil {
		u.events = nopEvents{}
	}
	if u.metrics == nil {
		u.metrics = nopMetrics{}
	}
	if u.validate == nil {
		u.validate = NewValidator()
	}
	if u.pricing == (Pricing{}) {
		u.pricing = DefaultPricing
	}
	if u.retry.Attempts == 0 {
		u.retry = retry.Default
	}
	if u.logger == nil {
		u.logger = slog.Default()
	}
	return u
}

// Create places an order: stock is checked, prices frozen, every line reserved
// atomically and the order persisted as pending. Any failure after the first
// reservation returns the reserved stock.
func (u *OrderUseCase) Create(ctx context.Context, caller model.Identity, in CreateOrderInput) (order *model.Order, err error) {
	in.ShippingAddress = in.ShippingAddress.Trimmed()
	in.Notes = strings.TrimSpace(in.Notes)
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" && u.idem != nil {
		if prev, ok, recallErr := u.recall(ctx, caller, in.IdempotencyKey); recallErr != nil || ok {
			return prev, recallErr
		}
		locked, lockErr := u.idem.TryLock(ctx, caller.UserID, in.IdempotencyKey)
		if lockErr != nil {
			return nil, fmt.Errorf("lock idempotency key: %w", lockErr)
		}
		if !locked {
			return nil, fmt.Errorf("%w: order with this idempotency key is being placed", domainErrors.ErrAlreadyExists)
		}
		defer func() {
			if err != nil {
				if unlockErr := u.idem.Unlock(context.WithoutCancel(ctx), caller.UserID, in.IdempotencyKey); unlockErr != nil {
					u.logger.Warn("release idempotency key", slog.Any("error", unlockErr))
				}
			}
		}()
	}

	items, err := u.snapshot(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	if err := u.reserve(ctx, items); err != nil {
		return nil, err
	}

	totals := u.pricing.Quote(items)
	now := u.now()
	order = &model.Order{
		ID:              uuid.NewString(),
		Number:          NewOrderNumber(now),
		UserID:          caller.UserID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		OrderStatus:     model.OrderStatusPending,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		ShippingCost:    totals.Shipping,
		Total:           totals.Total,
		Notes:           in.Notes,
		CreatedAt:       now,
	}

	status, err := u.payments.Charge(ctx, order)
	if err != nil {
		u.release(ctx, items)
		return nil, fmt.Errorf("charge order: %w", err)
	}
	order.PaymentStatus = status

	if err := u.persist(ctx, order); err != nil {
		u.release(ctx, items)
		return nil, err
	}

	if in.IdempotencyKey != "" && u.idem != nil {
		if err := u.idem.Remember(ctx, caller.UserID, in.IdempotencyKey, order.ID); err != nil {
			u.logger.Warn("remember idempotency key", slog.String("order", order.Number), slog.Any("error", err))
		}
	}

	u.metrics.OrderCreated(order.Total)
	u.publish(model.EventOrderCreated, order)
	u.logger.Info("order created",
		slog.String("order", order.Number),
		slog.String("user", order.UserID),
		slog.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// Get returns an order visible to caller.
func (u *OrderUseCase) Get(ctx context.Context, caller model.Identity, id string) (*model.Order, error) {
	order, err := retry.Value(ctx, u.retry, func(ctx context.Context) (*model.Order, error) {
		return u.orders.GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}
	if !caller.CanAccess(order.UserID) {
		return nil, fmt.Errorf("%w: not authorized to access this order", domainErrors.ErrForbidden)
	}
	return order, nil
}

// ListMine returns the caller's orders, newest first.
func (u *OrderUseCase) ListMine(ctx context.Context, caller model.Identity, status model.OrderStatus, page model.Page) ([]model.Order, model.Pagination, error) {
	return u.list(ctx, model.OrderFilter{UserID: caller.UserID, Status: status}, page.Normalize(customerPageLimit))
}

// List returns all orders matching filter, newest first.
func (u *OrderUseCase) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, model.Pagination, error) {
	return u.list(ctx, filter, page.Normalize(adminPageLimit))
}

func (u *OrderUseCase) list(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, model.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, model.Pagination{}, domainErrors.NewValidationError(map[string]string{"status": "unknown order status"})
	}

	var (
		orders []model.Order
		total  int
	)
	err := retry.Do(ctx, u.retry, func(ctx context.Context) error {
		var err error
		orders, total, err = u.orders.List(ctx, filter, page)
		return err
	})
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return orders, model.NewPagination(page, total), nil
}

// Cancel cancels a pending or processing order of caller and returns its stock.
func (u *OrderUseCase) Cancel(ctx context.Context, caller model.Identity, id string) (*model.Order, error) {
	order, err := u.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.Cancellable() {
		return nil, fmt.Errorf("%w: cannot cancel order with status %s", domainErrors.ErrInvalidState, order.OrderStatus)
	}
	return u.cancel(ctx, order.ID, model.EventOrderCancelled)
}

// UpdateStatus applies an administrative status change. Cancelling goes through
// the regular cancellation so stock is returned; a cancelled order stays cancelled.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, id string, in StatusUpdate) (*model.Order, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.OrderStatus == "" && in.PaymentStatus == "" {
		return nil, domainErrors.NewValidationError(map[string]string{
			"orderStatus": "orderStatus or paymentStatus is required",
		})
	}

	var (
		order *model.Order
		err   error
	)
	switch {
	case in.OrderStatus == model.OrderStatusCancelled:
		return u.cancelWithPayment(ctx, id, in.PaymentStatus)
	case in.OrderStatus != "":
		var payment *model.PaymentStatus
		if in.PaymentStatus != "" {
			payment = &in.PaymentStatus
		}
		order, err = u.orders.Transition(ctx, id, openStatuses(), in.OrderStatus, payment)
	default:
		order, err = u.orders.UpdatePayment(ctx, id, in.PaymentStatus)
	}
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}

	u.publish(model.EventOrderStatusChanged, order)
	u.logger.Info("order status updated",
		slog.String("order", order.Number),
		slog.String("status", string(order.OrderStatus)),
		slog.String("payment", string(order.PaymentStatus)),
	)
	return order, nil
}

// Statistics aggregates order activity; the queries run concurrently.
func (u *OrderUseCase) Statistics(ctx context.Context) (*model.OrderStatistics, error) {
	var (
		counts map[model.OrderStatus]int
		stats  model.OrderStatistics
	)
	since := u.now().Truncate(24*time.Hour).AddDate(0, 0, -(salesTrendDays - 1))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = retry.Value(gctx, u.retry, u.orders.CountByStatus)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalSales, err = retry.Value(gctx, u.retry, u.orders.TotalSales)
		return err
	})
	g.Go(func() error {
		return retry.Do(gctx, u.retry, func(ctx context.Context) error {
			var err error
			stats.RecentOrders, _, err = u.orders.List(ctx, model.OrderFilter{}, model.Page{Number: 1, Limit: recentOrdersLimit})
			return err
		})
	})
	g.Go(func() error {
		return retry.Do(gctx, u.retry, func(ctx context.Context) error {
			var err error
			stats.SalesTrend, err = u.orders.SalesTrend(ctx, since)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("order statistics: %w", err)
	}

	stats.StatusDistribution = make(map[model.OrderStatus]int, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		stats.StatusDistribution[s] = counts[s]
		stats.TotalOrders += counts[s]
	}
	stats.Pending = counts[model.OrderStatusPending]
	stats.Processing = counts[model.OrderStatusProcessing]
	stats.Shipped = counts[model.OrderStatusShipped]
	stats.Delivered = counts[model.OrderStatusDelivered]
	stats.Cancelled = counts[model.OrderStatusCancelled]
	return &stats, nil
}

func (u *OrderUseCase) recall(ctx context.Context, caller model.Identity, key string) (*model.Order, bool, error) {
	id, ok, err := u.idem.Recall(ctx, caller.UserID, key)
	if err != nil {
		return nil, false, fmt.Errorf("recall idempotency key: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	order, err := u.Get(ctx, caller, id)
	if err != nil {
		return nil, false, err
	}
	return order, true, nil
}

// snapshot loads every product, checks it can be ordered and freezes its
// name, image and price into an order item.
func (u *OrderUseCase) snapshot(ctx context.Context, lines []OrderLine) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := retry.Value(ctx, u.retry, func(ctx context.Context) (*model.Product, error) {
			return u.products.GetByID(ctx, line.ProductID)
		})
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, err)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %s is not available", domainErrors.ErrInvalidState, product.Name)
		}
		if product.Stock < line.Quantity {
			u.metrics.StockConflict()
			return nil, fmt.Errorf("%w: insufficient stock for %s, available: %d",
				domainErrors.ErrInsufficientStock, product.Name, product.Stock)
		}

		items = append(items, model.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.PrimaryImage(),
			Quantity:     line.Quantity,
			Price:        product.Price,
			Total:        lineTotal(product.Price, line.Quantity),
		})
	}
	return items, nil
}

// reserve decrements stock line by line; on failure the lines reserved so far
// are released before returning.
func (u *OrderUseCase) reserve(ctx context.Context, items []model.OrderItem) error {
	for i, it := range items {
		if err := u.products.ReserveStock(ctx, it.ProductID, it.Quantity); err != nil {
			if errors.Is(err, domainErrors.ErrInsufficientStock) {
				u.metrics.StockConflict()
			}
			u.release(ctx, items[:i])
			return fmt.Errorf("reserve %s: %w", it.ProductName, err)
		}
	}
	return nil
}

// release returns stock of items. It outlives a cancelled request context.
func (u *OrderUseCase) release(ctx context.Context, items []model.OrderItem) {
	if len(items) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	for _, it := range items {
		err := retry.Do(ctx, u.retry, func(ctx context.Context) error {
			return u.products.ReleaseStock(ctx, it.ProductID, it.Quantity)
		})
		if err != nil {
			u.logger.Error("release stock",
				slog.String("product", it.ProductID),
				slog.Int("quantity", it.Quantity),
				slog.Any("error", err),
			)
		}
	}
}

func (u *OrderUseCase) persist(ctx context.Context, order *model.Order) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		err = u.orders.Create(ctx, order)
		if !errors.Is(err, domainErrors.ErrAlreadyExists) {
			break
		}
		order.Number = NewOrderNumber(u.now())
	}
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

func (u *OrderUseCase) cancel(ctx context.Context, id string, event model.EventType) (*model.Order, error) {
	failed := model.PaymentStatusFailed
	order, err := u.orders.Transition(ctx, id,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusProcessing},
		model.OrderStatusCancelled, &failed)
	if err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", id, err)
	}

	u.release(ctx, order.Items)
	u.metrics.OrderCancelled()
	u.publish(event, order)
	u.logger.Info("order cancelled", slog.String("order", order.Number))
	return order, nil
}

// cancelWithPayment cancels through the regular path, which publishes the only
// event, then applies an explicit payment status. Once the cancellation is
// committed a failed payment update no longer fails the call.
func (u *OrderUseCase) cancelWithPayment(ctx context.Context, id string, payment model.PaymentStatus) (*model.Order, error) {
	order, err := u.cancel(ctx, id, model.EventOrderCancelled)
	if err != nil {
		return nil, err
	}
	if payment == "" || payment == order.PaymentStatus {
		return order, nil
	}

	updated, err := u.orders.UpdatePayment(ctx, id, payment)
	if err != nil {
		u.logger.Warn("payment status not applied to cancelled order",
			slog.String("order", order.Number),
			slog.String("payment", string(payment)),
			slog.Any("error", err),
		)
		return order, nil
	}
	return updated, nil
}

func (u *OrderUseCase) publish(t model.EventType, order *model.Order) {
	if !u.events.Enqueue(model.NewOrderEvent(t, order, u.now())) {
		u.logger.Warn("order event dropped", slog.String("type", string(t)), slog.String("order", order.Number))
	}
}

// openStatuses are the statuses an administrator may move an order out of.
func openStatuses() []model.OrderStatus {
	open := make([]model.OrderStatus, 0, len(model.OrderStatuses)-1)
	for _, s := range model.OrderStatuses {
		if s != model.OrderStatusCancelled {
			open = append(open, s)
		}
	}
	return open
}
