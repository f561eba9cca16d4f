package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pkg/retry"
)

const (
	customerListPageLimit     = 20
	customerRecentOrdersLimit = 10
	newCustomersInterval      = 30 * 24 * time.Hour
)

// CustomerUseCase gives administrators a view of customer accounts.
type CustomerUseCase struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	retry  retry.Policy
	logger *slog.Logger
	now    func() time.Time
}

// NewCustomerUseCase constructs CustomerUseCase.
func NewCustomerUseCase(users repository.UserRepository, orders repository.OrderRepository, policy retry.Policy, logger *slog.Logger) *CustomerUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerUseCase{users: users, orders: orders, retry: policy, logger: logger, now: time.Now}
}

// List returns a page of customers, newest first. Search matches name or email.
func (u *CustomerUseCase) List(ctx context.Context, search string, page model.Page) ([]model.User, model.Pagination, error) {
	page = page.Normalize(customerListPageLimit)
	filter := model.UserFilter{Role: model.RoleCustomer, Search: search}

	var (
		users []model.User
		total int
	)
	err := retry.Do(ctx, u.retry, func(ctx context.Context) error {
		var err error
		users, total, err = u.users.List(ctx, filter, page)
		return err
	})
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("list customers: %w", err)
	}
	return users, model.NewPagination(page, total), nil
}

// Details returns a customer with their latest orders and spending.
func (u *CustomerUseCase) Details(ctx context.Context, id string) (*model.CustomerDetails, error) {
	user, err := retry.Value(ctx, u.retry, func(ctx context.Context) (*model.User, error) {
		return u.users.GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", id, err)
	}

	details := &model.CustomerDetails{Customer: *user, TotalSpent: decimal.Zero}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return retry.Do(gctx, u.retry, func(ctx context.Context) error {
			var err error
			details.RecentOrders, details.TotalOrders, err = u.orders.List(ctx,
				model.OrderFilter{UserID: id}, model.Page{Number: 1, Limit: customerRecentOrdersLimit})
			return err
		})
	})
	g.Go(func() error {
		return retry.Do(gctx, u.retry, func(ctx context.Context) error {
			var err error
			details.TotalSpent, err = u.orders.TotalSpent(ctx, id)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("customer %s orders: %w", id, err)
	}
	return details, nil
}

// Statistics counts all customers and those who joined in the last 30 days.
func (u *CustomerUseCase) Statistics(ctx context.Context) (*model.CustomerStatistics, error) {
	since := u.now().Add(-newCustomersInterval)

	var stats model.CustomerStatistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return retry.Do(gctx, u.retry, func(ctx context.Context) error {
			var err error
			stats.TotalCustomers, err = u.users.Count(ctx, model.UserFilter{Role: model.RoleCustomer})
			return err
		})
	})
	g.Go(func() error {
		return retry.Do(gctx, u.retry, func(ctx context.Context) error {
			var err error
			stats.NewCustomers, err = u.users.Count(ctx, model.UserFilter{Role: model.RoleCustomer, CreatedSince: &since})
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("customer statistics: %w", err)
	}
	return &stats, nil
}
