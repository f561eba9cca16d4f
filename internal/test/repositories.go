package test

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// UserRepositoryStub delegates to an embedded repository unless a function
// override is set.
type UserRepositoryStub struct {
	repository.UserRepository
	CreateFn     func(context.Context, *model.User) error
	GetByEmailFn func(context.Context, string) (*model.User, error)
	GetByIDFn    func(context.Context, string) (*model.User, error)
}

// Create stores user via override or embedded repository.
func (s *UserRepositoryStub) Create(ctx context.Context, user *model.User) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, user)
	}
	return s.UserRepository.Create(ctx, user)
}

// GetByEmail fetches user by email.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.GetByEmailFn != nil {
		return s.GetByEmailFn(ctx, email)
	}
	return s.UserRepository.GetByEmail(ctx, email)
}

// GetByID fetches user by identifier.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id string) (*model.User, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return s.UserRepository.GetByID(ctx, id)
}

// ProductRepositoryStub injects failures into catalog operations.
type ProductRepositoryStub struct {
	repository.ProductRepository
	GetByIDFn      func(context.Context, string) (*model.Product, error)
	ReserveStockFn func(context.Context, string, int) error
	ReleaseStockFn func(context.Context, string, int) error
}

// GetByID fetches product by identifier.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return s.ProductRepository.GetByID(ctx, id)
}

// ReserveStock decrements stock via override or embedded repository.
func (s *ProductRepositoryStub) ReserveStock(ctx context.Context, id string, qty int) error {
	if s.ReserveStockFn != nil {
		return s.ReserveStockFn(ctx, id, qty)
	}
	return s.ProductRepository.ReserveStock(ctx, id, qty)
}

// ReleaseStock returns stock via override or embedded repository.
func (s *ProductRepositoryStub) ReleaseStock(ctx context.Context, id string, qty int) error {
	if s.ReleaseStockFn != nil {
		return s.ReleaseStockFn(ctx, id, qty)
	}
	return s.ProductRepository.ReleaseStock(ctx, id, qty)
}

// OrderRepositoryStub injects failures into order persistence.
type OrderRepositoryStub struct {
	repository.OrderRepository
	CreateFn        func(context.Context, *model.Order) error
	GetByIDFn       func(context.Context, string) (*model.Order, error)
	UpdatePaymentFn func(context.Context, string, model.PaymentStatus) (*model.Order, error)
	TransitionFn    func(context.Context, string, []model.OrderStatus, model.OrderStatus, *model.PaymentStatus) (*model.Order, error)
	CountByStatusFn func(context.Context) (map[model.OrderStatus]int, error)
	TotalSpentFn    func(context.Context, string) (decimal.Decimal, error)
}

// Create persists order via override or embedded repository.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	return s.OrderRepository.Create(ctx, order)
}

// GetByID fetches order by identifier.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return s.OrderRepository.GetByID(ctx, id)
}

// UpdatePayment changes payment status via override or embedded repository.
func (s *OrderRepositoryStub) UpdatePayment(ctx context.Context, id string, status model.PaymentStatus) (*model.Order, error) {
	if s.UpdatePaymentFn != nil {
		return s.UpdatePaymentFn(ctx, id, status)
	}
	return s.OrderRepository.UpdatePayment(ctx, id, status)
}

// Transition applies a conditional status change via override or embedded repository.
func (s *OrderRepositoryStub) Transition(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus, payment *model.PaymentStatus) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, id, from, to, payment)
	}
	return s.OrderRepository.Transition(ctx, id, from, to, payment)
}

// CountByStatus counts orders per status.
func (s *OrderRepositoryStub) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	if s.CountByStatusFn != nil {
		return s.CountByStatusFn(ctx)
	}
	return s.OrderRepository.CountByStatus(ctx)
}

// TotalSpent sums a user's paid orders.
func (s *OrderRepositoryStub) TotalSpent(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.TotalSpentFn != nil {
		return s.TotalSpentFn(ctx, userID)
	}
	return s.OrderRepository.TotalSpent(ctx, userID)
}
