package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductRepository describes persistence operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	List(ctx context.Context, filter model.ProductFilter, page model.Page) ([]model.Product, int, error)
	Update(ctx context.Context, id string, update model.ProductUpdate) (*model.Product, error)
	Statistics(ctx context.Context) (*model.ProductStatistics, error)
	// Delete removes a product together with its reviews.
	Delete(ctx context.Context, id string) error
	// SetActive sets the active flag of every listed product and reports
	// how many products exist among ids.
	SetActive(ctx context.Context, ids []string, active bool) (int, error)

	// ReserveStock atomically decrements stock by qty and increments the
	// total-orders counter, provided the product is active and has at least
	// qty units. Fails with ErrNotFound, ErrInvalidState (inactive) or
	// ErrInsufficientStock without changing anything.
	ReserveStock(ctx context.Context, id string, qty int) error
	// ReleaseStock returns qty units and decrements the total-orders counter.
	ReleaseStock(ctx context.Context, id string, qty int) error

	// AddReview appends review and recomputes rating aggregates atomically.
	// Returns ErrAlreadyExists when the user already reviewed the product.
	AddReview(ctx context.Context, productID string, review model.Review) (*model.Product, error)
}
