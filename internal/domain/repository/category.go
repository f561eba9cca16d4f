package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CategoryRepository describes persistence operations for catalog categories.
type CategoryRepository interface {
	// Create stores a category. Returns ErrAlreadyExists when the name or slug is taken.
	Create(ctx context.Context, category *model.Category) error
	// Get looks a category up by id or slug.
	Get(ctx context.Context, idOrSlug string) (*model.Category, error)
	// List returns categories ordered by name; a nil active lists all of them.
	List(ctx context.Context, active *bool) ([]model.Category, error)
	Update(ctx context.Context, id string, update model.CategoryUpdate) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}
