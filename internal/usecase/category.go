package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pkg/retry"
)

// CreateCategoryInput describes a new catalog category.
type CreateCategoryInput struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Description string `json:"description" validate:"max=500"`
	Image       string `json:"image" validate:"max=500"`
	IsActive    *bool  `json:"isActive"`
}

// UpdateCategoryInput is a partial category change; nil fields stay untouched.
type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	Image       *string `json:"image" validate:"omitnil,max=500"`
	IsActive    *bool   `json:"isActive"`
}

// CategoryUseCase manages the categories products are grouped by.
type CategoryUseCase struct {
	categories repository.CategoryRepository
	validate   *Validator
	retry      retry.Policy
	logger     *slog.Logger
}

// NewCategoryUseCase constructs CategoryUseCase.
func NewCategoryUseCase(categories repository.CategoryRepository, v *Validator, policy retry.Policy, logger *slog.Logger) *CategoryUseCase {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryUseCase{categories: categories, validate: v, retry: policy, logger: logger}
}

// Create adds a category; the slug is derived from the name.
func (u *CategoryUseCase) Create(ctx context.Context, in CreateCategoryInput) (*model.Category, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	category := &model.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        model.Slugify(name),
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := u.categories.Create(ctx, category); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: category with this name already exists", domainErrors.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	u.logger.Info("category created", slog.String("category", category.ID), slog.String("slug", category.Slug))
	return category, nil
}

// Get returns a category by id or slug.
func (u *CategoryUseCase) Get(ctx context.Context, idOrSlug string) (*model.Category, error) {
	return retry.Value(ctx, u.retry, func(ctx context.Context) (*model.Category, error) {
		return u.categories.Get(ctx, idOrSlug)
	})
}

// List returns categories ordered by name; active narrows them when set.
func (u *CategoryUseCase) List(ctx context.Context, active *bool) ([]model.Category, error) {
	return retry.Value(ctx, u.retry, func(ctx context.Context) ([]model.Category, error) {
		return u.categories.List(ctx, active)
	})
}

// Update changes the supplied fields of a category.
func (u *CategoryUseCase) Update(ctx context.Context, id string, in UpdateCategoryInput) (*model.Category, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}

	update := model.CategoryUpdate{
		Description: in.Description,
		Image:       in.Image,
		IsActive:    in.IsActive,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		update.Name = &name
	}
	category, err := u.categories.Update(ctx, id, update)
	switch {
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		return nil, fmt.Errorf("%w: category with this name already exists", domainErrors.ErrAlreadyExists)
	case err != nil:
		return nil, fmt.Errorf("update category %s: %w", id, err)
	}
	return category, nil
}

// Delete removes a category. Products keep the category name they carry.
func (u *CategoryUseCase) Delete(ctx context.Context, id string) error {
	if err := u.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	u.logger.Info("category deleted", slog.String("category", id))
	return nil
}
