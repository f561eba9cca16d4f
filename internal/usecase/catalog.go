package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pkg/retry"
)

const (
	catalogPageLimit = 12
	featuredLimit    = 8
	featuredLimitMax = 50
)

// CreateProductInput describes a new catalog entry.
type CreateProductInput struct {
	Name           string           `json:"name" validate:"required,max=200"`
	Description    string           `json:"description" validate:"required,max=2000"`
	Price          decimal.Decimal  `json:"price" validate:"gte=0"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice" validate:"omitnil,gte=0"`
	Category       string           `json:"category" validate:"required"`
	Images         []string         `json:"images" validate:"min=1,dive,required"`
	Stock          int              `json:"stock" validate:"gte=0"`
	SKU            string           `json:"sku" validate:"max=64"`
	IsActive       *bool            `json:"isActive"`
	IsFeatured     bool             `json:"isFeatured"`
}

// UpdateProductInput is a partial product change; nil fields stay untouched.
type UpdateProductInput struct {
	Name           *string          `json:"name" validate:"omitnil,min=1,max=200"`
	Description    *string          `json:"description" validate:"omitnil,min=1,max=2000"`
	Price          *decimal.Decimal `json:"price" validate:"omitnil,gte=0"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice" validate:"omitnil,gte=0"`
	Category       *string          `json:"category" validate:"omitnil,min=1"`
	Images         []string         `json:"images" validate:"omitnil,min=1,dive,required"`
	Stock          *int             `json:"stock" validate:"omitnil,gte=0"`
	IsActive       *bool            `json:"isActive"`
	IsFeatured     *bool            `json:"isFeatured"`
}

// ReviewInput is a customer rating of a product.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=500"`
}

// BulkActiveInput switches many products on or off at once.
type BulkActiveInput struct {
	ProductIDs []string `json:"productIds" validate:"min=1,max=500,dive,required"`
	IsActive   *bool    `json:"isActive" validate:"required"`
}

// CatalogUseCase manages products and their reviews.
type CatalogUseCase struct {
	products repository.ProductRepository
	users    repository.UserRepository
	validate *Validator
	retry    retry.Policy
	logger   *slog.Logger
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository, users repository.UserRepository, v *Validator, policy retry.Policy, logger *slog.Logger) *CatalogUseCase {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogUseCase{products: products, users: users, validate: v, retry: policy, logger: logger}
}

// Create adds a product; the slug is derived from the name.
func (u *CatalogUseCase) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkCents(map[string]*decimal.Decimal{"price": &in.Price, "compareAtPrice": in.CompareAtPrice}); err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Price:          in.Price,
		CompareAtPrice: in.CompareAtPrice,
		Category:       strings.TrimSpace(in.Category),
		Images:         in.Images,
		Stock:          in.Stock,
		SKU:            strings.ToUpper(strings.TrimSpace(in.SKU)),
		IsActive:       in.IsActive == nil || *in.IsActive,
		IsFeatured:     in.IsFeatured,
	}
	product.Slug = model.Slugify(product.Name)

	if err := u.products.Create(ctx, product); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: product with this name or sku already exists", domainErrors.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	u.logger.Info("product created", slog.String("product", product.ID), slog.String("slug", product.Slug))
	return product, nil
}

// Get returns a product with its reviews, looked up by id or else by slug.
func (u *CatalogUseCase) Get(ctx context.Context, idOrSlug string) (*model.Product, error) {
	product, err := retry.Value(ctx, u.retry, func(ctx context.Context) (*model.Product, error) {
		return u.products.GetByID(ctx, idOrSlug)
	})
	if errors.Is(err, domainErrors.ErrNotFound) {
		product, err = retry.Value(ctx, u.retry, func(ctx context.Context) (*model.Product, error) {
			return u.products.GetBySlug(ctx, idOrSlug)
		})
	}
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", idOrSlug, err)
	}
	return product, nil
}

// Featured returns up to limit orderable products for the given shelf.
func (u *CatalogUseCase) Featured(ctx context.Context, kind model.FeaturedKind, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = featuredLimit
	}
	limit = min(limit, featuredLimitMax)

	products, err := retry.Value(ctx, u.retry, func(ctx context.Context) ([]model.Product, error) {
		products, _, err := u.products.List(ctx, kind.Filter(), model.Page{Number: 1, Limit: limit})
		return products, err
	})
	if err != nil {
		return nil, fmt.Errorf("featured %q: %w", kind, err)
	}
	return products, nil
}

// List returns a page of the catalog. Only administrators may look past
// the products that can currently be ordered.
func (u *CatalogUseCase) List(ctx context.Context, caller model.Identity, filter model.ProductFilter, page model.Page) ([]model.Product, model.Pagination, error) {
	if !caller.IsAdmin() {
		filter.Visibility = model.VisibilityAvailable
	}
	page = page.Normalize(catalogPageLimit)

	var (
		products []model.Product
		total    int
	)
	err := retry.Do(ctx, u.retry, func(ctx context.Context) error {
		var err error
		products, total, err = u.products.List(ctx, filter, page)
		return err
	})
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return products, model.NewPagination(page, total), nil
}

// Update changes the supplied fields of a product.
func (u *CatalogUseCase) Update(ctx context.Context, id string, in UpdateProductInput) (*model.Product, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkCents(map[string]*decimal.Decimal{"price": in.Price, "compareAtPrice": in.CompareAtPrice}); err != nil {
		return nil, err
	}

	update := model.ProductUpdate{
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		CompareAtPrice: in.CompareAtPrice,
		Category:       in.Category,
		Images:         in.Images,
		Stock:          in.Stock,
		IsActive:       in.IsActive,
		IsFeatured:     in.IsFeatured,
	}
	product, err := u.products.Update(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return product, nil
}

// Delete removes a product and its reviews. Orders keep their item snapshots.
func (u *CatalogUseCase) Delete(ctx context.Context, id string) error {
	if err := u.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	u.logger.Info("product deleted", slog.String("product", id))
	return nil
}

// SetActive switches the listed products on or off and reports how many
// of them exist.
func (u *CatalogUseCase) SetActive(ctx context.Context, in BulkActiveInput) (int, error) {
	if err := u.validate.Struct(in); err != nil {
		return 0, err
	}
	n, err := u.products.SetActive(ctx, in.ProductIDs, *in.IsActive)
	if err != nil {
		return 0, fmt.Errorf("bulk update products: %w", err)
	}
	u.logger.Info("products updated",
		slog.Int("requested", len(in.ProductIDs)),
		slog.Int("matched", n),
		slog.Bool("active", *in.IsActive),
	)
	return n, nil
}

// Statistics summarises catalog state.
func (u *CatalogUseCase) Statistics(ctx context.Context) (*model.ProductStatistics, error) {
	return retry.Value(ctx, u.retry, u.products.Statistics)
}

// AddReview records the caller's single review of a product.
func (u *CatalogUseCase) AddReview(ctx context.Context, caller model.Identity, productID string, in ReviewInput) (*model.Product, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := retry.Value(ctx, u.retry, func(ctx context.Context) (*model.User, error) {
		return u.users.GetByID(ctx, caller.UserID)
	})
	if err != nil {
		return nil, fmt.Errorf("reviewer: %w", err)
	}

	review := model.Review{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		UserName: user.Name,
		Rating:   in.Rating,
		Comment:  strings.TrimSpace(in.Comment),
	}
	product, err := u.products.AddReview(ctx, productID, review)
	switch {
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		return nil, fmt.Errorf("%w: product already reviewed", domainErrors.ErrAlreadyExists)
	case err != nil:
		return nil, fmt.Errorf("review product %s: %w", productID, err)
	}
	return product, nil
}
