package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req dto.LoginRequest) (*model.User, string, error)
	Verify(ctx context.Context, token string) (model.Identity, error)
	Profile(ctx context.Context, caller model.Identity) (*model.User, error)
	UpdateProfile(ctx context.Context, caller model.Identity, req dto.ProfileRequest) (*model.User, error)
	AddAddress(ctx context.Context, caller model.Identity, req dto.AddressRequest) (model.AddressBook, error)
	UpdateAddress(ctx context.Context, caller model.Identity, addressID string, req dto.AddressRequest) (model.AddressBook, error)
	DeleteAddress(ctx context.Context, caller model.Identity, addressID string) (model.AddressBook, error)
}

// CatalogFacade exposes products and reviews.
type CatalogFacade interface {
	Products(ctx context.Context, caller model.Identity, filter model.ProductFilter, page model.Page) ([]model.Product, model.Pagination, error)
	Product(ctx context.Context, idOrSlug string) (*model.Product, error)
	FeaturedProducts(ctx context.Context, kind model.FeaturedKind, limit int) ([]model.Product, error)
	AddReview(ctx context.Context, caller model.Identity, productID string, req dto.ReviewRequest) (*model.Product, error)
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	BulkUpdateProducts(ctx context.Context, req dto.BulkActiveRequest) (int, error)
	ProductStatistics(ctx context.Context) (*model.ProductStatistics, error)
}

// CategoryFacade manages product categories.
type CategoryFacade interface {
	Categories(ctx context.Context, active *bool) ([]model.Category, error)
	Category(ctx context.Context, idOrSlug string) (*model.Category, error)
	CreateCategory(ctx context.Context, req dto.CategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, req dto.UpdateCategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CustomerFacade is the back-office view of customer accounts.
type CustomerFacade interface {
	Customers(ctx context.Context, search string, page model.Page) ([]model.User, model.Pagination, error)
	Customer(ctx context.Context, id string) (*model.CustomerDetails, error)
	CustomerStatistics(ctx context.Context) (*model.CustomerStatistics, error)
}

// OrderFacade encapsulates customer order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, caller model.Identity, req dto.CreateOrderRequest, idempotencyKey string) (*model.Order, error)
	Order(ctx context.Context, caller model.Identity, id string) (*model.Order, error)
	MyOrders(ctx context.Context, caller model.Identity, status model.OrderStatus, page model.Page) ([]model.Order, model.Pagination, error)
	CancelOrder(ctx context.Context, caller model.Identity, id string) (*model.Order, error)
}

// AdminFacade provides back-office order operations.
type AdminFacade interface {
	Orders(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, model.Pagination, error)
	UpdateOrderStatus(ctx context.Context, id string, req dto.StatusUpdateRequest) (*model.Order, error)
	OrderStatistics(ctx context.Context) (*model.OrderStatistics, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	CatalogFacade
	CategoryFacade
	CustomerFacade
	OrderFacade
	AdminFacade
	HealthFacade
}
