package app

import (
	"context"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

// StorefrontFacade adapts use cases to the HTTP handler contracts.
type StorefrontFacade struct {
	auth       *usecase.AuthUseCase
	catalog    *usecase.CatalogUseCase
	categories *usecase.CategoryUseCase
	customers  *usecase.CustomerUseCase
	orders     *usecase.OrderUseCase
	storage    repository.Factory
}

type facadeParams struct {
	fx.In

	Auth       *usecase.AuthUseCase
	Catalog    *usecase.CatalogUseCase
	Categories *usecase.CategoryUseCase
	Customers  *usecase.CustomerUseCase
	Orders     *usecase.OrderUseCase
	Storage    repository.Factory
}

func NewStorefrontFacade(p facadeParams) *StorefrontFacade {
	return &StorefrontFacade{
		auth:       p.Auth,
		catalog:    p.Catalog,
		categories: p.Categories,
		customers:  p.Customers,
		orders:     p.Orders,
		storage:    p.Storage,
	}
}

func (f *StorefrontFacade) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, string, error) {
	return f.auth.Register(ctx, usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
}

func (f *StorefrontFacade) Login(ctx context.Context, req dto.LoginRequest) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, req.Email, req.Password)
}

func (f *StorefrontFacade) Verify(ctx context.Context, token string) (model.Identity, error) {
	return f.auth.Verify(ctx, token)
}

func (f *StorefrontFacade) Profile(ctx context.Context, caller model.Identity) (*model.User, error) {
	return f.auth.Profile(ctx, caller)
}

func (f *StorefrontFacade) UpdateProfile(ctx context.Context, caller model.Identity, req dto.ProfileRequest) (*model.User, error) {
	return f.auth.UpdateProfile(ctx, caller, usecase.ProfileInput{Name: req.Name, Phone: req.Phone})
}

func (f *StorefrontFacade) AddAddress(ctx context.Context, caller model.Identity, req dto.AddressRequest) (model.AddressBook, error) {
	return f.auth.AddAddress(ctx, caller, toAddressInput(req))
}

func (f *StorefrontFacade) UpdateAddress(ctx context.Context, caller model.Identity, addressID string, req dto.AddressRequest) (model.AddressBook, error) {
	return f.auth.UpdateAddress(ctx, caller, addressID, toAddressInput(req))
}

func (f *StorefrontFacade) DeleteAddress(ctx context.Context, caller model.Identity, addressID string) (model.AddressBook, error) {
	return f.auth.DeleteAddress(ctx, caller, addressID)
}

func (f *StorefrontFacade) Products(ctx context.Context, caller model.Identity, filter model.ProductFilter, page model.Page) ([]model.Product, model.Pagination, error) {
	return f.catalog.List(ctx, caller, filter, page)
}

func (f *StorefrontFacade) Product(ctx context.Context, idOrSlug string) (*model.Product, error) {
	return f.catalog.Get(ctx, idOrSlug)
}

func (f *StorefrontFacade) FeaturedProducts(ctx context.Context, kind model.FeaturedKind, limit int) ([]model.Product, error) {
	return f.catalog.Featured(ctx, kind, limit)
}

func (f *StorefrontFacade) AddReview(ctx context.Context, caller model.Identity, productID string, req dto.ReviewRequest) (*model.Product, error) {
	return f.catalog.AddReview(ctx, caller, productID, usecase.ReviewInput{Rating: req.Rating, Comment: req.Comment})
}

func (f *StorefrontFacade) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	return f.catalog.Create(ctx, usecase.CreateProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Category:       req.Category,
		Images:         req.Images,
		Stock:          req.Stock,
		SKU:            req.SKU,
		IsActive:       req.IsActive,
		IsFeatured:     req.IsFeatured,
	})
}

func (f *StorefrontFacade) UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error) {
	return f.catalog.Update(ctx, id, usecase.UpdateProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Category:       req.Category,
		Images:         req.Images,
		Stock:          req.Stock,
		IsActive:       req.IsActive,
		IsFeatured:     req.IsFeatured,
	})
}

func (f *StorefrontFacade) DeleteProduct(ctx context.Context, id string) error {
	return f.catalog.Delete(ctx, id)
}

func (f *StorefrontFacade) BulkUpdateProducts(ctx context.Context, req dto.BulkActiveRequest) (int, error) {
	return f.catalog.SetActive(ctx, usecase.BulkActiveInput{ProductIDs: req.ProductIDs, IsActive: req.IsActive})
}

func (f *StorefrontFacade) ProductStatistics(ctx context.Context) (*model.ProductStatistics, error) {
	return f.catalog.Statistics(ctx)
}

func (f *StorefrontFacade) Categories(ctx context.Context, active *bool) ([]model.Category, error) {
	return f.categories.List(ctx, active)
}

func (f *StorefrontFacade) Category(ctx context.Context, idOrSlug string) (*model.Category, error) {
	return f.categories.Get(ctx, idOrSlug)
}

func (f *StorefrontFacade) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*model.Category, error) {
	return f.categories.Create(ctx, usecase.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    req.IsActive,
	})
}

func (f *StorefrontFacade) UpdateCategory(ctx context.Context, id string, req dto.UpdateCategoryRequest) (*model.Category, error) {
	return f.categories.Update(ctx, id, usecase.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    req.IsActive,
	})
}

func (f *StorefrontFacade) DeleteCategory(ctx context.Context, id string) error {
	return f.categories.Delete(ctx, id)
}

func (f *StorefrontFacade) Customers(ctx context.Context, search string, page model.Page) ([]model.User, model.Pagination, error) {
	return f.customers.List(ctx, search, page)
}

func (f *StorefrontFacade) Customer(ctx context.Context, id string) (*model.CustomerDetails, error) {
	return f.customers.Details(ctx, id)
}

func (f *StorefrontFacade) CustomerStatistics(ctx context.Context) (*model.CustomerStatistics, error) {
	return f.customers.Statistics(ctx)
}

func (f *StorefrontFacade) PlaceOrder(ctx context.Context, caller model.Identity, req dto.CreateOrderRequest, idempotencyKey string) (*model.Order, error) {
	return f.orders.Create(ctx, caller, toCreateOrderInput(req, idempotencyKey))
}

func (f *StorefrontFacade) Order(ctx context.Context, caller model.Identity, id string) (*model.Order, error) {
	return f.orders.Get(ctx, caller, id)
}

func (f *StorefrontFacade) MyOrders(ctx context.Context, caller model.Identity, status model.OrderStatus, page model.Page) ([]model.Order, model.Pagination, error) {
	return f.orders.ListMine(ctx, caller, status, page)
}

func (f *StorefrontFacade) CancelOrder(ctx context.Context, caller model.Identity, id string) (*model.Order, error) {
	return f.orders.Cancel(ctx, caller, id)
}

func (f *StorefrontFacade) Orders(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, model.Pagination, error) {
	return f.orders.List(ctx, filter, page)
}

func (f *StorefrontFacade) UpdateOrderStatus(ctx context.Context, id string, req dto.StatusUpdateRequest) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, id, usecase.StatusUpdate{
		OrderStatus:   model.OrderStatus(req.OrderStatus),
		PaymentStatus: model.PaymentStatus(req.PaymentStatus),
	})
}

func (f *StorefrontFacade) OrderStatistics(ctx context.Context) (*model.OrderStatistics, error) {
	return f.orders.Statistics(ctx)
}

// HealthCheck pings the configured storage backend.
func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	return f.storage.HealthCheck(ctx)
}

// EnsureAdmin provisions the configured administrator account.
func (f *StorefrontFacade) EnsureAdmin(ctx context.Context, email, password string) error {
	return f.auth.EnsureAdmin(ctx, email, password)
}

func toAddressInput(req dto.AddressRequest) usecase.AddressInput {
	return usecase.AddressInput{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}
}

func toCreateOrderInput(req dto.CreateOrderRequest, key string) usecase.CreateOrderInput {
	lines := make([]usecase.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, usecase.OrderLine{ProductID: it.Product, Quantity: it.Quantity})
	}
	return usecase.CreateOrderInput{
		Items: lines,
		ShippingAddress: model.ShippingAddress{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			State:   req.ShippingAddress.State,
			ZipCode: req.ShippingAddress.ZipCode,
			Country: req.ShippingAddress.Country,
		},
		PaymentMethod:  model.PaymentMethod(req.PaymentMethod),
		Notes:          req.Notes,
		IdempotencyKey: key,
	}
}
