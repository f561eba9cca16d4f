package test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// AuthFacadeStub provides controllable behaviour for auth endpoints.
type AuthFacadeStub struct {
	RegisterFn      func(context.Context, dto.RegisterRequest) (*model.User, string, error)
	LoginFn         func(context.Context, dto.LoginRequest) (*model.User, string, error)
	VerifyFn        func(context.Context, string) (model.Identity, error)
	ProfileFn       func(context.Context, model.Identity) (*model.User, error)
	UpdateProfileFn func(context.Context, model.Identity, dto.ProfileRequest) (*model.User, error)
	AddAddressFn    func(context.Context, model.Identity, dto.AddressRequest) (model.AddressBook, error)
	UpdateAddressFn func(context.Context, model.Identity, string, dto.AddressRequest) (model.AddressBook, error)
	DeleteAddressFn func(context.Context, model.Identity, string) (model.AddressBook, error)
}

// Register delegates to override or returns a fresh customer.
func (s AuthFacadeStub) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, req)
	}
	return &model.User{ID: "u1", Name: req.Name, Email: req.Email, Role: model.RoleCustomer}, "token", nil
}

// Login delegates to override or returns a default customer.
func (s AuthFacadeStub) Login(ctx context.Context, req dto.LoginRequest) (*model.User, string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, req)
	}
	return &model.User{ID: "u1", Email: req.Email, Role: model.RoleCustomer}, "token", nil
}

// Verify resolves "admin" to an administrator and any other token to customer u1.
func (s AuthFacadeStub) Verify(ctx context.Context, token string) (model.Identity, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, token)
	}
	if token == "admin" {
		return model.Identity{UserID: "admin", Role: model.RoleAdmin}, nil
	}
	return model.Identity{UserID: "u1", Role: model.RoleCustomer}, nil
}

// Profile returns the caller as a user.
func (s AuthFacadeStub) Profile(ctx context.Context, caller model.Identity) (*model.User, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, caller)
	}
	return &model.User{ID: caller.UserID, Role: caller.Role}, nil
}

// UpdateProfile echoes the request onto the caller.
func (s AuthFacadeStub) UpdateProfile(ctx context.Context, caller model.Identity, req dto.ProfileRequest) (*model.User, error) {
	if s.UpdateProfileFn != nil {
		return s.UpdateProfileFn(ctx, caller, req)
	}
	return &model.User{ID: caller.UserID, Name: req.Name, Phone: req.Phone, Role: caller.Role}, nil
}

func addressFromRequest(id string, req dto.AddressRequest) model.Address {
	return model.Address{
		ID:        id,
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}
}

// AddAddress returns a book holding only the new address.
func (s AuthFacadeStub) AddAddress(ctx context.Context, caller model.Identity, req dto.AddressRequest) (model.AddressBook, error) {
	if s.AddAddressFn != nil {
		return s.AddAddressFn(ctx, caller, req)
	}
	return model.AddressBook{}.Add(addressFromRequest("a1", req)), nil
}

// UpdateAddress returns a book holding only the updated address.
func (s AuthFacadeStub) UpdateAddress(ctx context.Context, caller model.Identity, addressID string, req dto.AddressRequest) (model.AddressBook, error) {
	if s.UpdateAddressFn != nil {
		return s.UpdateAddressFn(ctx, caller, addressID, req)
	}
	return model.AddressBook{}.Add(addressFromRequest(addressID, req)), nil
}

// DeleteAddress returns an empty book.
func (s AuthFacadeStub) DeleteAddress(ctx context.Context, caller model.Identity, addressID string) (model.AddressBook, error) {
	if s.DeleteAddressFn != nil {
		return s.DeleteAddressFn(ctx, caller, addressID)
	}
	return model.AddressBook{}, nil
}

// CatalogFacadeStub simulates catalog operations.
type CatalogFacadeStub struct {
	ProductsFn   func(context.Context, model.Identity, model.ProductFilter, model.Page) ([]model.Product, model.Pagination, error)
	ProductFn    func(context.Context, string) (*model.Product, error)
	FeaturedFn   func(context.Context, model.FeaturedKind, int) ([]model.Product, error)
	AddReviewFn  func(context.Context, model.Identity, string, dto.ReviewRequest) (*model.Product, error)
	CreateFn     func(context.Context, dto.CreateProductRequest) (*model.Product, error)
	UpdateFn     func(context.Context, string, dto.UpdateProductRequest) (*model.Product, error)
	DeleteFn     func(context.Context, string) error
	BulkUpdateFn func(context.Context, dto.BulkActiveRequest) (int, error)
	StatisticsFn func(context.Context) (*model.ProductStatistics, error)
}

// SampleProduct is returned by catalog stubs unless overridden.
func SampleProduct(id string) *model.Product {
	return &model.Product{
		ID:       id,
		Name:     "Product " + id,
		Slug:     "product-" + id,
		Price:    decimal.NewFromInt(100),
		Images:   []string{id + ".png"},
		Stock:    5,
		IsActive: true,
	}
}

// Products returns a single sample product.
func (s CatalogFacadeStub) Products(ctx context.Context, caller model.Identity, filter model.ProductFilter, page model.Page) ([]model.Product, model.Pagination, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, caller, filter, page)
	}
	return []model.Product{*SampleProduct("p1")}, model.Pagination{Page: 1, Limit: 12, Total: 1, TotalPages: 1}, nil
}

// Product returns a sample product with the requested id.
func (s CatalogFacadeStub) Product(ctx context.Context, id string) (*model.Product, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	return SampleProduct(id), nil
}

// FeaturedProducts returns one sample product.
func (s CatalogFacadeStub) FeaturedProducts(ctx context.Context, kind model.FeaturedKind, limit int) ([]model.Product, error) {
	if s.FeaturedFn != nil {
		return s.FeaturedFn(ctx, kind, limit)
	}
	return []model.Product{*SampleProduct("p1")}, nil
}

// AddReview records nothing and returns the reviewed product.
func (s CatalogFacadeStub) AddReview(ctx context.Context, caller model.Identity, productID string, req dto.ReviewRequest) (*model.Product, error) {
	if s.AddReviewFn != nil {
		return s.AddReviewFn(ctx, caller, productID, req)
	}
	p := SampleProduct(productID)
	p.Reviews = []model.Review{{ID: "r1", UserID: caller.UserID, Rating: req.Rating, Comment: req.Comment}}
	p.TotalReviews = 1
	p.AverageRating = float64(req.Rating)
	return p, nil
}

// CreateProduct converts the request into a product.
func (s CatalogFacadeStub) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	p := SampleProduct("new")
	p.Name = req.Name
	p.Price = req.Price
	return p, nil
}

// UpdateProduct returns the sample product.
func (s CatalogFacadeStub) UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, req)
	}
	return SampleProduct(id), nil
}

// DeleteProduct succeeds unless overridden.
func (s CatalogFacadeStub) DeleteProduct(ctx context.Context, id string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

// BulkUpdateProducts reports every requested id as updated.
func (s CatalogFacadeStub) BulkUpdateProducts(ctx context.Context, req dto.BulkActiveRequest) (int, error) {
	if s.BulkUpdateFn != nil {
		return s.BulkUpdateFn(ctx, req)
	}
	return len(req.ProductIDs), nil
}

// ProductStatistics returns fixed counts.
func (s CatalogFacadeStub) ProductStatistics(ctx context.Context) (*model.ProductStatistics, error) {
	if s.StatisticsFn != nil {
		return s.StatisticsFn(ctx)
	}
	return &model.ProductStatistics{Total: 3, Active: 2, OutOfStock: 1}, nil
}

// CategoryFacadeStub simulates category management.
type CategoryFacadeStub struct {
	CategoriesFn func(context.Context, *bool) ([]model.Category, error)
	CategoryFn   func(context.Context, string) (*model.Category, error)
	CreateFn     func(context.Context, dto.CategoryRequest) (*model.Category, error)
	UpdateFn     func(context.Context, string, dto.UpdateCategoryRequest) (*model.Category, error)
	DeleteFn     func(context.Context, string) error
}

// SampleCategory is returned by category stubs unless overridden.
func SampleCategory(id string) *model.Category {
	return &model.Category{ID: id, Name: "Category " + id, Slug: "category-" + id, IsActive: true}
}

// Categories returns one sample category.
func (s CategoryFacadeStub) Categories(ctx context.Context, active *bool) ([]model.Category, error) {
	if s.CategoriesFn != nil {
		return s.CategoriesFn(ctx, active)
	}
	return []model.Category{*SampleCategory("c1")}, nil
}

// Category returns a sample category with the requested id.
func (s CategoryFacadeStub) Category(ctx context.Context, idOrSlug string) (*model.Category, error) {
	if s.CategoryFn != nil {
		return s.CategoryFn(ctx, idOrSlug)
	}
	return SampleCategory(idOrSlug), nil
}

// CreateCategory converts the request into a category.
func (s CategoryFacadeStub) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*model.Category, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	c := SampleCategory("new")
	c.Name = req.Name
	c.Slug = model.Slugify(req.Name)
	return c, nil
}

// UpdateCategory returns the sample category.
func (s CategoryFacadeStub) UpdateCategory(ctx context.Context, id string, req dto.UpdateCategoryRequest) (*model.Category, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, req)
	}
	return SampleCategory(id), nil
}

// DeleteCategory succeeds unless overridden.
func (s CategoryFacadeStub) DeleteCategory(ctx context.Context, id string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

// CustomerFacadeStub simulates the back-office customer view.
type CustomerFacadeStub struct {
	CustomersFn  func(context.Context, string, model.Page) ([]model.User, model.Pagination, error)
	CustomerFn   func(context.Context, string) (*model.CustomerDetails, error)
	StatisticsFn func(context.Context) (*model.CustomerStatistics, error)
}

// Customers returns customer u1.
func (s CustomerFacadeStub) Customers(ctx context.Context, search string, page model.Page) ([]model.User, model.Pagination, error) {
	if s.CustomersFn != nil {
		return s.CustomersFn(ctx, search, page)
	}
	return []model.User{{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: model.RoleCustomer}},
		model.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1}, nil
}

// Customer returns the requested customer with one sample order.
func (s CustomerFacadeStub) Customer(ctx context.Context, id string) (*model.CustomerDetails, error) {
	if s.CustomerFn != nil {
		return s.CustomerFn(ctx, id)
	}
	order := SampleOrder("o1", id)
	return &model.CustomerDetails{
		Customer:     model.User{ID: id, Role: model.RoleCustomer},
		RecentOrders: []model.Order{*order},
		TotalOrders:  1,
		TotalSpent:   order.Total,
	}, nil
}

// CustomerStatistics returns fixed counts.
func (s CustomerFacadeStub) CustomerStatistics(ctx context.Context) (*model.CustomerStatistics, error) {
	if s.StatisticsFn != nil {
		return s.StatisticsFn(ctx)
	}
	return &model.CustomerStatistics{TotalCustomers: 4, NewCustomers: 1}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn    func(context.Context, model.Identity, dto.CreateOrderRequest, string) (*model.Order, error)
	OrderFn    func(context.Context, model.Identity, string) (*model.Order, error)
	MyOrdersFn func(context.Context, model.Identity, model.OrderStatus, model.Page) ([]model.Order, model.Pagination, error)
	CancelFn   func(context.Context, model.Identity, string) (*model.Order, error)
}

// SampleOrder is returned by order stubs unless overridden.
func SampleOrder(id, userID string) *model.Order {
	return &model.Order{
		ID:     id,
		Number: "ORD-TEST-00001",
		UserID: userID,
		Items: []model.OrderItem{{
			ProductID: "p1", ProductName: "Product p1", Quantity: 1,
			Price: decimal.NewFromInt(100), Total: decimal.NewFromInt(100),
		}},
		PaymentMethod: model.PaymentMethodCreditCard,
		PaymentStatus: model.PaymentStatusPaid,
		OrderStatus:   model.OrderStatusPending,
		Subtotal:      decimal.NewFromInt(100),
		Tax:           decimal.NewFromInt(18),
		ShippingCost:  decimal.NewFromInt(50),
		Total:         decimal.NewFromInt(168),
		CreatedAt:     time.Unix(0, 0).UTC(),
	}
}

// PlaceOrder delegates to override or returns a sample order.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, caller model.Identity, req dto.CreateOrderRequest, key string) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, caller, req, key)
	}
	return SampleOrder("o1", caller.UserID), nil
}

// Order returns a sample order owned by caller.
func (s OrderFacadeStub) Order(ctx context.Context, caller model.Identity, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, caller, id)
	}
	return SampleOrder(id, caller.UserID), nil
}

// MyOrders returns one sample order.
func (s OrderFacadeStub) MyOrders(ctx context.Context, caller model.Identity, status model.OrderStatus, page model.Page) ([]model.Order, model.Pagination, error) {
	if s.MyOrdersFn != nil {
		return s.MyOrdersFn(ctx, caller, status, page)
	}
	return []model.Order{*SampleOrder("o1", caller.UserID)}, model.Pagination{Page: 1, Limit: 10, Total: 1, TotalPages: 1}, nil
}

// CancelOrder returns the sample order cancelled.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, caller model.Identity, id string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, caller, id)
	}
	o := SampleOrder(id, caller.UserID)
	o.OrderStatus = model.OrderStatusCancelled
	o.PaymentStatus = model.PaymentStatusFailed
	return o, nil
}

// AdminFacadeStub simulates back-office operations.
type AdminFacadeStub struct {
	OrdersFn       func(context.Context, model.OrderFilter, model.Page) ([]model.Order, model.Pagination, error)
	UpdateStatusFn func(context.Context, string, dto.StatusUpdateRequest) (*model.Order, error)
	StatisticsFn   func(context.Context) (*model.OrderStatistics, error)
}

// Orders returns one sample order.
func (s AdminFacadeStub) Orders(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, model.Pagination, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter, page)
	}
	return []model.Order{*SampleOrder("o1", "u1")}, model.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1}, nil
}

// UpdateOrderStatus applies the requested status to a sample order.
func (s AdminFacadeStub) UpdateOrderStatus(ctx context.Context, id string, req dto.StatusUpdateRequest) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, req)
	}
	o := SampleOrder(id, "u1")
	if req.OrderStatus != "" {
		o.OrderStatus = model.OrderStatus(req.OrderStatus)
	}
	return o, nil
}

// OrderStatistics returns fixed aggregates.
func (s AdminFacadeStub) OrderStatistics(ctx context.Context) (*model.OrderStatistics, error) {
	if s.StatisticsFn != nil {
		return s.StatisticsFn(ctx)
	}
	return &model.OrderStatistics{
		TotalOrders:        1,
		Pending:            1,
		TotalSales:         decimal.NewFromInt(168),
		StatusDistribution: map[model.OrderStatus]int{model.OrderStatusPending: 1},
		SalesTrend:         []model.SalesPoint{{Day: time.Unix(0, 0).UTC(), Sales: decimal.NewFromInt(168), Orders: 1}},
	}, nil
}

// StorefrontFacadeStub aggregates all facade stubs.
type StorefrontFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	CategoryFacadeStub
	CustomerFacadeStub
	OrderFacadeStub
	AdminFacadeStub
	HealthErr error
}

// HealthCheck reports HealthErr.
func (s StorefrontFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
