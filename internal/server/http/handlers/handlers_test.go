package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

var (
	customer = model.Identity{UserID: "u1", Role: model.RoleCustomer}
	admin    = model.Identity{UserID: "admin", Role: model.RoleAdmin}
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func as(id model.Identity) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityContextKey, id)
	}
}

func performRequest(t *testing.T, method, route, target string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Envelope {
	t.Helper()
	var env dto.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestCurrentIdentity(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentIdentity(c); got.UserID != "" {
		t.Fatalf("expected anonymous identity, got %+v", got)
	}

	c.Set(middleware.IdentityContextKey, customer)
	if got := CurrentIdentity(c); got != customer {
		t.Fatalf("expected %+v, got %+v", customer, got)
	}
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{fmt.Errorf("order o1: %w", domainErrors.ErrNotFound), http.StatusNotFound, domainErrors.KindNotFound},
		{domainErrors.ErrForbidden, http.StatusForbidden, domainErrors.KindForbidden},
		{domainErrors.ErrInvalidState, http.StatusConflict, domainErrors.KindInvalidState},
		{domainErrors.ErrInsufficientStock, http.StatusConflict, domainErrors.KindInsufficientStock},
		{domainErrors.ErrAlreadyExists, http.StatusConflict, domainErrors.KindDuplicateEntry},
		{domainErrors.NewValidationError(map[string]string{"email": "required"}), http.StatusBadRequest, domainErrors.KindValidation},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized, domainErrors.KindInvalidCredentials},
		{pkgAuth.ErrInvalidToken, http.StatusUnauthorized, domainErrors.KindInvalidCredentials},
		{domainErrors.ErrUnavailable, http.StatusServiceUnavailable, domainErrors.KindUnavailable},
		{fmt.Errorf("wait: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, kindDeadlineExceeded},
		{errors.New("boom"), http.StatusInternalServerError, domainErrors.KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			status, kind := StatusOf(tc.err)
			if status != tc.status || kind != tc.kind {
				t.Fatalf("expected %d/%s, got %d/%s", tc.status, tc.kind, status, kind)
			}
		})
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	name := testhelpers.RandomASCIIString(3, 12)
	email := testhelpers.RandomEmail()
	password := testhelpers.RandomASCIIString(8, 16)

	handler := NewAuthHandler(testhelpers.AuthFacadeStub{RegisterFn: func(_ context.Context, req dto.RegisterRequest) (*model.User, string, error) {
		if req.Name != name || req.Email != email || req.Password != password {
			t.Fatalf("unexpected request passed to facade: %+v", req)
		}
		return &model.User{ID: "u1", Name: name, Email: email, Role: model.RoleCustomer}, "signed", nil
	}}, discardLogger())

	body := mustJSON(t, dto.RegisterRequest{Name: name, Email: email, Password: password})
	w := performRequest(t, http.MethodPost, "/register", "/register", handler.Register, nil, body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "signed") {
		t.Fatalf("expected auth cookie, got %q", w.Header().Get("Set-Cookie"))
	}

	var resp struct {
		Success bool             `json:"success"`
		Data    dto.AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Token != "signed" || resp.Data.User.Email != email || resp.Data.User.Role != "customer" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAuthHandlerRegisterFailures(t *testing.T) {
	cases := []struct {
		name   string
		body   []byte
		err    error
		status int
	}{
		{"malformed body", []byte("{"), nil, http.StatusBadRequest},
		{"validation", []byte(`{"email":"x"}`), domainErrors.NewValidationError(map[string]string{"email": "must be a valid email"}), http.StatusBadRequest},
		{"duplicate", []byte(`{"email":"a@b.c"}`), fmt.Errorf("%w: email", domainErrors.ErrAlreadyExists), http.StatusConflict},
		{"storage", []byte(`{"email":"a@b.c"}`), domainErrors.ErrUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewAuthHandler(testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, dto.RegisterRequest) (*model.User, string, error) {
				return nil, "", tc.err
			}}, discardLogger())
			w := performRequest(t, http.MethodPost, "/register", "/register", handler.Register, nil, tc.body, nil)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if env := decode(t, w); env.Success {
				t.Fatalf("expected failure envelope, got %+v", env)
			}
		})
	}
}

func TestValidationErrorEnvelope(t *testing.T) {
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, dto.RegisterRequest) (*model.User, string, error) {
		return nil, "", domainErrors.NewValidationError(map[string]string{
			"email":    "must be a valid email",
			"password": "must be at least 6 characters",
		})
	}}, discardLogger())

	w := performRequest(t, http.MethodPost, "/register", "/register", handler.Register, nil, []byte(`{}`), nil)
	env := decode(t, w)
	if env.Kind != domainErrors.KindValidation || env.Error != "validation failed" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.Errors["email"] == "" || env.Errors["password"] == "" {
		t.Fatalf("expected per-field messages, got %v", env.Errors)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{}, discardLogger())
	w := performRequest(t, http.MethodPost, "/login", "/login", handler.Login, nil, []byte(`{"email":"a@b.c","password":"secret1"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	failing := NewAuthHandler(testhelpers.AuthFacadeStub{LoginFn: func(context.Context, dto.LoginRequest) (*model.User, string, error) {
		return nil, "", domainErrors.ErrInvalidCredentials
	}}, discardLogger())
	w = performRequest(t, http.MethodPost, "/login", "/login", failing.Login, nil, []byte(`{"email":"a@b.c","password":"nope"}`), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w.Header().Get("Set-Cookie") != "" {
		t.Fatal("cookie must not be set on failed login")
	}
}

func TestAuthHandlerProfile(t *testing.T) {
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{UpdateProfileFn: func(_ context.Context, caller model.Identity, req dto.ProfileRequest) (*model.User, error) {
		if caller != customer || req.Name != "Ann" {
			t.Fatalf("unexpected call %+v %+v", caller, req)
		}
		return &model.User{ID: caller.UserID, Name: req.Name}, nil
	}}, discardLogger())

	w := performRequest(t, http.MethodGet, "/profile", "/profile", handler.Profile, as(customer), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = performRequest(t, http.MethodPut, "/profile", "/profile", handler.UpdateProfile, as(customer), []byte(`{"name":"Ann"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestOrderHandlerCreate(t *testing.T) {
	var gotKey string
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{PlaceFn: func(_ context.Context, caller model.Identity, req dto.CreateOrderRequest, key string) (*model.Order, error) {
		if caller != customer {
			t.Fatalf("unexpected caller %+v", caller)
		}
		if len(req.Items) != 1 || req.Items[0].Product != "p1" || req.Items[0].Quantity != 2 {
			t.Fatalf("unexpected items %+v", req.Items)
		}
		gotKey = key
		return testhelpers.SampleOrder("o1", caller.UserID), nil
	}}, discardLogger())

	body := mustJSON(t, dto.CreateOrderRequest{
		Items:           []dto.OrderLineRequest{{Product: "p1", Quantity: 2}},
		ShippingAddress: dto.ShippingAddress{Street: "1 Main", City: "Town", State: "ST", ZipCode: "12345", Country: "US"},
		PaymentMethod:   "credit_card",
	})
	w := performRequest(t, http.MethodPost, "/orders", "/orders", handler.Create, as(customer), body, map[string]string{IdempotencyKeyHeader: " key-1 "})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotKey != "key-1" {
		t.Fatalf("expected trimmed idempotency key, got %q", gotKey)
	}

	var resp struct {
		Data dto.OrderResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.OrderNumber != "ORD-TEST-00001" || !resp.Data.Total.Equal(decimal.NewFromInt(168)) {
		t.Fatalf("unexpected order %+v", resp.Data)
	}
}

func TestOrderHandlerCreateFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"stock", fmt.Errorf("%w: product p1 has 0 left", domainErrors.ErrInsufficientStock), http.StatusConflict, domainErrors.KindInsufficientStock},
		{"inactive", domainErrors.ErrInvalidState, http.StatusConflict, domainErrors.KindInvalidState},
		{"missing product", domainErrors.ErrNotFound, http.StatusNotFound, domainErrors.KindNotFound},
		{"in flight", domainErrors.ErrAlreadyExists, http.StatusConflict, domainErrors.KindDuplicateEntry},
		{"gateway down", domainErrors.ErrUnavailable, http.StatusServiceUnavailable, domainErrors.KindUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewOrderHandler(testhelpers.OrderFacadeStub{PlaceFn: func(context.Context, model.Identity, dto.CreateOrderRequest, string) (*model.Order, error) {
				return nil, tc.err
			}}, discardLogger())
			w := performRequest(t, http.MethodPost, "/orders", "/orders", handler.Create, as(customer), []byte(`{"items":[]}`), nil)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if env := decode(t, w); env.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, env.Kind)
			}
		})
	}
}

func TestOrderHandlerList(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{MyOrdersFn: func(_ context.Context, caller model.Identity, status model.OrderStatus, page model.Page) ([]model.Order, model.Pagination, error) {
		if status != model.OrderStatusPending || page.Number != 2 || page.Limit != 5 {
			t.Fatalf("unexpected params %s %+v", status, page)
		}
		return []model.Order{*testhelpers.SampleOrder("o1", caller.UserID)}, model.Pagination{Page: 2, Limit: 5, Total: 6, TotalPages: 2}, nil
	}}, discardLogger())

	w := performRequest(t, http.MethodGet, "/orders", "/orders?status=Pending&page=2&limit=5", handler.List, as(customer), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	env := decode(t, w)
	if env.Pagination == nil || env.Pagination.Total != 6 || env.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected pagination %+v", env.Pagination)
	}
}

func TestOrderHandlerGetAndCancel(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{
		OrderFn: func(_ context.Context, caller model.Identity, id string) (*model.Order, error) {
			if id == "foreign" {
				return nil, domainErrors.ErrForbidden
			}
			return testhelpers.SampleOrder(id, caller.UserID), nil
		},
		CancelFn: func(context.Context, model.Identity, string) (*model.Order, error) {
			return nil, fmt.Errorf("%w: order is shipped", domainErrors.ErrInvalidState)
		},
	}, discardLogger())

	w := performRequest(t, http.MethodGet, "/orders/:id", "/orders/o1", handler.Get, as(customer), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = performRequest(t, http.MethodGet, "/orders/:id", "/orders/foreign", handler.Get, as(customer), nil, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	w = performRequest(t, http.MethodPut, "/orders/:id/cancel", "/orders/o1/cancel", handler.Cancel, as(customer), nil, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestInternalErrorIsLoggedAndHidden(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{OrderFn: func(context.Context, model.Identity, string) (*model.Order, error) {
		return nil, errors.New("connection reset by peer")
	}}, logger)

	w := performRequest(t, http.MethodGet, "/orders/:id", "/orders/o1", handler.Get, as(customer), nil, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	env := decode(t, w)
	if env.Error != "internal server error" || strings.Contains(w.Body.String(), "connection reset") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
	if !strings.Contains(buf.String(), "connection reset by peer") {
		t.Fatalf("expected error to be logged, got %q", buf.String())
	}
}

func TestProductHandlerList(t *testing.T) {
	handler := NewProductHandler(testhelpers.CatalogFacadeStub{ProductsFn: func(_ context.Context, _ model.Identity, filter model.ProductFilter, page model.Page) ([]model.Product, model.Pagination, error) {
		if filter.Category != "Phones" || filter.MinPrice == nil || !filter.MinPrice.Equal(decimal.NewFromInt(10)) {
			t.Fatalf("unexpected filter %+v", filter)
		}
		if filter.Visibility != model.VisibilityAll || filter.Sort != model.SortPriceAsc || !filter.Featured {
			t.Fatalf("unexpected filter %+v", filter)
		}
		return []model.Product{*testhelpers.SampleProduct("p1")}, model.NewPagination(page.Normalize(12), 1), nil
	}}, discardLogger())

	w := performRequest(t, http.MethodGet, "/products", "/products?category=Phones&minPrice=10&status=all&sort=price_asc&featured=true", handler.List, nil, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProductHandlerListRejectsBadFilters(t *testing.T) {
	handler := NewProductHandler(testhelpers.CatalogFacadeStub{}, discardLogger())
	for _, target := range []string{"/products?status=hidden", "/products?minPrice=cheap", "/products?page=first"} {
		w := performRequest(t, http.MethodGet, "/products", target, handler.List, nil, nil, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestProductHandlerReviewAndAdmin(t *testing.T) {
	handler := NewProductHandler(testhelpers.CatalogFacadeStub{
		AddReviewFn: func(_ context.Context, caller model.Identity, id string, req dto.ReviewRequest) (*model.Product, error) {
			if caller != customer || id != "p1" || req.Rating != 5 {
				t.Fatalf("unexpected review %+v %s %+v", caller, id, req)
			}
			return nil, fmt.Errorf("%w: product already reviewed", domainErrors.ErrAlreadyExists)
		},
	}, discardLogger())

	w := performRequest(t, http.MethodPost, "/products/:id/reviews", "/products/p1/reviews", handler.AddReview, as(customer), []byte(`{"rating":5,"comment":"great"}`), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	w = performRequest(t, http.MethodPost, "/admin/products", "/admin/products", handler.Create, as(admin), []byte(`{"name":"Phone","price":"199.99","stock":3}`), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	w = performRequest(t, http.MethodPut, "/admin/products/:id", "/admin/products/p1", handler.Update, as(admin), []byte(`{"stock":4}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = performRequest(t, http.MethodGet, "/admin/products/stats", "/admin/products/stats", handler.Statistics, as(admin), nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"outOfStock":1`) {
		t.Fatalf("unexpected stats response %d %s", w.Code, w.Body.String())
	}
}

func TestAdminHandlerOrders(t *testing.T) {
	handler := NewAdminHandler(testhelpers.AdminFacadeStub{OrdersFn: func(_ context.Context, filter model.OrderFilter, _ model.Page) ([]model.Order, model.Pagination, error) {
		if filter.From == nil || filter.To == nil {
			t.Fatalf("expected date range, got %+v", filter)
		}
		if filter.To.Hour() != 23 || filter.Search != "ORD-1" {
			t.Fatalf("unexpected filter %+v", filter)
		}
		return nil, model.Pagination{Page: 1, Limit: 20}, nil
	}}, discardLogger())

	w := performRequest(t, http.MethodGet, "/admin/orders", "/admin/orders?startDate=2024-01-01&endDate=2024-01-31&search=ORD-1", handler.Orders, as(admin), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = performRequest(t, http.MethodGet, "/admin/orders", "/admin/orders?startDate=yesterday", handler.Orders, as(admin), nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if env := decode(t, w); env.Errors["startDate"] == "" {
		t.Fatalf("expected startDate error, got %+v", env)
	}
}

func TestAdminHandlerUpdateStatusAndStatistics(t *testing.T) {
	handler := NewAdminHandler(testhelpers.AdminFacadeStub{UpdateStatusFn: func(_ context.Context, id string, req dto.StatusUpdateRequest) (*model.Order, error) {
		if req.OrderStatus != "shipped" || req.PaymentStatus != "paid" {
			t.Fatalf("unexpected request %+v", req)
		}
		o := testhelpers.SampleOrder(id, "u1")
		o.OrderStatus = model.OrderStatusShipped
		return o, nil
	}}, discardLogger())

	w := performRequest(t, http.MethodPut, "/admin/orders/:id/status", "/admin/orders/o1/status", handler.UpdateStatus, as(admin), []byte(`{"orderStatus":"shipped","paymentStatus":"paid"}`), nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"orderStatus":"shipped"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = performRequest(t, http.MethodGet, "/admin/orders/stats", "/admin/orders/stats", handler.Statistics, as(admin), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data dto.OrderStatisticsResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.TotalOrders != 1 || resp.Data.StatusDistribution["pending"] != 1 || len(resp.Data.SalesTrend) != 1 {
		t.Fatalf("unexpected statistics %+v", resp.Data)
	}
	if resp.Data.SalesTrend[0].Day != "1970-01-01" {
		t.Fatalf("unexpected trend day %q", resp.Data.SalesTrend[0].Day)
	}
}

func TestHealth(t *testing.T) {
	w := performRequest(t, http.MethodGet, "/healthz", "/healthz", Health(testhelpers.StorefrontFacadeStub{}, discardLogger()), nil, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	down := testhelpers.StorefrontFacadeStub{HealthErr: domainErrors.ErrUnavailable}
	w = performRequest(t, http.MethodGet, "/healthz", "/healthz", Health(down, discardLogger()), nil, nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestAuthHandlerAddresses(t *testing.T) {
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{
		UpdateAddressFn: func(_ context.Context, caller model.Identity, id string, req dto.AddressRequest) (model.AddressBook, error) {
			if caller != customer || req.City != "Lagos" {
				t.Fatalf("unexpected call %+v %+v", caller, req)
			}
			return nil, fmt.Errorf("%w: address %s", domainErrors.ErrNotFound, id)
		},
	}, discardLogger())

	body := []byte(`{"street":"1 Main","city":"Lagos","state":"LA","zipCode":"100001","country":"NG"}`)
	w := performRequest(t, http.MethodPost, "/addresses", "/addresses", handler.AddAddress, as(customer), body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var resp struct {
		Data []dto.AddressResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || !resp.Data[0].IsDefault || resp.Data[0].ZipCode != "100001" {
		t.Fatalf("unexpected address book %+v", resp.Data)
	}

	w = performRequest(t, http.MethodPut, "/addresses/:addressId", "/addresses/a9", handler.UpdateAddress, as(customer), body, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = performRequest(t, http.MethodDelete, "/addresses/:addressId", "/addresses/a1", handler.DeleteAddress, as(customer), nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = performRequest(t, http.MethodPost, "/addresses", "/addresses", handler.AddAddress, as(customer), []byte(`{`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProductHandlerFeatured(t *testing.T) {
	handler := NewProductHandler(testhelpers.CatalogFacadeStub{FeaturedFn: func(_ context.Context, kind model.FeaturedKind, limit int) ([]model.Product, error) {
		if kind != model.FeaturedTopRated || limit != 4 {
			t.Fatalf("unexpected shelf %q/%d", kind, limit)
		}
		return []model.Product{*testhelpers.SampleProduct("p7")}, nil
	}}, discardLogger())

	w := performRequest(t, http.MethodGet, "/products/featured", "/products/featured?type=Top-Rated&limit=4", handler.Featured, nil, nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":"p7"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = performRequest(t, http.MethodGet, "/products/featured", "/products/featured?limit=many", handler.Featured, nil, nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProductHandlerDeleteAndBulkUpdate(t *testing.T) {
	handler := NewProductHandler(testhelpers.CatalogFacadeStub{
		DeleteFn: func(_ context.Context, id string) error {
			if id == "gone" {
				return fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
			}
			return nil
		},
		BulkUpdateFn: func(_ context.Context, req dto.BulkActiveRequest) (int, error) {
			if req.IsActive == nil || *req.IsActive || len(req.ProductIDs) != 2 {
				t.Fatalf("unexpected request %+v", req)
			}
			return 1, nil
		},
	}, discardLogger())

	w := performRequest(t, http.MethodDelete, "/admin/products/:id", "/admin/products/p1", handler.Delete, as(admin), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = performRequest(t, http.MethodDelete, "/admin/products/:id", "/admin/products/gone", handler.Delete, as(admin), nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = performRequest(t, http.MethodPut, "/admin/products/bulk-update", "/admin/products/bulk-update", handler.BulkUpdate, as(admin), []byte(`{"productIds":["p1","p2"],"isActive":false}`), nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"updated":1`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestCategoryHandler(t *testing.T) {
	var listed []*bool
	handler := NewCategoryHandler(testhelpers.CategoryFacadeStub{
		CategoriesFn: func(_ context.Context, active *bool) ([]model.Category, error) {
			listed = append(listed, active)
			return []model.Category{*testhelpers.SampleCategory("c1")}, nil
		},
		CreateFn: func(_ context.Context, req dto.CategoryRequest) (*model.Category, error) {
			if req.Name == "Books" {
				return nil, fmt.Errorf("%w: category with this name already exists", domainErrors.ErrAlreadyExists)
			}
			return nil, domainErrors.NewValidationError(map[string]string{"name": "is required"})
		},
	}, discardLogger())

	w := performRequest(t, http.MethodGet, "/categories", "/categories", handler.List, nil, nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"slug":"category-c1"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
	w = performRequest(t, http.MethodGet, "/admin/categories", "/admin/categories", handler.ListAll, as(admin), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(listed) != 2 || listed[0] == nil || !*listed[0] || listed[1] != nil {
		t.Fatalf("public listing must be active only, admin listing unfiltered: %v", listed)
	}

	w = performRequest(t, http.MethodGet, "/categories/:id", "/categories/books", handler.Get, nil, nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":"books"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = performRequest(t, http.MethodPost, "/admin/categories", "/admin/categories", handler.Create, as(admin), []byte(`{"name":"Books"}`), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	w = performRequest(t, http.MethodPost, "/admin/categories", "/admin/categories", handler.Create, as(admin), []byte(`{"name":" "}`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if env := decode(t, w); env.Errors["name"] != "is required" {
		t.Fatalf("expected name error, got %+v", env)
	}

	w = performRequest(t, http.MethodPut, "/admin/categories/:id", "/admin/categories/c1", handler.Update, as(admin), []byte(`{"isActive":false}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = performRequest(t, http.MethodDelete, "/admin/categories/:id", "/admin/categories/c1", handler.Delete, as(admin), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCustomerHandler(t *testing.T) {
	handler := NewCustomerHandler(testhelpers.CustomerFacadeStub{
		CustomersFn: func(_ context.Context, search string, page model.Page) ([]model.User, model.Pagination, error) {
			if search != "ann" || page.Number != 2 {
				t.Fatalf("unexpected listing %q %+v", search, page)
			}
			return nil, model.Pagination{Page: 2, Limit: 20, Total: 21, TotalPages: 2}, nil
		},
	}, discardLogger())

	w := performRequest(t, http.MethodGet, "/admin/customers", "/admin/customers?search=+ann+&page=2", handler.List, as(admin), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if env := decode(t, w); env.Pagination == nil || env.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected pagination %+v", env.Pagination)
	}

	w = performRequest(t, http.MethodGet, "/admin/customers/:id", "/admin/customers/u9", handler.Get, as(admin), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data dto.CustomerDetailsResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Customer.ID != "u9" || resp.Data.TotalOrders != 1 || len(resp.Data.RecentOrders) != 1 {
		t.Fatalf("unexpected details %+v", resp.Data)
	}
	if !resp.Data.TotalSpent.Equal(decimal.NewFromInt(168)) {
		t.Fatalf("unexpected total spent %s", resp.Data.TotalSpent)
	}

	w = performRequest(t, http.MethodGet, "/admin/customers/stats", "/admin/customers/stats", handler.Statistics, as(admin), nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"totalCustomers":4`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}
