package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Storage keeps all aggregates in process memory. A single lock serialises
// writers so every conditional update is atomic.
type Storage struct {
	mu       sync.RWMutex
	users    map[string]model.User
	emails   map[string]string
	products map[string]model.Product
	orders     map[string]model.Order
	categories map[string]model.Category
	now        func() time.Time
}

type userRepository struct{ s *Storage }
type productRepository struct{ s *Storage }
type orderRepository struct{ s *Storage }
type categoryRepository struct{ s *Storage }

// New creates empty storage.
func New() *Storage {
	return &Storage{
		users:    make(map[string]model.User),
		emails:   make(map[string]string),
		products: make(map[string]model.Product),
		orders:     make(map[string]model.Order),
		categories: make(map[string]model.Category),
		now:        time.Now,
	}
}

func (s *Storage) Users() repository.UserRepository       { return &userRepository{s: s} }
func (s *Storage) Products() repository.ProductRepository { return &productRepository{s: s} }
func (s *Storage) Orders() repository.OrderRepository     { return &orderRepository{s: s} }
func (s *Storage) Categories() repository.CategoryRepository {
	return &categoryRepository{s: s}
}

// HealthCheck always succeeds.
func (s *Storage) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (s *Storage) Close(context.Context) error { return nil }

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.s.emails[email]; exists {
		return fmt.Errorf("%w: email %s", domainErrors.ErrAlreadyExists, user.Email)
	}
	if _, exists := r.s.users[user.ID]; exists {
		return fmt.Errorf("%w: user %s", domainErrors.ErrAlreadyExists, user.ID)
	}
	now := r.s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.s.users[user.ID] = cloneUser(*user)
	r.s.emails[email] = user.ID
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	u := cloneUser(r.s.users[id])
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, name, phone string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	u.Name = name
	u.Phone = phone
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	u = cloneUser(u)
	return &u, nil
}

func (r *userRepository) UpdateAddresses(ctx context.Context, id string, fn func(model.AddressBook) (model.AddressBook, error)) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domainErrors.ErrNotFound, id)
	}
	book, err := fn(slices.Clone(u.Addresses))
	if err != nil {
		return nil, err
	}
	u.Addresses = slices.Clone(book)
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	u = cloneUser(u)
	return &u, nil
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int, error) {
	r.s.mu.RLock()
	matched := make([]model.User, 0)
	for _, u := range r.s.users {
		if matchUser(u, filter) {
			matched = append(matched, cloneUser(u))
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.User) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return paginate(matched, page), len(matched), nil
}

func (r *userRepository) Count(ctx context.Context, filter model.UserFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, u := range r.s.users {
		if matchUser(u, filter) {
			n++
		}
	}
	return n, nil
}

// --- ProductRepository implementation ---

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.products {
		if p.ID == product.ID || p.Slug == product.Slug || (product.SKU != "" && p.SKU == product.SKU) {
			return fmt.Errorf("%w: product %s", domainErrors.ErrAlreadyExists, product.Slug)
		}
	}
	now := r.s.now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.s.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			out := cloneProduct(p)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, slug)
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter, page model.Page) ([]model.Product, int, error) {
	r.s.mu.RLock()
	matched := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if matchProduct(p, filter) {
			matched = append(matched, cloneProduct(p))
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Product) int {
		switch filter.Sort {
		case model.SortPriceAsc:
			return a.Price.Cmp(b.Price)
		case model.SortPriceDesc:
			return b.Price.Cmp(a.Price)
		case model.SortRating:
			return cmp.Or(cmp.Compare(b.AverageRating, a.AverageRating), cmp.Compare(b.TotalReviews, a.TotalReviews))
		case model.SortPopularity:
			return cmp.Compare(b.TotalOrders, a.TotalOrders)
		default:
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	})
	return paginate(matched, page), len(matched), nil
}

func (r *productRepository) Update(ctx context.Context, id string, update model.ProductUpdate) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	update.Apply(&p)
	for otherID, other := range r.s.products {
		if otherID != id && other.Slug == p.Slug {
			return nil, fmt.Errorf("%w: slug %s", domainErrors.ErrAlreadyExists, p.Slug)
		}
	}
	p.UpdatedAt = r.s.now()
	r.s.products[id] = p
	out := cloneProduct(p)
	return &out, nil
}

func (r *productRepository) Statistics(ctx context.Context) (*model.ProductStatistics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats model.ProductStatistics
	for _, p := range r.s.products {
		stats.Total++
		if p.IsActive {
			stats.Active++
		}
		if p.Stock == 0 {
			stats.OutOfStock++
		} else if p.Stock <= model.LowStockThreshold {
			stats.LowStock++
		}
	}
	return &stats, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
	}
	delete(r.s.products, id)
	return nil
}

func (r *productRepository) SetActive(ctx context.Context, ids []string, active bool) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	n := 0
	for _, id := range slices.Compact(slices.Sorted(slices.Values(ids))) {
		p, ok := r.s.products[id]
		if !ok {
			continue
		}
		p.IsActive = active
		p.UpdatedAt = now
		r.s.products[id] = p
		n++
	}
	return n, nil
}

func (r *productRepository) ReserveStock(ctx context.Context, id string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	switch {
	case !ok:
		return fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
	case !p.IsActive:
		return fmt.Errorf("%w: product %s is not active", domainErrors.ErrInvalidState, id)
	case p.Stock < qty:
		return fmt.Errorf("%w: product %s has %d left", domainErrors.ErrInsufficientStock, id, p.Stock)
	}
	p.Stock -= qty
	p.TotalOrders += qty
	p.UpdatedAt = r.s.now()
	r.s.products[id] = p
	return nil
}

func (r *productRepository) ReleaseStock(ctx context.Context, id string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
	}
	p.Stock += qty
	p.TotalOrders = max(p.TotalOrders-qty, 0)
	p.UpdatedAt = r.s.now()
	r.s.products[id] = p
	return nil
}

func (r *productRepository) AddReview(ctx context.Context, productID string, review model.Review) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, productID)
	}
	for _, existing := range p.Reviews {
		if existing.UserID == review.UserID {
			return nil, fmt.Errorf("%w: product already reviewed", domainErrors.ErrAlreadyExists)
		}
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = r.s.now()
	}
	p.Reviews = append(slices.Clip(p.Reviews), review)
	p.TotalReviews = len(p.Reviews)
	p.AverageRating = model.AverageRating(p.Reviews)
	r.s.products[productID] = p
	out := cloneProduct(p)
	return &out, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.ID == order.ID || o.Number == order.Number {
			return fmt.Errorf("%w: order %s", domainErrors.ErrAlreadyExists, order.Number)
		}
	}
	now := r.s.now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, id)
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int, error) {
	r.s.mu.RLock()
	matched := make([]model.Order, 0)
	for _, o := range r.s.orders {
		if matchOrder(o, filter) {
			matched = append(matched, cloneOrder(o))
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Number, a.Number)
	})
	return paginate(matched, page), len(matched), nil
}

func (r *orderRepository) Transition(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus, payment *model.PaymentStatus) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, id)
	}
	if len(from) > 0 && !slices.Contains(from, o.OrderStatus) {
		return nil, fmt.Errorf("%w: order is %s", domainErrors.ErrInvalidState, o.OrderStatus)
	}
	o.OrderStatus = to
	if payment != nil {
		o.PaymentStatus = *payment
	}
	o.UpdatedAt = r.s.now()
	r.s.orders[id] = o
	out := cloneOrder(o)
	return &out, nil
}

func (r *orderRepository) UpdatePayment(ctx context.Context, id string, status model.PaymentStatus) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, id)
	}
	o.PaymentStatus = status
	o.UpdatedAt = r.s.now()
	r.s.orders[id] = o
	out := cloneOrder(o)
	return &out, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[model.OrderStatus]int)
	for _, o := range r.s.orders {
		counts[o.OrderStatus]++
	}
	return counts, nil
}

func (r *orderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := decimal.Zero
	for _, o := range r.s.orders {
		if countsAsSale(o) {
			total = total.Add(o.Total)
		}
	}
	return total, nil
}

func (r *orderRepository) TotalSpent(ctx context.Context, userID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := decimal.Zero
	for _, o := range r.s.orders {
		if o.UserID == userID && countsAsSale(o) {
			total = total.Add(o.Total)
		}
	}
	return total, nil
}

func (r *orderRepository) SalesTrend(ctx context.Context, since time.Time) ([]model.SalesPoint, error) {
	r.s.mu.RLock()
	byDay := make(map[time.Time]*model.SalesPoint)
	for _, o := range r.s.orders {
		if !countsAsSale(o) || o.CreatedAt.Before(since) {
			continue
		}
		day := o.CreatedAt.UTC().Truncate(24 * time.Hour)
		point, ok := byDay[day]
		if !ok {
			point = &model.SalesPoint{Day: day, Sales: decimal.Zero}
			byDay[day] = point
		}
		point.Sales = point.Sales.Add(o.Total)
		point.Orders++
	}
	r.s.mu.RUnlock()

	trend := make([]model.SalesPoint, 0, len(byDay))
	for _, p := range byDay {
		trend = append(trend, *p)
	}
	slices.SortFunc(trend, func(a, b model.SalesPoint) int { return a.Day.Compare(b.Day) })
	return trend, nil
}

// --- CategoryRepository implementation ---

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkUnique(*c); err != nil {
		return err
	}
	now := r.s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	r.s.categories[c.ID] = *c
	return nil
}

func (r *categoryRepository) Get(ctx context.Context, idOrSlug string) (*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if c, ok := r.s.categories[idOrSlug]; ok {
		return &c, nil
	}
	for _, c := range r.s.categories {
		if c.Slug == idOrSlug {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: category %s", domainErrors.ErrNotFound, idOrSlug)
}

func (r *categoryRepository) List(ctx context.Context, active *bool) ([]model.Category, error) {
	r.s.mu.RLock()
	out := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		if active == nil || c.IsActive == *active {
			out = append(out, c)
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *categoryRepository) Update(ctx context.Context, id string, update model.CategoryUpdate) (*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: category %s", domainErrors.ErrNotFound, id)
	}
	update.Apply(&c)
	if err := r.checkUnique(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = r.s.now()
	r.s.categories[id] = c
	return &c, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return fmt.Errorf("%w: category %s", domainErrors.ErrNotFound, id)
	}
	delete(r.s.categories, id)
	return nil
}

// checkUnique must be called with the lock held.
func (r *categoryRepository) checkUnique(c model.Category) error {
	for id, other := range r.s.categories {
		if id != c.ID && (strings.EqualFold(other.Name, c.Name) || other.Slug == c.Slug) {
			return fmt.Errorf("%w: category %s", domainErrors.ErrAlreadyExists, c.Name)
		}
	}
	return nil
}

func countsAsSale(o model.Order) bool {
	return o.PaymentStatus == model.PaymentStatusPaid && o.OrderStatus != model.OrderStatusCancelled
}

func matchProduct(p model.Product, f model.ProductFilter) bool {
	switch f.Visibility {
	case model.VisibilityAvailable:
		if !p.IsActive || p.Stock <= 0 {
			return false
		}
	case model.VisibilityActive:
		if !p.IsActive {
			return false
		}
	case model.VisibilityInactive:
		if p.IsActive {
			return false
		}
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating > 0 && p.AverageRating < f.MinRating {
		return false
	}
	if f.Featured && !p.IsFeatured {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

func matchUser(u model.User, f model.UserFilter) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.CreatedSince != nil && u.CreatedAt.Before(*f.CreatedSince) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			return false
		}
	}
	return true
}

func matchOrder(o model.Order, f model.OrderFilter) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.Status != "" && o.OrderStatus != f.Status {
		return false
	}
	if f.From != nil && o.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && o.CreatedAt.After(*f.To) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(o.Number), q) && !strings.Contains(strings.ToLower(o.ShippingAddress.City), q) {
			return false
		}
	}
	return true
}

func paginate[T any](items []T, page model.Page) []T {
	if page.Limit <= 0 {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+page.Limit, len(items))
	return items[start:end]
}

func cloneProduct(p model.Product) model.Product {
	p.Images = slices.Clone(p.Images)
	p.Reviews = slices.Clone(p.Reviews)
	if p.CompareAtPrice != nil {
		v := *p.CompareAtPrice
		p.CompareAtPrice = &v
	}
	return p
}

func cloneUser(u model.User) model.User {
	u.Addresses = slices.Clone(u.Addresses)
	return u
}

func cloneOrder(o model.Order) model.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
