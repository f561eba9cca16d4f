package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const productColumns = `id, name, slug, description, price, compare_at_price, category, images, stock, COALESCE(sku, ''),
                        is_active, is_featured, average_rating, total_reviews, total_orders, created_at, updated_at`

const reviewColumns = `id, user_id, user_name, rating, comment, created_at`

var productOrdering = map[model.ProductSort]string{
	model.SortNewest:     "created_at DESC",
	model.SortPriceAsc:   "price ASC",
	model.SortPriceDesc:  "price DESC",
	model.SortRating:     "average_rating DESC, total_reviews DESC",
	model.SortPopularity: "total_orders DESC",
}

// --- ProductRepository implementation ---

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	const query = `INSERT INTO products (id, name, slug, description, price, compare_at_price, category, images,
                       stock, sku, is_active, is_featured)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)
                   RETURNING created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.Price, nullDecimal(p.CompareAtPrice), p.Category, images(p.Images),
		p.Stock, p.SKU, p.IsActive, p.IsFeatured,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapError(err)
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	return loadProduct(ctx, r.storage.pool, id)
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug=$1`, slug))
	if err != nil {
		return nil, err
	}
	if p.Reviews, err = loadReviews(ctx, r.storage.pool, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter, page model.Page) ([]model.Product, int, error) {
	w := productWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM products` + w.String()
	if err := r.storage.pool.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	order, ok := productOrdering[filter.Sort]
	if !ok {
		order = productOrdering[model.SortNewest]
	}
	query := `SELECT ` + productColumns + ` FROM products` + w.String() + ` ORDER BY ` + order + `, id` + w.limit(page.Limit, page.Offset())

	rows, err := r.storage.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	result := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return result, total, nil
}

func (r *productRepository) Update(ctx context.Context, id string, update model.ProductUpdate) (*model.Product, error) {
	var product *model.Product
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		p, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		update.Apply(p)

		const updateQuery = `UPDATE products SET name=$2, slug=$3, description=$4, price=$5, compare_at_price=$6,
                                 category=$7, images=$8, stock=$9, is_active=$10, is_featured=$11, updated_at=NOW()
                             WHERE id=$1 RETURNING updated_at`
		err = tx.QueryRow(ctx, updateQuery,
			id, p.Name, p.Slug, p.Description, p.Price, nullDecimal(p.CompareAtPrice), p.Category, images(p.Images),
			p.Stock, p.IsActive, p.IsFeatured,
		).Scan(&p.UpdatedAt)
		if err != nil {
			return mapError(err)
		}

		if p.Reviews, err = loadReviews(ctx, tx, id); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) Statistics(ctx context.Context) (*model.ProductStatistics, error) {
	const query = `SELECT COUNT(*),
                          COUNT(*) FILTER (WHERE is_active),
                          COUNT(*) FILTER (WHERE stock = 0),
                          COUNT(*) FILTER (WHERE stock > 0 AND stock <= $1)
                   FROM products`
	var stats model.ProductStatistics
	err := r.storage.pool.QueryRow(ctx, query, model.LowStockThreshold).
		Scan(&stats.Total, &stats.Active, &stats.OutOfStock, &stats.LowStock)
	if err != nil {
		return nil, mapError(err)
	}
	return &stats, nil
}

// Delete relies on ON DELETE CASCADE to drop the product's reviews.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
	}
	return nil
}

func (r *productRepository) SetActive(ctx context.Context, ids []string, active bool) (int, error) {
	const query = `UPDATE products SET is_active=$2, updated_at=NOW() WHERE id = ANY($1)`
	tag, err := r.storage.pool.Exec(ctx, query, ids, active)
	if err != nil {
		return 0, mapError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *productRepository) ReserveStock(ctx context.Context, id string, qty int) error {
	const query = `UPDATE products SET stock = stock - $2, total_orders = total_orders + $2, updated_at = NOW()
                   WHERE id = $1 AND is_active AND stock >= $2`
	tag, err := r.storage.pool.Exec(ctx, query, id, qty)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var active bool
	var stock int
	err = r.storage.pool.QueryRow(ctx, `SELECT is_active, stock FROM products WHERE id=$1`, id).Scan(&active, &stock)
	switch {
	case err != nil:
		return fmt.Errorf("product %s: %w", id, mapError(err))
	case !active:
		return fmt.Errorf("%w: product %s is not active", domainErrors.ErrInvalidState, id)
	default:
		return fmt.Errorf("%w: product %s has %d left", domainErrors.ErrInsufficientStock, id, stock)
	}
}

func (r *productRepository) ReleaseStock(ctx context.Context, id string, qty int) error {
	const query = `UPDATE products SET stock = stock + $2, total_orders = GREATEST(total_orders - $2, 0), updated_at = NOW()
                   WHERE id = $1`
	tag, err := r.storage.pool.Exec(ctx, query, id, qty)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
	}
	return nil
}

func (r *productRepository) AddReview(ctx context.Context, productID string, review model.Review) (*model.Product, error) {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	var product *model.Product
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&locked); err != nil {
			return mapError(err)
		}

		const insertReview = `INSERT INTO reviews (id, product_id, user_id, user_name, rating, comment, created_at)
                              VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.Exec(ctx, insertReview,
			review.ID, productID, review.UserID, review.UserName, review.Rating, review.Comment, review.CreatedAt,
		); err != nil {
			return mapError(err)
		}

		const refreshRating = `UPDATE products SET total_reviews = s.cnt, average_rating = s.avg, updated_at = NOW()
                               FROM (SELECT COUNT(*) AS cnt, COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8 AS avg
                                     FROM reviews WHERE product_id = $1) s
                               WHERE products.id = $1`
		if _, err := tx.Exec(ctx, refreshRating, productID); err != nil {
			return mapError(err)
		}

		p, err := loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func productWhere(f model.ProductFilter) *where {
	w := &where{}
	switch f.Visibility {
	case model.VisibilityAvailable:
		w.addRaw("is_active AND stock > 0")
	case model.VisibilityActive:
		w.addRaw("is_active")
	case model.VisibilityInactive:
		w.addRaw("NOT is_active")
	}
	if f.Category != "" {
		w.add("LOWER(category) = LOWER(?)", f.Category)
	}
	if f.MinPrice != nil {
		w.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("price <= ?", *f.MaxPrice)
	}
	if f.MinRating > 0 {
		w.add("average_rating >= ?", f.MinRating)
	}
	if f.Featured {
		w.addRaw("is_featured")
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR description ILIKE ?)", "%"+f.Search+"%")
	}
	return w
}

func loadProduct(ctx context.Context, q querier, id string) (*model.Product, error) {
	p, err := scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if p.Reviews, err = loadReviews(ctx, q, id); err != nil {
		return nil, err
	}
	return p, nil
}

func loadReviews(ctx context.Context, q querier, productID string) ([]model.Review, error) {
	rows, err := q.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE product_id=$1 ORDER BY created_at`, productID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reviews, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	var compareAt decimal.NullDecimal
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &compareAt, &p.Category, &p.Images,
		&p.Stock, &p.SKU, &p.IsActive, &p.IsFeatured, &p.AverageRating, &p.TotalReviews, &p.TotalOrders,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if compareAt.Valid {
		v := compareAt.Decimal
		p.CompareAtPrice = &v
	}
	return &p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func images(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
