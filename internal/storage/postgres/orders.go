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

const orderColumns = `id, number, user_id, street, city, state, zip_code, country, payment_method, payment_status,
                      order_status, subtotal, tax, shipping_cost, total, notes, created_at, updated_at`

const itemColumns = `order_id, product_id, product_name, product_image, quantity, price, total`

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.UpdatedAt = o.CreatedAt

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders (id, number, user_id, street, city, state, zip_code, country,
                                 payment_method, payment_status, order_status, subtotal, tax, shipping_cost, total,
                                 notes, created_at, updated_at)
                             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)`
		addr := o.ShippingAddress
		if _, err := tx.Exec(ctx, insertOrder,
			o.ID, o.Number, o.UserID, addr.Street, addr.City, addr.State, addr.ZipCode, addr.Country,
			string(o.PaymentMethod), string(o.PaymentStatus), string(o.OrderStatus),
			o.Subtotal, o.Tax, o.ShippingCost, o.Total, o.Notes, o.CreatedAt,
		); err != nil {
			return mapError(err)
		}

		const insertItem = `INSERT INTO order_items (order_id, position, product_id, product_name, product_image,
                                quantity, price, total)
                            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		for i, item := range o.Items {
			if _, err := tx.Exec(ctx, insertItem,
				o.ID, i, item.ProductID, item.ProductName, item.ProductImage, item.Quantity, item.Price, item.Total,
			); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return loadOrder(ctx, r.storage.pool, id)
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int, error) {
	w := orderWhere(filter)

	var total int
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + w.String() + ` ORDER BY created_at DESC, number DESC` + w.limit(page.Limit, page.Offset())
	rows, err := r.storage.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	index := make(map[string]int)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, total, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := loadItems(ctx, r.storage.pool, `WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return nil, 0, err
	}
	for orderID, list := range items {
		orders[index[orderID]].Items = list
	}
	return orders, total, nil
}

func (r *orderRepository) Transition(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus, payment *model.PaymentStatus) (*model.Order, error) {
	if len(from) == 0 {
		from = model.OrderStatuses
	}
	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}
	var paymentStatus *string
	if payment != nil {
		v := string(*payment)
		paymentStatus = &v
	}

	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const query = `UPDATE orders SET order_status = $2, payment_status = COALESCE($3::text, payment_status), updated_at = NOW()
                       WHERE id = $1 AND order_status = ANY($4)`
		tag, err := tx.Exec(ctx, query, id, string(to), paymentStatus, allowed)
		if err != nil {
			return mapError(err)
		}

		o, err := loadOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: order is %s", domainErrors.ErrInvalidState, o.OrderStatus)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) UpdatePayment(ctx context.Context, id string, status model.PaymentStatus) (*model.Order, error) {
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, id)
		}
		order, err = loadOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT order_status, COUNT(*) FROM orders GROUP BY order_status`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	counts := make(map[model.OrderStatus]int)
	for rows.Next() {
		var status model.OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return counts, nil
}

func (r *orderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(total), 0) FROM orders WHERE payment_status = 'paid' AND order_status <> 'cancelled'`
	var total decimal.Decimal
	if err := r.storage.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, mapError(err)
	}
	return total, nil
}

func (r *orderRepository) TotalSpent(ctx context.Context, userID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(total), 0) FROM orders WHERE user_id = $1 AND payment_status = 'paid' AND order_status <> 'cancelled'`
	var total decimal.Decimal
	if err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return decimal.Zero, mapError(err)
	}
	return total, nil
}

func (r *orderRepository) SalesTrend(ctx context.Context, since time.Time) ([]model.SalesPoint, error) {
	const query = `SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, SUM(total), COUNT(*)
                   FROM orders
                   WHERE payment_status = 'paid' AND order_status <> 'cancelled' AND created_at >= $1
                   GROUP BY day ORDER BY day`
	rows, err := r.storage.pool.Query(ctx, query, since)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	trend := make([]model.SalesPoint, 0)
	for rows.Next() {
		var p model.SalesPoint
		if err := rows.Scan(&p.Day, &p.Sales, &p.Orders); err != nil {
			return nil, err
		}
		p.Day = p.Day.UTC()
		trend = append(trend, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return trend, nil
}

func orderWhere(f model.OrderFilter) *where {
	w := &where{}
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		w.add("order_status = ?", string(f.Status))
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	if f.Search != "" {
		w.add("(number ILIKE ? OR city ILIKE ?)", "%"+f.Search+"%")
	}
	return w
}

func loadOrder(ctx context.Context, q querier, id string) (*model.Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, q, `WHERE order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return o, nil
}

func loadItems(ctx context.Context, q querier, filter string, arg any) (map[string][]model.OrderItem, error) {
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM order_items `+filter+` ORDER BY order_id, position`, arg)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make(map[string][]model.OrderItem)
	for rows.Next() {
		var orderID string
		var it model.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.ProductImage, &it.Quantity, &it.Price, &it.Total); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	a := &o.ShippingAddress
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &a.Street, &a.City, &a.State, &a.ZipCode, &a.Country,
		&o.PaymentMethod, &o.PaymentStatus, &o.OrderStatus, &o.Subtotal, &o.Tax, &o.ShippingCost, &o.Total,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &o, nil
}
