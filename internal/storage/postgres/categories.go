package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const categoryColumns = `id, name, slug, description, image, is_active, created_at, updated_at`

// --- CategoryRepository implementation ---

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	const query = `INSERT INTO categories (id, name, slug, description, image, is_active)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   RETURNING created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.Image, c.IsActive).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

func (r *categoryRepository) Get(ctx context.Context, idOrSlug string) (*model.Category, error) {
	const query = `SELECT ` + categoryColumns + ` FROM categories WHERE id=$1 OR slug=$1 ORDER BY id=$1 DESC LIMIT 1`
	c, err := scanCategory(r.storage.pool.QueryRow(ctx, query, idOrSlug))
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", idOrSlug, err)
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context, active *bool) ([]model.Category, error) {
	w := &where{}
	if active != nil {
		w.add("is_active = ?", *active)
	}
	rows, err := r.storage.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories`+w.String()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, id string, update model.CategoryUpdate) (*model.Category, error) {
	var category *model.Category
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		c, err := scanCategory(tx.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return fmt.Errorf("category %s: %w", id, err)
		}
		update.Apply(c)

		const query = `UPDATE categories SET name=$2, slug=$3, description=$4, image=$5, is_active=$6, updated_at=NOW()
                       WHERE id=$1 RETURNING updated_at`
		if err := tx.QueryRow(ctx, query, id, c.Name, c.Slug, c.Description, c.Image, c.IsActive).Scan(&c.UpdatedAt); err != nil {
			return mapError(err)
		}
		category = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: category %s", domainErrors.ErrNotFound, id)
	}
	return nil
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}
