package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const userColumns = `id, name, email, password_hash, phone, role, addresses, created_at, updated_at`

// addressRecord is the JSONB shape of an address book entry.
type addressRecord struct {
	ID        string `json:"id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	book, err := encodeAddresses(user.Addresses)
	if err != nil {
		return err
	}
	const query = `INSERT INTO users (id, name, email, password_hash, phone, role, addresses)
                   VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
                   RETURNING created_at, updated_at`
	err = r.storage.pool.QueryRow(ctx, query,
		user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.Phone, string(user.Role), book,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapError(err)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, name, phone string) (*model.User, error) {
	const query = `UPDATE users SET name=$2, phone=$3, updated_at=NOW() WHERE id=$1 RETURNING ` + userColumns
	return scanUser(r.storage.pool.QueryRow(ctx, query, id, name, phone))
}

func (r *userRepository) UpdateAddresses(ctx context.Context, id string, fn func(model.AddressBook) (model.AddressBook, error)) (*model.User, error) {
	var user *model.User
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return fmt.Errorf("user %s: %w", id, err)
		}
		book, err := fn(u.Addresses)
		if err != nil {
			return err
		}
		encoded, err := encodeAddresses(book)
		if err != nil {
			return err
		}

		const query = `UPDATE users SET addresses=$2::jsonb, updated_at=NOW() WHERE id=$1 RETURNING ` + userColumns
		user, err = scanUser(tx.QueryRow(ctx, query, id, encoded))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int, error) {
	w := userWhere(filter)

	var total int
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + w.String() + ` ORDER BY created_at DESC, id` + w.limit(page.Limit, page.Offset())
	rows, err := r.storage.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return users, total, nil
}

func (r *userRepository) Count(ctx context.Context, filter model.UserFilter) (int, error) {
	w := userWhere(filter)
	var n int
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func userWhere(f model.UserFilter) *where {
	w := &where{}
	if f.Role != "" {
		w.add("role = ?", string(f.Role))
	}
	if f.CreatedSince != nil {
		w.add("created_at >= ?", *f.CreatedSince)
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR email ILIKE ?)", "%"+f.Search+"%")
	}
	return w
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var book []byte
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &book, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if u.Addresses, err = decodeAddresses(book); err != nil {
		return nil, err
	}
	return &u, nil
}

func encodeAddresses(book model.AddressBook) (string, error) {
	records := make([]addressRecord, 0, len(book))
	for _, a := range book {
		records = append(records, addressRecord(a))
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("%w: encode addresses: %w", domainErrors.ErrValidation, err)
	}
	return string(raw), nil
}

func decodeAddresses(raw []byte) (model.AddressBook, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []addressRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	book := make(model.AddressBook, 0, len(records))
	for _, rec := range records {
		book = append(book, model.Address(rec))
	}
	return book, nil
}
