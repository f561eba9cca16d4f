package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	// Create stores a new user. Returns ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name, phone string) (*model.User, error)

	// UpdateAddresses replaces the address book with the result of fn,
	// applied to the stored book under a lock or version check so that
	// concurrent edits are not lost. Errors from fn are returned as is.
	UpdateAddresses(ctx context.Context, id string, fn func(model.AddressBook) (model.AddressBook, error)) (*model.User, error)

	// List returns users matching filter, newest first.
	List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int, error)
	Count(ctx context.Context, filter model.UserFilter) (int, error)
}
