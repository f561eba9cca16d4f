package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

// RegisterInput describes a new customer account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"max=32"`
}

// ProfileInput carries editable profile fields.
type ProfileInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"max=32"`
}

// AddressInput is an address book entry as submitted by its owner.
type AddressInput struct {
	Street    string `json:"street" validate:"notblank,max=200"`
	City      string `json:"city" validate:"notblank,max=100"`
	State     string `json:"state" validate:"notblank,max=100"`
	ZipCode   string `json:"zipCode" validate:"notblank,max=20"`
	Country   string `json:"country" validate:"notblank,max=100"`
	IsDefault bool   `json:"isDefault"`
}

func (in AddressInput) address(id string) model.Address {
	return model.Address{
		ID:        id,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Country:   in.Country,
		IsDefault: in.IsDefault,
	}.Trimmed()
}

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users    repository.UserRepository
	hasher   pkgAuth.PasswordHasher
	tokens   pkgAuth.Strategy
	validate *Validator
	logger   *slog.Logger
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, v *Validator, logger *slog.Logger) *AuthUseCase {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, validate: v, logger: logger}
}

// Register creates a customer account and returns an auth token.
func (u *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := u.validate.Struct(in); err != nil {
		return nil, "", err
	}

	usr, err := u.create(ctx, in, model.RoleCustomer)
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(identityOf(usr))
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(identityOf(usr))
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// Verify resolves a bearer token into the identity of an existing user.
// The role is taken from the stored user, not from the token.
func (u *AuthUseCase) Verify(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, pkgAuth.ErrInvalidToken
	}
	claimed, err := u.tokens.ParseToken(token)
	if err != nil {
		return model.Identity{}, err
	}

	usr, err := u.users.GetByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.Identity{}, pkgAuth.ErrInvalidToken
		}
		return model.Identity{}, err
	}
	return identityOf(usr), nil
}

// Profile returns the caller's account.
func (u *AuthUseCase) Profile(ctx context.Context, caller model.Identity) (*model.User, error) {
	return u.users.GetByID(ctx, caller.UserID)
}

// UpdateProfile changes the caller's name and phone.
func (u *AuthUseCase) UpdateProfile(ctx context.Context, caller model.Identity, in ProfileInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}
	return u.users.UpdateProfile(ctx, caller.UserID, in.Name, strings.TrimSpace(in.Phone))
}

// AddAddress appends an entry to the caller's address book. The first
// address, or one flagged as default, becomes the default.
func (u *AuthUseCase) AddAddress(ctx context.Context, caller model.Identity, in AddressInput) (model.AddressBook, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}
	entry := in.address(uuid.NewString())
	return u.editAddresses(ctx, caller, func(book model.AddressBook) (model.AddressBook, error) {
		return book.Add(entry), nil
	})
}

// UpdateAddress replaces one entry of the caller's address book.
func (u *AuthUseCase) UpdateAddress(ctx context.Context, caller model.Identity, addressID string, in AddressInput) (model.AddressBook, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, err
	}
	entry := in.address(addressID)
	return u.editAddresses(ctx, caller, func(book model.AddressBook) (model.AddressBook, error) {
		next, ok := book.Replace(entry)
		if !ok {
			return nil, fmt.Errorf("%w: address %s", domainErrors.ErrNotFound, addressID)
		}
		return next, nil
	})
}

// DeleteAddress removes one entry of the caller's address book.
func (u *AuthUseCase) DeleteAddress(ctx context.Context, caller model.Identity, addressID string) (model.AddressBook, error) {
	return u.editAddresses(ctx, caller, func(book model.AddressBook) (model.AddressBook, error) {
		next, ok := book.Remove(addressID)
		if !ok {
			return nil, fmt.Errorf("%w: address %s", domainErrors.ErrNotFound, addressID)
		}
		return next, nil
	})
}

func (u *AuthUseCase) editAddresses(ctx context.Context, caller model.Identity, fn func(model.AddressBook) (model.AddressBook, error)) (model.AddressBook, error) {
	usr, err := u.users.UpdateAddresses(ctx, caller.UserID, fn)
	if err != nil {
		return nil, err
	}
	if usr.Addresses == nil {
		return model.AddressBook{}, nil
	}
	return usr.Addresses, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (u *AuthUseCase) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := u.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != model.RoleAdmin {
			u.logger.Warn("bootstrap admin email belongs to a customer", slog.String("email", email))
		}
		return nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	in := RegisterInput{Name: "Administrator", Email: email, Password: password}
	if err := u.validate.Struct(in); err != nil {
		return err
	}
	if _, err := u.create(ctx, in, model.RoleAdmin); err != nil && !errors.Is(err, domainErrors.ErrAlreadyExists) {
		return err
	}
	u.logger.Info("admin account ready", slog.String("email", email))
	return nil
}

func (u *AuthUseCase) create(ctx context.Context, in RegisterInput, role model.Role) (*model.User, error) {
	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	usr := &model.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: user with this email already exists", domainErrors.ErrAlreadyExists)
		}
		return nil, err
	}
	return usr, nil
}

func identityOf(u *model.User) model.Identity {
	return model.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}
