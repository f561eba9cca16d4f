package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
	Categories() CategoryRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
