package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	usersCollection      = "users"
	productsCollection   = "products"
	ordersCollection     = "orders"
	categoriesCollection = "categories"
)

// Storage acts as repository facade backed by MongoDB.
type Storage struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
	now    func() time.Time
}

var _ repository.Factory = (*Storage)(nil)

type userRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

type productRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

type orderRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

type categoryRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// New connects to MongoDB and prepares indexes.
func New(ctx context.Context, uri, database string, logger *slog.Logger) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	storage := newStorage(client, client.Database(database), logger)
	if err := storage.HealthCheck(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if err := storage.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("mongo storage ready", slog.String("database", database))
	return storage, nil
}

func newStorage(client *mongo.Client, db *mongo.Database, logger *slog.Logger) *Storage {
	return &Storage{
		client: client,
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Storage) Users() repository.UserRepository {
	return &userRepository{coll: s.db.Collection(usersCollection), now: s.now}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{coll: s.db.Collection(productsCollection), now: s.now}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{coll: s.db.Collection(ordersCollection), now: s.now}
}

func (s *Storage) Categories() repository.CategoryRepository {
	return &categoryRepository{coll: s.db.Collection(categoriesCollection), now: s.now}
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return mapError(s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err())
}

// Close disconnects the client.
func (s *Storage) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderStatus", Value: 1}}},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetCollation(&options.Collation{Locale: "en", Strength: 2}),
			},
		},
	}

	for _, name := range []string{usersCollection, productsCollection, ordersCollection, categoriesCollection} {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, indexes[name]); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domainErrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", domainErrors.ErrAlreadyExists, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return fmt.Errorf("%w: %w", domainErrors.ErrUnavailable, err)
	}
	return err
}
