package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// addressWriteAttempts bounds optimistic rewrites of an address book.
const addressWriteAttempts = 5

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	now := r.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	doc := newUserDoc(user)
	doc.Email = strings.ToLower(doc.Email)
	_, err := r.coll.InsertOne(ctx, doc)
	return mapError(err)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, name, phone string) (*model.User, error) {
	update := bson.M{"$set": bson.M{"name": name, "phone": phone, "updatedAt": r.now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.model(), nil
}

// UpdateAddresses reads the book, applies fn and writes the result back only
// if nobody rewrote the book in between.
func (r *userRepository) UpdateAddresses(ctx context.Context, id string, fn func(model.AddressBook) (model.AddressBook, error)) (*model.User, error) {
	for range addressWriteAttempts {
		var current userDoc
		if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&current); err != nil {
			return nil, fmt.Errorf("user %s: %w", id, mapError(err))
		}
		book, err := fn(current.model().Addresses)
		if err != nil {
			return nil, err
		}

		filter := bson.M{"_id": id, "addressVersion": current.AddressVersion}
		if current.AddressVersion == 0 {
			filter["addressVersion"] = bson.M{"$in": bson.A{0, nil}}
		}
		update := bson.M{
			"$set": bson.M{"addresses": newBookDocs(book), "updatedAt": r.now()},
			"$inc": bson.M{"addressVersion": 1},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var doc userDoc
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		switch {
		case err == nil:
			return doc.model(), nil
		case errors.Is(mapError(err), domainErrors.ErrNotFound):
			continue
		default:
			return nil, mapError(err)
		}
	}
	return nil, fmt.Errorf("%w: address book of user %s changed concurrently", domainErrors.ErrInvalidState, id)
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int, error) {
	query := userQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"passwordHash": 0})
	if page.Limit > 0 {
		opts.SetSkip(int64(page.Offset())).SetLimit(int64(page.Limit))
	}
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mapError(err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mapError(err)
	}

	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.model())
	}
	return users, int(total), nil
}

func (r *userRepository) Count(ctx context.Context, filter model.UserFilter) (int, error) {
	n, err := r.coll.CountDocuments(ctx, userQuery(filter))
	if err != nil {
		return 0, mapError(err)
	}
	return int(n), nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.model(), nil
}

func userQuery(f model.UserFilter) bson.M {
	q := bson.M{}
	if f.Role != "" {
		q["role"] = string(f.Role)
	}
	if f.CreatedSince != nil {
		q["createdAt"] = bson.M{"$gte": *f.CreatedSince}
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"email": pattern}}
	}
	return q
}
