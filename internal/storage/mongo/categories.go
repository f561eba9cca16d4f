package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	now := r.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, newCategoryDoc(c))
	return mapError(err)
}

func (r *categoryRepository) Get(ctx context.Context, idOrSlug string) (*model.Category, error) {
	filter := bson.M{"$or": bson.A{bson.M{"_id": idOrSlug}, bson.M{"slug": idOrSlug}}}
	var doc categoryDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, fmt.Errorf("category %s: %w", idOrSlug, mapError(err))
	}
	return doc.model(), nil
}

func (r *categoryRepository) List(ctx context.Context, active *bool) ([]model.Category, error) {
	filter := bson.M{}
	if active != nil {
		filter["isActive"] = *active
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapError(err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError(err)
	}

	categories := make([]model.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, *d.model())
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, id string, u model.CategoryUpdate) (*model.Category, error) {
	set := bson.M{"updatedAt": r.now()}
	if u.Name != nil {
		set["name"] = *u.Name
		set["slug"] = model.Slugify(*u.Name)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Image != nil {
		set["image"] = *u.Image
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc categoryDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("category %s: %w", id, mapError(err))
	}
	return doc.model(), nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: category %s", domainErrors.ErrNotFound, id)
	}
	return nil
}
