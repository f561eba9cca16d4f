package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var productSorts = map[model.ProductSort]bson.D{
	model.SortNewest:     {{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}},
	model.SortPriceAsc:   {{Key: "price", Value: 1}, {Key: "_id", Value: 1}},
	model.SortPriceDesc:  {{Key: "price", Value: -1}, {Key: "_id", Value: 1}},
	model.SortRating:     {{Key: "averageRating", Value: -1}, {Key: "totalReviews", Value: -1}, {Key: "_id", Value: 1}},
	model.SortPopularity: {{Key: "totalOrders", Value: -1}, {Key: "_id", Value: 1}},
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	now := r.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, newProductDoc(p))
	return mapError(err)
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var doc productDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.model(), nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var doc productDoc
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.model(), nil
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter, page model.Page) ([]model.Product, int, error) {
	query := productQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapError(err)
	}

	sort, ok := productSorts[filter.Sort]
	if !ok {
		sort = productSorts[model.SortNewest]
	}
	opts := options.Find().SetSort(sort).SetProjection(bson.M{"reviews": 0})
	if page.Limit > 0 {
		opts.SetSkip(int64(page.Offset())).SetLimit(int64(page.Limit))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mapError(err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mapError(err)
	}

	result := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		result = append(result, *d.model())
	}
	return result, int(total), nil
}

// Update sets only the supplied fields.
func (r *productRepository) Update(ctx context.Context, id string, u model.ProductUpdate) (*model.Product, error) {
	set := bson.M{"updatedAt": r.now()}
	if u.Name != nil {
		set["name"] = *u.Name
		set["slug"] = model.Slugify(*u.Name)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = toDecimal128(*u.Price)
	}
	if u.CompareAtPrice != nil {
		set["compareAtPrice"] = toDecimal128(*u.CompareAtPrice)
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Images != nil {
		set["images"] = u.Images
	}
	if u.Stock != nil {
		set["stock"] = *u.Stock
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}
	if u.IsFeatured != nil {
		set["isFeatured"] = *u.IsFeatured
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.model(), nil
}

// Delete removes the product document; reviews are embedded and go with it.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
	}
	return nil
}

func (r *productRepository) SetActive(ctx context.Context, ids []string, active bool) (int, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": r.now()}},
	)
	if err != nil {
		return 0, mapError(err)
	}
	return int(res.MatchedCount), nil
}

func (r *productRepository) Statistics(ctx context.Context) (*model.ProductStatistics, error) {
	type counter struct {
		filter bson.M
		dst    *int
	}
	var stats model.ProductStatistics
	counters := []counter{
		{bson.M{}, &stats.Total},
		{bson.M{"isActive": true}, &stats.Active},
		{bson.M{"stock": 0}, &stats.OutOfStock},
		{bson.M{"stock": bson.M{"$gt": 0, "$lte": model.LowStockThreshold}}, &stats.LowStock},
	}

	for _, c := range counters {
		n, err := r.coll.CountDocuments(ctx, c.filter)
		if err != nil {
			return nil, mapError(err)
		}
		*c.dst = int(n)
	}
	return &stats, nil
}

func (r *productRepository) ReserveStock(ctx context.Context, id string, qty int) error {
	filter := bson.M{"_id": id, "isActive": true, "stock": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"stock": -qty, "totalOrders": qty},
		"$set": bson.M{"updatedAt": r.now()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	var state struct {
		IsActive bool `bson:"isActive"`
		Stock    int  `bson:"stock"`
	}
	opts := options.FindOne().SetProjection(bson.M{"isActive": 1, "stock": 1})
	err = r.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&state)
	switch {
	case err != nil:
		return fmt.Errorf("product %s: %w", id, mapError(err))
	case !state.IsActive:
		return fmt.Errorf("%w: product %s is not active", domainErrors.ErrInvalidState, id)
	default:
		return fmt.Errorf("%w: product %s has %d left", domainErrors.ErrInsufficientStock, id, state.Stock)
	}
}

func (r *productRepository) ReleaseStock(ctx context.Context, id string, qty int) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "stock", Value: bson.D{{Key: "$add", Value: bson.A{"$stock", qty}}}},
			{Key: "totalOrders", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$subtract", Value: bson.A{"$totalOrders", qty}}},
			}}}},
			{Key: "updatedAt", Value: r.now()},
		}}},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, id)
	}
	return nil
}

// AddReview appends the review and recomputes aggregates in one pipeline update.
// The filter never matches a product the user has already reviewed.
func (r *productRepository) AddReview(ctx context.Context, productID string, review model.Review) (*model.Product, error) {
	now := r.now()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}

	filter := bson.M{"_id": productID, "reviews.userId": bson.M{"$ne": review.UserID}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "reviews", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}},
				bson.A{bson.D{{Key: "$literal", Value: newReviewDoc(review)}}},
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "totalReviews", Value: bson.D{{Key: "$size", Value: "$reviews"}}},
			{Key: "averageRating", Value: bson.D{{Key: "$round", Value: bson.A{
				bson.D{{Key: "$avg", Value: "$reviews.rating"}}, 2,
			}}}},
			{Key: "updatedAt", Value: now},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.model(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, mapError(err)
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": productID})
	if err != nil {
		return nil, mapError(err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: product %s", domainErrors.ErrNotFound, productID)
	}
	return nil, fmt.Errorf("%w: product already reviewed", domainErrors.ErrAlreadyExists)
}

func productQuery(f model.ProductFilter) bson.M {
	q := bson.M{}
	switch f.Visibility {
	case model.VisibilityAvailable:
		q["isActive"] = true
		q["stock"] = bson.M{"$gt": 0}
	case model.VisibilityActive:
		q["isActive"] = true
	case model.VisibilityInactive:
		q["isActive"] = false
	}
	if f.Category != "" {
		q["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Category) + "$", Options: "i"}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = toDecimal128(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		price["$lte"] = toDecimal128(*f.MaxPrice)
	}
	if len(price) > 0 {
		q["price"] = price
	}
	if f.MinRating > 0 {
		q["averageRating"] = bson.M{"$gte": f.MinRating}
	}
	if f.Featured {
		q["isFeatured"] = true
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"description": pattern}}
	}
	return q
}
