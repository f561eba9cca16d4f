package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var saleMatch = bson.D{
	{Key: "paymentStatus", Value: string(model.PaymentStatusPaid)},
	{Key: "orderStatus", Value: bson.D{{Key: "$ne", Value: string(model.OrderStatusCancelled)}}},
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now()
	}
	o.UpdatedAt = o.CreatedAt

	_, err := r.coll.InsertOne(ctx, newOrderDoc(o))
	return mapError(err)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var doc orderDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.model(), nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int, error) {
	query := orderQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapError(err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "orderNumber", Value: -1}})
	if page.Limit > 0 {
		opts.SetSkip(int64(page.Offset())).SetLimit(int64(page.Limit))
	}
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mapError(err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mapError(err)
	}

	orders := make([]model.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, *d.model())
	}
	return orders, int(total), nil
}

func (r *orderRepository) Transition(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus, payment *model.PaymentStatus) (*model.Order, error) {
	filter := bson.M{"_id": id}
	if len(from) > 0 {
		allowed := make(bson.A, 0, len(from))
		for _, s := range from {
			allowed = append(allowed, string(s))
		}
		filter["orderStatus"] = bson.M{"$in": allowed}
	}
	set := bson.M{"orderStatus": string(to), "updatedAt": r.now()}
	if payment != nil {
		set["paymentStatus"] = string(*payment)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc orderDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if err == nil {
		return doc.model(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, mapError(err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: order is %s", domainErrors.ErrInvalidState, current.OrderStatus)
}

func (r *orderRepository) UpdatePayment(ctx context.Context, id string, status model.PaymentStatus) (*model.Order, error) {
	update := bson.M{"$set": bson.M{"paymentStatus": string(status), "updatedAt": r.now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.model(), nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$orderStatus"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	counts := make(map[model.OrderStatus]int, len(rows))
	for _, row := range rows {
		counts[model.OrderStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *orderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: saleMatch}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: bson.D{{Key: "$sum", Value: "$total"}}}}}},
	}
	var rows []struct {
		Total primitive.Decimal128 `bson:"total"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return fromDecimal128(rows[0].Total), nil
}

func (r *orderRepository) TotalSpent(ctx context.Context, userID string) (decimal.Decimal, error) {
	match := append(bson.D{{Key: "userId", Value: userID}}, saleMatch...)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: bson.D{{Key: "$sum", Value: "$total"}}}}}},
	}
	var rows []struct {
		Total primitive.Decimal128 `bson:"total"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return fromDecimal128(rows[0].Total), nil
}

func (r *orderRepository) SalesTrend(ctx context.Context, since time.Time) ([]model.SalesPoint, error) {
	match := append(bson.D{{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}}}, saleMatch...)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateTrunc", Value: bson.D{{Key: "date", Value: "$createdAt"}, {Key: "unit", Value: "day"}}}}},
			{Key: "sales", Value: bson.D{{Key: "$sum", Value: "$total"}}},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	var rows []struct {
		Day    time.Time            `bson:"_id"`
		Sales  primitive.Decimal128 `bson:"sales"`
		Orders int                  `bson:"orders"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	trend := make([]model.SalesPoint, 0, len(rows))
	for _, row := range rows {
		trend = append(trend, model.SalesPoint{Day: row.Day.UTC(), Sales: fromDecimal128(row.Sales), Orders: row.Orders})
	}
	return trend, nil
}

func (r *orderRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return mapError(err)
	}
	return mapError(cur.All(ctx, out))
}

func orderQuery(f model.OrderFilter) bson.M {
	q := bson.M{}
	if f.UserID != "" {
		q["userId"] = f.UserID
	}
	if f.Status != "" {
		q["orderStatus"] = string(f.Status)
	}
	created := bson.M{}
	if f.From != nil {
		created["$gte"] = *f.From
	}
	if f.To != nil {
		created["$lte"] = *f.To
	}
	if len(created) > 0 {
		q["createdAt"] = created
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{bson.M{"orderNumber": pattern}, bson.M{"shippingAddress.city": pattern}}
	}
	return q
}
