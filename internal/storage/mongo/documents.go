package mongo

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// userDoc is a stored account. AddressVersion guards address book rewrites
// against lost updates.
type userDoc struct {
	ID             string         `bson:"_id"`
	Name           string         `bson:"name"`
	Email          string         `bson:"email"`
	PasswordHash   string         `bson:"passwordHash"`
	Phone          string         `bson:"phone,omitempty"`
	Role           string         `bson:"role"`
	AddressVersion int64          `bson:"addressVersion"`
	Addresses      []bookEntryDoc `bson:"addresses"`
	CreatedAt      time.Time      `bson:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt"`
}

type bookEntryDoc struct {
	ID        string `bson:"id"`
	Street    string `bson:"street"`
	City      string `bson:"city"`
	State     string `bson:"state"`
	ZipCode   string `bson:"zipCode"`
	Country   string `bson:"country"`
	IsDefault bool   `bson:"isDefault"`
}

type categoryDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Slug        string    `bson:"slug"`
	Description string    `bson:"description,omitempty"`
	Image       string    `bson:"image,omitempty"`
	IsActive    bool      `bson:"isActive"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type reviewDoc struct {
	ID        string    `bson:"id"`
	UserID    string    `bson:"userId"`
	UserName  string    `bson:"userName"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

type productDoc struct {
	ID             string                `bson:"_id"`
	Name           string                `bson:"name"`
	Slug           string                `bson:"slug"`
	Description    string                `bson:"description,omitempty"`
	Price          primitive.Decimal128  `bson:"price"`
	CompareAtPrice *primitive.Decimal128 `bson:"compareAtPrice,omitempty"`
	Category       string                `bson:"category,omitempty"`
	Images         []string              `bson:"images"`
	Stock          int                   `bson:"stock"`
	SKU            string                `bson:"sku,omitempty"`
	IsActive       bool                  `bson:"isActive"`
	IsFeatured     bool                  `bson:"isFeatured"`
	Reviews        []reviewDoc           `bson:"reviews"`
	AverageRating  float64               `bson:"averageRating"`
	TotalReviews   int                   `bson:"totalReviews"`
	TotalOrders    int                   `bson:"totalOrders"`
	CreatedAt      time.Time             `bson:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt"`
}

type addressDoc struct {
	Street  string `bson:"street"`
	City    string `bson:"city"`
	State   string `bson:"state"`
	ZipCode string `bson:"zipCode"`
	Country string `bson:"country"`
}

type itemDoc struct {
	ProductID    string               `bson:"productId"`
	ProductName  string               `bson:"productName"`
	ProductImage string               `bson:"productImage,omitempty"`
	Quantity     int                  `bson:"quantity"`
	Price        primitive.Decimal128 `bson:"price"`
	Total        primitive.Decimal128 `bson:"total"`
}

type orderDoc struct {
	ID              string               `bson:"_id"`
	Number          string               `bson:"orderNumber"`
	UserID          string               `bson:"userId"`
	Items           []itemDoc            `bson:"items"`
	ShippingAddress addressDoc           `bson:"shippingAddress"`
	PaymentMethod   string               `bson:"paymentMethod"`
	PaymentStatus   string               `bson:"paymentStatus"`
	OrderStatus     string               `bson:"orderStatus"`
	Subtotal        primitive.Decimal128 `bson:"subtotal"`
	Tax             primitive.Decimal128 `bson:"tax"`
	ShippingCost    primitive.Decimal128 `bson:"shippingCost"`
	Total           primitive.Decimal128 `bson:"total"`
	Notes           string               `bson:"notes,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	bi, exp, err := v.BigInt()
	if err != nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(bi, int32(exp))
}

func newUserDoc(u *model.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Role:         string(u.Role),
		Addresses:    newBookDocs(u.Addresses),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) model() *model.User {
	u := &model.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Phone:        d.Phone,
		Role:         model.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, a := range d.Addresses {
		u.Addresses = append(u.Addresses, model.Address(a))
	}
	return u
}

func newBookDocs(book model.AddressBook) []bookEntryDoc {
	docs := make([]bookEntryDoc, 0, len(book))
	for _, a := range book {
		docs = append(docs, bookEntryDoc(a))
	}
	return docs
}

func newCategoryDoc(c *model.Category) categoryDoc {
	return categoryDoc(*c)
}

func (d categoryDoc) model() *model.Category {
	c := model.Category(d)
	return &c
}

func newReviewDoc(r model.Review) reviewDoc {
	return reviewDoc{
		ID:        r.ID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func newProductDoc(p *model.Product) productDoc {
	doc := productDoc{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         toDecimal128(p.Price),
		Category:      p.Category,
		Images:        p.Images,
		Stock:         p.Stock,
		SKU:           p.SKU,
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		Reviews:       make([]reviewDoc, 0, len(p.Reviews)),
		AverageRating: p.AverageRating,
		TotalReviews:  p.TotalReviews,
		TotalOrders:   p.TotalOrders,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if doc.Images == nil {
		doc.Images = []string{}
	}
	if p.CompareAtPrice != nil {
		v := toDecimal128(*p.CompareAtPrice)
		doc.CompareAtPrice = &v
	}
	for _, r := range p.Reviews {
		doc.Reviews = append(doc.Reviews, newReviewDoc(r))
	}
	return doc
}

func (d productDoc) model() *model.Product {
	p := &model.Product{
		ID:            d.ID,
		Name:          d.Name,
		Slug:          d.Slug,
		Description:   d.Description,
		Price:         fromDecimal128(d.Price),
		Category:      d.Category,
		Images:        d.Images,
		Stock:         d.Stock,
		SKU:           d.SKU,
		IsActive:      d.IsActive,
		IsFeatured:    d.IsFeatured,
		AverageRating: d.AverageRating,
		TotalReviews:  d.TotalReviews,
		TotalOrders:   d.TotalOrders,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.CompareAtPrice != nil {
		v := fromDecimal128(*d.CompareAtPrice)
		p.CompareAtPrice = &v
	}
	for _, r := range d.Reviews {
		p.Reviews = append(p.Reviews, model.Review{
			ID:        r.ID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return p
}

func newOrderDoc(o *model.Order) orderDoc {
	a := o.ShippingAddress
	doc := orderDoc{
		ID:              o.ID,
		Number:          o.Number,
		UserID:          o.UserID,
		Items:           make([]itemDoc, 0, len(o.Items)),
		ShippingAddress: addressDoc{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country},
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		OrderStatus:     string(o.OrderStatus),
		Subtotal:        toDecimal128(o.Subtotal),
		Tax:             toDecimal128(o.Tax),
		ShippingCost:    toDecimal128(o.ShippingCost),
		Total:           toDecimal128(o.Total),
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, it := range o.Items {
		doc.Items = append(doc.Items, itemDoc{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			Price:        toDecimal128(it.Price),
			Total:        toDecimal128(it.Total),
		})
	}
	return doc
}

func (d orderDoc) model() *model.Order {
	a := d.ShippingAddress
	o := &model.Order{
		ID:              d.ID,
		Number:          d.Number,
		UserID:          d.UserID,
		ShippingAddress: model.ShippingAddress{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country},
		PaymentMethod:   model.PaymentMethod(d.PaymentMethod),
		PaymentStatus:   model.PaymentStatus(d.PaymentStatus),
		OrderStatus:     model.OrderStatus(d.OrderStatus),
		Subtotal:        fromDecimal128(d.Subtotal),
		Tax:             fromDecimal128(d.Tax),
		ShippingCost:    fromDecimal128(d.ShippingCost),
		Total:           fromDecimal128(d.Total),
		Notes:           d.Notes,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, it := range d.Items {
		o.Items = append(o.Items, model.OrderItem{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			Price:        fromDecimal128(it.Price),
			Total:        fromDecimal128(it.Total),
		})
	}
	return o
}
