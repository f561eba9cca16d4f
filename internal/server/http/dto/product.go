package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest describes a new catalog entry.
type CreateProductRequest struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Category       string           `json:"category"`
	Images         []string         `json:"images"`
	Stock          int              `json:"stock"`
	SKU            string           `json:"sku"`
	IsActive       *bool            `json:"isActive"`
	IsFeatured     bool             `json:"isFeatured"`
}

// UpdateProductRequest is a partial product change.
type UpdateProductRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Category       *string          `json:"category"`
	Images         []string         `json:"images"`
	Stock          *int             `json:"stock"`
	IsActive       *bool            `json:"isActive"`
	IsFeatured     *bool            `json:"isFeatured"`
}

// ReviewRequest is a customer rating.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ProductQuery holds catalog listing parameters.
type ProductQuery struct {
	Page       int     `form:"page"`
	Limit      int     `form:"limit"`
	Category   string  `form:"category"`
	MinPrice   string  `form:"minPrice"`
	MaxPrice   string  `form:"maxPrice"`
	MinRating  float64 `form:"rating"`
	Search     string  `form:"search"`
	Featured   bool    `form:"featured"`
	Visibility string  `form:"status"`
	Sort       string  `form:"sort"`
}

// FeaturedQuery selects a featured shelf.
type FeaturedQuery struct {
	Type  string `form:"type"`
	Limit int    `form:"limit"`
}

// BulkActiveRequest switches many products on or off.
type BulkActiveRequest struct {
	ProductIDs []string `json:"productIds"`
	IsActive   *bool    `json:"isActive"`
}

// BulkActiveResponse reports how many products matched.
type BulkActiveResponse struct {
	Updated int `json:"updated"`
}

// ReviewResponse is a single review.
type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	UserName  string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	Category       string           `json:"category"`
	Images         []string         `json:"images"`
	Stock          int              `json:"stock"`
	SKU            string           `json:"sku,omitempty"`
	IsActive       bool             `json:"isActive"`
	IsFeatured     bool             `json:"isFeatured"`
	Reviews        []ReviewResponse `json:"reviews,omitempty"`
	AverageRating  float64          `json:"averageRating"`
	TotalReviews   int              `json:"totalReviews"`
	TotalOrders    int              `json:"totalOrders"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// ProductStatisticsResponse summarises catalog state.
type ProductStatisticsResponse struct {
	Total      int `json:"totalProducts"`
	Active     int `json:"activeProducts"`
	OutOfStock int `json:"outOfStock"`
	LowStock   int `json:"lowStock"`
}
