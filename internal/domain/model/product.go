package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level at or below which a product counts as low on stock.
const LowStockThreshold = 10

// Product is a catalog entry available for ordering.
type Product struct {
	ID             string
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Category       string
	Images         []string
	Stock          int
	SKU            string
	IsActive       bool
	IsFeatured     bool
	Reviews        []Review
	AverageRating  float64
	TotalReviews   int
	TotalOrders    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PrimaryImage returns the first image or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Review is a customer rating of a product.
type Review struct {
	ID        string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// AverageRating returns the mean rating rounded to two decimals, zero when empty.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg, _ := decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(reviews)))).
		Round(2).
		Float64()
	return avg
}

// Visibility selects products by their active flag.
type Visibility string

const (
	// VisibilityAvailable lists active products with stock left.
	VisibilityAvailable Visibility = ""
	VisibilityActive    Visibility = "active"
	VisibilityInactive  Visibility = "inactive"
	VisibilityAll       Visibility = "all"
)

// ProductSort orders catalog listings.
type ProductSort string

const (
	SortNewest     ProductSort = ""
	SortPriceAsc   ProductSort = "price_asc"
	SortPriceDesc  ProductSort = "price_desc"
	SortRating     ProductSort = "rating"
	SortPopularity ProductSort = "popular"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category   string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinRating  float64
	Search     string
	Featured   bool
	Visibility Visibility
	Sort       ProductSort
}

// FeaturedKind selects which products the featured shelf shows.
type FeaturedKind string

const (
	FeaturedMostOrdered FeaturedKind = "most-ordered"
	FeaturedTopRated    FeaturedKind = "top-rated"
	FeaturedNewest      FeaturedKind = "newest"
	// FeaturedFlagged lists products marked as featured. Any other
	// unrecognised kind means the same.
	FeaturedFlagged FeaturedKind = "flagged"
)

// FeaturedTopRatedMin is the lowest average rating on the top-rated shelf.
const FeaturedTopRatedMin = 4

// Filter returns the listing criteria of the shelf. The empty kind is most-ordered.
func (k FeaturedKind) Filter() ProductFilter {
	f := ProductFilter{Visibility: VisibilityAvailable}
	switch k {
	case "", FeaturedMostOrdered:
		f.Sort = SortPopularity
	case FeaturedTopRated:
		f.MinRating = FeaturedTopRatedMin
		f.Sort = SortRating
	case FeaturedNewest:
		f.Sort = SortNewest
	default:
		f.Featured = true
	}
	return f
}

// ProductUpdate carries partial product changes; nil fields stay untouched.
type ProductUpdate struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Category       *string
	Images         []string
	Stock          *int
	IsActive       *bool
	IsFeatured     *bool
}

// Apply copies non-nil fields onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
		p.Slug = Slugify(*u.Name)
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.CompareAtPrice != nil {
		v := *u.CompareAtPrice
		p.CompareAtPrice = &v
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Images != nil {
		p.Images = append([]string(nil), u.Images...)
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.IsFeatured != nil {
		p.IsFeatured = *u.IsFeatured
	}
}

// ProductStatistics summarises catalog state.
type ProductStatistics struct {
	Total      int
	Active     int
	OutOfStock int
	LowStock   int
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a product name.
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
