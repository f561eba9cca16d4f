package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest is a requested quantity of one product.
type OrderLineRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// ShippingAddress is the delivery destination.
type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// CreateOrderRequest describes checkout payload.
type CreateOrderRequest struct {
	Items           []OrderLineRequest `json:"items"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Notes           string             `json:"notes"`
}

// StatusUpdateRequest is an administrative status change.
type StatusUpdateRequest struct {
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
}

// OrderQuery holds order listing parameters.
type OrderQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
	Search string `form:"search"`
	From   string `form:"startDate"`
	To     string `form:"endDate"`
}

// OrderItemResponse is a frozen order line.
type OrderItemResponse struct {
	Product  string          `json:"product"`
	Name     string          `json:"name"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	User            string              `json:"user"`
	Items           []OrderItemResponse `json:"items"`
	ShippingAddress ShippingAddress     `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentStatus   string              `json:"paymentStatus"`
	OrderStatus     string              `json:"orderStatus"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	ShippingCost    decimal.Decimal     `json:"shippingCost"`
	Total           decimal.Decimal     `json:"total"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// SalesPointResponse is the revenue of one day.
type SalesPointResponse struct {
	Day    string          `json:"date"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}

// OrderStatisticsResponse summarises order activity.
type OrderStatisticsResponse struct {
	TotalOrders        int                  `json:"totalOrders"`
	Pending            int                  `json:"pendingOrders"`
	Processing         int                  `json:"processingOrders"`
	Shipped            int                  `json:"shippedOrders"`
	Delivered          int                  `json:"deliveredOrders"`
	Cancelled          int                  `json:"cancelledOrders"`
	TotalSales         decimal.Decimal      `json:"totalSales"`
	RecentOrders       []OrderResponse      `json:"recentOrders"`
	StatusDistribution map[string]int       `json:"statusDistribution"`
	SalesTrend         []SalesPointResponse `json:"salesData"`
}
