package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether status is known.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// PaymentStatus describes payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Valid reports whether status is known.
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid || s == PaymentStatusFailed
}

// PaymentMethod is the customer's chosen way to pay.
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodDebitCard      PaymentMethod = "debit_card"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// Valid reports whether method is accepted.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// ShippingAddress is the delivery destination of an order.
type ShippingAddress struct {
	Street  string `validate:"notblank"`
	City    string `validate:"notblank"`
	State   string `validate:"notblank"`
	ZipCode string `validate:"notblank"`
	Country string `validate:"notblank"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (a ShippingAddress) Trimmed() ShippingAddress {
	return ShippingAddress{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
	}
}

// OrderItem is a frozen snapshot of an ordered product line.
type OrderItem struct {
	ProductID    string
	ProductName  string
	ProductImage string
	Quantity     int
	Price        decimal.Decimal
	Total        decimal.Decimal
}

// Order is a customer purchase with frozen prices.
type Order struct {
	ID              string
	Number          string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	OrderStatus     OrderStatus
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	ShippingCost    decimal.Decimal
	Total           decimal.Decimal
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	// Search matches order number or shipping city, case-insensitive.
	Search string
	From   *time.Time
	To     *time.Time
}

// Page selects a slice of a listing. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// Normalize replaces non-positive values with defaults.
func (p Page) Normalize(defaultLimit int) Page {
	if p.Number <= 0 {
		p.Number = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Pagination describes where a page sits in the full listing.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata for a page of total items.
func NewPagination(page Page, total int) Pagination {
	pages := 0
	if page.Limit > 0 {
		pages = (total + page.Limit - 1) / page.Limit
	}
	return Pagination{Page: page.Number, Limit: page.Limit, Total: total, TotalPages: pages}
}

// SalesPoint aggregates sales of a single day.
type SalesPoint struct {
	Day    time.Time
	Sales  decimal.Decimal
	Orders int
}

// OrderStatistics summarises order activity for administrators.
type OrderStatistics struct {
	TotalOrders        int
	Pending            int
	Processing         int
	Shipped            int
	Delivered          int
	Cancelled          int
	TotalSales         decimal.Decimal
	RecentOrders       []Order
	StatusDistribution map[OrderStatus]int
	SalesTrend         []SalesPoint
}
