package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Pricing holds the tax and shipping rules applied to an order subtotal.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// DefaultPricing charges 18% tax and a flat 50 shipping fee below 500.
var DefaultPricing = Pricing{
	TaxRate:               decimal.RequireFromString("0.18"),
	FreeShippingThreshold: decimal.NewFromInt(500),
	ShippingFee:           decimal.NewFromInt(50),
}

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Quote prices items. Shipping is free only when the subtotal strictly
// exceeds the threshold.
func (p Pricing) Quote(items []model.OrderItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}

	tax := subtotal.Mul(p.TaxRate).Round(2)
	shipping := p.ShippingFee
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

func lineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
