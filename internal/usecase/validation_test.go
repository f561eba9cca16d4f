package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func validOrderInput() CreateOrderInput {
	return CreateOrderInput{
		Items: []OrderLine{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: model.ShippingAddress{
			Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US",
		},
		PaymentMethod: model.PaymentMethodCreditCard,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domainErrors.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestValidatorAcceptsValidOrder(t *testing.T) {
	assert.NoError(t, NewValidator().Struct(validOrderInput()))
}

func TestValidatorOrderInput(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
		field  string
		msg    string
	}{
		{"no items", func(in *CreateOrderInput) { in.Items = nil }, "items", "must contain at least 1 item(s)"},
		{"zero quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, "items[0].quantity", "must be at least 1"},
		{"missing product", func(in *CreateOrderInput) { in.Items[0].ProductID = "" }, "items[0].product", "is required"},
		{"missing city", func(in *CreateOrderInput) { in.ShippingAddress.City = "" }, "shippingAddress.city", "is required"},
		{"blank street", func(in *CreateOrderInput) { in.ShippingAddress.Street = " \t " }, "shippingAddress.street", "is required"},
		{"unknown method", func(in *CreateOrderInput) { in.PaymentMethod = "bitcoin" }, "paymentMethod",
			"must be one of credit_card, debit_card, paypal, cash_on_delivery"},
		{"long notes", func(in *CreateOrderInput) { in.Notes = string(make([]rune, 501)) }, "notes", "must be at most 500 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validOrderInput()
			tc.mutate(&in)
			err := v.Struct(in)
			require.ErrorIs(t, err, domainErrors.ErrValidation)
			assert.Equal(t, tc.msg, fieldsOf(t, err)[tc.field])
		})
	}
}

func TestValidatorDecimalBounds(t *testing.T) {
	v := NewValidator()
	negative := decimal.NewFromInt(-1)

	err := v.Struct(UpdateProductInput{Price: &negative})
	assert.Equal(t, "must not be negative", fieldsOf(t, err)["price"])

	zero := decimal.Zero
	assert.NoError(t, v.Struct(UpdateProductInput{Price: &zero}))
	assert.NoError(t, v.Struct(UpdateProductInput{}), "nil fields are skipped")
}

func TestValidatorStatusTags(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(StatusUpdate{OrderStatus: model.OrderStatusShipped}))
	assert.NoError(t, v.Struct(StatusUpdate{}))

	err := v.Struct(StatusUpdate{OrderStatus: "returned", PaymentStatus: "refunded"})
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "orderStatus")
	assert.Contains(t, fields, "paymentStatus")
}

func TestValidatorReviewRating(t *testing.T) {
	v := NewValidator()

	for _, rating := range []int{0, 6} {
		err := v.Struct(ReviewInput{Rating: rating, Comment: "ok"})
		assert.Contains(t, fieldsOf(t, err), "rating")
	}
	assert.NoError(t, v.Struct(ReviewInput{Rating: 5, Comment: "great"}))
}

func TestCheckCents(t *testing.T) {
	price := decimal.RequireFromString("19.999")
	whole := decimal.RequireFromString("20.10")

	err := checkCents(map[string]*decimal.Decimal{"price": &price, "compareAtPrice": &whole})
	require.ErrorIs(t, err, domainErrors.ErrValidation)
	fields := fieldsOf(t, err)
	assert.Equal(t, "must have at most 2 decimal places", fields["price"])
	assert.NotContains(t, fields, "compareAtPrice")

	assert.NoError(t, checkCents(map[string]*decimal.Decimal{"price": &whole, "compareAtPrice": nil}))
}
