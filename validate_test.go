package crm_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crm"
)

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	valid := []string{"+12345678901", "123-456-7890", "+123456789012345"}
	for _, phone := range valid {
		assert.NoError(t, crm.ValidatePhone(phone), phone)
	}

	invalid := []string{"abc", "12345", "+123456789", "+1234567890123456", "1234567890", "123-4567-890", " 123-456-7890", "+12345678901x"}
	for _, phone := range invalid {
		err := crm.ValidatePhone(phone)
		require.Error(t, err, phone)
		assert.Equal(t, crm.MsgInvalidPhone, crm.PublicMessage(err))
	}
}

func TestValidateCustomer(t *testing.T) {
	t.Parallel()

	empty, bad, good := "", "12345", "123-456-7890"
	assert.NoError(t, crm.ValidateCustomer(crm.CustomerInput{Name: "Ann", Email: "ann@example.com"}))
	assert.NoError(t, crm.ValidateCustomer(crm.CustomerInput{Phone: &empty}))
	assert.NoError(t, crm.ValidateCustomer(crm.CustomerInput{Phone: &good}))
	assert.True(t, crm.IsValidationError(crm.ValidateCustomer(crm.CustomerInput{Phone: &bad})))
}

func TestValidateProduct(t *testing.T) {
	t.Parallel()

	stock := func(n int) *int { return &n }
	tests := []struct {
		name  string
		input crm.ProductInput
		want  string
	}{
		{"zero price", crm.ProductInput{Price: decimal.Zero}, crm.MsgPriceNotPositive},
		{"negative price", crm.ProductInput{Price: decimal.NewFromInt(-5)}, crm.MsgPriceNotPositive},
		{"negative stock", crm.ProductInput{Price: decimal.NewFromInt(1), Stock: stock(-1)}, crm.MsgNegativeStock},
		{"price checked first", crm.ProductInput{Price: decimal.Zero, Stock: stock(-1)}, crm.MsgPriceNotPositive},
		{"valid", crm.ProductInput{Price: decimal.RequireFromString("10.00"), Stock: stock(5)}, ""},
		{"default stock", crm.ProductInput{Price: decimal.RequireFromString("0.01")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := crm.ValidateProduct(tt.input)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, crm.PublicMessage(err))
		})
	}
}

func TestProductTotal(t *testing.T) {
	t.Parallel()

	products := []*crm.Product{
		{ID: 1, Price: decimal.RequireFromString("10.00")},
		{ID: 2, Price: decimal.RequireFromString("5.50")},
	}
	total := crm.ProductTotal(products)
	assert.True(t, decimal.RequireFromString("15.50").Equal(total), total.String())
	assert.True(t, crm.ProductTotal(nil).IsZero())

	// Decimal sums are exact where binary floats are not.
	cents := []*crm.Product{{Price: decimal.RequireFromString("0.10")}, {Price: decimal.RequireFromString("0.20")}}
	assert.Equal(t, "0.3", crm.ProductTotal(cents).String())
}

func TestStockOrDefault(t *testing.T) {
	t.Parallel()

	n := 4
	assert.Equal(t, 0, crm.ProductInput{}.StockOrDefault())
	assert.Equal(t, 4, crm.ProductInput{Stock: &n}.StockOrDefault())
}
