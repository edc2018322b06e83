package crm

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// phoneRe accepts an international number (+ and 10 to 15 digits) or a
// dashed local number (NNN-NNN-NNNN).
var phoneRe = regexp.MustCompile(`^(\+\d{10,15}|\d{3}-\d{3}-\d{4})$`)

// ValidatePhone reports whether phone is in one of the accepted formats.
func ValidatePhone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return NewValidationError("phone", MsgInvalidPhone)
	}
	return nil
}

// ValidateCustomer checks a customer input before it is persisted.
// An absent or empty phone is not validated.
func ValidateCustomer(in CustomerInput) error {
	if in.Phone != nil && *in.Phone != "" {
		return ValidatePhone(*in.Phone)
	}
	return nil
}

// PriceScale is the number of decimal places a price is stored with.
const PriceScale = 2

// ValidateProduct checks a product input before it is persisted.
func ValidateProduct(in ProductInput) error {
	if !in.Price.IsPositive() {
		return NewValidationError("price", MsgPriceNotPositive)
	}
	if in.StockOrDefault() < 0 {
		return NewValidationError("stock", MsgNegativeStock)
	}
	return nil
}

// ProductTotal returns the exact sum of the products' prices.
func ProductTotal(products []*Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}
