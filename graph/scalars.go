package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Decimal is the GraphQL Decimal scalar. It is read from strings, integers
// or floats and written as a string with at least two decimal places.
type Decimal struct {
	decimal.Decimal
}

// ImplementsGraphQLType maps this type to the Decimal scalar.
func (Decimal) ImplementsGraphQLType(name string) bool {
	return name == "Decimal"
}

// UnmarshalGraphQL parses a Decimal input value.
func (d *Decimal) UnmarshalGraphQL(input any) error {
	switch v := input.(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid Decimal %q", v)
		}
		d.Decimal = parsed
	case int32:
		d.Decimal = decimal.NewFromInt32(v)
	case int:
		d.Decimal = decimal.NewFromInt(int64(v))
	case int64:
		d.Decimal = decimal.NewFromInt(v)
	case float64:
		d.Decimal = decimal.NewFromFloat(v)
	default:
		return fmt.Errorf("wrong type for Decimal: %T", input)
	}
	return nil
}

// MarshalJSON writes the decimal as a JSON string.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatDecimal(d.Decimal))
}

// FormatDecimal formats d with two decimal places, or more when d carries
// more precision.
func FormatDecimal(d decimal.Decimal) string {
	if d.Exponent() >= -2 {
		return d.StringFixed(2)
	}
	return d.String()
}

// DateTime is the GraphQL DateTime scalar, an RFC 3339 timestamp.
type DateTime struct {
	time.Time
}

// ImplementsGraphQLType maps this type to the DateTime scalar.
func (DateTime) ImplementsGraphQLType(name string) bool {
	return name == "DateTime"
}

// UnmarshalGraphQL parses a DateTime input value.
func (t *DateTime) UnmarshalGraphQL(input any) error {
	switch v := input.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("invalid DateTime %q: expected RFC 3339", v)
		}
		t.Time = parsed
	case time.Time:
		t.Time = v
	default:
		return fmt.Errorf("wrong type for DateTime: %T", input)
	}
	return nil
}

// MarshalJSON writes the time as an RFC 3339 JSON string.
func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
