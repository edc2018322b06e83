// Package crm holds the customer, product and order entities shared by the
// storage, service and GraphQL layers, together with the input validation
// rules and the typed errors they report.
package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a person who places orders. Email is unique across customers.
type Customer struct {
	ID    int64
	Name  string
	Email string
	Phone *string
}

// Product is a sellable item.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

// Order links one customer to one or more products. TotalAmount is fixed
// when the order is created and never recomputed.
type Order struct {
	ID          int64
	CustomerID  int64
	TotalAmount decimal.Decimal
	OrderDate   time.Time
}

// CustomerInput holds the fields of a customer to create.
type CustomerInput struct {
	Name  string
	Email string
	Phone *string
}

// ProductInput holds the fields of a product to create. A nil Stock means 0.
type ProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock *int
}

// StockOrDefault returns the requested stock, or 0 when none was given.
func (in ProductInput) StockOrDefault() int {
	if in.Stock == nil {
		return 0
	}
	return *in.Stock
}

// OrderInput holds the fields of an order to create. A nil OrderDate means
// the creation time.
type OrderInput struct {
	CustomerID int64
	ProductIDs []int64
	OrderDate  *time.Time
}

// BulkResult is the outcome of a bulk customer creation. Both slices keep
// the order of the input.
type BulkResult struct {
	Customers []*Customer
	Errors    []string
}
