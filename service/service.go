// Package service implements the CRM operations on top of the store: input
// rules, the error messages reported to clients, and the transactions that
// keep each operation consistent.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/syssam/crm"
	"github.com/syssam/crm/store"
)

// Service implements the CRM queries and mutations.
type Service struct {
	client *store.Client
	hooks  []Hook
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHooks appends mutation hooks. Hooks run in the order given.
func WithHooks(hooks ...Hook) Option {
	return func(s *Service) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// WithClock sets the clock used for default order dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New returns a Service backed by client.
func New(client *store.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the underlying store client.
func (s *Service) Client() *store.Client {
	return s.client
}

// Use adds hooks to the mutation chain.
func (s *Service) Use(hooks ...Hook) {
	s.hooks = append(s.hooks, hooks...)
}

// CreateCustomer validates and stores a customer.
func (s *Service) CreateCustomer(ctx context.Context, in crm.CustomerInput) (*crm.Customer, error) {
	return mutate(ctx, s, Mutation{Op: OpCreateCustomer, Input: in}, func(ctx context.Context) (*crm.Customer, error) {
		if err := crm.ValidateCustomer(in); err != nil {
			return nil, err
		}
		return s.client.Customer.Create(ctx, in)
	})
}

// BulkCreateCustomers creates each customer in its own transaction. A
// failing record does not stop the others; its failure is reported as
// "Record <index>: <message>" with a zero-based index. The returned error
// is only set when the whole request could not run.
//
// Records are validated like CreateCustomer, so a malformed phone fails
// its record with "Record <index>: Invalid phone format".
func (s *Service) BulkCreateCustomers(ctx context.Context, inputs []crm.CustomerInput) (*crm.BulkResult, error) {
	return mutate(ctx, s, Mutation{Op: OpBulkCreateCustomers, Input: inputs}, func(ctx context.Context) (*crm.BulkResult, error) {
		res := &crm.BulkResult{
			Customers: make([]*crm.Customer, 0, len(inputs)),
			Errors:    make([]string, 0),
		}
		for i, in := range inputs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			cu, err := s.createInTx(ctx, in)
			if err != nil {
				s.logger.DebugContext(ctx, "bulk record rejected", "index", i, "error", err)
				res.Errors = append(res.Errors, fmt.Sprintf("Record %d: %s", i, crm.PublicMessage(err)))
				continue
			}
			res.Customers = append(res.Customers, cu)
		}
		return res, nil
	})
}

func (s *Service) createInTx(ctx context.Context, in crm.CustomerInput) (*crm.Customer, error) {
	if err := crm.ValidateCustomer(in); err != nil {
		return nil, err
	}
	var cu *crm.Customer
	err := store.WithTx(ctx, s.client, func(tx *store.Tx) error {
		var err error
		cu, err = tx.Client().Customer.Create(ctx, in)
		return err
	})
	return cu, err
}

// CreateProduct validates and stores a product. The price is rounded to
// crm.PriceScale places before it is checked, so every dialect stores and
// returns the same value.
func (s *Service) CreateProduct(ctx context.Context, in crm.ProductInput) (*crm.Product, error) {
	in.Price = in.Price.Round(crm.PriceScale)
	return mutate(ctx, s, Mutation{Op: OpCreateProduct, Input: in}, func(ctx context.Context) (*crm.Product, error) {
		if err := crm.ValidateProduct(in); err != nil {
			return nil, err
		}
		return s.client.Product.Create(ctx, in)
	})
}

// CreateOrder creates an order for an existing customer and existing
// products. The total is the exact sum of the product prices at creation
// time. The order row and its product links are written in one transaction.
func (s *Service) CreateOrder(ctx context.Context, in crm.OrderInput) (*crm.Order, error) {
	return mutate(ctx, s, Mutation{Op: OpCreateOrder, Input: in}, func(ctx context.Context) (*crm.Order, error) {
		if len(in.ProductIDs) == 0 {
			return nil, crm.NewValidationError("productIds", crm.MsgProductRequired)
		}
		var order *crm.Order
		err := store.WithTx(ctx, s.client, func(tx *store.Tx) error {
			client := tx.Client()
			customer, err := client.Customer.Get(ctx, in.CustomerID)
			if crm.IsNotFound(err) {
				return &crm.ValidationError{Name: "customerId", Msg: crm.MsgInvalidCustomer, Err: err}
			}
			if err != nil {
				return err
			}
			products, err := client.Product.GetMany(ctx, in.ProductIDs)
			if err != nil {
				return err
			}
			if len(products) != len(in.ProductIDs) {
				return crm.NewValidationError("productIds", crm.MsgInvalidProducts)
			}
			date := s.now()
			if in.OrderDate != nil {
				date = *in.OrderDate
			}
			order, err = client.Order.Create(ctx, crm.Order{
				CustomerID:  customer.ID,
				TotalAmount: crm.ProductTotal(products),
				OrderDate:   date,
			})
			if err != nil {
				return err
			}
			ids := make([]int64, len(products))
			for i, p := range products {
				ids[i] = p.ID
			}
			return client.Order.AddProducts(ctx, order.ID, ids...)
		})
		if err != nil {
			return nil, err
		}
		return order, nil
	})
}

// Customers returns every customer.
func (s *Service) Customers(ctx context.Context) ([]*crm.Customer, error) {
	return s.client.Customer.All(ctx)
}

// Products returns every product.
func (s *Service) Products(ctx context.Context) ([]*crm.Product, error) {
	return s.client.Product.All(ctx)
}

// Orders returns every order.
func (s *Service) Orders(ctx context.Context) ([]*crm.Order, error) {
	return s.client.Order.All(ctx)
}

// CustomersByIDs returns the customers matching ids, in id order.
func (s *Service) CustomersByIDs(ctx context.Context, ids []int64) ([]*crm.Customer, error) {
	return s.client.Customer.GetMany(ctx, ids)
}

// OrdersByCustomerIDs returns the orders of each customer.
func (s *Service) OrdersByCustomerIDs(ctx context.Context, ids []int64) (map[int64][]*crm.Order, error) {
	return s.client.Order.ByCustomerIDs(ctx, ids)
}

// ProductsByOrderIDs returns the products of each order.
func (s *Service) ProductsByOrderIDs(ctx context.Context, ids []int64) (map[int64][]*crm.Product, error) {
	return s.client.Product.ByOrderIDs(ctx, ids)
}

// Ping checks that the database answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
