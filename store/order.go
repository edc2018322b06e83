package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/syssam/crm"
	"github.com/syssam/crm/dialect/sql"
)

const orderColumns = "id, customer_id, total_amount, order_date"

// OrderClient is a client for the orders table and its product links.
type OrderClient struct {
	config
}

// Create inserts the order row. Products are linked with AddProducts.
func (c *OrderClient) Create(ctx context.Context, o crm.Order) (*crm.Order, error) {
	o.OrderDate = o.OrderDate.UTC()
	id, err := c.insert(ctx,
		"INSERT INTO orders (customer_id, total_amount, order_date) VALUES (?, ?, ?)",
		[]any{o.CustomerID, o.TotalAmount, o.OrderDate},
	)
	if err != nil {
		return nil, crm.NewMutationError(orderLabel, "create", constraintError(err, ""))
	}
	o.ID = id
	return &o, nil
}

// AddProducts links the products to the order in a single statement.
func (c *OrderClient) AddProducts(ctx context.Context, orderID int64, productIDs ...int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	values := make([]string, len(productIDs))
	args := make([]any, 0, 2*len(productIDs))
	for i, pid := range productIDs {
		values[i] = "(?, ?)"
		args = append(args, orderID, pid)
	}
	query := "INSERT INTO order_products (order_id, product_id) VALUES " + strings.Join(values, ", ")
	if err := c.exec(ctx, query, args); err != nil {
		return crm.NewMutationError(orderLabel, "link products", constraintError(err, ""))
	}
	return nil
}

// Get returns the order with the given id, or a crm.NotFoundError.
func (c *OrderClient) Get(ctx context.Context, id int64) (*crm.Order, error) {
	orders, err := c.scan(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", []any{id})
	if err != nil {
		return nil, crm.NewQueryError(orderLabel, "get", err)
	}
	if len(orders) == 0 {
		return nil, crm.NewNotFoundError(orderLabel, id)
	}
	return orders[0], nil
}

// All returns every order ordered by id.
func (c *OrderClient) All(ctx context.Context) ([]*crm.Order, error) {
	orders, err := c.scan(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY id", []any{})
	if err != nil {
		return nil, crm.NewQueryError(orderLabel, "all", err)
	}
	return orders, nil
}

// ByCustomerIDs returns the orders of each of the given customers.
func (c *OrderClient) ByCustomerIDs(ctx context.Context, customerIDs []int64) (map[int64][]*crm.Order, error) {
	groups := make(map[int64][]*crm.Order, len(customerIDs))
	if len(customerIDs) == 0 {
		return groups, nil
	}
	query := fmt.Sprintf("SELECT %s FROM orders WHERE customer_id IN (%s) ORDER BY id", orderColumns, sql.Placeholders(len(customerIDs)))
	orders, err := c.scan(ctx, query, int64Args(customerIDs))
	if err != nil {
		return nil, crm.NewQueryError(orderLabel, "by customer", err)
	}
	for _, o := range orders {
		groups[o.CustomerID] = append(groups[o.CustomerID], o)
	}
	return groups, nil
}

func (c *OrderClient) scan(ctx context.Context, query string, args []any) ([]*crm.Order, error) {
	orders := make([]*crm.Order, 0)
	err := c.query(ctx, query, args, func(s sql.ColumnScanner) error {
		var (
			o    crm.Order
			date time.Time
		)
		if err := s.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &date); err != nil {
			return err
		}
		o.OrderDate = date.UTC()
		orders = append(orders, &o)
		return nil
	})
	return orders, err
}
