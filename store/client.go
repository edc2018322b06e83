// Package store persists customers, products and orders over a
// dialect.Driver. Every statement is written with '?' placeholders and
// rebound for the driver's dialect.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/crm"
	"github.com/syssam/crm/dialect"
	"github.com/syssam/crm/dialect/sql"
	"github.com/syssam/crm/dialect/sql/sqlgraph"
)

// Entity labels used in errors.
const (
	customerLabel = "customer"
	productLabel  = "product"
	orderLabel    = "order"
)

// config is the configuration shared by the client and its entity clients.
type config struct {
	driver dialect.Driver
}

// Client is the client that holds all entity clients.
type Client struct {
	config
	// Customer is the client for interacting with the customers table.
	Customer *CustomerClient
	// Product is the client for interacting with the products table.
	Product *ProductClient
	// Order is the client for interacting with the orders table and its
	// product links.
	Order *OrderClient
}

// NewClient creates a new client configured with the given driver.
func NewClient(drv dialect.Driver) *Client {
	c := &Client{config: config{driver: drv}}
	c.init()
	return c
}

func (c *Client) init() {
	c.Customer = &CustomerClient{config: c.config}
	c.Product = &ProductClient{config: c.config}
	c.Order = &OrderClient{config: c.config}
}

// Open opens a database connection and returns a client for it.
func Open(dialectName, dsn string) (*Client, error) {
	drv, err := sql.Open(dialectName, dsn)
	if err != nil {
		return nil, err
	}
	return NewClient(drv), nil
}

// Driver returns the underlying driver.
func (c *Client) Driver() dialect.Driver {
	return c.driver
}

// Dialect returns the dialect of the underlying driver.
func (c *Client) Dialect() string {
	return c.driver.Dialect()
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.driver.Close()
}

// Ping runs a trivial query to check that the database answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.query(ctx, "SELECT 1", []any{}, func(s sql.ColumnScanner) error {
		var n int
		return s.Scan(&n)
	})
}

// Tx returns a new transactional client.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	if _, ok := c.driver.(*txDriver); ok {
		return nil, crm.ErrTxStarted
	}
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: starting transaction: %w", err)
	}
	cfg := c.config
	cfg.driver = &txDriver{tx: tx, drv: c.driver}
	return &Tx{ctx: ctx, config: cfg}, nil
}

func (c config) rebind(query string) string {
	return sql.Rebind(c.driver.Dialect(), query)
}

// query runs the query and calls scan for every row.
func (c config) query(ctx context.Context, query string, args []any, scan func(sql.ColumnScanner) error) error {
	var rows sql.Rows
	if err := c.driver.Query(ctx, c.rebind(query), args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// insert runs an INSERT statement and returns the generated id. MySQL has no
// RETURNING clause and reports the id through the result instead.
func (c config) insert(ctx context.Context, query string, args []any) (int64, error) {
	if c.driver.Dialect() == dialect.MySQL {
		var res sql.Result
		if err := c.driver.Exec(ctx, query, args, &res); err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	var (
		id    int64
		found bool
	)
	err := c.query(ctx, query+" RETURNING id", args, func(s sql.ColumnScanner) error {
		found = true
		return s.Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.New("store: insert returned no id")
	}
	return id, nil
}

// exec runs a statement that returns no rows.
func (c config) exec(ctx context.Context, query string, args []any) error {
	return c.driver.Exec(ctx, c.rebind(query), args, nil)
}

// constraintError converts database constraint violations to
// crm.ConstraintError. uniqueMsg is the public message for a uniqueness
// violation; other violations keep the database message.
func constraintError(err error, uniqueMsg string) error {
	switch {
	case err == nil:
		return nil
	case uniqueMsg != "" && sqlgraph.IsUniqueConstraintError(err):
		return crm.NewConstraintError(uniqueMsg, err)
	case sqlgraph.IsConstraintError(err):
		return crm.NewConstraintError(err.Error(), err)
	default:
		return err
	}
}

// int64Args converts ids to query arguments.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
