package store

import (
	"context"
	"fmt"

	"github.com/syssam/crm"
	"github.com/syssam/crm/dialect/sql"
)

const customerColumns = "id, name, email, phone"

// CustomerClient is a client for the customers table.
type CustomerClient struct {
	config
}

// Create inserts a customer. An empty phone is stored as NULL. A duplicate
// email is reported as a crm.ConstraintError with crm.MsgEmailExists.
func (c *CustomerClient) Create(ctx context.Context, in crm.CustomerInput) (*crm.Customer, error) {
	cu := &crm.Customer{Name: in.Name, Email: in.Email}
	if in.Phone != nil && *in.Phone != "" {
		phone := *in.Phone
		cu.Phone = &phone
	}
	id, err := c.insert(ctx,
		"INSERT INTO customers (name, email, phone) VALUES (?, ?, ?)",
		[]any{cu.Name, cu.Email, nullString(cu.Phone)},
	)
	if err != nil {
		return nil, crm.NewMutationError(customerLabel, "create", constraintError(err, crm.MsgEmailExists))
	}
	cu.ID = id
	return cu, nil
}

// Get returns the customer with the given id, or a crm.NotFoundError.
func (c *CustomerClient) Get(ctx context.Context, id int64) (*crm.Customer, error) {
	customers, err := c.GetMany(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, crm.NewNotFoundError(customerLabel, id)
	}
	return customers[0], nil
}

// All returns every customer ordered by id.
func (c *CustomerClient) All(ctx context.Context) ([]*crm.Customer, error) {
	customers, err := c.scan(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY id", []any{})
	if err != nil {
		return nil, crm.NewQueryError(customerLabel, "all", err)
	}
	return customers, nil
}

// GetMany returns the customers with the given ids ordered by id. Unknown
// ids are skipped.
func (c *CustomerClient) GetMany(ctx context.Context, ids []int64) ([]*crm.Customer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM customers WHERE id IN (%s) ORDER BY id", customerColumns, sql.Placeholders(len(ids)))
	customers, err := c.scan(ctx, query, int64Args(ids))
	if err != nil {
		return nil, crm.NewQueryError(customerLabel, "get", err)
	}
	return customers, nil
}

func (c *CustomerClient) scan(ctx context.Context, query string, args []any) ([]*crm.Customer, error) {
	customers := make([]*crm.Customer, 0)
	err := c.query(ctx, query, args, func(s sql.ColumnScanner) error {
		var (
			cu    crm.Customer
			phone sql.NullString
		)
		if err := s.Scan(&cu.ID, &cu.Name, &cu.Email, &phone); err != nil {
			return err
		}
		if phone.Valid {
			cu.Phone = &phone.String
		}
		customers = append(customers, &cu)
		return nil
	})
	return customers, err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
