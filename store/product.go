package store

import (
	"context"
	"fmt"

	"github.com/syssam/crm"
	"github.com/syssam/crm/dialect/sql"
)

const productColumns = "p.id, p.name, p.price, p.stock"

// ProductClient is a client for the products table.
type ProductClient struct {
	config
}

// Create inserts a product. A nil stock is stored as 0. Input rules are
// checked by the caller; the database checks reject what slips through.
func (c *ProductClient) Create(ctx context.Context, in crm.ProductInput) (*crm.Product, error) {
	p := &crm.Product{Name: in.Name, Price: in.Price, Stock: in.StockOrDefault()}
	id, err := c.insert(ctx,
		"INSERT INTO products (name, price, stock) VALUES (?, ?, ?)",
		[]any{p.Name, p.Price, p.Stock},
	)
	if err != nil {
		return nil, crm.NewMutationError(productLabel, "create", constraintError(err, ""))
	}
	p.ID = id
	return p, nil
}

// All returns every product ordered by id.
func (c *ProductClient) All(ctx context.Context) ([]*crm.Product, error) {
	products := make([]*crm.Product, 0)
	err := c.query(ctx, "SELECT "+productColumns+" FROM products p ORDER BY p.id", []any{}, func(s sql.ColumnScanner) error {
		p, err := scanProduct(s)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, crm.NewQueryError(productLabel, "all", err)
	}
	return products, nil
}

// GetMany returns the distinct products matching ids ordered by id. Unknown
// ids are skipped, so the result may be shorter than ids.
func (c *ProductClient) GetMany(ctx context.Context, ids []int64) ([]*crm.Product, error) {
	products := make([]*crm.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	query := fmt.Sprintf("SELECT %s FROM products p WHERE p.id IN (%s) ORDER BY p.id", productColumns, sql.Placeholders(len(ids)))
	err := c.query(ctx, query, int64Args(ids), func(s sql.ColumnScanner) error {
		p, err := scanProduct(s)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, crm.NewQueryError(productLabel, "get", err)
	}
	return products, nil
}

// ByOrderIDs returns the products linked to each of the given orders.
func (c *ProductClient) ByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]*crm.Product, error) {
	groups := make(map[int64][]*crm.Product, len(orderIDs))
	if len(orderIDs) == 0 {
		return groups, nil
	}
	query := fmt.Sprintf(
		"SELECT op.order_id, %s FROM order_products op JOIN products p ON p.id = op.product_id WHERE op.order_id IN (%s) ORDER BY op.order_id, p.id",
		productColumns, sql.Placeholders(len(orderIDs)),
	)
	err := c.query(ctx, query, int64Args(orderIDs), func(s sql.ColumnScanner) error {
		var (
			orderID int64
			p       crm.Product
		)
		if err := s.Scan(&orderID, &p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return err
		}
		groups[orderID] = append(groups[orderID], &p)
		return nil
	})
	if err != nil {
		return nil, crm.NewQueryError(productLabel, "by order", err)
	}
	return groups, nil
}

func scanProduct(s sql.ColumnScanner) (*crm.Product, error) {
	var p crm.Product
	if err := s.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
		return nil, err
	}
	return &p, nil
}
