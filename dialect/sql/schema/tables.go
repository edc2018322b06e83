package schema

import (
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/crm/dialect"
)

// Table names, in creation order.
const (
	CustomersTable     = "customers"
	ProductsTable      = "products"
	OrdersTable        = "orders"
	OrderProductsTable = "order_products"
)

// TableNames returns the managed tables in dependency order.
func TableNames() []string {
	return []string{CustomersTable, ProductsTable, OrdersTable, OrderProductsTable}
}

// columnTypes holds the dialect specific column types.
type columnTypes struct {
	id      schema.Type
	idAttrs []schema.Attr
	integer schema.Type
	time    schema.Type
	varchar func(size int) schema.Type
	money   func(precision int) schema.Type
}

func typesFor(name string) columnTypes {
	ct := columnTypes{
		varchar: func(size int) schema.Type { return &schema.StringType{T: "varchar", Size: size} },
		money: func(precision int) schema.Type {
			return &schema.DecimalType{T: "decimal", Precision: precision, Scale: 2}
		},
	}
	switch name {
	case dialect.Postgres:
		ct.id = &schema.IntegerType{T: "bigint"}
		ct.idAttrs = []schema.Attr{&postgres.Identity{Generation: "BY DEFAULT"}}
		ct.integer = &schema.IntegerType{T: "integer"}
		ct.time = &schema.TimeType{T: "timestamptz"}
		ct.money = func(precision int) schema.Type {
			return &schema.DecimalType{T: "numeric", Precision: precision, Scale: 2}
		}
	case dialect.MySQL:
		ct.id = &schema.IntegerType{T: "bigint"}
		ct.idAttrs = []schema.Attr{&mysql.AutoIncrement{}}
		ct.integer = &schema.IntegerType{T: "int"}
		ct.time = &schema.TimeType{T: "datetime"}
	default:
		ct.id = &schema.IntegerType{T: "integer"}
		ct.idAttrs = []schema.Attr{&sqlite.AutoIncrement{}}
		ct.integer = &schema.IntegerType{T: "integer"}
		ct.time = &schema.TimeType{T: "datetime"}
	}
	return ct
}

// Tables returns the desired tables for the given dialect, attached to s.
func Tables(dialectName string, s *schema.Schema) []*schema.Table {
	ct := typesFor(dialectName)
	id := func() *schema.Column {
		return schema.NewColumn("id").SetType(ct.id).AddAttrs(ct.idAttrs...)
	}
	ref := func(name string) *schema.Column {
		if dialectName == dialect.SQLite {
			return schema.NewColumn(name).SetType(&schema.IntegerType{T: "integer"})
		}
		return schema.NewColumn(name).SetType(&schema.IntegerType{T: "bigint"})
	}

	customerID := id()
	email := schema.NewColumn("email").SetType(ct.varchar(254))
	customers := schema.NewTable(CustomersTable).
		SetSchema(s).
		AddColumns(
			customerID,
			schema.NewColumn("name").SetType(ct.varchar(255)),
			email,
			schema.NewColumn("phone").SetType(ct.varchar(20)).SetNull(true),
		).
		SetPrimaryKey(schema.NewPrimaryKey(customerID)).
		AddIndexes(schema.NewUniqueIndex("customers_email_key").AddColumns(email))

	productID := id()
	products := schema.NewTable(ProductsTable).
		SetSchema(s).
		AddColumns(
			productID,
			schema.NewColumn("name").SetType(ct.varchar(255)),
			schema.NewColumn("price").SetType(ct.money(10)),
			schema.NewColumn("stock").SetType(ct.integer).SetDefault(&schema.Literal{V: "0"}),
		).
		SetPrimaryKey(schema.NewPrimaryKey(productID)).
		AddChecks(
			&schema.Check{Name: "products_price_positive", Expr: "price > 0"},
			&schema.Check{Name: "products_stock_non_negative", Expr: "stock >= 0"},
		)

	orderID := id()
	orderCustomer := ref("customer_id")
	orders := schema.NewTable(OrdersTable).
		SetSchema(s).
		AddColumns(
			orderID,
			orderCustomer,
			schema.NewColumn("total_amount").SetType(ct.money(12)),
			schema.NewColumn("order_date").SetType(ct.time),
		).
		SetPrimaryKey(schema.NewPrimaryKey(orderID)).
		AddIndexes(schema.NewIndex("orders_customer_id_idx").AddColumns(orderCustomer))
	orders.AddForeignKeys(
		schema.NewForeignKey("orders_customer_id_fkey").
			AddColumns(orderCustomer).
			SetRefTable(customers).
			AddRefColumns(customerID).
			SetOnDelete(schema.NoAction),
	)

	linkOrder, linkProduct := ref("order_id"), ref("product_id")
	links := schema.NewTable(OrderProductsTable).
		SetSchema(s).
		AddColumns(linkOrder, linkProduct).
		SetPrimaryKey(schema.NewPrimaryKey(linkOrder, linkProduct)).
		AddIndexes(schema.NewIndex("order_products_product_id_idx").AddColumns(linkProduct))
	links.AddForeignKeys(
		schema.NewForeignKey("order_products_order_id_fkey").
			AddColumns(linkOrder).
			SetRefTable(orders).
			AddRefColumns(orderID).
			SetOnDelete(schema.Cascade),
		schema.NewForeignKey("order_products_product_id_fkey").
			AddColumns(linkProduct).
			SetRefTable(products).
			AddRefColumns(productID).
			SetOnDelete(schema.NoAction),
	)

	return []*schema.Table{customers, products, orders, links}
}
