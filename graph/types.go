package graph

import (
	"context"
	"strconv"

	"github.com/graph-gophers/graphql-go"

	"github.com/syssam/crm"
	"github.com/syssam/crm/service"
)

// CustomerResolver resolves the Customer type.
type CustomerResolver struct {
	svc *service.Service
	c   *crm.Customer
}

func (r *CustomerResolver) ID() graphql.ID { return formatID(r.c.ID) }

func (r *CustomerResolver) Name() string { return r.c.Name }

func (r *CustomerResolver) Email() string { return r.c.Email }

func (r *CustomerResolver) Phone() *string { return r.c.Phone }

// Orders returns the orders placed by the customer, oldest first.
func (r *CustomerResolver) Orders(ctx context.Context) ([]*OrderResolver, error) {
	orders, err := loadersFor(ctx, r.svc).OrdersByCustomer.Load(ctx, r.c.ID)()
	if err != nil {
		return nil, wrapError(err)
	}
	return newOrderResolvers(r.svc, orders), nil
}

// ProductResolver resolves the Product type.
type ProductResolver struct {
	p *crm.Product
}

func (r *ProductResolver) ID() graphql.ID { return formatID(r.p.ID) }

func (r *ProductResolver) Name() string { return r.p.Name }

func (r *ProductResolver) Price() Decimal { return Decimal{r.p.Price} }

func (r *ProductResolver) Stock() int32 { return int32(r.p.Stock) }

// OrderResolver resolves the Order type.
type OrderResolver struct {
	svc *service.Service
	o   *crm.Order
}

func (r *OrderResolver) ID() graphql.ID { return formatID(r.o.ID) }

// Customer returns the customer who placed the order.
func (r *OrderResolver) Customer(ctx context.Context) (*CustomerResolver, error) {
	c, err := loadersFor(ctx, r.svc).Customer.Load(ctx, r.o.CustomerID)()
	if err != nil {
		return nil, wrapError(err)
	}
	return &CustomerResolver{svc: r.svc, c: c}, nil
}

// Products returns the products of the order in id order.
func (r *OrderResolver) Products(ctx context.Context) ([]*ProductResolver, error) {
	products, err := loadersFor(ctx, r.svc).ProductsByOrder.Load(ctx, r.o.ID)()
	if err != nil {
		return nil, wrapError(err)
	}
	return newProductResolvers(products), nil
}

func (r *OrderResolver) TotalAmount() Decimal { return Decimal{r.o.TotalAmount} }

func (r *OrderResolver) OrderDate() DateTime { return DateTime{r.o.OrderDate} }

// CreateCustomerPayload resolves the CreateCustomer type.
type CreateCustomerPayload struct {
	customer *CustomerResolver
	message  string
}

func (p *CreateCustomerPayload) Customer() *CustomerResolver { return p.customer }

func (p *CreateCustomerPayload) Message() *string { return &p.message }

// BulkCreateCustomersPayload resolves the BulkCreateCustomers type.
type BulkCreateCustomersPayload struct {
	svc *service.Service
	res *crm.BulkResult
}

func (p *BulkCreateCustomersPayload) Customers() *[]*CustomerResolver {
	out := newCustomerResolvers(p.svc, p.res.Customers)
	return &out
}

func (p *BulkCreateCustomersPayload) Errors() *[]*string {
	out := make([]*string, len(p.res.Errors))
	for i := range p.res.Errors {
		out[i] = &p.res.Errors[i]
	}
	return &out
}

// CreateProductPayload resolves the CreateProduct type.
type CreateProductPayload struct {
	product *ProductResolver
}

func (p *CreateProductPayload) Product() *ProductResolver { return p.product }

// CreateOrderPayload resolves the CreateOrder type.
type CreateOrderPayload struct {
	order *OrderResolver
}

func (p *CreateOrderPayload) Order() *OrderResolver { return p.order }

func newCustomerResolvers(svc *service.Service, customers []*crm.Customer) []*CustomerResolver {
	out := make([]*CustomerResolver, len(customers))
	for i, c := range customers {
		out[i] = &CustomerResolver{svc: svc, c: c}
	}
	return out
}

func newProductResolvers(products []*crm.Product) []*ProductResolver {
	out := make([]*ProductResolver, len(products))
	for i, p := range products {
		out[i] = &ProductResolver{p: p}
	}
	return out
}

func newOrderResolvers(svc *service.Service, orders []*crm.Order) []*OrderResolver {
	out := make([]*OrderResolver, len(orders))
	for i, o := range orders {
		out[i] = &OrderResolver{svc: svc, o: o}
	}
	return out
}

func formatID(id int64) graphql.ID {
	return graphql.ID(strconv.FormatInt(id, 10))
}

// parseID converts a GraphQL ID to a row id. IDs that are not decimal
// integers map to 0, which never matches a row.
func parseID(id graphql.ID) int64 {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
