package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/syssam/crm"
	loader "github.com/syssam/crm/contrib/dataloader"
	"github.com/syssam/crm/service"
)

// Greeting is the answer of the hello query.
const Greeting = "Hello, GraphQL!"

// Resolver is the root resolver for queries and mutations.
type Resolver struct {
	svc *service.Service
}

// NewResolver returns a root resolver backed by svc.
func NewResolver(svc *service.Service) *Resolver {
	return &Resolver{svc: svc}
}

func (r *Resolver) Hello() *string {
	s := Greeting
	return &s
}

func (r *Resolver) AllCustomers(ctx context.Context) (*[]*CustomerResolver, error) {
	customers, err := r.svc.Customers(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	loader.PrimeMany(ctx, loadersFor(ctx, r.svc).Customer, customers, customerID)
	out := newCustomerResolvers(r.svc, customers)
	return &out, nil
}

func (r *Resolver) AllProducts(ctx context.Context) (*[]*ProductResolver, error) {
	products, err := r.svc.Products(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	out := newProductResolvers(products)
	return &out, nil
}

func (r *Resolver) AllOrders(ctx context.Context) (*[]*OrderResolver, error) {
	orders, err := r.svc.Orders(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	out := newOrderResolvers(r.svc, orders)
	return &out, nil
}

// CustomerInput is the CustomerInput input type.
type CustomerInput struct {
	Name  string
	Email string
	Phone *string
}

func (in CustomerInput) toCRM() crm.CustomerInput {
	return crm.CustomerInput{Name: in.Name, Email: in.Email, Phone: in.Phone}
}

func (r *Resolver) CreateCustomer(ctx context.Context, args CustomerInput) (*CreateCustomerPayload, error) {
	c, err := r.svc.CreateCustomer(ctx, args.toCRM())
	if err != nil {
		return nil, wrapError(err)
	}
	loadersFor(ctx, r.svc).Customer.Prime(ctx, c.ID, c)
	return &CreateCustomerPayload{
		customer: &CustomerResolver{svc: r.svc, c: c},
		message:  crm.MsgCustomerCreated,
	}, nil
}

func (r *Resolver) BulkCreateCustomers(ctx context.Context, args struct{ Input []CustomerInput }) (*BulkCreateCustomersPayload, error) {
	inputs := make([]crm.CustomerInput, len(args.Input))
	for i, in := range args.Input {
		inputs[i] = in.toCRM()
	}
	res, err := r.svc.BulkCreateCustomers(ctx, inputs)
	if err != nil {
		return nil, wrapError(err)
	}
	loader.PrimeMany(ctx, loadersFor(ctx, r.svc).Customer, res.Customers, customerID)
	return &BulkCreateCustomersPayload{svc: r.svc, res: res}, nil
}

func (r *Resolver) CreateProduct(ctx context.Context, args struct {
	Name  string
	Price Decimal
	Stock *int32
}) (*CreateProductPayload, error) {
	in := crm.ProductInput{Name: args.Name, Price: args.Price.Decimal}
	if args.Stock != nil {
		stock := int(*args.Stock)
		in.Stock = &stock
	}
	p, err := r.svc.CreateProduct(ctx, in)
	if err != nil {
		return nil, wrapError(err)
	}
	return &CreateProductPayload{product: &ProductResolver{p: p}}, nil
}

func (r *Resolver) CreateOrder(ctx context.Context, args struct {
	CustomerID graphql.ID
	ProductIDs []graphql.ID
	OrderDate  *DateTime
}) (*CreateOrderPayload, error) {
	in := crm.OrderInput{
		CustomerID: parseID(args.CustomerID),
		ProductIDs: make([]int64, len(args.ProductIDs)),
	}
	for i, id := range args.ProductIDs {
		in.ProductIDs[i] = parseID(id)
	}
	if args.OrderDate != nil {
		in.OrderDate = &args.OrderDate.Time
	}
	o, err := r.svc.CreateOrder(ctx, in)
	if err != nil {
		return nil, wrapError(err)
	}
	// A list loaded earlier in the same document lacks the new order.
	loadersFor(ctx, r.svc).OrdersByCustomer.Clear(ctx, o.CustomerID)
	return &CreateOrderPayload{order: &OrderResolver{svc: r.svc, o: o}}, nil
}
