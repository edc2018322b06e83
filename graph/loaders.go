package graph

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/syssam/crm"
	loader "github.com/syssam/crm/contrib/dataloader"
	"github.com/syssam/crm/service"
)

// Loaders batches the nested lookups of one request.
type Loaders struct {
	Customer         *dataloader.Loader[int64, *crm.Customer]
	OrdersByCustomer *dataloader.Loader[int64, []*crm.Order]
	ProductsByOrder  *dataloader.Loader[int64, []*crm.Product]
}

// NewLoaders returns a fresh set of loaders backed by svc. Loaders cache
// their results, so a set must not outlive the request it was made for.
func NewLoaders(svc *service.Service) *Loaders {
	return &Loaders{
		Customer:         loader.NewEntityLoader(svc.CustomersByIDs, customerID),
		OrdersByCustomer: loader.NewGroupLoader(svc.OrdersByCustomerIDs),
		ProductsByOrder:  loader.NewGroupLoader(svc.ProductsByOrderIDs),
	}
}

// WithLoaders returns a copy of ctx carrying a new set of loaders.
func WithLoaders(ctx context.Context, svc *service.Service) context.Context {
	return loader.WithLoaders(ctx, NewLoaders(svc))
}

// loadersFor returns the loaders of ctx. A context without loaders gets a
// set scoped to the call.
func loadersFor(ctx context.Context, svc *service.Service) *Loaders {
	if l := loader.For[*Loaders](ctx); l != nil {
		return l
	}
	return NewLoaders(svc)
}

func customerID(c *crm.Customer) int64 { return c.ID }
