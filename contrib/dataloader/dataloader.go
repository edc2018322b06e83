// Package dataloader binds batch lookups to github.com/graph-gophers/dataloader/v7.
//
// A loader collects the keys requested while a GraphQL response is being
// resolved and fetches them with one query:
//
//	loader := dataloader.NewEntityLoader(svc.CustomersByIDs,
//	    func(c *crm.Customer) int64 { return c.ID })
//	customer, err := loader.Load(ctx, order.CustomerID)()
//
// Loaders cache per instance, so a new set is created for every request and
// carried in the request context:
//
//	ctx = dataloader.WithLoaders(ctx, newLoaders(svc))
//	loaders := dataloader.For[*Loaders](ctx)
package dataloader

import (
	"context"
	"errors"

	"github.com/graph-gophers/dataloader/v7"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders entities to match the order of requested keys.
// Missing entities are represented as zero values with corresponding errors.
//
// The result slices have the same length as keys, as a batch function must
// return one result per key in key order.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderGroupsByKeys reorders grouped entities to match the order of requested keys.
// Keys without entities get an empty, non-nil slice.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		if g := groups[key]; g != nil {
			result[i] = g
		} else {
			result[i] = []V{}
		}
	}
	return result
}

// Results converts separate value and error slices into loader results.
func Results[V any](values []V, errs []error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(values))
	for i := range values {
		var err error
		if i < len(errs) {
			err = errs[i]
		}
		results[i] = &dataloader.Result[V]{Data: values[i], Error: err}
	}
	return results
}

// ErrorResults returns n results failing with err, for a batch whose query
// failed as a whole.
func ErrorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// NewEntityLoader returns a loader resolving one entity per key. fetch may
// return the entities in any order and skip unknown keys; those keys fail
// with ErrNotFound.
func NewEntityLoader[K comparable, V any](
	fetch func(context.Context, []K) ([]V, error),
	keyFn KeyFunc[K, V],
	opts ...dataloader.Option[K, V],
) *dataloader.Loader[K, V] {
	return dataloader.NewBatchedLoader[K, V](func(ctx context.Context, keys []K) []*dataloader.Result[V] {
		values, err := fetch(ctx, keys)
		if err != nil {
			return ErrorResults[V](len(keys), err)
		}
		ordered, errs := OrderByKeys(keys, values, keyFn)
		return Results(ordered, errs)
	}, opts...)
}

// NewGroupLoader returns a loader resolving the entities grouped under each
// key. Keys without entities resolve to an empty slice.
func NewGroupLoader[K comparable, V any](
	fetch func(context.Context, []K) (map[K][]V, error),
	opts ...dataloader.Option[K, []V],
) *dataloader.Loader[K, []V] {
	return dataloader.NewBatchedLoader[K, []V](func(ctx context.Context, keys []K) []*dataloader.Result[[]V] {
		groups, err := fetch(ctx, keys)
		if err != nil {
			return ErrorResults[[]V](len(keys), err)
		}
		return Results(OrderGroupsByKeys(keys, groups), nil)
	}, opts...)
}

// PrimeMany primes the loader cache with known values.
// This is useful after mutations, when the created entities are at hand.
func PrimeMany[K comparable, V any](ctx context.Context, loader *dataloader.Loader[K, V], values []V, keyFn KeyFunc[K, V]) {
	for _, v := range values {
		loader.Prime(ctx, keyFn(v), v)
	}
}

// ctxKey is the context key for storing loaders.
type ctxKey struct{}

// WithLoaders injects loaders into the context.
//
// For HTTP middleware integration:
//
//	func Middleware(svc *service.Service) func(http.Handler) http.Handler {
//	    return func(next http.Handler) http.Handler {
//	        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	            ctx := dataloader.WithLoaders(r.Context(), newLoaders(svc))
//	            next.ServeHTTP(w, r.WithContext(ctx))
//	        })
//	    }
//	}
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For extracts loaders from context. It returns the zero value of T when
// none were injected.
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}
