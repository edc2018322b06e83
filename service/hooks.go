package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Op names a mutation of the service.
type Op string

// Mutation operations.
const (
	OpCreateCustomer      Op = "createCustomer"
	OpBulkCreateCustomers Op = "bulkCreateCustomers"
	OpCreateProduct       Op = "createProduct"
	OpCreateOrder         Op = "createOrder"
)

// Mutation describes a mutation passing through the hook chain.
type Mutation struct {
	Op    Op
	Input any
}

// Mutator is the interface that wraps the Mutate method.
type Mutator interface {
	Mutate(context.Context, Mutation) (any, error)
}

// MutateFunc is an adapter to allow the use of ordinary function as Mutator.
type MutateFunc func(context.Context, Mutation) (any, error)

// Mutate calls f(ctx, m).
func (f MutateFunc) Mutate(ctx context.Context, m Mutation) (any, error) {
	return f(ctx, m)
}

// Hook defines the "mutation middleware". A function that gets a Mutator
// and returns a Mutator. For example:
//
//	hook := func(next service.Mutator) service.Mutator {
//	    return service.MutateFunc(func(ctx context.Context, m service.Mutation) (any, error) {
//	        if m.Op == service.OpCreateOrder && !allowed(ctx) {
//	            return nil, errForbidden
//	        }
//	        return next.Mutate(ctx, m)
//	    })
//	}
type Hook func(Mutator) Mutator

// LoggingHook logs every mutation with its duration and outcome.
func LoggingHook(logger *slog.Logger) Hook {
	return func(next Mutator) Mutator {
		return MutateFunc(func(ctx context.Context, m Mutation) (any, error) {
			start := time.Now()
			v, err := next.Mutate(ctx, m)
			if err != nil {
				logger.WarnContext(ctx, "mutation failed", "op", m.Op, "duration", time.Since(start), "error", err)
				return v, err
			}
			logger.InfoContext(ctx, "mutation completed", "op", m.Op, "duration", time.Since(start))
			return v, nil
		})
	}
}

// mutate runs fn through the service hooks.
func mutate[T any](ctx context.Context, s *Service, m Mutation, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero T
		mut  Mutator = MutateFunc(func(ctx context.Context, _ Mutation) (any, error) {
			return fn(ctx)
		})
	)
	for i := len(s.hooks) - 1; i >= 0; i-- {
		mut = s.hooks[i](mut)
	}
	v, err := mut.Mutate(ctx, m)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("service: unexpected %s result %T", m.Op, v)
	}
	return t, nil
}
