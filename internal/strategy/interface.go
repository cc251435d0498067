// Package strategy defines how a single item is checked and transformed,
// and the variants that compose strategies into chains, routes and retries.
package strategy

import "context"

// Strategy decides whether an item can be processed and processes it.
//
// CanProcess must be cheap and must not block: the processor uses it as a
// fast-reject gate before calling Process. Process may be slow.
type Strategy[T any] interface {
	CanProcess(item T) bool
	Process(ctx context.Context, item T) (T, error)
}

// TransformFunc turns one item into another.
type TransformFunc[T any] func(ctx context.Context, item T) (T, error)

// Validator returns a non-nil error when the item is not acceptable.
type Validator[T any] func(item T) error

// Predicate selects items for a conditional route.
type Predicate[T any] func(item T) bool
