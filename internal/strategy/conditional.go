package strategy

import "context"

// Route pairs a predicate with the strategy used when it matches.
type Route[T any] struct {
	When     Predicate[T]
	Strategy Strategy[T]
}

// Conditional dispatches each item to the first route whose predicate matches.
type Conditional[T any] struct {
	routes   []Route[T]
	fallback Strategy[T]
}

// NewConditional creates a dispatcher over routes. fallback may be nil.
// Routes missing a predicate or a strategy never match.
func NewConditional[T any](routes []Route[T], fallback Strategy[T]) *Conditional[T] {
	return &Conditional[T]{
		routes:   routes,
		fallback: fallback,
	}
}

// CanProcess reports whether a strategy is selected and accepts the item.
func (c *Conditional[T]) CanProcess(item T) bool {
	s := c.selectFor(item)
	return s != nil && s.CanProcess(item)
}

// Process runs the selected strategy.
func (c *Conditional[T]) Process(ctx context.Context, item T) (T, error) {
	s := c.selectFor(item)
	if s == nil {
		var zero T
		return zero, Failed(ReasonNoStrategy)
	}
	return s.Process(ctx, item)
}

func (c *Conditional[T]) selectFor(item T) Strategy[T] {
	for _, r := range c.routes {
		if r.When == nil || r.Strategy == nil {
			continue
		}
		if r.When(item) {
			return r.Strategy
		}
	}
	return c.fallback
}
