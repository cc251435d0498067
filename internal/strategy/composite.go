package strategy

import "context"

// Composite runs its stages in order, feeding each stage's output to the next.
type Composite[T any] struct {
	stages []Strategy[T]
}

// NewComposite creates a chain of stages.
func NewComposite[T any](stages ...Strategy[T]) *Composite[T] {
	return &Composite[T]{stages: stages}
}

// CanProcess reports whether every stage accepts the original item.
//
// Later stages see transformed values in Process, so this is a pre-flight
// check only; Process re-checks each stage against the value it receives.
func (c *Composite[T]) CanProcess(item T) bool {
	for _, s := range c.stages {
		if !s.CanProcess(item) {
			return false
		}
	}
	return true
}

// Process threads the item through every stage.
func (c *Composite[T]) Process(ctx context.Context, item T) (T, error) {
	current := item
	for _, s := range c.stages {
		if !s.CanProcess(current) {
			var zero T
			return zero, Failed(ReasonChainRejected)
		}

		next, err := s.Process(ctx, current)
		if err != nil {
			var zero T
			return zero, err
		}
		current = next
	}
	return current, nil
}
