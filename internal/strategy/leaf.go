package strategy

import "context"

// Leaf applies a list of validators and then a single transformation.
type Leaf[T any] struct {
	transform  TransformFunc[T]
	validators []Validator[T]
}

// New creates a leaf strategy. A nil transform returns the item unchanged.
func New[T any](transform TransformFunc[T], validators ...Validator[T]) *Leaf[T] {
	if transform == nil {
		transform = Identity[T]
	}
	return &Leaf[T]{
		transform:  transform,
		validators: validators,
	}
}

// CanProcess reports whether every validator accepts the item.
func (l *Leaf[T]) CanProcess(item T) bool {
	return l.validate(item) == nil
}

// Process validates the item again and applies the transformation.
func (l *Leaf[T]) Process(ctx context.Context, item T) (T, error) {
	if err := l.validate(item); err != nil {
		var zero T
		return zero, err
	}
	return l.transform(ctx, item)
}

func (l *Leaf[T]) validate(item T) error {
	for _, v := range l.validators {
		if err := v(item); err != nil {
			return err
		}
	}
	return nil
}

// Identity returns the item unchanged.
func Identity[T any](_ context.Context, item T) (T, error) {
	return item, nil
}
