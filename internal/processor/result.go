package processor

import (
	"errors"
	"fmt"
)

// Status tells which outcome a Result represents.
type Status int

const (
	// StatusSuccess means no item failed.
	StatusSuccess Status = iota
	// StatusPartial means at least one item succeeded and at least one failed.
	StatusPartial
	// StatusFailure means no item succeeded and at least one failed.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusFailure:
		return "failure"
	}
	return "unknown"
}

// Result is the outcome of ProcessItems. Items holds every successfully
// processed item and Errors every failure, both in collection order.
type Result[T any] struct {
	Status Status
	Items  []T
	Errors []error
}

func newResult[T any](items []T, errs []error) Result[T] {
	r := Result[T]{Items: items, Errors: errs}
	switch {
	case len(errs) == 0:
		r.Status = StatusSuccess
	case len(items) == 0:
		r.Status = StatusFailure
	default:
		r.Status = StatusPartial
	}
	return r
}

// Err returns nil on success, the first collected error on failure and all
// errors joined on a partial result.
func (r Result[T]) Err() error {
	switch r.Status {
	case StatusFailure:
		return r.Errors[0]
	case StatusPartial:
		return errors.Join(r.Errors...)
	}
	return nil
}

// ItemError ties a failure to the item's position in the ProcessItems input.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
