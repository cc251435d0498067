package strategy

import (
	"errors"
	"fmt"
)

var (
	// ErrProcessingFailed matches every *ProcessingError via errors.Is.
	ErrProcessingFailed = errors.New("processing failed")

	// ErrValidation is wrapped by every error a built-in Validator returns.
	ErrValidation = errors.New("validation failed")
)

// Reasons used by the engine itself.
const (
	ReasonCannotProcess = "item cannot be processed by current strategy"
	ReasonChainRejected = "item cannot be processed by strategy in chain"
	ReasonNoStrategy    = "no suitable processing strategy found"
)

// ProcessingError is the single error kind surfaced for a failed item.
type ProcessingError struct {
	// Reason is a human-readable description of the failure
	Reason string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrProcessingFailed, e.Reason)
}

// Unwrap returns the underlying error
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Is reports ErrProcessingFailed as a match.
func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessingFailed
}

// Failed creates a ProcessingError with no underlying cause.
func Failed(reason string) *ProcessingError {
	return &ProcessingError{Reason: reason}
}

// Normalize converts any error into a ProcessingError. Errors that already
// are (or wrap) a ProcessingError are returned unchanged.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return err
	}
	return &ProcessingError{Reason: err.Error(), Err: err}
}
