package processor

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration is wrapped by every Configuration.Validate failure.
var ErrInvalidConfiguration = errors.New("invalid processing configuration")

// Configuration controls how a Processor partitions and schedules work.
type Configuration struct {
	// BatchSize is the number of items per batch.
	BatchSize int

	// MaxConcurrentOperations caps how many items run at the same time.
	MaxConcurrentOperations int

	// Timeout is advisory. The processor does not enforce it; strategies
	// built from configuration use it as their own per-call limit.
	Timeout time.Duration

	// RetryCount is the default retry ceiling for retry strategies built
	// from configuration.
	RetryCount int
}

// DefaultConfiguration returns the configuration used when none is given.
func DefaultConfiguration() Configuration {
	return Configuration{
		BatchSize:               10,
		MaxConcurrentOperations: 2,
		Timeout:                 30 * time.Second,
		RetryCount:              3,
	}
}

// Validate checks the invariants the processor relies on.
func (c Configuration) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1, got %d", ErrInvalidConfiguration, c.BatchSize)
	}
	if c.MaxConcurrentOperations < 1 {
		return fmt.Errorf("%w: max concurrent operations must be at least 1, got %d", ErrInvalidConfiguration, c.MaxConcurrentOperations)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfiguration)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("%w: retry count must not be negative", ErrInvalidConfiguration)
	}
	return nil
}
