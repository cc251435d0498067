package processor

import "context"

// Processor applies a strategy to single items and to batches of items
// while keeping running statistics.
type Processor[T any] interface {
	// ProcessItem applies the strategy to one item.
	ProcessItem(ctx context.Context, item T) (T, error)

	// ProcessItems processes items in sequential batches with bounded
	// concurrency inside each batch. Per-item failures are reported in the
	// Result, never as a separate error.
	ProcessItems(ctx context.Context, items []T) Result[T]

	// Statistics returns a snapshot of the running totals.
	Statistics() Statistics
}
