package processor

import (
	"sync"
	"time"
)

// Statistics is a point-in-time view of a processor's running totals.
// ProcessedItems + FailedItems always equals TotalItems.
type Statistics struct {
	TotalItems         int64
	ProcessedItems     int64
	FailedItems        int64
	ProcessingTime     time.Duration
	AverageTimePerItem time.Duration
}

// statsRecorder owns the mutable totals; every update holds mu.
type statsRecorder struct {
	mu        sync.Mutex
	total     int64
	processed int64
	failed    int64
	elapsed   time.Duration
}

func (r *statsRecorder) record(processed, failed int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total += int64(processed + failed)
	r.processed += int64(processed)
	r.failed += int64(failed)
	r.elapsed += elapsed
}

func (r *statsRecorder) snapshot() Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Statistics{
		TotalItems:     r.total,
		ProcessedItems: r.processed,
		FailedItems:    r.failed,
		ProcessingTime: r.elapsed,
	}
	if r.total > 0 {
		s.AverageTimePerItem = r.elapsed / time.Duration(r.total)
	}
	return s
}
