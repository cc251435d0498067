// Package semaphore provides a counting semaphore with FIFO wake-up order.
package semaphore

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Semaphore limits how many units of work hold a permit at the same time.
// Waiters are granted permits in the order they started waiting.
type Semaphore struct {
	weighted *semaphore.Weighted
	permits  int
	inUse    atomic.Int64
}

// New creates a semaphore with the given number of permits.
// A non-positive value is treated as a single permit.
func New(permits int) *Semaphore {
	if permits <= 0 {
		permits = 1
	}

	return &Semaphore{
		weighted: semaphore.NewWeighted(int64(permits)),
		permits:  permits,
	}
}

// Wait blocks until a permit is available and consumes it.
// If ctx ends first, no permit is consumed and ctx.Err() is returned.
func (s *Semaphore) Wait(ctx context.Context) error {
	if err := s.weighted.Acquire(ctx, 1); err != nil {
		return err
	}
	s.inUse.Add(1)
	return nil
}

// TryWait consumes a permit only if one is immediately available.
func (s *Semaphore) TryWait() bool {
	if !s.weighted.TryAcquire(1) {
		return false
	}
	s.inUse.Add(1)
	return true
}

// Signal releases a permit previously obtained with Wait or TryWait.
// Releasing a permit that was never acquired panics.
func (s *Semaphore) Signal() {
	s.weighted.Release(1)
	s.inUse.Add(-1)
}

// Permits returns the total number of permits.
func (s *Semaphore) Permits() int {
	return s.permits
}

// InUse returns the number of permits currently held.
func (s *Semaphore) InUse() int {
	return int(s.inUse.Load())
}
