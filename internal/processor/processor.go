package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nguyentantai21042004/itemflow/internal/strategy"
)

// ProcessItem applies the strategy to a single item and records its duration
func (p *implProcessor[T]) ProcessItem(ctx context.Context, item T) (out T, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out, err = zero, strategy.Failed(fmt.Sprintf("panic: %v", r))
		}
		if err != nil {
			p.stats.record(0, 1, time.Since(start))
		} else {
			p.stats.record(1, 0, time.Since(start))
		}
	}()

	if !p.strategy.CanProcess(item) {
		return out, strategy.Failed(strategy.ReasonCannotProcess)
	}

	out, err = p.strategy.Process(ctx, item)
	if err != nil {
		var zero T
		return zero, strategy.Normalize(err)
	}
	return out, nil
}

// ProcessItems runs items batch by batch; items inside a batch run concurrently
func (p *implProcessor[T]) ProcessItems(ctx context.Context, items []T) Result[T] {
	start := time.Now()
	runID := uuid.NewString()
	batchCount := (len(items) + p.cfg.BatchSize - 1) / p.cfg.BatchSize

	ctx, span := p.tracer.Start(ctx, "processor.ProcessItems", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("items.count", len(items)),
		attribute.Int("batch.size", p.cfg.BatchSize),
		attribute.Int("batch.count", batchCount),
		attribute.Int("concurrency.max", p.cfg.MaxConcurrentOperations),
	))
	defer span.End()

	p.logger.Debug(ctx, "Run %s: %d items in %d batches (batch size %d, max concurrent %d)",
		runID, len(items), batchCount, p.cfg.BatchSize, p.cfg.MaxConcurrentOperations)

	c := &collector[T]{}
	for b := 0; b < batchCount; b++ {
		lo := b * p.cfg.BatchSize
		hi := min(lo+p.cfg.BatchSize, len(items))
		p.runBatch(ctx, b, lo, items[lo:hi], c)
	}

	result := newResult(c.items, c.errs)
	elapsed := time.Since(start)
	p.stats.record(len(result.Items), len(result.Errors), elapsed)

	span.SetAttributes(
		attribute.String("result.status", result.Status.String()),
		attribute.Int("items.processed", len(result.Items)),
		attribute.Int("items.failed", len(result.Errors)),
	)
	if result.Status == StatusFailure {
		span.SetStatus(codes.Error, result.Err().Error())
	}

	switch result.Status {
	case StatusSuccess:
		p.logger.Info(ctx, "Run %s succeeded: %d items in %s", runID, len(result.Items), elapsed)
	case StatusPartial:
		p.logger.Warn(ctx, "Run %s partially failed: %d processed, %d failed in %s",
			runID, len(result.Items), len(result.Errors), elapsed)
	case StatusFailure:
		p.logger.Error(ctx, "Run %s failed: %d items failed in %s, first error: %v",
			runID, len(result.Errors), elapsed, result.Err())
	}

	return result
}

// Statistics returns the current running totals
func (p *implProcessor[T]) Statistics() Statistics {
	return p.stats.snapshot()
}

// runBatch processes one batch and returns once every item has finished
func (p *implProcessor[T]) runBatch(ctx context.Context, index, offset int, batch []T, c *collector[T]) {
	ctx, span := p.tracer.Start(ctx, "processor.batch", trace.WithAttributes(
		attribute.Int("batch.index", index),
		attribute.Int("batch.items", len(batch)),
	))
	defer span.End()

	var wg sync.WaitGroup
	for i, item := range batch {
		wg.Add(1)
		go func(idx int, item T) {
			defer wg.Done()

			out, err := p.processWithPermit(ctx, item)
			if err != nil {
				c.fail(&ItemError{Index: idx, Err: err})
				return
			}
			c.succeed(out)
		}(offset+i, item)
	}
	wg.Wait()

	p.logger.Debug(ctx, "Batch %d finished: %d items", index, len(batch))
}

// processWithPermit holds a semaphore permit for the duration of ProcessItem
func (p *implProcessor[T]) processWithPermit(ctx context.Context, item T) (T, error) {
	if err := p.sem.Wait(ctx); err != nil {
		var zero T
		return zero, strategy.Normalize(err)
	}
	defer p.sem.Signal()

	return p.ProcessItem(ctx, item)
}

// collector gathers results from the goroutines of every batch
type collector[T any] struct {
	mu    sync.Mutex
	items []T
	errs  []error
}

func (c *collector[T]) succeed(item T) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
}

func (c *collector[T]) fail(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}
