// Package metrics exposes processor statistics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nguyentantai21042004/itemflow/internal/logger"
	"github.com/nguyentantai21042004/itemflow/internal/processor"
)

const shutdownTimeout = 5 * time.Second

// StatsSource is anything that can report processor statistics
type StatsSource interface {
	Statistics() processor.Statistics
}

// Collector reads a fresh snapshot from its source on every scrape
type Collector struct {
	source StatsSource

	total     *prometheus.Desc
	processed *prometheus.Desc
	failed    *prometheus.Desc
	seconds   *prometheus.Desc
	average   *prometheus.Desc
}

// NewCollector creates a Collector publishing metrics under namespace
func NewCollector(namespace string, source StatsSource) *Collector {
	return &Collector{
		source: source,
		total: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "items_total"),
			"Items handed to the processor.", nil, nil),
		processed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "items_processed_total"),
			"Items processed successfully.", nil, nil),
		failed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "items_failed_total"),
			"Items that failed processing.", nil, nil),
		seconds: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "processing_seconds_total"),
			"Accumulated processing time in seconds.", nil, nil),
		average: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "average_item_seconds"),
			"Average processing time per item in seconds.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.processed
	ch <- c.failed
	ch <- c.seconds
	ch <- c.average
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Statistics()

	ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(s.TotalItems))
	ch <- prometheus.MustNewConstMetric(c.processed, prometheus.CounterValue, float64(s.ProcessedItems))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(s.FailedItems))
	ch <- prometheus.MustNewConstMetric(c.seconds, prometheus.CounterValue, s.ProcessingTime.Seconds())
	ch <- prometheus.MustNewConstMetric(c.average, prometheus.GaugeValue, s.AverageTimePerItem.Seconds())
}

// NewRegistry returns a registry with the Go and process collectors plus c
func NewRegistry(c *Collector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := reg.Register(c); err != nil {
		return nil, fmt.Errorf("register collector: %w", err)
	}
	return reg, nil
}

// Handler returns an HTTP handler for the /metrics endpoint
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Router mounts handler on /metrics next to a /healthz liveness probe
func Router(handler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", handler)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Serve exposes Router(handler) on addr until ctx is done
func Serve(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "Metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	log.Info(ctx, "Metrics server stopped")
	return nil
}
