package processor

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/nguyentantai21042004/itemflow/internal/logger"
	"github.com/nguyentantai21042004/itemflow/internal/strategy"
	"github.com/nguyentantai21042004/itemflow/pkg/semaphore"
)

const tracerName = "github.com/nguyentantai21042004/itemflow/internal/processor"

// ErrNilStrategy is returned by New when no strategy is given.
var ErrNilStrategy = errors.New("processor: strategy must not be nil")

type implProcessor[T any] struct {
	cfg      Configuration
	strategy strategy.Strategy[T]
	sem      *semaphore.Semaphore
	stats    *statsRecorder
	logger   logger.Logger
	tracer   trace.Tracer
}

// Option configures a Processor.
type Option func(*options)

type options struct {
	logger logger.Logger
	tracer trace.Tracer
}

// WithLogger sets the logger used for batch progress.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// New creates a new Processor instance
func New[T any](cfg Configuration, s strategy.Strategy[T], opts ...Option) (Processor[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNilStrategy
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	return &implProcessor[T]{
		cfg:      cfg,
		strategy: s,
		sem:      semaphore.New(cfg.MaxConcurrentOperations),
		stats:    &statsRecorder{},
		logger:   o.logger,
		tracer:   o.tracer,
	}, nil
}
