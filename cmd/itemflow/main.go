package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/itemflow/internal/config"
	"github.com/nguyentantai21042004/itemflow/internal/logger"
	"github.com/nguyentantai21042004/itemflow/internal/metrics"
	"github.com/nguyentantai21042004/itemflow/internal/pipeline"
	"github.com/nguyentantai21042004/itemflow/internal/processor"
	"github.com/nguyentantai21042004/itemflow/internal/tracing"
	"github.com/nguyentantai21042004/itemflow/internal/watcher"
	"github.com/nguyentantai21042004/itemflow/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	once := flag.Bool("once", false, "process files already in the input directory and exit")
	flag.Parse()

	os.Exit(run(*configPath, *once))
}

func run(configPath string, once bool) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info(ctx, "itemflow starting on %s/%s, %d CPU cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Batch size: %d, max concurrent items: %d", cfg.Processing.BatchSize, cfg.Processing.MaxConcurrent)

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, log)
	if err != nil {
		log.Error(ctx, "Failed to set up tracing: %v", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error(ctx, "Failed to shut down tracing: %v", err)
		}
	}()

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		return 1
	}

	defaults := cfg.Processing.Configuration()
	s, err := pipeline.Build(cfg.Pipeline.Strategy, defaults, executor.New())
	if err != nil {
		log.Error(ctx, "Failed to build pipeline: %v", err)
		return 1
	}

	proc, err := processor.New(defaults, s, processor.WithLogger(log))
	if err != nil {
		log.Error(ctx, "Failed to create processor: %v", err)
		return 1
	}

	if cfg.Metrics.Addr != "" {
		reg, err := metrics.NewRegistry(metrics.NewCollector(cfg.Metrics.Namespace, proc))
		if err != nil {
			log.Error(ctx, "Failed to register metrics: %v", err)
			return 1
		}
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, metrics.Handler(reg), log); err != nil {
				log.Error(ctx, "Metrics server error: %v", err)
			}
		}()
	}

	runner := pipeline.New(proc, cfg.Paths, cfg.Watcher.Extensions, log)
	newWatcher := func() (watcher.Watcher, error) {
		return watcher.New(cfg.Paths.Input, runner.HandleFile, watcher.Options{
			Extensions:         cfg.Watcher.Extensions,
			MaxConcurrentFiles: cfg.Watcher.MaxConcurrentFiles,
			SettleDelay:        cfg.Watcher.SettleDelay,
		}, log)
	}

	return serve(ctx, log, runner, proc, once, newWatcher)
}

// serve handles files already in the input folder, then watches for new
// ones unless once is set. The watch is registered before the folder is
// listed so no file falls between the two.
func serve(ctx context.Context, log logger.Logger, runner pipeline.Runner, stats metrics.StatsSource,
	once bool, newWatcher func() (watcher.Watcher, error)) int {
	var w watcher.Watcher
	if !once {
		var err error
		w, err = newWatcher()
		if err != nil {
			log.Error(ctx, "Failed to create watcher: %v", err)
			return 1
		}
		defer w.Stop()
	}

	code := 0
	if err := runner.ProcessExisting(ctx); err != nil {
		log.Error(ctx, "Some input files failed: %v", err)
		if once {
			code = 1
		}
	}
	if once {
		logStatistics(ctx, log, stats.Statistics())
		return code
	}

	log.Info(ctx, "itemflow is ready. Watching for new files")
	log.Info(ctx, "Press Ctrl+C to stop")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		code = 1
	}

	log.Info(ctx, "Shutting down gracefully...")
	logStatistics(ctx, log, stats.Statistics())
	return code
}

func logStatistics(ctx context.Context, log logger.Logger, s processor.Statistics) {
	log.Info(ctx, "Statistics: total=%d processed=%d failed=%d time=%s avg=%s",
		s.TotalItems, s.ProcessedItems, s.FailedItems, s.ProcessingTime, s.AverageTimePerItem)
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
