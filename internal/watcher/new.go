package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panjf2000/ants/v2"

	"github.com/nguyentantai21042004/itemflow/internal/logger"
)

// Options tunes which files are picked up and how many are handled at once
type Options struct {
	Extensions         []string
	MaxConcurrentFiles int
	SettleDelay        time.Duration
}

// New creates a new Watcher on inputDir. Files are handed to handler on a
// pool of at most opts.MaxConcurrentFiles goroutines.
func New(inputDir string, handler EventHandler, opts Options, log logger.Logger) (Watcher, error) {
	if opts.MaxConcurrentFiles <= 0 {
		opts.MaxConcurrentFiles = 2
	}

	pool, err := ants.NewPool(opts.MaxConcurrentFiles)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		pool.Release()
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		pool.Release()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		inputDir: inputDir,
		handler:  handler,
		opts:     opts,
		logger:   log,
		watcher:  watcher,
		pool:     pool,
	}, nil
}
