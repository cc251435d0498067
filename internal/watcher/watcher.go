package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panjf2000/ants/v2"

	"github.com/nguyentantai21042004/itemflow/internal/logger"
)

type implWatcher struct {
	inputDir string
	handler  EventHandler
	opts     Options
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	pool     *ants.Pool
	wg       sync.WaitGroup
}

// Start monitors the input directory until ctx is done. Newly created files
// with a matching extension are passed to the handler.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.opts.MaxConcurrentFiles, w.inputDir)
	w.logger.Info(ctx, "Accepted extensions: %s", strings.Join(w.opts.Extensions, ", "))

	defer w.pool.Release()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !w.accepts(event.Name) {
				w.logger.Debug(ctx, "Ignoring file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New file detected: %s", event.Name)
			w.submit(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// submit blocks while the pool is saturated
func (w *implWatcher) submit(ctx context.Context, path string) {
	w.wg.Add(1)
	err := w.pool.Submit(func() {
		defer w.wg.Done()

		// give the writer a moment to finish
		if w.opts.SettleDelay > 0 {
			t := time.NewTimer(w.opts.SettleDelay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return
			}
		}

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	})
	if err != nil {
		w.wg.Done()
		w.logger.Error(ctx, "Failed to schedule %s: %v", path, err)
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) accepts(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range w.opts.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
