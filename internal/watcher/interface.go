// Package watcher feeds newly created input files to a handler.
package watcher

import "context"

// Watcher monitors one directory. Start blocks until ctx is done and
// in-flight handlers have returned; Stop closes the underlying watch.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one file. Errors are logged and do not stop the watcher.
type EventHandler func(ctx context.Context, filePath string) error
