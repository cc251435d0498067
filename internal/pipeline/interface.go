// Package pipeline wires configured strategies to the item processor and
// runs line-oriented input files through it.
package pipeline

import "context"

// Runner processes input files, one item per line
type Runner interface {
	// HandleFile processes a single input file
	HandleFile(ctx context.Context, path string) error

	// ProcessExisting handles every matching file already in the input directory
	ProcessExisting(ctx context.Context) error
}
