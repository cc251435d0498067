package executor

import "context"

// Executor runs external commands and returns their stdout
type Executor interface {
	// Execute runs name with args and an empty stdin
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteWithInput runs name with args, feeding input on stdin
	ExecuteWithInput(ctx context.Context, input string, name string, args ...string) (string, error)
}
