package strategy

import (
	"context"
	"strings"

	"github.com/nguyentantai21042004/itemflow/pkg/executor"
)

// Command pipes each string item through an external command.
type Command struct {
	exec executor.Executor
	name string
	args []string
}

// NewCommand creates a strategy that runs name with args for every item.
func NewCommand(exec executor.Executor, name string, args ...string) *Command {
	return &Command{
		exec: exec,
		name: name,
		args: args,
	}
}

// CanProcess accepts every item; the command decides by exiting non-zero.
func (c *Command) CanProcess(string) bool {
	return true
}

// Process returns the command's stdout without trailing newlines.
func (c *Command) Process(ctx context.Context, item string) (string, error) {
	out, err := c.exec.ExecuteWithInput(ctx, item, c.name, c.args...)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\r\n"), nil
}
