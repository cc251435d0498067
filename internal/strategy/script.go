package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

const (
	scriptTransformFunc  = "transform"
	scriptCanProcessFunc = "canProcess"

	defaultScriptTimeout = time.Second
)

var (
	// ErrScriptTimeout is returned when a script runs past its timeout.
	ErrScriptTimeout = errors.New("script timeout")

	// ErrScriptInvalid is returned for scripts that fail to compile or lack transform.
	ErrScriptInvalid = errors.New("invalid script")
)

// Script processes string items with a JavaScript transform(item) function
// and an optional canProcess(item) function.
type Script struct {
	program       *goja.Program
	hasCanProcess bool
	timeout       time.Duration
}

// NewScript compiles code and checks that it defines transform.
func NewScript(code string, timeout time.Duration) (*Script, error) {
	if timeout <= 0 {
		timeout = defaultScriptTimeout
	}

	program, err := goja.Compile("strategy.js", code, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptInvalid, err)
	}

	s := &Script{program: program, timeout: timeout}

	vm, stop, err := s.load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptInvalid, err)
	}
	defer stop()

	if _, ok := goja.AssertFunction(vm.Get(scriptTransformFunc)); !ok {
		return nil, fmt.Errorf("%w: %s function is not defined", ErrScriptInvalid, scriptTransformFunc)
	}
	_, s.hasCanProcess = goja.AssertFunction(vm.Get(scriptCanProcessFunc))

	return s, nil
}

// CanProcess calls canProcess(item) when the script defines it.
// A script error counts as a rejection.
func (s *Script) CanProcess(item string) bool {
	if !s.hasCanProcess {
		return true
	}
	v, err := s.call(context.Background(), scriptCanProcessFunc, item)
	if err != nil {
		return false
	}
	return v.ToBoolean()
}

// Process calls transform(item) and returns its result as a string.
func (s *Script) Process(ctx context.Context, item string) (string, error) {
	v, err := s.call(ctx, scriptTransformFunc, item)
	if err != nil {
		return "", err
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return "", fmt.Errorf("%s returned no value", scriptTransformFunc)
	}
	return v.String(), nil
}

// load runs the program on a fresh runtime. The returned stop func must be
// called once the runtime is no longer used.
func (s *Script) load(ctx context.Context) (*goja.Runtime, func(), error) {
	vm := goja.New()

	timer := time.AfterFunc(s.timeout, func() {
		vm.Interrupt(ErrScriptTimeout)
	})
	stopCtx := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	stop := func() {
		timer.Stop()
		stopCtx()
	}

	if _, err := vm.RunProgram(s.program); err != nil {
		stop()
		return nil, nil, interruptCause(err)
	}
	return vm, stop, nil
}

func (s *Script) call(ctx context.Context, name string, item string) (goja.Value, error) {
	vm, stop, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	defer stop()

	fn, ok := goja.AssertFunction(vm.Get(name))
	if !ok {
		return nil, fmt.Errorf("%s function is not defined", name)
	}

	v, err := fn(goja.Undefined(), vm.ToValue(item))
	if err != nil {
		return nil, interruptCause(err)
	}
	return v, nil
}

func interruptCause(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return cause
		}
	}
	return err
}
