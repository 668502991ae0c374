// Package scripting runs JavaScript import plugins. A plugin defines
// createRecipe(recipe) and talks to the host through the cookbook and
// console objects.
package scripting

import (
	"context"
	"errors"
	"sync"

	"github.com/dop251/goja"
)

// Engine serializes access to one goja runtime and interrupts scripts
// when their context ends.
type Engine struct {
	mu sync.Mutex
	vm *goja.Runtime
}

func NewEngine() *Engine {
	return &Engine{vm: goja.New()}
}

// Execute runs script and returns its exported completion value.
func (e *Engine) Execute(ctx context.Context, script string) (interface{}, error) {
	var out interface{}
	err := e.run(ctx, func(vm *goja.Runtime) error {
		val, err := vm.RunString(script)
		if err != nil {
			return err
		}
		out = val.Export()
		return nil
	})
	return out, err
}

func (e *Engine) run(ctx context.Context, fn func(vm *goja.Runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	// The watcher must be gone before the interrupt flag is cleared, or a
	// late cancel would leak into the next script.
	defer func() {
		close(done)
		<-stopped
		e.vm.ClearInterrupt()
	}()

	err := fn(e.vm)
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause := interrupted.Unwrap(); cause != nil {
			return cause
		}
		return context.Canceled
	}
	return err
}
