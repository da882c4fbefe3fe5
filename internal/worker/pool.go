package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

const DefaultPoolSize = 4

// Pool bounds the number of blocking calls (model provider I/O, tool
// execution) in flight across all sessions. Request goroutines block on Do
// until a slot frees up or their context is cancelled.
type Pool struct {
	sem chan struct{}
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{sem: make(chan struct{}, size)}
}

func (p *Pool) Size() int {
	return cap(p.sem)
}

// Do runs fn on an acquired slot. A panic inside fn is recovered and
// converted to an error instead of taking the process down.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()

	return runSafe(fn)
}

func runSafe(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			slog.Error("Panic recovered", "panic", r, "stack", string(stack))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
