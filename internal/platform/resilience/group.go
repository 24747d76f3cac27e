package resilience

import (
	"context"
	"fmt"
	"sync"
)

// Group shares one in-flight call per key between concurrent callers.
//
// The shared call runs on a context detached from every caller's
// cancellation, so one caller giving up never fails the others. Each caller
// still returns as soon as its own ctx is done. Callers bound the shared call
// through fn itself, for example with an HTTP client timeout.
type Group[T any] struct {
	mu    sync.Mutex
	calls map[string]*flight[T]
}

type flight[T any] struct {
	done    chan struct{}
	val     T
	err     error
	joiners int
}

// Do returns the shared result. The bool reports whether the caller joined a
// call started by someone else.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flight[T])
	}
	f, shared := g.calls[key]
	if shared {
		f.joiners++
	} else {
		f = &flight[T]{done: make(chan struct{})}
		g.calls[key] = f
		go g.run(context.WithoutCancel(ctx), key, f, fn)
	}
	g.mu.Unlock()

	select {
	case <-f.done:
		return f.val, shared, f.err
	case <-ctx.Done():
		var zero T
		return zero, shared, ctx.Err()
	}
}

func (g *Group[T]) run(ctx context.Context, key string, f *flight[T], fn func(context.Context) (T, error)) {
	defer func() {
		if r := recover(); r != nil {
			f.err = fmt.Errorf("shared call %q panicked: %v", key, r)
		}
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
		close(f.done)
	}()

	f.val, f.err = fn(ctx)
}

// Joined counts callers waiting on someone else's in-flight call for key.
func (g *Group[T]) Joined(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f, ok := g.calls[key]; ok {
		return f.joiners
	}
	return 0
}
