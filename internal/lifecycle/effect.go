package lifecycle

import (
	"context"
	"reflect"
	"sync"

	"codeberg.org/mutker/extkit/internal/errors"
)

// Effect runs one task at a time and restarts it only when its keys change,
// the way a UI framework reruns a keyed side effect between renders.
type Effect struct {
	parent context.Context

	// mu serializes Launch and Dispose and guards the fields below it.
	mu       sync.Mutex
	keys     []any
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	disposed bool

	errMu sync.Mutex
	err   error
}

// NewEffect returns an Effect whose tasks are bound to parent.
func NewEffect(parent context.Context) *Effect {
	return &Effect{parent: parent}
}

// Launch starts fn unless the running task was launched with equal keys. A
// running task is cancelled and waited for before fn starts. It reports
// whether fn was started. fn must not call Launch or Dispose on the same Effect.
func (e *Effect) Launch(keys []any, fn func(context.Context) error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return false
	}
	if e.running && keysEqual(e.keys, keys) {
		return false
	}

	e.stopLocked()

	ctx, cancel := context.WithCancel(e.parent)
	done := make(chan struct{})
	e.keys = append([]any(nil), keys...)
	e.running = true
	e.cancel = cancel
	e.done = done

	go func() {
		defer close(done)
		defer cancel()

		err := fn(ctx)
		if err == nil || (ctx.Err() != nil && errors.Is(err, ctx.Err())) {
			return
		}
		e.errMu.Lock()
		if e.err == nil {
			e.err = err
		}
		e.errMu.Unlock()
	}()

	return true
}

// Dispose cancels the running task, waits for it and returns the first
// error any task reported. Later launches are ignored.
func (e *Effect) Dispose() error {
	e.mu.Lock()
	e.disposed = true
	e.stopLocked()
	e.mu.Unlock()

	return e.Err()
}

// Err returns the first error reported so far.
func (e *Effect) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

func (e *Effect) stopLocked() {
	if !e.running {
		return
	}
	e.cancel()
	<-e.done
	e.running = false
}

func keysEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !keyEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// keyEqual uses == where the dynamic values allow it and falls back to
// reflect.DeepEqual for slices, maps and other incomparable values.
func keyEqual(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	vx, vy := reflect.ValueOf(x), reflect.ValueOf(y)
	if vx.Type() != vy.Type() {
		return false
	}
	if vx.Comparable() {
		return x == y
	}
	return reflect.DeepEqual(x, y)
}
