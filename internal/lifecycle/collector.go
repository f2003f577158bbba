package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"

	"codeberg.org/mutker/extkit/internal/stream"
)

// Collector keeps a lifecycle-aware subscription alive across renders of a
// UI component. Each Render compares the sequence, the lifecycle, the
// minimum state and the restart keys with the previous render; any change
// cancels the running subscription and starts a fresh one.
//
//	c := lifecycle.NewCollector(ctx, func(ctx context.Context, ev Event) error {
//	    return show(ev)
//	})
//	defer c.Close()
//
//	// on every render
//	c.Render(viewModel.Events, owner, userID)
type Collector[T any] struct {
	effect   *Effect
	handler  atomic.Pointer[EventHandler[T]]
	counters Counters

	mu   sync.Mutex
	opts options
}

// NewCollector returns a Collector bound to parent. parent plays the role of
// the component's render scope: cancelling it stops collection for good.
func NewCollector[T any](parent context.Context, handle EventHandler[T], opts ...Option) *Collector[T] {
	c := &Collector[T]{
		effect: NewEffect(parent),
		opts:   newOptions(opts),
	}
	c.opts.counters = &c.counters
	c.SetHandler(handle)
	return c
}

// SetHandler replaces the event handler. The running subscription keeps
// going and the next event goes to the new handler.
func (c *Collector[T]) SetHandler(handle EventHandler[T]) {
	c.handler.Store(&handle)
}

// SetMinState changes the threshold. It takes effect on the next Render.
func (c *Collector[T]) SetMinState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.minState = s
}

// Render (re)starts collection of seq under lc when any input changed since
// the previous call. It reports whether a new subscription was launched.
func (c *Collector[T]) Render(seq stream.Sequence[T], lc Lifecycle, keys ...any) bool {
	c.mu.Lock()
	o := c.opts
	c.mu.Unlock()

	all := make([]any, 0, len(keys)+3)
	all = append(all, seq, lc, o.minState)
	all = append(all, keys...)

	return c.effect.Launch(all, func(ctx context.Context) error {
		return collect(ctx, seq, lc, c.current, o)
	})
}

// Stats returns the collector's counters.
func (c *Collector[T]) Stats() Stats {
	return c.counters.Snapshot()
}

// Err returns the first error that ended a subscription, if any.
func (c *Collector[T]) Err() error {
	return c.effect.Err()
}

// Close stops collection, as when the component leaves the tree, and
// returns the first error that ended a subscription.
func (c *Collector[T]) Close() error {
	return c.effect.Dispose()
}

func (c *Collector[T]) current() EventHandler[T] {
	return *c.handler.Load()
}
