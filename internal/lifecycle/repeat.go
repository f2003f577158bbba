package lifecycle

import (
	"context"
	"sync"

	"codeberg.org/mutker/extkit/internal/errors"
	"golang.org/x/sync/errgroup"
)

// RepeatOnLifecycle runs block every time lc reaches at least minState, and cancels
// it as soon as lc drops below minState. Cancellation happens inside the state
// observer, so once the owner's state change returns the block's context is
// already done. A new run waits for the previous one to return.
//
// It returns when ctx ends, when lc is destroyed, or when block fails with
// anything other than its own cancellation, and always waits for the running
// block first. If lc is already destroyed it returns immediately.
func RepeatOnLifecycle(ctx context.Context, lc Lifecycle, minState State, block func(context.Context) error) error {
	if minState <= Initialized {
		return errors.New().WithData(ErrInvalidMinState, minState.String())
	}
	if lc.State() == Destroyed {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	r := &repeater{
		ctx:       gctx,
		g:         g,
		lc:        lc,
		min:       minState,
		block:     block,
		destroyed: make(chan struct{}),
	}

	remove := lc.Observe(func(State) { r.sync() })
	r.sync()

	select {
	case <-gctx.Done():
	case <-r.destroyed:
	}

	remove()
	r.stop()

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

type repeater struct {
	ctx   context.Context
	g     *errgroup.Group
	lc    Lifecycle
	min   State
	block func(context.Context) error

	mu        sync.Mutex
	cancel    context.CancelFunc
	last      chan struct{}
	stopped   bool
	destroyed chan struct{}
	once      sync.Once
}

// sync reconciles the running block with the current state. It reads the
// state itself rather than trusting the notified value, so racing
// notifications settle on the latest state.
func (r *repeater) sync() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}

	state := r.lc.State()
	switch {
	case state == Destroyed:
		r.cancelLocked()
		r.once.Do(func() { close(r.destroyed) })
	case state.IsAtLeast(r.min) && r.cancel == nil:
		r.launchLocked()
	case !state.IsAtLeast(r.min) && r.cancel != nil:
		r.cancelLocked()
	}
}

func (r *repeater) launchLocked() {
	child, cancel := context.WithCancel(r.ctx)
	prev := r.last
	done := make(chan struct{})
	r.cancel = cancel
	r.last = done

	r.g.Go(func() error {
		defer close(done)
		defer cancel()

		if prev != nil {
			select {
			case <-prev:
			case <-child.Done():
				return nil
			}
		}
		if child.Err() != nil {
			return nil
		}

		err := r.block(child)
		if err != nil && child.Err() != nil && errors.Is(err, child.Err()) {
			return nil
		}
		return err
	})
}

func (r *repeater) cancelLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *repeater) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.cancelLocked()
}
