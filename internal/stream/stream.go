// Package stream provides asynchronous sequences that can be subscribed to.
//
// A Sequence hands out a channel per subscription. Consumers read until the
// channel closes or their context ends; once the context ends they must stop
// reading, and the sequence stops sending to them.
package stream

import (
	"context"
	"sync"

	"codeberg.org/mutker/extkit/internal/errors"
)

const (
	ErrClosed = errors.ErrorCode("stream_closed")
)

// Sequence is an asynchronous sequence of values.
type Sequence[T any] interface {
	// Subscribe starts a subscription bound to ctx. The returned channel is
	// closed when the sequence completes.
	Subscribe(ctx context.Context) <-chan T
}

// Func adapts a function to a Sequence. Func values are not comparable, so a
// keyed collector treats each one as a new sequence.
type Func[T any] func(ctx context.Context) <-chan T

func (f Func[T]) Subscribe(ctx context.Context) <-chan T {
	return f(ctx)
}

type subscriber[T any] struct {
	ctx context.Context
	ch  chan T
}

// Broadcaster is a hot sequence. Every Emit goes to the subscribers present
// at that moment; there is no replay and nothing is buffered for absent
// subscribers.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber[T]
	nextID uint64
	closed bool
	done   chan struct{}

	// emitMu serializes sends with channel closes.
	emitMu sync.Mutex
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subs: make(map[uint64]*subscriber[T]),
		done: make(chan struct{}),
	}
}

// Subscribe registers a subscriber until ctx ends or the broadcaster closes.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = &subscriber[T]{ctx: ctx, ch: ch}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.emitMu.Lock()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
		b.emitMu.Unlock()
	}()

	return ch
}

// Emit delivers v to every current subscriber, blocking until each one has
// received it or gone away. With no subscribers v is dropped.
func (b *Broadcaster[T]) Emit(ctx context.Context, v T) error {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New().New(ErrClosed)
	}
	subs := make([]*subscriber[T], 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		if s.ctx.Err() != nil {
			continue
		}
		select {
		case s.ch <- v:
		case <-s.ctx.Done():
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return errors.New().New(ErrClosed)
		}
	}

	return nil
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, s := range b.subs {
		if s.ctx.Err() == nil {
			n++
		}
	}
	return n
}

// Close completes every subscription. Further Emit calls fail.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

// FromChannel exposes ch as a Sequence. Every subscription reads the same
// channel, so values sent while nobody subscribes stay in ch until the next
// subscriber takes them. Sequences over the same channel compare equal.
func FromChannel[T any](ch <-chan T) Sequence[T] {
	return chanSeq[T]{ch: ch}
}

type chanSeq[T any] struct {
	ch <-chan T
}

func (c chanSeq[T]) Subscribe(context.Context) <-chan T {
	return c.ch
}

// Of returns a cold sequence that replays values to each subscriber.
func Of[T any](values ...T) Sequence[T] {
	return &valueSeq[T]{values: values}
}

type valueSeq[T any] struct {
	values []T
}

func (s *valueSeq[T]) Subscribe(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for _, v := range s.values {
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
