package lifecycle

import (
	"context"
	"sync/atomic"

	"codeberg.org/mutker/extkit/internal/logger"
	"codeberg.org/mutker/extkit/internal/stream"
	"github.com/google/uuid"
)

// DefaultMinState is the conventional threshold for collecting UI events.
const DefaultMinState = Started

// EventHandler receives one event. ctx is cancelled when the collector
// leaves its active window; long-running work should honour it.
type EventHandler[T any] func(ctx context.Context, v T) error

// Stats is a snapshot of collector counters. Late counts events received in
// the same instant their activation was cancelled; they are still delivered
// and included in Delivered.
type Stats struct {
	Subscriptions uint64
	Cancellations uint64
	Delivered     uint64
	Late          uint64
}

// Counters accumulates collector statistics. Safe for concurrent use.
type Counters struct {
	subscriptions atomic.Uint64
	cancellations atomic.Uint64
	delivered     atomic.Uint64
	late          atomic.Uint64
}

// Snapshot returns the current values.
func (c *Counters) Snapshot() Stats {
	return Stats{
		Subscriptions: c.subscriptions.Load(),
		Cancellations: c.cancellations.Load(),
		Delivered:     c.delivered.Load(),
		Late:          c.late.Load(),
	}
}

type options struct {
	minState State
	name     string
	log      logger.Logger
	counters *Counters
}

// Option configures Collect and Collector.
type Option func(*options)

// WithMinState sets the state at or above which events are collected.
func WithMinState(s State) Option {
	return func(o *options) {
		o.minState = s
	}
}

// WithName labels log entries.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used for subscription events.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithCounters records statistics into c.
func WithCounters(c *Counters) Option {
	return func(o *options) {
		if c != nil {
			o.counters = c
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		minState: DefaultMinState,
		name:     "collector",
		log:      logger.Default(),
		counters: &Counters{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Collect subscribes to seq while lc is at least the minimum state (Started
// by default) and calls handle once per event, in order, one at a time.
// Leaving the active window cancels the subscription and re-entering it
// subscribes again. A cancelled activation never reads from the sequence;
// an event received while the cancellation races in is still handed to
// handle, so nothing taken from the sequence is lost.
//
// Collect returns when ctx ends, when lc is destroyed, or when handle fails.
func Collect[T any](ctx context.Context, seq stream.Sequence[T], lc Lifecycle, handle EventHandler[T], opts ...Option) error {
	o := newOptions(opts)
	return collect(ctx, seq, lc, func() EventHandler[T] { return handle }, o)
}

func collect[T any](ctx context.Context, seq stream.Sequence[T], lc Lifecycle, handler func() EventHandler[T], o options) error {
	log := o.log.With(o.name)

	return RepeatOnLifecycle(ctx, lc, o.minState, func(ctx context.Context) error {
		id := uuid.NewString()
		o.counters.subscriptions.Add(1)
		log.Debug().
			Str("subscription", id).
			Str("state", lc.State().String()).
			Msg("Subscribed")

		defer func() {
			if ctx.Err() != nil {
				o.counters.cancellations.Add(1)
				log.Debug().
					Str("subscription", id).
					Str("state", lc.State().String()).
					Msg("Subscription cancelled")
			}
		}()

		events := seq.Subscribe(ctx)
		for {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case v, ok := <-events:
				if !ok {
					log.Debug().Str("subscription", id).Msg("Sequence completed")
					return nil
				}
				if ctx.Err() != nil {
					o.counters.late.Add(1)
					log.Debug().Str("subscription", id).Msg("Delivering event received during cancellation")
				}
				o.counters.delivered.Add(1)
				if err := handler()(ctx, v); err != nil {
					return err
				}
			}
		}
	})
}
