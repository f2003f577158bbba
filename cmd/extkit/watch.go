package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/extkit/internal/lifecycle"
	"codeberg.org/mutker/extkit/internal/logger"
	"codeberg.org/mutker/extkit/internal/metrics"
	"codeberg.org/mutker/extkit/internal/pid"
	"codeberg.org/mutker/extkit/internal/stream"
	"github.com/google/uuid"
)

const (
	watchName     = "watch"
	settleTimeout = time.Second
)

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// watch reads commands from stdin and feeds them to a collector gated by a
// lifecycle registry:
//
//	state <name>  move the lifecycle to name
//	emit <text>   broadcast text to the active subscription
//	stats         print collector statistics
//	quit          destroy the lifecycle and exit
func (a *app) watch(ctx context.Context) error {
	log := a.log.With(watchName)
	out := &syncWriter{w: a.out}

	guard := pid.New("extkit-" + watchName)
	if err := guard.Write(); err != nil {
		return err
	}
	defer func() {
		if err := guard.Remove(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	rec, err := metrics.NewService(metrics.Config{
		DBPath:       a.cfg.GetMetricsDBPath(),
		Enabled:      a.cfg.IsMetricsEnabled(),
		BatchSize:    a.cfg.GetMetricsBatchSize(),
		BatchTimeout: a.cfg.GetMetricsBatchTimeout(),
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close metrics")
		}
	}()

	if a.cfg.Viper().ConfigFileUsed() != "" {
		a.density.Watch(func(d float64) {
			fmt.Fprintf(out, "density %g\n", d)
		})
	}

	minState := a.cfg.GetMinActiveState()
	session := uuid.NewString()
	reg := lifecycle.NewRegistry(lifecycle.Created)
	events := stream.NewBroadcaster[string]()
	defer events.Close()

	handled := make(chan struct{}, 1)
	c := lifecycle.NewCollector[string](ctx, func(_ context.Context, v string) error {
		fmt.Fprintf(out, "event %s\n", v)
		select {
		case handled <- struct{}{}:
		default:
		}
		return nil
	},
		lifecycle.WithName(watchName),
		lifecycle.WithLogger(log),
		lifecycle.WithMinState(minState),
	)
	c.Render(events, reg)

	record := func(ctx context.Context) {
		s := metrics.NewSnapshot(watchName, session, reg.State(), c.Stats())
		if err := rec.Record(ctx, s); err != nil {
			log.Warn().Err(err).Msg("Failed to record collector stats")
		}
	}

	log.Debug().
		Str("session", session).
		Str("min_state", minState.String()).
		Msg("Watching stdin")

	lines := readLines(ctx, a.in)

loop:
	for {
		var line string
		select {
		case <-ctx.Done():
			break loop
		case l, ok := <-lines:
			if !ok {
				break loop
			}
			line = l
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "state":
			if len(fields) != 2 {
				fmt.Fprintln(out, "error: usage: state <name>")
				continue
			}
			s, err := lifecycle.ParseState(fields[1])
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			if !reg.SetState(s) {
				continue
			}
			fmt.Fprintf(out, "state %s\n", s)
			if s.IsAtLeast(minState) {
				settle(ctx, func() bool { return events.Subscribers() > 0 })
			}
			record(ctx)
			if s == lifecycle.Destroyed {
				break loop
			}
		case "emit":
			text := strings.Join(fields[1:], " ")
			active := events.Subscribers() > 0
			select {
			case <-handled:
			default:
			}
			if err := events.Emit(ctx, text); err != nil {
				return err
			}
			if !active {
				fmt.Fprintf(out, "dropped %s\n", text)
				continue
			}
			settle(ctx, func() bool {
				select {
				case <-handled:
					return true
				default:
					return false
				}
			})
		case "stats":
			printStats(out, c.Stats())
		case "quit":
			break loop
		default:
			fmt.Fprintf(out, "error: unknown command %q\n", fields[0])
		}
	}

	reg.SetState(lifecycle.Destroyed)
	err = c.Close()
	record(context.Background())
	printStats(out, c.Stats())

	return err
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			logger.Warn().Err(err).Msg("Failed to read stdin")
		}
	}()
	return lines
}

// settle polls cond until it holds, ctx ends or settleTimeout passes.
func settle(ctx context.Context, cond func() bool) bool {
	timeout := time.NewTimer(settleTimeout)
	defer timeout.Stop()
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()

	for !cond() {
		select {
		case <-ctx.Done():
			return false
		case <-timeout.C:
			return false
		case <-tick.C:
		}
	}
	return true
}

func printStats(w io.Writer, s lifecycle.Stats) {
	fmt.Fprintf(w, "stats subscriptions=%d cancellations=%d delivered=%d late=%d\n",
		s.Subscriptions, s.Cancellations, s.Delivered, s.Late)
}
