package stream_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mutker/extkit/internal/errors"
	"codeberg.org/mutker/extkit/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func drain[T any](t *testing.T, ch <-chan T) []T {
	t.Helper()
	var out []T
	timeout := time.After(waitFor)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		case <-timeout:
			t.Fatal("channel was not closed")
		}
	}
}

func TestOfReplaysToEachSubscriber(t *testing.T) {
	seq := stream.Of(1, 2, 3)
	ctx := context.Background()

	assert.Equal(t, []int{1, 2, 3}, drain(t, seq.Subscribe(ctx)))
	assert.Equal(t, []int{1, 2, 3}, drain(t, seq.Subscribe(ctx)))
}

func TestOfStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := stream.Of(1, 2, 3).Subscribe(ctx)

	assert.Equal(t, 1, <-ch)
	cancel()

	// At most one value can still be in flight.
	rest := drain(t, ch)
	assert.LessOrEqual(t, len(rest), 1)
}

func TestBroadcasterDropsWithoutSubscribers(t *testing.T) {
	b := stream.NewBroadcaster[string]()
	defer b.Close()

	require.NoError(t, b.Emit(context.Background(), "lost"))
	assert.Equal(t, 0, b.Subscribers())
}

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := stream.NewBroadcaster[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := b.Subscribe(ctx)
	second := b.Subscribe(ctx)
	require.Equal(t, 2, b.Subscribers())

	got := make(chan int, 2)
	for _, ch := range []<-chan int{first, second} {
		go func(ch <-chan int) { got <- <-ch }(ch)
	}

	require.NoError(t, b.Emit(ctx, 7))
	assert.Equal(t, 7, <-got)
	assert.Equal(t, 7, <-got)
}

func TestBroadcasterUnsubscribeOnCancel(t *testing.T) {
	b := stream.NewBroadcaster[int]()
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)

	cancel()
	assert.Empty(t, drain(t, ch))
	assert.Equal(t, 0, b.Subscribers())

	// A cancelled subscriber never blocks Emit.
	require.NoError(t, b.Emit(context.Background(), 1))
}

func TestBroadcasterClose(t *testing.T) {
	b := stream.NewBroadcaster[int]()
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()

	assert.Empty(t, drain(t, ch))
	assert.Empty(t, drain(t, b.Subscribe(context.Background())))

	err := b.Emit(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, stream.ErrClosed))
}

func TestBroadcasterEmitHonoursContext(t *testing.T) {
	b := stream.NewBroadcaster[int]()
	defer b.Close()

	sub, cancelSub := context.WithCancel(context.Background())
	defer cancelSub()
	_ = b.Subscribe(sub) // never read

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Emit(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFromChannelKeepsBufferedValues(t *testing.T) {
	src := make(chan string, 2)
	src <- "a"
	src <- "b"
	close(src)

	seq := stream.FromChannel[string](src)
	assert.Equal(t, []string{"a", "b"}, drain(t, seq.Subscribe(context.Background())))
}
