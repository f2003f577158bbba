package lifecycle_test

import (
	"context"
	"testing"

	"codeberg.org/mutker/extkit/internal/lifecycle"
	"codeberg.org/mutker/extkit/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRestartsOnKeyChange(t *testing.T) {
	ctx := context.Background()
	reg := lifecycle.NewRegistry(lifecycle.Started)
	b := stream.NewBroadcaster[int]()
	rec := &recorder[int]{}

	c := lifecycle.NewCollector[int](ctx, rec.handle)

	assert.True(t, c.Render(b, reg, "user-1"))
	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, waitFor, tick)

	assert.False(t, c.Render(b, reg, "user-1"))
	assert.Equal(t, uint64(1), c.Stats().Subscriptions)

	assert.True(t, c.Render(b, reg, "user-2"))
	assert.Equal(t, uint64(1), c.Stats().Cancellations)
	require.Eventually(t, func() bool {
		return c.Stats().Subscriptions == 2 && b.Subscribers() == 1
	}, waitFor, tick)

	require.NoError(t, b.Emit(ctx, 7))
	require.Eventually(t, func() bool { return rec.len() == 1 }, waitFor, tick)

	require.NoError(t, c.Close())
	assert.Equal(t, []int{7}, rec.values())
	assert.Equal(t, uint64(2), c.Stats().Cancellations)
	assert.False(t, c.Render(b, reg, "user-3"))
}

func TestCollectorRestartsOnInputChange(t *testing.T) {
	ctx := context.Background()
	reg := lifecycle.NewRegistry(lifecycle.Resumed)
	other := lifecycle.NewRegistry(lifecycle.Resumed)
	b := stream.NewBroadcaster[int]()
	rec := &recorder[int]{}

	c := lifecycle.NewCollector[int](ctx, rec.handle)
	defer c.Close()

	assert.True(t, c.Render(b, reg, []string{"a"}))
	assert.False(t, c.Render(b, reg, []string{"a"}))
	assert.True(t, c.Render(b, reg, []string{"b"}))
	assert.True(t, c.Render(b, other, []string{"b"}))
	assert.True(t, c.Render(stream.NewBroadcaster[int](), other, []string{"b"}))

	c.SetMinState(lifecycle.Resumed)
	assert.True(t, c.Render(b, reg))
	assert.False(t, c.Render(b, reg))
}

func TestCollectorSetHandler(t *testing.T) {
	ctx := context.Background()
	reg := lifecycle.NewRegistry(lifecycle.Started)
	b := stream.NewBroadcaster[int]()
	first := &recorder[int]{}
	second := &recorder[int]{}

	c := lifecycle.NewCollector[int](ctx, first.handle)
	defer c.Close()

	c.Render(b, reg)
	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, waitFor, tick)

	c.SetHandler(second.handle)
	require.NoError(t, b.Emit(ctx, 1))
	require.Eventually(t, func() bool { return second.len() == 1 }, waitFor, tick)

	assert.Empty(t, first.values())
	assert.Equal(t, uint64(1), c.Stats().Subscriptions)
}

func TestCollectorParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reg := lifecycle.NewRegistry(lifecycle.Started)
	b := stream.NewBroadcaster[int]()

	c := lifecycle.NewCollector[int](ctx, (&recorder[int]{}).handle)
	c.Render(b, reg)
	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, waitFor, tick)

	cancel()
	require.Eventually(t, func() bool { return b.Subscribers() == 0 }, waitFor, tick)
	assert.NoError(t, c.Close())
}
