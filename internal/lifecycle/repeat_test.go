package lifecycle_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/extkit/internal/errors"
	"codeberg.org/mutker/extkit/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func runAsync(f func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- f() }()
	return done
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(waitFor):
		require.FailNow(t, "timed out waiting for return")
		return nil
	}
}

func TestRepeatOnLifecycleInvalidMinState(t *testing.T) {
	reg := lifecycle.NewRegistry(lifecycle.Resumed)

	for _, s := range []lifecycle.State{lifecycle.Destroyed, lifecycle.Initialized} {
		err := lifecycle.RepeatOnLifecycle(context.Background(), reg, s, func(context.Context) error {
			return nil
		})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, lifecycle.ErrInvalidMinState))
	}
}

func TestRepeatOnLifecycleAlreadyDestroyed(t *testing.T) {
	reg := lifecycle.NewRegistry(lifecycle.Started)
	reg.SetState(lifecycle.Destroyed)

	called := false
	err := lifecycle.RepeatOnLifecycle(context.Background(), reg, lifecycle.Started, func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called)
}

func TestRepeatOnLifecycleRestarts(t *testing.T) {
	reg := lifecycle.NewRegistry(lifecycle.Created)

	var current atomic.Pointer[context.Context]
	var runs atomic.Int32
	started := make(chan struct{}, 4)

	done := runAsync(func() error {
		return lifecycle.RepeatOnLifecycle(context.Background(), reg, lifecycle.Started, func(ctx context.Context) error {
			current.Store(&ctx)
			runs.Add(1)
			started <- struct{}{}
			<-ctx.Done()
			return ctx.Err()
		})
	})

	reg.SetState(lifecycle.Started)
	<-started
	first := *current.Load()

	reg.SetState(lifecycle.Resumed)
	reg.SetState(lifecycle.Created)
	// The block's context is done by the time the state change returns.
	require.Error(t, first.Err())

	reg.SetState(lifecycle.Resumed)
	<-started
	second := *current.Load()
	require.NoError(t, second.Err())

	reg.SetState(lifecycle.Destroyed)
	require.NoError(t, waitErr(t, done))
	assert.Error(t, second.Err())
	assert.Equal(t, int32(2), runs.Load())
}

func TestRepeatOnLifecycleContextCancel(t *testing.T) {
	reg := lifecycle.NewRegistry(lifecycle.Started)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	done := runAsync(func() error {
		return lifecycle.RepeatOnLifecycle(ctx, reg, lifecycle.Started, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	})

	<-started
	cancel()
	assert.ErrorIs(t, waitErr(t, done), context.Canceled)
}

func TestRepeatOnLifecycleBlockError(t *testing.T) {
	reg := lifecycle.NewRegistry(lifecycle.Started)
	boom := fmt.Errorf("boom")

	err := lifecycle.RepeatOnLifecycle(context.Background(), reg, lifecycle.Started, func(context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}
