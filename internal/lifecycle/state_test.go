package lifecycle_test

import (
	"testing"

	"codeberg.org/mutker/extkit/internal/errors"
	"codeberg.org/mutker/extkit/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOrder(t *testing.T) {
	assert.True(t, lifecycle.Resumed.IsAtLeast(lifecycle.Started))
	assert.True(t, lifecycle.Started.IsAtLeast(lifecycle.Started))
	assert.False(t, lifecycle.Created.IsAtLeast(lifecycle.Started))
	assert.False(t, lifecycle.Destroyed.IsAtLeast(lifecycle.Initialized))
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want lifecycle.State
	}{
		{"destroyed", lifecycle.Destroyed},
		{"Initialized", lifecycle.Initialized},
		{" created ", lifecycle.Created},
		{"STARTED", lifecycle.Started},
		{"resumed", lifecycle.Resumed},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := lifecycle.ParseState(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
			assert.Equal(t, tt.want, mustParse(t, s.String()))
		})
	}

	_, err := lifecycle.ParseState("paused")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, lifecycle.ErrUnknownState))
	assert.Equal(t, "unknown", lifecycle.State(42).String())
}

func mustParse(t *testing.T, name string) lifecycle.State {
	t.Helper()
	s, err := lifecycle.ParseState(name)
	require.NoError(t, err)
	return s
}

func TestRegistry(t *testing.T) {
	reg := lifecycle.NewRegistry(lifecycle.Initialized)
	assert.Equal(t, lifecycle.Initialized, reg.State())

	var seen []string
	reg.Observe(func(s lifecycle.State) { seen = append(seen, "a:"+s.String()) })
	remove := reg.Observe(func(s lifecycle.State) { seen = append(seen, "b:"+s.String()) })

	assert.True(t, reg.SetState(lifecycle.Created))
	assert.False(t, reg.SetState(lifecycle.Created))
	remove()
	assert.True(t, reg.SetState(lifecycle.Started))

	assert.Equal(t, []string{"a:created", "b:created", "a:started"}, seen)

	assert.True(t, reg.SetState(lifecycle.Destroyed))
	assert.False(t, reg.SetState(lifecycle.Resumed))
	assert.Equal(t, lifecycle.Destroyed, reg.State())
	assert.Equal(t, "a:destroyed", seen[len(seen)-1])
	assert.Len(t, seen, 4)
}
