package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/extkit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	f := errors.New()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"default message", f.New(errors.ErrInvalidLogLevel), "Invalid log level"},
		{"custom message", f.WithMessage(errors.ErrInternal, "boom"), "boom"},
		{"wrapped", f.Wrap(errors.ErrReadConfig, fmt.Errorf("no such file")), "Failed to read config file: no such file"},
		{"data", f.WithData(errors.ErrInvalidDensity, -1.5), "Display density must be positive and finite: -1.5"},
		{"unknown code", f.New(errors.ErrorCode("custom_code")), "custom_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := errors.New().Wrap(errors.ErrOperationFailed, cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, errors.ErrOperationFailed, err.Code())
}

func TestWithDataKeepsCode(t *testing.T) {
	err := errors.New().New(errors.ErrInvalidState).WithData("paused")

	assert.Equal(t, errors.ErrInvalidState, err.Code())
	assert.Equal(t, "paused", err.GetData())
}

func TestHasCode(t *testing.T) {
	f := errors.New()
	inner := f.New(errors.ErrInvalidLocale)
	outer := f.Wrap(errors.ErrInvalidConfig, inner)
	plain := fmt.Errorf("context: %w", outer)

	require.Error(t, plain)
	assert.True(t, errors.HasCode(plain, errors.ErrInvalidConfig))
	assert.True(t, errors.HasCode(plain, errors.ErrInvalidLocale))
	assert.False(t, errors.HasCode(plain, errors.ErrTimeout))
	assert.False(t, errors.HasCode(nil, errors.ErrTimeout))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrTimeout))
}
