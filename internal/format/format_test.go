package format_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/extkit/internal/format"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMillis(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"zero", 0, "00:00"},
		{"negative", -5000, "00:00"},
		{"sub second", 999, "00:00"},
		{"one minute one second", 61_000, "01:01"},
		{"just under an hour", 3_599_999, "59:59"},
		{"one hour", 3_600_000, "1:00:00"},
		{"hours unpadded", 3_661_000, "1:01:01"},
		{"many hours", 36_000_000 + 59_000, "10:00:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format.Millis(tt.ms))
		})
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "02:05", format.Duration(2*time.Minute+5*time.Second))
	assert.Equal(t, "00:00", format.Duration(-time.Second))
}

func TestThousands(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{-1500, "-1500"},
		{999, "999"},
		{1000, "1.0K"},
		{1234, "1.2K"},
		{1249, "1.2K"},
		{1250, "1.3K"},
		{9999, "10.0K"},
		{12099, "12.1K"},
		{1_234_567, "1234.6K"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, format.Thousands(tt.n), "n=%d", tt.n)
	}
}

func TestThousandsLocale(t *testing.T) {
	assert.Equal(t, "999", format.ThousandsLocale(999, language.German))
	assert.Equal(t, "1.2K", format.ThousandsLocale(1234, language.English))
	assert.Equal(t, "1,2K", format.ThousandsLocale(1234, language.German))
	assert.Equal(t, "12,1K", format.ThousandsLocale(12099, language.German))
}
