package strutil_test

import (
	"testing"

	"codeberg.org/mutker/extkit/internal/strutil"
	"github.com/stretchr/testify/assert"
)

func TestClassifiers(t *testing.T) {
	tests := []struct {
		in           string
		digits       bool
		alphabetic   bool
		alphanumeric bool
	}{
		{"", true, true, true},
		{"0123456789", true, false, true},
		{"abcXYZ", false, true, true},
		{"abc123", false, false, true},
		{"12a", false, false, true},
		{"12 3", false, false, false},
		{"abc-def", false, false, false},
		{"12\n", false, false, false},
		{"١٢٣", false, false, false},
		{"café", false, false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.digits, strutil.IsDigitOnly(tt.in), "IsDigitOnly(%q)", tt.in)
		assert.Equal(t, tt.alphabetic, strutil.IsAlphabeticOnly(tt.in), "IsAlphabeticOnly(%q)", tt.in)
		assert.Equal(t, tt.alphanumeric, strutil.IsAlphanumericOnly(tt.in), "IsAlphanumericOnly(%q)", tt.in)
	}
}
