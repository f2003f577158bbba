package density_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/extkit/internal/density"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestToDP(t *testing.T) {
	tests := []struct {
		px      int
		density float64
		want    int
	}{
		{0, 2, 0},
		{300, 2, 150},
		{301, 2, 150},
		{100, 1.5, 66},
		{-301, 2, -150},
		{100, 0.75, 133},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, density.ToDP(tt.px, density.Static(tt.density)),
			"px=%d density=%v", tt.px, tt.density)
	}
}

func TestToPx(t *testing.T) {
	tests := []struct {
		dp      int
		density float64
		want    int
	}{
		{0, 3, 0},
		{10, 3, 30},
		{10, 1.5, 15},
		{11, 1.5, 16},
		{-11, 1.5, -16},
		{7, 2.625, 18},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, density.ToPx(tt.dp, density.Static(tt.density)),
			"dp=%d density=%v", tt.dp, tt.density)
	}
}

// Truncation on both legs means the round trip is not an exact inverse, but
// it never drifts by a full density step.
func TestRoundTripBoundedError(t *testing.T) {
	for _, f := range []float64{0.75, 1, 1.5, 2, 2.625, 3, 4} {
		p := density.Static(f)
		bound := int(math.Ceil(f))
		for x := 0; x <= 2000; x++ {
			got := density.ToPx(density.ToDP(x, p), p)
			diff := x - got
			assert.GreaterOrEqual(t, diff, 0, "x=%d f=%v", x, f)
			assert.Less(t, diff, bound+1, "x=%d f=%v", x, f)
		}
	}
}

func TestRoundTripWithinOneForLowDensity(t *testing.T) {
	p := density.Static(1)
	for x := -100; x <= 100; x++ {
		assert.InDelta(t, x, density.ToPx(density.ToDP(x, p), p), 1)
	}
}

func TestDisplayReadsFresh(t *testing.T) {
	disp := density.NewDisplay(2)
	c := density.NewConverter(disp)

	assert.Equal(t, 50, c.DP(100))

	assert.True(t, disp.SetDensity(4))
	assert.Equal(t, 25, c.DP(100))
	assert.Equal(t, 400, c.Px(100))
}

func TestDisplayRejectsInvalid(t *testing.T) {
	disp := density.NewDisplay(2)

	for _, v := range []float64{0, -1, math.Inf(1), math.NaN()} {
		assert.False(t, disp.SetDensity(v), "%v", v)
	}
	assert.Equal(t, 2.0, disp.Density())
}

func TestConfigProvider(t *testing.T) {
	v := viper.New()
	p := density.NewConfigProvider(v, nil)

	assert.Equal(t, 1.0, p.Density(), "missing key falls back to 1")

	v.Set(density.Key, 2.5)
	assert.Equal(t, 2.5, p.Density())
	assert.Equal(t, 40, density.ToDP(100, p))

	v.Set(density.Key, -3)
	assert.Equal(t, 2.5, p.Density(), "invalid value keeps last good density")
}
