// Package density converts between pixels and density-independent units.
//
// The scale factor always comes from a Provider and is read on every call,
// so a display change is reflected by the next conversion.
package density

import (
	"math"
	"sync/atomic"
)

// Provider supplies the current display density scale factor. Implementations
// must return a positive, finite value.
type Provider interface {
	Density() float64
}

// ToDP converts pixels to density-independent units, truncating toward zero.
func ToDP(px int, p Provider) int {
	return int(float64(px) / p.Density())
}

// ToPx converts density-independent units to pixels, truncating toward zero.
func ToPx(dp int, p Provider) int {
	return int(float64(dp) * p.Density())
}

// Valid reports whether d is usable as a scale factor.
func Valid(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

// Static is a fixed scale factor.
type Static float64

func (s Static) Density() float64 {
	return float64(s)
}

// Display holds the density reported by the host platform. The host calls
// SetDensity whenever the display configuration changes. Safe for concurrent use.
type Display struct {
	bits atomic.Uint64
}

// NewDisplay returns a Display starting at density d.
func NewDisplay(d float64) *Display {
	disp := &Display{}
	disp.SetDensity(d)
	return disp
}

func (d *Display) Density() float64 {
	return math.Float64frombits(d.bits.Load())
}

// SetDensity records a new scale factor. Invalid values are ignored and
// reported as false.
func (d *Display) SetDensity(v float64) bool {
	if !Valid(v) {
		return false
	}
	d.bits.Store(math.Float64bits(v))
	return true
}

// Converter binds a Provider to the conversion functions.
type Converter struct {
	p Provider
}

func NewConverter(p Provider) Converter {
	return Converter{p: p}
}

// DP converts px to density-independent units.
func (c Converter) DP(px int) int {
	return ToDP(px, c.p)
}

// Px converts dp to pixels.
func (c Converter) Px(dp int) int {
	return ToPx(dp, c.p)
}
