// Package format renders durations and counts for display.
package format

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	millisPerSecond = 1000
	millisPerMinute = 60 * millisPerSecond
	millisPerHour   = 60 * millisPerMinute

	thousand = 1000
)

// Millis converts a timestamp in milliseconds to H:MM:SS, or MM:SS when it
// is under an hour. Values <= 0 render as "00:00".
func Millis(ms int64) string {
	if ms <= 0 {
		return "00:00"
	}

	hours := ms / millisPerHour
	minutes := (ms / millisPerMinute) % 60
	seconds := (ms / millisPerSecond) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Duration is Millis for a time.Duration.
func Duration(d time.Duration) string {
	return Millis(d.Milliseconds())
}

// Thousands abbreviates counts of 1000 and above with a "K" suffix and one
// decimal digit, rounding half up: 1234 -> "1.2K", 1250 -> "1.3K".
// Smaller values, negatives included, are returned unchanged.
func Thousands(n int64) string {
	if n < thousand {
		return strconv.FormatInt(n, 10)
	}

	tenths := roundTenths(n)
	return strconv.FormatInt(tenths/10, 10) + "." + strconv.FormatInt(tenths%10, 10) + "K"
}

// ThousandsLocale is Thousands using the decimal separator of tag.
func ThousandsLocale(n int64, tag language.Tag) string {
	if n < thousand {
		return strconv.FormatInt(n, 10)
	}

	p := message.NewPrinter(tag)
	v := float64(roundTenths(n)) / 10

	return p.Sprint(number.Decimal(v,
		number.MinFractionDigits(1),
		number.MaxFractionDigits(1),
		number.NoSeparator(),
	)) + "K"
}

// roundTenths returns n/100 rounded half up, i.e. n in thousands scaled by 10.
func roundTenths(n int64) int64 {
	tenths := n / 100
	if n%100 >= 50 {
		tenths++
	}

	return tenths
}
