// Package strutil classifies strings by ASCII character class. Each predicate
// matches the whole string, and the empty string satisfies all of them.
package strutil

import "regexp"

var (
	digitOnly        = regexp.MustCompile(`^\d*$`)
	alphabeticOnly   = regexp.MustCompile(`^[a-zA-Z]*$`)
	alphanumericOnly = regexp.MustCompile(`^[a-zA-Z\d]*$`)
)

// IsDigitOnly reports whether s contains only the digits 0-9.
func IsDigitOnly(s string) bool {
	return digitOnly.MatchString(s)
}

// IsAlphabeticOnly reports whether s contains only ASCII letters.
func IsAlphabeticOnly(s string) bool {
	return alphabeticOnly.MatchString(s)
}

// IsAlphanumericOnly reports whether s contains only ASCII letters and digits.
func IsAlphanumericOnly(s string) bool {
	return alphanumericOnly.MatchString(s)
}
