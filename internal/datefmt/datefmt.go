// Package datefmt parses and formats dates with SimpleDateFormat-style
// patterns such as "yyyy-MM-dd HH:mm:ss".
//
// Go's time package only knows English month and weekday names, so patterns
// with text fields (MMM, EEE, a) require an English locale. Numeric patterns
// work under any locale.
package datefmt

import (
	"sync"
	"time"

	"codeberg.org/mutker/extkit/internal/errors"
	"codeberg.org/mutker/extkit/internal/logger"
	"golang.org/x/text/language"
)

// DefaultPattern is used when no pattern is given.
const DefaultPattern = "yyyy-MM-dd HH:mm:ss"

var (
	defaultsMu      sync.RWMutex
	defaultLocale   = language.English
	defaultLocation = time.Local
)

// SetDefaultLocale sets the locale used by ToDate and ToString.
func SetDefaultLocale(tag language.Tag) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaultLocale = tag
}

// SetDefaultLocation sets the time zone used by ToDate and ToString.
func SetDefaultLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaultLocation = loc
}

// Defaults returns the default locale and location.
func Defaults() (language.Tag, *time.Location) {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultLocale, defaultLocation
}

// Option configures a Formatter
type Option func(*Formatter)

// WithLocation pins the time zone used to interpret and render times.
func WithLocation(loc *time.Location) Option {
	return func(f *Formatter) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// WithLocale pins the locale.
func WithLocale(tag language.Tag) Option {
	return func(f *Formatter) {
		f.locale = tag
	}
}

// Formatter parses and formats times with one pattern.
type Formatter struct {
	pattern string
	layout  string
	loc     *time.Location
	locale  language.Tag
}

// NewFormatter compiles pattern. It fails for illegal pattern letters, for
// fields Go cannot render, and for text fields under a non-English locale.
func NewFormatter(pattern string, opts ...Option) (*Formatter, error) {
	locale, loc := Defaults()
	f := &Formatter{
		pattern: pattern,
		loc:     loc,
		locale:  locale,
	}
	for _, opt := range opts {
		opt(f)
	}

	l, err := translate(pattern)
	if err != nil {
		return nil, err
	}
	if l.text && !isEnglish(f.locale) {
		return nil, errors.New().WithData(ErrUnsupportedLocale, struct {
			Pattern string
			Locale  string
		}{pattern, f.locale.String()})
	}
	f.layout = l.value

	return f, nil
}

// Pattern returns the pattern the formatter was built from.
func (f *Formatter) Pattern() string {
	return f.pattern
}

// Layout returns the equivalent Go layout.
func (f *Formatter) Layout() string {
	return f.layout
}

// Parse reads s. The result is absent (false) when s does not match.
func (f *Formatter) Parse(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(f.layout, s, f.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Format renders t in the formatter's location.
func (f *Formatter) Format(t time.Time) string {
	return t.In(f.loc).Format(f.layout)
}

// ToDate parses s with pattern (DefaultPattern when omitted) under the
// default locale and location. An invalid pattern is logged and reported
// as an absent result; use NewFormatter to get the error.
func ToDate(s string, pattern ...string) (time.Time, bool) {
	f, err := NewFormatter(patternOrDefault(pattern))
	if err != nil {
		logInvalid(err)
		return time.Time{}, false
	}
	return f.Parse(s)
}

// ToString formats t with pattern (DefaultPattern when omitted) under the
// default locale and location. An invalid pattern is logged and yields "".
func ToString(t time.Time, pattern ...string) string {
	f, err := NewFormatter(patternOrDefault(pattern))
	if err != nil {
		logInvalid(err)
		return ""
	}
	return f.Format(t)
}

func patternOrDefault(pattern []string) string {
	if len(pattern) == 0 || pattern[0] == "" {
		return DefaultPattern
	}
	return pattern[0]
}

func logInvalid(err error) {
	var e errors.Error
	if errors.As(err, &e) {
		logger.ErrorWithCode(e).Msg("Invalid date pattern")
		return
	}
	logger.Error().Err(err).Msg("Invalid date pattern")
}

func isEnglish(tag language.Tag) bool {
	if tag == language.Und {
		return true
	}
	base, _ := tag.Base()
	en, _ := language.English.Base()
	return base == en
}
