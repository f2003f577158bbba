package datefmt

import (
	"strings"
	"time"
	"unicode/utf8"

	"codeberg.org/mutker/extkit/internal/errors"
)

// javaLetters are the pattern letters SimpleDateFormat accepts.
const javaLetters = "GyMdkHmsSEDFwWahKzZYuXL"

// layout is a translated pattern.
type layout struct {
	value string
	// text is set when the layout renders month, weekday or AM/PM names.
	text bool
}

type piece struct {
	s       string
	literal bool
}

// translate converts a SimpleDateFormat pattern into a Go time layout.
func translate(pattern string) (layout, error) {
	errFactory := errors.New()

	var pieces []piece
	text := false

	for i := 0; i < len(pattern); {
		c := pattern[i]

		switch {
		case c == '\'':
			lit, next, err := quoted(pattern, i)
			if err != nil {
				return layout{}, err
			}
			pieces = append(pieces, piece{s: lit, literal: true})
			i = next

		case isLetter(c):
			n := 1
			for i+n < len(pattern) && pattern[i+n] == c {
				n++
			}
			tok, isText, err := field(c, n)
			if err != nil {
				return layout{}, err
			}
			if c == 'S' && !afterSeparator(pieces) {
				return layout{}, errFactory.WithData(ErrUnsupportedPattern, struct {
					Pattern string
					Reason  string
				}{pattern, "fraction must follow '.' or ','"})
			}
			text = text || isText
			pieces = append(pieces, piece{s: tok})
			i += n

		default:
			_, size := utf8.DecodeRuneInString(pattern[i:])
			pieces = append(pieces, piece{s: pattern[i : i+size], literal: true})
			i += size
		}
	}

	pieces = mergeLiterals(pieces)

	var b strings.Builder
	for idx, p := range pieces {
		if p.literal && !literalSafe(p.s) {
			return layout{}, errFactory.WithData(ErrUnsupportedPattern, struct {
				Pattern string
				Literal string
			}{pattern, p.s})
		}
		if idx > 0 && isFraction(pieces[idx-1].s) && startsWithDigit(p.s) {
			return layout{}, errFactory.WithData(ErrUnsupportedPattern, struct {
				Pattern string
				Reason  string
			}{pattern, "fraction must not be followed by a number"})
		}
		b.WriteString(p.s)
	}

	value := b.String()
	if !readsAsPieces(pieces, value) {
		return layout{}, errFactory.WithData(ErrUnsupportedPattern, struct {
			Pattern string
			Reason  string
		}{pattern, "adjacent fields read as a different layout element"})
	}

	return layout{value: value, text: text}, nil
}

// referenceTimes have distinct values in every field, so a layout whose
// elements run together renders differently from its pieces.
var referenceTimes = []time.Time{
	time.Date(2009, time.November, 10, 23, 45, 56, 789_000_000, time.FixedZone("XYZ", 90*60)),
	time.Date(2017, time.March, 4, 8, 7, 9, 12_000_000, time.FixedZone("QRS", -5*60*60)),
}

// readsAsPieces reports whether Go reads the joined layout as the same
// sequence of elements as the translated pieces.
func readsAsPieces(pieces []piece, value string) bool {
	for _, ref := range referenceTimes {
		var want strings.Builder
		for _, p := range pieces {
			switch {
			case p.literal:
				want.WriteString(p.s)
			case isFraction(p.s):
				// fractions only render after a separator
				want.WriteString(ref.Format("." + p.s)[1:])
			default:
				want.WriteString(ref.Format(p.s))
			}
		}
		if ref.Format(value) != want.String() {
			return false
		}
	}
	return true
}

// quoted reads a quoted literal starting at pattern[start] == '\''. Two
// consecutive quotes yield a single quote, inside or outside a literal.
func quoted(pattern string, start int) (string, int, error) {
	if start+1 < len(pattern) && pattern[start+1] == '\'' {
		return "'", start + 2, nil
	}

	var b strings.Builder
	for i := start + 1; i < len(pattern); i++ {
		if pattern[i] != '\'' {
			b.WriteByte(pattern[i])
			continue
		}
		if i+1 < len(pattern) && pattern[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		return b.String(), i + 1, nil
	}

	return "", 0, errors.New().WithData(ErrInvalidPattern, struct {
		Pattern string
		Reason  string
	}{pattern, "unterminated quote"})
}

// field maps a run of n pattern letters c to a Go layout element.
func field(c byte, n int) (string, bool, error) {
	errFactory := errors.New()
	unsupported := errFactory.WithData(ErrUnsupportedPattern, strings.Repeat(string(c), n))

	switch c {
	case 'y':
		if n == 2 {
			return "06", false, nil
		}
		return "2006", false, nil
	case 'M', 'L':
		switch n {
		case 1:
			return "1", false, nil
		case 2:
			return "01", false, nil
		case 3:
			return "Jan", true, nil
		default:
			return "January", true, nil
		}
	case 'd':
		switch n {
		case 1:
			return "2", false, nil
		case 2:
			return "02", false, nil
		}
	case 'H':
		if n == 2 {
			return "15", false, nil
		}
	case 'h':
		switch n {
		case 1:
			return "3", false, nil
		case 2:
			return "03", false, nil
		}
	case 'm':
		switch n {
		case 1:
			return "4", false, nil
		case 2:
			return "04", false, nil
		}
	case 's':
		switch n {
		case 1:
			return "5", false, nil
		case 2:
			return "05", false, nil
		}
	case 'S':
		if n == 3 {
			return "000", false, nil
		}
	case 'a':
		return "PM", true, nil
	case 'E':
		if n <= 3 {
			return "Mon", true, nil
		}
		return "Monday", true, nil
	case 'z':
		if n <= 3 {
			return "MST", false, nil
		}
	case 'Z':
		switch {
		case n <= 3:
			return "-0700", false, nil
		case n == 5:
			return "-07:00", false, nil
		}
	case 'X':
		switch n {
		case 1:
			return "Z07", false, nil
		case 2:
			return "Z0700", false, nil
		case 3:
			return "Z07:00", false, nil
		}
	default:
		if !strings.ContainsRune(javaLetters, rune(c)) {
			return "", false, errFactory.WithData(ErrInvalidPattern, struct {
				Letter string
				Reason string
			}{string(c), "illegal pattern character"})
		}
	}

	return "", false, unsupported
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func afterSeparator(pieces []piece) bool {
	if len(pieces) == 0 {
		return false
	}
	last := pieces[len(pieces)-1]
	return last.literal && (strings.HasSuffix(last.s, ".") || strings.HasSuffix(last.s, ","))
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// mergeLiterals joins adjacent literals so tokens split across quotes are caught.
func mergeLiterals(pieces []piece) []piece {
	out := make([]piece, 0, len(pieces))
	for _, p := range pieces {
		if n := len(out); n > 0 && p.literal && out[n-1].literal {
			out[n-1].s += p.s
			continue
		}
		out = append(out, p)
	}
	return out
}

func isFraction(s string) bool {
	return s == "000"
}

// goTokens are substrings Go would read as layout elements inside a literal.
var goTokens = []string{"Jan", "Mon", "MST", "PM", "pm", "_", "Z07"}

func literalSafe(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	for _, tok := range goTokens {
		if strings.Contains(s, tok) {
			return false
		}
	}
	return true
}
