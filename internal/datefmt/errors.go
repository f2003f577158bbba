package datefmt

import "codeberg.org/mutker/extkit/internal/errors"

const (
	ErrInvalidPattern     = errors.ErrorCode("datefmt_invalid_pattern")
	ErrUnsupportedPattern = errors.ErrorCode("datefmt_unsupported_pattern")
	ErrUnsupportedLocale  = errors.ErrorCode("datefmt_unsupported_locale")
)
