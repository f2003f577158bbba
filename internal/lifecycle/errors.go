package lifecycle

import "codeberg.org/mutker/extkit/internal/errors"

const (
	ErrUnknownState    = errors.ErrorCode("lifecycle_unknown_state")
	ErrInvalidMinState = errors.ErrorCode("lifecycle_invalid_min_state")
)
