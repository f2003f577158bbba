package lifecycle

import (
	"strings"

	"codeberg.org/mutker/extkit/internal/errors"
)

// State is a coarse phase of a UI component's existence. States are ordered,
// so "at least Started" is a plain comparison.
type State int

const (
	Destroyed State = iota
	Initialized
	Created
	Started
	Resumed
)

var stateNames = map[State]string{
	Destroyed:   "destroyed",
	Initialized: "initialized",
	Created:     "created",
	Started:     "started",
	Resumed:     "resumed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsAtLeast reports whether s is at or above min.
func (s State) IsAtLeast(min State) bool {
	return s >= min
}

// ParseState maps a state name, case-insensitively, to a State.
func ParseState(name string) (State, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return Destroyed, errors.New().WithData(ErrUnknownState, name)
}
