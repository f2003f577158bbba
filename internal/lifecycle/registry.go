package lifecycle

import "sync"

// Handler is called with the new state after every change.
type Handler func(State)

// Lifecycle is an externally owned, observable lifecycle.
type Lifecycle interface {
	// State returns the current state.
	State() State
	// Observe registers h for future changes. The returned function removes it.
	Observe(h Handler) (remove func())
}

type entry struct {
	id uint64
	h  Handler
}

// Registry is a Lifecycle whose state is driven by its owner. Destroyed is
// terminal: once reached, further changes are ignored and handlers are dropped.
type Registry struct {
	mu       sync.RWMutex
	state    State
	handlers []entry
	nextID   uint64
}

// NewRegistry returns a Registry in the given state.
func NewRegistry(initial State) *Registry {
	return &Registry{state: initial}
}

// State returns the current lifecycle state.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Observe registers a handler to be called on lifecycle changes.
// Returns a function that can be called to remove the handler.
func (r *Registry) Observe(h Handler) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.handlers = append(r.handlers, entry{id: id, h: h})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, e := range r.handlers {
			if e.id == id {
				r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
				return
			}
		}
	}
}

// SetState moves the lifecycle to s and notifies handlers, outside the lock,
// in registration order. It reports whether the state changed.
func (r *Registry) SetState(s State) bool {
	r.mu.Lock()
	if r.state == s || r.state == Destroyed {
		r.mu.Unlock()
		return false
	}
	r.state = s
	handlers := make([]entry, len(r.handlers))
	copy(handlers, r.handlers)
	if s == Destroyed {
		r.handlers = nil
	}
	r.mu.Unlock()

	for _, e := range handlers {
		e.h(s)
	}

	return true
}
