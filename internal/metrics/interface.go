package metrics

import (
	"context"
	"time"

	"codeberg.org/mutker/extkit/internal/lifecycle"
)

// Recorder stores collector snapshots. A disabled configuration yields a
// Recorder that drops everything.
type Recorder interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for snapshot storage
type Repository interface {
	Record(snapshot *Snapshot) error
	// Snapshots returns the stored snapshots of one collector, oldest first.
	Snapshots(collector string) ([]*Snapshot, error)
	Flush() error
	Close() error
}

// Snapshot is the state of one collector at one point in time.
type Snapshot struct {
	Timestamp time.Time
	// Collector names the collector, Session tells runs of it apart.
	Collector string
	Session   string
	State     lifecycle.State
	Stats     lifecycle.Stats
}

// NewSnapshot captures stats for the named collector at the current time.
func NewSnapshot(collector, session string, state lifecycle.State, stats lifecycle.Stats) *Snapshot {
	return &Snapshot{
		Timestamp: time.Now().UTC(),
		Collector: collector,
		Session:   session,
		State:     state,
		Stats:     stats,
	}
}
