package eventstore

import (
	"context"
	"time"
)

// Store persists build events.
type Store interface {
	// Append stores e. A zero timestamp is replaced with the current time.
	Append(ctx context.Context, e Event) error

	// GetByBuildID returns the events of one build in append order.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// GetRange returns the events with start <= timestamp <= end in append order.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Recent returns the IDs of the newest builds, newest first.
	Recent(ctx context.Context, limit int) ([]string, error)

	Close() error
}
