package importqueue

import (
	"context"
	"time"
)

// Queue stores import entries in submission order.
type Queue interface {
	// Append adds an entry to the end of the queue.
	Append(ctx context.Context, e Entry) error
	// List returns every entry, oldest first.
	List(ctx context.Context) ([]Entry, error)
	// Get returns the most recent entry with the given ID.
	Get(ctx context.Context, id string) (*Entry, error)
	// SetStatus updates the most recent entry with the given ID.
	SetStatus(ctx context.Context, id, status string) error
	// Prune removes entries created before the cut-off. Pending entries are
	// kept unless includePending is set. It returns how many were removed.
	Prune(ctx context.Context, before time.Time, includePending bool) (int, error)
}

// configurable is implemented by queues whose backend can be left unconfigured.
type configurable interface {
	Configured() bool
}

// Configured reports whether q can reach its backing store.
func Configured(q Queue) bool {
	if c, ok := q.(configurable); ok {
		return c.Configured()
	}
	return true
}

// prunable reports whether an entry falls under a prune cut-off.
func prunable(e Entry, before time.Time, includePending bool) bool {
	if e.CreatedAt.IsZero() || !e.CreatedAt.Before(before) {
		return false
	}
	return includePending || e.Status != StatusPending
}
