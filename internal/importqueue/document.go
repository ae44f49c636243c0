package importqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/evcraddock/homefront/internal/docstore"
)

// DocumentStore is the whole-document JSON store behind a DocumentQueue.
type DocumentStore interface {
	Configured() bool
	Get(ctx context.Context) (docstore.Document, error)
	Put(ctx context.Context, doc docstore.Document) error
}

// DocumentQueue keeps the queue as the "imports" array of the site document.
// Every write fetches the document, changes the array and writes the whole
// document back. There is no concurrency token: concurrent writers race and
// the last write wins.
type DocumentQueue struct {
	store DocumentStore
}

// NewDocumentQueue creates a queue over store.
func NewDocumentQueue(store DocumentStore) *DocumentQueue {
	return &DocumentQueue{store: store}
}

// Configured reports whether the document store has credentials.
func (q *DocumentQueue) Configured() bool {
	return q.store.Configured()
}

// Append adds e to the end of the imports array.
func (q *DocumentQueue) Append(ctx context.Context, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	return q.update(ctx, func(items []json.RawMessage) ([]json.RawMessage, error) {
		return append(items, raw), nil
	})
}

// List returns every entry in the imports array. Items that cannot be decoded
// are skipped.
func (q *DocumentQueue) List(ctx context.Context) ([]Entry, error) {
	doc, err := q.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}

	items, err := doc.Collection(docstore.CollectionImports)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		var e Entry
		if err := json.Unmarshal(item, &e); err != nil {
			slog.Warn("skipping undecodable import", "index", i, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Get returns the last entry with the given ID.
func (q *DocumentQueue) Get(ctx context.Context, id string) (*Entry, error) {
	entries, err := q.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// SetStatus rewrites the status of the last entry with the given ID. Other
// fields of the stored entry are left as they are.
func (q *DocumentQueue) SetStatus(ctx context.Context, id, status string) error {
	return q.update(ctx, func(items []json.RawMessage) ([]json.RawMessage, error) {
		for i := len(items) - 1; i >= 0; i-- {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(items[i], &fields); err != nil {
				continue
			}
			var itemID string
			if err := json.Unmarshal(fields["id"], &itemID); err != nil || itemID != id {
				continue
			}

			s, err := json.Marshal(status)
			if err != nil {
				return nil, err
			}
			fields["status"] = s
			updated, err := json.Marshal(fields)
			if err != nil {
				return nil, fmt.Errorf("encoding import %s: %w", id, err)
			}
			items[i] = updated
			return items, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
}

// Prune drops entries created before the cut-off. Items that cannot be
// decoded are kept.
func (q *DocumentQueue) Prune(ctx context.Context, before time.Time, includePending bool) (int, error) {
	removed := 0
	err := q.update(ctx, func(items []json.RawMessage) ([]json.RawMessage, error) {
		kept := make([]json.RawMessage, 0, len(items))
		for _, item := range items {
			var e Entry
			if err := json.Unmarshal(item, &e); err == nil && prunable(e, before, includePending) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// update runs one read-modify-write cycle on the imports array.
func (q *DocumentQueue) update(ctx context.Context, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
	doc, err := q.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("fetching document: %w", err)
	}

	items, err := doc.Collection(docstore.CollectionImports)
	if err != nil {
		return err
	}

	items, err = fn(items)
	if err != nil {
		return err
	}

	if err := doc.SetCollection(docstore.CollectionImports, items); err != nil {
		return err
	}

	if err := q.store.Put(ctx, doc); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}
