package importqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evcraddock/homefront/internal/listing"
)

// DefaultPreviewPath is the admin page that renders the queue.
const DefaultPreviewPath = "/admin/import-preview"

// ReasonNotConfigured is reported when a draft was accepted but not stored
// because the queue backend has no credentials.
const ReasonNotConfigured = "store_not_configured"

// maxIDAttempts bounds how many IDs Receive tries when the queue reports a
// collision.
const maxIDAttempts = 5

// ListingWriter persists promoted drafts.
type ListingWriter interface {
	Upsert(ctx context.Context, l *listing.Listing) (int64, error)
}

// Receipt is the result of a submission.
type Receipt struct {
	OK         bool   `json:"ok"`
	ID         string `json:"id"`
	PreviewURL string `json:"previewUrl"`
	Wrote      bool   `json:"wrote"`
	Reason     string `json:"reason,omitempty"`
}

// Service receives, lists and promotes drafts.
type Service struct {
	queue       Queue
	previewPath string
	now         func() time.Time
}

// NewService creates a service over q. An empty previewPath uses
// DefaultPreviewPath.
func NewService(q Queue, previewPath string) *Service {
	if previewPath == "" {
		previewPath = DefaultPreviewPath
	}
	return &Service{queue: q, previewPath: previewPath, now: time.Now}
}

// Receive validates body and appends it to the queue as a pending entry.
// An unconfigured backend is not an error: the receipt reports wrote=false.
func (s *Service) Receive(ctx context.Context, body []byte) (*Receipt, error) {
	draft, err := ParseDraft(body)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	entry := Entry{
		ID:           newID(now),
		Status:       StatusPending,
		CreatedAt:    now,
		SourceURL:    draft.SourceURL,
		ListingDraft: draft.Raw,
		Confidence:   draft.Confidence,
	}

	receipt := &Receipt{OK: true, ID: entry.ID, PreviewURL: s.previewPath}

	if !Configured(s.queue) {
		receipt.Reason = ReasonNotConfigured
		return receipt, nil
	}

	if err := s.append(ctx, &entry); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			receipt.Reason = ReasonNotConfigured
			return receipt, nil
		}
		return nil, fmt.Errorf("storing draft: %w", err)
	}
	receipt.ID = entry.ID

	slog.Info("import draft queued", "id", entry.ID, "address", draft.Address, "source", entry.SourceURL)
	receipt.Wrote = true
	return receipt, nil
}

// append stores e. Queues that reject a repeated ID get the same entry again
// under imp_<millis>_<n>; e.ID is updated to the ID that was stored.
func (s *Service) append(ctx context.Context, e *Entry) error {
	base := e.ID
	for n := 1; ; n++ {
		err := s.queue.Append(ctx, *e)
		if !errors.Is(err, ErrDuplicateID) || n >= maxIDAttempts {
			return err
		}
		e.ID = fmt.Sprintf("%s_%d", base, n)
	}
}

// List returns the queue for display. Store failures are logged and yield an
// empty list.
func (s *Service) List(ctx context.Context) []Entry {
	if !Configured(s.queue) {
		return []Entry{}
	}

	entries, err := s.queue.List(ctx)
	if err != nil {
		slog.Warn("listing imports failed", "error", err)
		return []Entry{}
	}
	return entries
}

// Promote decodes the draft of entry id into a listing, upserts it and marks
// the entry promoted. It returns the listing ID.
func (s *Service) Promote(ctx context.Context, id string, listings ListingWriter) (int64, error) {
	entry, err := s.queue.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if entry.Status == StatusPromoted {
		return 0, fmt.Errorf("%w: import %s already promoted", ErrInvalidDraft, id)
	}

	var l listing.Listing
	if err := json.Unmarshal(entry.ListingDraft, &l); err != nil {
		return 0, fmt.Errorf("%w: decoding draft %s: %v", ErrInvalidDraft, id, err)
	}
	// Extractor-only fields are not listing attributes.
	delete(l.Extra, "sourceUrl")
	delete(l.Extra, "confidence")

	listingID, err := listings.Upsert(ctx, &l)
	if err != nil {
		return 0, fmt.Errorf("promoting import %s: %w", id, err)
	}

	if err := s.queue.SetStatus(ctx, id, StatusPromoted); err != nil {
		return listingID, fmt.Errorf("marking import %s promoted: %w", id, err)
	}

	slog.Info("import promoted", "id", id, "listing_id", listingID)
	return listingID, nil
}

// Prune removes entries older than retention. See Queue.Prune.
func (s *Service) Prune(ctx context.Context, retention time.Duration, includePending bool) (int, error) {
	if !Configured(s.queue) {
		return 0, ErrNotConfigured
	}
	return s.queue.Prune(ctx, s.now().Add(-retention), includePending)
}
