// Package importqueue holds provisional listing drafts scraped by the browser
// extension until an operator reviews and promotes them.
package importqueue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/homefront/internal/docstore"
)

// Entry statuses.
const (
	StatusPending  = "pending"
	StatusPromoted = "promoted"
)

var (
	// ErrInvalidDraft is returned when a submitted draft fails validation.
	ErrInvalidDraft = errors.New("invalid draft")

	// ErrNotConfigured is returned when the queue's backing store has no credentials.
	ErrNotConfigured = docstore.ErrNotConfigured

	// ErrNotFound is returned when no entry has the requested ID.
	ErrNotFound = errors.New("import not found")
)

// Entry is one queued draft.
type Entry struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	SourceURL    string          `json:"sourceUrl,omitempty"`
	ListingDraft json.RawMessage `json:"listingDraft"`
	Confidence   json.RawMessage `json:"confidence,omitempty"`
}

// Draft is a validated submission.
type Draft struct {
	Raw        json.RawMessage
	Address    string
	SourceURL  string
	Confidence json.RawMessage
}

// ParseDraft validates a submitted payload. A draft needs a non-empty address
// and at least one of price or rentMonthly.
func ParseDraft(body []byte) (*Draft, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidDraft)
	}

	var address string
	if raw, ok := fields["address"]; ok {
		if err := json.Unmarshal(raw, &address); err != nil {
			return nil, fmt.Errorf("%w: address must be a string", ErrInvalidDraft)
		}
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidDraft)
	}

	if !present(fields["price"]) && !present(fields["rentMonthly"]) {
		return nil, fmt.Errorf("%w: price or rentMonthly is required", ErrInvalidDraft)
	}

	d := &Draft{
		Raw:     json.RawMessage(body),
		Address: address,
	}

	if raw, ok := fields["sourceUrl"]; ok {
		if err := json.Unmarshal(raw, &d.SourceURL); err != nil {
			return nil, fmt.Errorf("%w: sourceUrl must be a string", ErrInvalidDraft)
		}
	}
	if present(fields["confidence"]) {
		d.Confidence = fields["confidence"]
	}

	return d, nil
}

// present reports whether a raw JSON value carries something: not absent,
// not null and not an empty string.
func present(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || string(v) == "null" {
		return false
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// newID derives an entry ID from its creation time. IDs are not guaranteed
// unique across concurrent submissions.
func newID(now time.Time) string {
	return fmt.Sprintf("imp_%d", now.UnixMilli())
}
