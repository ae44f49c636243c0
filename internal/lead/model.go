// Package lead captures contact requests and chat transcripts from the site.
package lead

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid is returned when a lead or conversation fails validation.
var ErrInvalid = errors.New("invalid lead")

// Lead is a contact request, optionally about a specific listing.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	ListingID *int64    `json:"listingId"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is a chat transcript, linked to a lead when one was captured.
type Conversation struct {
	ID         string          `json:"id"`
	LeadID     *string         `json:"leadId"`
	Transcript json.RawMessage `json:"transcript"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Validate trims the contact fields and requires an email or phone.
func (l *Lead) Validate() error {
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(l.Email)
	l.Phone = strings.TrimSpace(l.Phone)
	l.Source = strings.TrimSpace(l.Source)

	if l.Email == "" && l.Phone == "" {
		return fmt.Errorf("%w: email or phone is required", ErrInvalid)
	}
	if l.Email != "" && !strings.Contains(l.Email, "@") {
		return fmt.Errorf("%w: email is malformed", ErrInvalid)
	}
	return nil
}

// Validate requires a non-empty transcript.
func (c *Conversation) Validate() error {
	t := strings.TrimSpace(string(c.Transcript))
	if t == "" || t == "null" || t == `""` || t == "[]" {
		return fmt.Errorf("%w: transcript is required", ErrInvalid)
	}
	if !json.Valid(c.Transcript) {
		return fmt.Errorf("%w: transcript must be JSON", ErrInvalid)
	}
	if c.LeadID != nil && strings.TrimSpace(*c.LeadID) == "" {
		c.LeadID = nil
	}
	return nil
}
