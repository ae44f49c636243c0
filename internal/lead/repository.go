package lead

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/homefront/internal/db"
)

// Repository appends and lists leads and conversations.
type Repository struct {
	db *db.DB
}

// NewRepository creates a lead repository.
func NewRepository(d *db.DB) *Repository {
	return &Repository{db: d}
}

// Create validates l, assigns an ID and inserts it.
func (r *Repository) Create(ctx context.Context, l *Lead) error {
	if err := l.Validate(); err != nil {
		return err
	}

	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()

	var listingID sql.NullInt64
	if l.ListingID != nil {
		listingID = sql.NullInt64{Int64: *l.ListingID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO leads (id, name, email, phone, message, listing_id, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		l.ID, l.Name, l.Email, l.Phone, l.Message, listingID, l.Source, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}
	return nil
}

// List returns leads newest first.
func (r *Repository) List(ctx context.Context) ([]*Lead, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, phone, message, listing_id, source, created_at
		FROM leads ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	leads := make([]*Lead, 0)
	for rows.Next() {
		var l Lead
		var listingID sql.NullInt64
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Message, &listingID, &l.Source, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		if listingID.Valid {
			l.ListingID = &listingID.Int64
		}
		leads = append(leads, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leads: %w", err)
	}
	return leads, nil
}

// CreateConversation validates c, assigns an ID and inserts it.
func (r *Repository) CreateConversation(ctx context.Context, c *Conversation) error {
	if err := c.Validate(); err != nil {
		return err
	}

	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO conversations (id, lead_id, transcript, created_at) VALUES (?, ?, ?, ?)`),
		c.ID, c.LeadID, string(c.Transcript), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}
	return nil
}

// ListConversations returns the conversations linked to a lead, oldest first.
func (r *Repository) ListConversations(ctx context.Context, leadID string) ([]*Conversation, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT id, lead_id, transcript, created_at FROM conversations
		WHERE lead_id = ? ORDER BY created_at`), leadID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	convs := make([]*Conversation, 0)
	for rows.Next() {
		var c Conversation
		var lead sql.NullString
		var transcript string
		if err := rows.Scan(&c.ID, &lead, &transcript, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		if lead.Valid {
			c.LeadID = &lead.String
		}
		c.Transcript = []byte(transcript)
		convs = append(convs, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return convs, nil
}
