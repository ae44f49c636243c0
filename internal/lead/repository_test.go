package lead

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/evcraddock/homefront/internal/db"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()

	d, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	return NewRepository(d)
}

func TestCreateAndList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	listingID := int64(42)

	first := &Lead{Name: " Ana ", Email: "ana@example.com", Message: "Is it available?", ListingID: &listingID, Source: "listing-page"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", first.ID, err)
	}
	if first.Name != "Ana" {
		t.Errorf("name = %q, want trimmed", first.Name)
	}

	second := &Lead{Phone: "555-0100"}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}

	leads, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("got %d leads, want 2", len(leads))
	}
	if leads[0].ID != second.ID {
		t.Errorf("first lead = %s, want newest first", leads[0].ID)
	}
	if leads[1].ListingID == nil || *leads[1].ListingID != 42 {
		t.Errorf("listingId = %v, want 42", leads[1].ListingID)
	}
	if leads[0].ListingID != nil {
		t.Errorf("listingId = %v, want nil", *leads[0].ListingID)
	}
}

func TestCreateInvalid(t *testing.T) {
	tests := []struct {
		name string
		lead Lead
	}{
		{"no contact", Lead{Name: "Ana", Message: "hi"}},
		{"blank contact", Lead{Email: "  ", Phone: " "}},
		{"bad email", Lead{Email: "not-an-email"}},
	}

	repo := testRepo(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.lead
			if err := repo.Create(context.Background(), &l); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}

	leads, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(leads) != 0 {
		t.Errorf("got %d leads, want 0", len(leads))
	}
}

func TestConversations(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	l := &Lead{Email: "ana@example.com"}
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("create lead: %v", err)
	}

	transcript := json.RawMessage(`[{"role":"user","text":"Hi"},{"role":"agent","text":"Hello"}]`)
	c := &Conversation{LeadID: &l.ID, Transcript: transcript}
	if err := repo.CreateConversation(ctx, c); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	if c.ID == "" {
		t.Error("expected id")
	}

	anon := &Conversation{Transcript: json.RawMessage(`"just browsing"`)}
	if err := repo.CreateConversation(ctx, anon); err != nil {
		t.Fatalf("create anonymous conversation: %v", err)
	}

	convs, err := repo.ListConversations(ctx, l.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs))
	}
	if string(convs[0].Transcript) != string(transcript) {
		t.Errorf("transcript = %s", convs[0].Transcript)
	}
}

func TestConversationValidate(t *testing.T) {
	blank := ""
	tests := []struct {
		name    string
		conv    Conversation
		wantErr bool
	}{
		{"array", Conversation{Transcript: json.RawMessage(`[{"text":"hi"}]`)}, false},
		{"empty", Conversation{}, true},
		{"null", Conversation{Transcript: json.RawMessage(`null`)}, true},
		{"empty array", Conversation{Transcript: json.RawMessage(`[]`)}, true},
		{"empty string", Conversation{Transcript: json.RawMessage(`""`)}, true},
		{"not json", Conversation{Transcript: json.RawMessage(`{oops`)}, true},
		{"blank lead id", Conversation{Transcript: json.RawMessage(`"hi"`), LeadID: &blank}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.conv
			err := c.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
			if err == nil && c.LeadID != nil {
				t.Errorf("blank lead id should become nil")
			}
		})
	}
}
