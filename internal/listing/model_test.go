package listing

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestUnmarshalCollectsExtra(t *testing.T) {
	data := []byte(`{
		"address": "12 Bay Rd",
		"price": 450000,
		"waterfront": true,
		"extra": {"waterfront": false, "zoning": "R1"}
	}`)

	var l Listing
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if l.Address != "12 Bay Rd" {
		t.Errorf("address = %q", l.Address)
	}
	if l.Price == nil || *l.Price != 450000 {
		t.Errorf("price = %v, want 450000", l.Price)
	}
	if string(l.Extra["waterfront"]) != "false" {
		t.Errorf("extra.waterfront = %s, want explicit value false", l.Extra["waterfront"])
	}
	if string(l.Extra["zoning"]) != `"R1"` {
		t.Errorf("extra.zoning = %s", l.Extra["zoning"])
	}
	if _, ok := l.Extra["address"]; ok {
		t.Error("known field leaked into extra")
	}
}

func TestUnmarshalNoExtra(t *testing.T) {
	var l Listing
	if err := json.Unmarshal([]byte(`{"address": "1 A St"}`), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.Extra != nil {
		t.Errorf("extra = %v, want nil", l.Extra)
	}
}

func TestNormalize(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name       string
		in         Listing
		wantErr    bool
		wantType   string
		wantStatus string
		wantDate   *string
	}{
		{
			name:       "defaults",
			in:         Listing{Address: " 1 Main St "},
			wantType:   TypeSale,
			wantStatus: StatusActive,
		},
		{
			name:       "rental aliases",
			in:         Listing{Address: "1 Main St", Type: "For Rent", Status: "pending"},
			wantType:   TypeRental,
			wantStatus: StatusPending,
		},
		{
			name:       "rfc3339 listing date",
			in:         Listing{Address: "1 Main St", ListingDate: str("2024-06-01T15:04:05Z")},
			wantType:   TypeSale,
			wantStatus: StatusActive,
			wantDate:   str("2024-06-01"),
		},
		{
			name:       "blank listing date becomes null",
			in:         Listing{Address: "1 Main St", ListingDate: str("  ")},
			wantType:   TypeSale,
			wantStatus: StatusActive,
		},
		{name: "missing address", in: Listing{Address: "  "}, wantErr: true},
		{name: "unknown type", in: Listing{Address: "1 Main St", Type: "auction"}, wantErr: true},
		{name: "unknown status", in: Listing{Address: "1 Main St", Status: "archived"}, wantErr: true},
		{name: "bad date", in: Listing{Address: "1 Main St", ListingDate: str("June 1")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.in
			err := l.Normalize()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("err = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Type != tt.wantType {
				t.Errorf("type = %q, want %q", l.Type, tt.wantType)
			}
			if l.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", l.Status, tt.wantStatus)
			}
			switch {
			case tt.wantDate == nil && l.ListingDate != nil:
				t.Errorf("listing date = %q, want nil", *l.ListingDate)
			case tt.wantDate != nil && (l.ListingDate == nil || *l.ListingDate != *tt.wantDate):
				t.Errorf("listing date = %v, want %q", l.ListingDate, *tt.wantDate)
			}
		})
	}
}

func TestNormalizeBlankOptionalsBecomeNil(t *testing.T) {
	blank := "  "
	l := Listing{Address: "1 Main St", MlsID: &blank, City: &blank}
	if err := l.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if l.MlsID != nil {
		t.Errorf("mls id = %q, want nil", *l.MlsID)
	}
	if l.City != nil {
		t.Errorf("city = %q, want nil", *l.City)
	}
}
