// Package listing provides the published listing model and its relational store.
package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid is returned when a listing payload fails validation.
var ErrInvalid = errors.New("invalid listing")

// Listing types.
const (
	TypeSale   = "sale"
	TypeRental = "rental"
)

// Listing statuses. Only Active listings are served publicly.
const (
	StatusActive   = "Active"
	StatusPending  = "Pending"
	StatusSold     = "Sold"
	StatusInactive = "Inactive"
)

const dateLayout = "2006-01-02"

// Listing is a published property record keyed by its MLS number.
type Listing struct {
	ID           int64                      `json:"id"`
	MlsID        *string                    `json:"mlsId"`
	Type         string                     `json:"type"`
	Status       string                     `json:"status"`
	Address      string                     `json:"address"`
	City         *string                    `json:"city"`
	State        *string                    `json:"state"`
	Zip          *string                    `json:"zip"`
	Price        *float64                   `json:"price"`
	RentMonthly  *float64                   `json:"rentMonthly"`
	Beds         *float64                   `json:"beds"`
	Baths        *float64                   `json:"baths"`
	Sqft         *int64                     `json:"sqft"`
	LotSize      *float64                   `json:"lotSize"`
	YearBuilt    *int64                     `json:"yearBuilt"`
	Garage       *int64                     `json:"garage"`
	HOAMonthly   *float64                   `json:"hoaMonthly"`
	PropertyType *string                    `json:"propertyType"`
	Neighborhood *string                    `json:"neighborhood"`
	Description  *string                    `json:"description"`
	Features     []json.RawMessage          `json:"features"`
	Rooms        []json.RawMessage          `json:"rooms"`
	Images       []string                   `json:"images"`
	Videos       []string                   `json:"videos"`
	Extra        map[string]json.RawMessage `json:"extra,omitempty"`
	ListingDate  *string                    `json:"listingDate"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
}

// knownFields are the JSON keys that map onto typed columns.
var knownFields = map[string]bool{
	"id": true, "mlsId": true, "type": true, "status": true, "address": true,
	"city": true, "state": true, "zip": true, "price": true, "rentMonthly": true,
	"beds": true, "baths": true, "sqft": true, "lotSize": true, "yearBuilt": true,
	"garage": true, "hoaMonthly": true, "propertyType": true, "neighborhood": true,
	"description": true, "features": true, "rooms": true, "images": true,
	"videos": true, "extra": true, "listingDate": true, "createdAt": true,
	"updatedAt": true,
}

// UnmarshalJSON decodes the typed fields and collects any unrecognized keys
// into Extra. Keys given explicitly under "extra" win over top-level ones.
func (l *Listing) UnmarshalJSON(data []byte) error {
	type plain Listing
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	for k, v := range all {
		if knownFields[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		if _, ok := p.Extra[k]; !ok {
			p.Extra[k] = v
		}
	}

	*l = Listing(p)
	return nil
}

// Normalize trims fields, applies defaults and validates the listing.
// Empty optional strings become nil so they are stored as NULL.
func (l *Listing) Normalize() error {
	l.Address = strings.TrimSpace(l.Address)
	if l.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalid)
	}

	switch strings.ToLower(strings.TrimSpace(l.Type)) {
	case "", TypeSale, "for sale":
		l.Type = TypeSale
	case TypeRental, "rent", "for rent", "lease":
		l.Type = TypeRental
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, l.Type)
	}

	status, ok := canonicalStatus(l.Status)
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, l.Status)
	}
	l.Status = status

	for _, s := range []**string{&l.MlsID, &l.City, &l.State, &l.Zip, &l.PropertyType, &l.Neighborhood, &l.Description} {
		*s = trimOrNil(*s)
	}

	if l.ListingDate = trimOrNil(l.ListingDate); l.ListingDate != nil {
		d, err := parseListingDate(*l.ListingDate)
		if err != nil {
			return fmt.Errorf("%w: listingDate %q: %v", ErrInvalid, *l.ListingDate, err)
		}
		l.ListingDate = &d
	}

	return nil
}

// canonicalStatus maps a status in any case to its stored spelling.
// An empty status defaults to Active.
func canonicalStatus(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return StatusActive, true
	case "pending":
		return StatusPending, true
	case "sold":
		return StatusSold, true
	case "inactive":
		return StatusInactive, true
	}
	return "", false
}

// parseListingDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns
// the date part. Stored dates sort chronologically as text.
func parseListingDate(s string) (string, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Format(dateLayout), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", fmt.Errorf("want YYYY-MM-DD")
	}
	return t.UTC().Format(dateLayout), nil
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
