package listing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evcraddock/homefront/internal/db"
)

// Repository reads and upserts listings.
type Repository struct {
	db *db.DB
}

// NewRepository creates a listing repository.
func NewRepository(d *db.DB) *Repository {
	return &Repository{db: d}
}

// upsertSQL inserts a listing or, when mls_id already exists, overwrites every
// mutable column. NULL mls_id never conflicts, so such listings always insert.
const upsertSQL = `INSERT INTO listings
	(mls_id, type, status, address, city, state, zip, price, rent_monthly,
	 beds, baths, sqft, lot_size, year_built, garage, hoa_monthly,
	 property_type, neighborhood, description, features, rooms, images, videos,
	 extra, listing_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (mls_id) DO UPDATE SET
		type = excluded.type,
		status = excluded.status,
		address = excluded.address,
		city = excluded.city,
		state = excluded.state,
		zip = excluded.zip,
		price = excluded.price,
		rent_monthly = excluded.rent_monthly,
		beds = excluded.beds,
		baths = excluded.baths,
		sqft = excluded.sqft,
		lot_size = excluded.lot_size,
		year_built = excluded.year_built,
		garage = excluded.garage,
		hoa_monthly = excluded.hoa_monthly,
		property_type = excluded.property_type,
		neighborhood = excluded.neighborhood,
		description = excluded.description,
		features = excluded.features,
		rooms = excluded.rooms,
		images = excluded.images,
		videos = excluded.videos,
		extra = excluded.extra,
		listing_date = excluded.listing_date,
		updated_at = excluded.updated_at
	RETURNING id`

const selectColumns = `id, mls_id, type, status, address, city, state, zip, price, rent_monthly,
	beds, baths, sqft, lot_size, year_built, garage, hoa_monthly,
	property_type, neighborhood, description, features, rooms, images, videos,
	extra, listing_date, created_at, updated_at`

// Upsert normalizes l and writes it in a single statement, returning the
// affected row's ID.
func (r *Repository) Upsert(ctx context.Context, l *Listing) (int64, error) {
	if err := l.Normalize(); err != nil {
		return 0, err
	}

	features, err := jsonColumn(l.Features, l.Features == nil)
	if err != nil {
		return 0, fmt.Errorf("encoding features: %w", err)
	}
	rooms, err := jsonColumn(l.Rooms, l.Rooms == nil)
	if err != nil {
		return 0, fmt.Errorf("encoding rooms: %w", err)
	}
	images, err := jsonColumn(l.Images, l.Images == nil)
	if err != nil {
		return 0, fmt.Errorf("encoding images: %w", err)
	}
	videos, err := jsonColumn(l.Videos, l.Videos == nil)
	if err != nil {
		return 0, fmt.Errorf("encoding videos: %w", err)
	}
	extra, err := jsonColumn(l.Extra, len(l.Extra) == 0)
	if err != nil {
		return 0, fmt.Errorf("encoding extra: %w", err)
	}

	now := time.Now().UTC()

	var id int64
	err = r.db.QueryRowContext(ctx, r.db.Rebind(upsertSQL),
		l.MlsID, l.Type, l.Status, l.Address, l.City, l.State, l.Zip,
		l.Price, l.RentMonthly, l.Beds, l.Baths, l.Sqft, l.LotSize,
		l.YearBuilt, l.Garage, l.HOAMonthly, l.PropertyType, l.Neighborhood,
		l.Description, features, rooms, images, videos, extra, l.ListingDate,
		now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting listing: %w", err)
	}

	return id, nil
}

// ListActive returns Active listings, newest listing date first with undated
// listings last, then most recently updated first.
func (r *Repository) ListActive(ctx context.Context) ([]*Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM listings
		WHERE status = ?
		ORDER BY listing_date DESC NULLS LAST, updated_at DESC`, selectColumns)

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), StatusActive)
	if err != nil {
		return nil, fmt.Errorf("listing active listings: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	listings := make([]*Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}

	return listings, nil
}

// GetByID returns a listing by its surrogate ID regardless of status.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Listing, error) {
	query := fmt.Sprintf("SELECT %s FROM listings WHERE id = ?", selectColumns)
	row := r.db.QueryRowContext(ctx, r.db.Rebind(query), id)

	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("listing %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying listing %d: %w", id, err)
	}

	return l, nil
}

// jsonColumn encodes v for a JSON column, or returns nil (SQL NULL) when the
// attribute was absent.
func jsonColumn(v interface{}, absent bool) (interface{}, error) {
	if absent {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// scanListing scans a listing from a database row.
func scanListing(row interface{ Scan(...interface{}) error }) (*Listing, error) {
	var l Listing
	var mlsID, city, state, zip, propertyType, neighborhood, description, listingDate sql.NullString
	var price, rent, beds, baths, lotSize, hoa sql.NullFloat64
	var sqft, yearBuilt, garage sql.NullInt64
	var features, rooms, images, videos, extra sql.NullString

	err := row.Scan(
		&l.ID, &mlsID, &l.Type, &l.Status, &l.Address, &city, &state, &zip,
		&price, &rent, &beds, &baths, &sqft, &lotSize, &yearBuilt, &garage, &hoa,
		&propertyType, &neighborhood, &description,
		&features, &rooms, &images, &videos, &extra,
		&listingDate, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.MlsID = nullString(mlsID)
	l.City = nullString(city)
	l.State = nullString(state)
	l.Zip = nullString(zip)
	l.PropertyType = nullString(propertyType)
	l.Neighborhood = nullString(neighborhood)
	l.Description = nullString(description)
	l.ListingDate = nullString(listingDate)
	l.Price = nullFloat(price)
	l.RentMonthly = nullFloat(rent)
	l.Beds = nullFloat(beds)
	l.Baths = nullFloat(baths)
	l.LotSize = nullFloat(lotSize)
	l.HOAMonthly = nullFloat(hoa)
	l.Sqft = nullInt(sqft)
	l.YearBuilt = nullInt(yearBuilt)
	l.Garage = nullInt(garage)

	cols := []struct {
		raw  sql.NullString
		dest interface{}
		name string
	}{
		{features, &l.Features, "features"},
		{rooms, &l.Rooms, "rooms"},
		{images, &l.Images, "images"},
		{videos, &l.Videos, "videos"},
		{extra, &l.Extra, "extra"},
	}
	for _, c := range cols {
		if !c.raw.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(c.raw.String), c.dest); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", c.name, err)
		}
	}

	return &l, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
