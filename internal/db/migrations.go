package db

import (
	"fmt"
)

// sqliteMigrations is the idempotent schema bootstrap for SQLite.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		mls_id        TEXT    UNIQUE,
		type          TEXT    NOT NULL DEFAULT 'sale',
		status        TEXT    NOT NULL DEFAULT 'Active',
		address       TEXT    NOT NULL,
		city          TEXT,
		state         TEXT,
		zip           TEXT,
		price         REAL,
		rent_monthly  REAL,
		beds          REAL,
		baths         REAL,
		sqft          INTEGER,
		lot_size      REAL,
		year_built    INTEGER,
		garage        INTEGER,
		hoa_monthly   REAL,
		property_type TEXT,
		neighborhood  TEXT,
		description   TEXT,
		features      TEXT,
		rooms         TEXT,
		images        TEXT,
		videos        TEXT,
		extra         TEXT,
		listing_date  TEXT,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
	`CREATE TABLE IF NOT EXISTS imports (
		seq           INTEGER PRIMARY KEY AUTOINCREMENT,
		id            TEXT    NOT NULL,
		status        TEXT    NOT NULL DEFAULT 'pending',
		source_url    TEXT    NOT NULL DEFAULT '',
		listing_draft TEXT    NOT NULL,
		confidence    TEXT,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_imports_id ON imports(id)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id         TEXT    PRIMARY KEY,
		name       TEXT    NOT NULL DEFAULT '',
		email      TEXT    NOT NULL DEFAULT '',
		phone      TEXT    NOT NULL DEFAULT '',
		message    TEXT    NOT NULL DEFAULT '',
		listing_id INTEGER,
		source     TEXT    NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT    PRIMARY KEY,
		lead_id    TEXT,
		transcript TEXT    NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// postgresMigrations mirrors sqliteMigrations for PostgreSQL.
var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id            BIGSERIAL PRIMARY KEY,
		mls_id        TEXT UNIQUE,
		type          TEXT NOT NULL DEFAULT 'sale',
		status        TEXT NOT NULL DEFAULT 'Active',
		address       TEXT NOT NULL,
		city          TEXT,
		state         TEXT,
		zip           TEXT,
		price         DOUBLE PRECISION,
		rent_monthly  DOUBLE PRECISION,
		beds          DOUBLE PRECISION,
		baths         DOUBLE PRECISION,
		sqft          BIGINT,
		lot_size      DOUBLE PRECISION,
		year_built    BIGINT,
		garage        BIGINT,
		hoa_monthly   DOUBLE PRECISION,
		property_type TEXT,
		neighborhood  TEXT,
		description   TEXT,
		features      JSONB,
		rooms         JSONB,
		images        JSONB,
		videos        JSONB,
		extra         JSONB,
		listing_date  TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
	`CREATE TABLE IF NOT EXISTS imports (
		seq           BIGSERIAL PRIMARY KEY,
		id            TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'pending',
		source_url    TEXT NOT NULL DEFAULT '',
		listing_draft JSONB NOT NULL,
		confidence    JSONB,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_imports_id ON imports(id)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		message    TEXT NOT NULL DEFAULT '',
		listing_id BIGINT,
		source     TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		lead_id    TEXT,
		transcript JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate runs the schema bootstrap for the DB's dialect. Every statement is
// idempotent, so it is safe to run on every start.
func (d *DB) Migrate() error {
	migrations := sqliteMigrations
	if d.Dialect == Postgres {
		migrations = postgresMigrations
	}

	for i, m := range migrations {
		if _, err := d.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return nil
}
