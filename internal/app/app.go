// Package app assembles the database, import queue and HTTP server from
// configuration. The serve command, the Lambda entrypoint and the local CLI
// commands all start here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evcraddock/homefront/internal/config"
	"github.com/evcraddock/homefront/internal/db"
	"github.com/evcraddock/homefront/internal/docstore"
	"github.com/evcraddock/homefront/internal/importqueue"
	"github.com/evcraddock/homefront/internal/lead"
	"github.com/evcraddock/homefront/internal/listing"
	"github.com/evcraddock/homefront/internal/web"
)

// App holds the wired components.
type App struct {
	Config   *config.Config
	DB       *db.DB
	Listings *listing.Repository
	Leads    *lead.Repository
	Imports  *importqueue.Service
	Server   *web.Server
}

// New opens the database and builds the configured import queue.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	d, err := db.Open(cfg.Dialect(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	queue, err := NewQueue(ctx, cfg, d)
	if err != nil {
		if closeErr := d.Close(); closeErr != nil {
			slog.Warn("closing database", "error", closeErr)
		}
		return nil, err
	}

	a := &App{
		Config:   cfg,
		DB:       d,
		Listings: listing.NewRepository(d),
		Leads:    lead.NewRepository(d),
		Imports:  importqueue.NewService(queue, cfg.PreviewPath),
	}
	a.Server = web.NewServer(a.Listings, a.Leads, a.Imports, cfg.ImportToken)

	slog.Debug("app initialized",
		"db_driver", string(cfg.Dialect()),
		"import_backend", cfg.ImportBackend,
		"import_store_configured", importqueue.Configured(queue),
	)
	return a, nil
}

// NewQueue builds the import queue backend named by cfg.ImportBackend.
func NewQueue(ctx context.Context, cfg *config.Config, d *db.DB) (importqueue.Queue, error) {
	switch cfg.ImportBackend {
	case config.BackendSQL:
		return importqueue.NewSQLQueue(d), nil
	case config.BackendDynamo:
		if cfg.DynamoTable == "" {
			return importqueue.NewDynamoQueue(nil, ""), nil
		}
		client, err := importqueue.NewDynamoClient(ctx)
		if err != nil {
			return nil, err
		}
		return importqueue.NewDynamoQueue(client, cfg.DynamoTable), nil
	case config.BackendDocument, "":
		store := docstore.NewClient(cfg.JSONBinURL, cfg.JSONBinBinID, cfg.JSONBinKey)
		return importqueue.NewDocumentQueue(store), nil
	}
	return nil, fmt.Errorf("unknown import backend %q", cfg.ImportBackend)
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
