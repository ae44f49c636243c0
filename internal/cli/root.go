// Package cli defines the cobra command tree for homefront.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/evcraddock/homefront/internal/app"
	"github.com/evcraddock/homefront/internal/client"
	"github.com/evcraddock/homefront/internal/config"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "homefront",
		Short:         "Listings, leads and import drafts for a real-estate site",
		Long:          "Serve the homefront API, manage listings, and review property drafts captured by the browser extension.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "database DSN or SQLite path (default: HOMEFRONT_DATABASE_URL or ~/.config/homefront/homefront.db)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newListingsCmd(),
		newImportsCmd(),
		newLeadsCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// loadServerConfig loads server configuration and applies the --db flag.
func loadServerConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDB != "" {
		cfg.DatabaseURL = flagDB
	}
	return cfg, nil
}

// openApp wires the local database and import queue for commands that run
// without a server.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadServerConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

// closeApp closes the app, logging any error.
func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		slog.Warn("closing database", "error", err)
	}
}

// newAPIClient creates an HTTP client for the homefront API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getAdminToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}
