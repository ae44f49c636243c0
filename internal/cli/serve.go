package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/homefront/internal/app"
	"github.com/evcraddock/homefront/internal/archive"
	"github.com/evcraddock/homefront/internal/logging"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start an HTTP server for listings, leads and the import queue. When HOMEFRONT_PRUNE_SCHEDULE is set, old queue entries are pruned on that cron schedule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: HOMEFRONT_PORT or 8080)")

	return cmd
}

func runServe(ctx context.Context, port int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadServerConfig()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Port = port
	}

	logging.Setup(cfg.DevMode)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if cfg.PruneSchedule != "" {
		pruner := archive.NewPruner(a.Imports, cfg.Retention(), false)
		if err := pruner.Start(cfg.PruneSchedule); err != nil {
			return err
		}
		defer pruner.Stop()
	}

	return a.Server.ListenAndServe(ctx, cfg.Port)
}
