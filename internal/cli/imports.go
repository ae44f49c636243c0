package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/homefront/internal/archive"
	"github.com/evcraddock/homefront/internal/config"
)

func newImportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Review drafts captured by the browser extension",
	}

	cmd.AddCommand(
		newImportsListCmd(),
		newImportsSubmitCmd(),
		newImportsPromoteCmd(),
		newImportsPruneCmd(),
	)
	return cmd
}

func newImportsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			imports, err := newAPIClient().ListImports(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), imports)
			}
			return printImportTable(cmd.OutOrStdout(), imports)
		},
	}
}

func newImportsSubmitCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Queue a draft from a JSON file",
		Long:  "Queue a draft the way the browser extension does. The draft needs an address and a price or rentMonthly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readJSONInput(cmd, file)
			if err != nil {
				return err
			}

			receipt, err := newAPIClient().SubmitDraft(cmd.Context(), draft)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), receipt)
			}
			return printReceipt(cmd.OutOrStdout(), receipt)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file to read (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newImportsPromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <id>",
		Short: "Publish a queued draft as a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := newAPIClient().PromoteImport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"ok": true, "id": id, "importId": args[0]})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Import %s promoted to listing #%d.\n", args[0], id)
			return err
		},
	}
}

func newImportsPruneCmd() *cobra.Command {
	var (
		days           int
		includePending bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old drafts from the queue",
		Long:  "Remove queue entries older than the retention window. Runs against the configured import backend directly, not through the server. Pending drafts are kept unless --include-pending is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must be positive")
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			retention := a.Config.Retention()
			if days > 0 {
				retention = time.Duration(days) * 24 * time.Hour
			}

			n, err := archive.NewPruner(a.Imports, retention, includePending).RunOnce(cmd.Context())
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]int{"removed": n})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d import(s).\n", n)
			return err
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, fmt.Sprintf("retention in days (default: HOMEFRONT_PRUNE_RETENTION_DAYS or %d)", config.DefaultRetentionDays))
	cmd.Flags().BoolVar(&includePending, "include-pending", false, "also remove drafts that were never promoted")

	return cmd
}
