package cli

import (
	"github.com/spf13/cobra"
)

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Review contact requests",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			leads, err := newAPIClient().ListLeads(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), leads)
			}
			return printLeadTable(cmd.OutOrStdout(), leads)
		},
	})

	return cmd
}
