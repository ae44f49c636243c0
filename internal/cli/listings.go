package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newListingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "List and upsert published listings",
	}

	cmd.AddCommand(newListingsListCmd(), newListingsUpsertCmd())
	return cmd
}

func newListingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active listings",
		Long:  "List active listings in display order: newest listing date first, undated last.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := newAPIClient().ListListings(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), listings)
			}
			return printListingTable(cmd.OutOrStdout(), listings)
		},
	}
}

func newListingsUpsertCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Insert or update a listing from a JSON file",
		Long:  "Insert or update a listing. Listings with the same mlsId are overwritten; listings without one are always inserted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readJSONInput(cmd, file)
			if err != nil {
				return err
			}

			id, err := newAPIClient().UpsertListing(cmd.Context(), payload)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"ok": true, "id": id})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Listing #%d saved.\n", id)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file to read (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readJSONInput reads a JSON document from file, or stdin for "-".
func readJSONInput(cmd *cobra.Command, file string) (json.RawMessage, error) {
	data, err := readInput(cmd.InOrStdin(), file)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s does not contain valid JSON", file)
	}
	return json.RawMessage(data), nil
}
