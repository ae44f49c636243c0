package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/evcraddock/homefront/internal/importqueue"
	"github.com/evcraddock/homefront/internal/lead"
	"github.com/evcraddock/homefront/internal/listing"
)

// printJSON marshals v as indented JSON and writes it to out.
func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printListingTable prints listings as a formatted table.
func printListingTable(out io.Writer, listings []*listing.Listing) error {
	if len(listings) == 0 {
		_, err := fmt.Fprintln(out, "No active listings.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tMLS\tADDRESS\tPRICE\tBEDS\tBATHS\tLISTED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, l := range listings {
		mls := "-"
		if l.MlsID != nil {
			mls = *l.MlsID
		}
		beds := "-"
		if l.Beds != nil {
			beds = fmt.Sprintf("%g", *l.Beds)
		}
		baths := "-"
		if l.Baths != nil {
			baths = fmt.Sprintf("%g", *l.Baths)
		}
		listed := "-"
		if l.ListingDate != nil {
			listed = *l.ListingDate
		}

		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, mls, truncate(l.Address, 40), listingPrice(l), beds, baths, listed); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(out, "\nTotal: %d listings\n", len(listings))
	return err
}

// listingPrice renders the price that matches the listing type.
func listingPrice(l *listing.Listing) string {
	if l.Type == listing.TypeRental {
		if l.RentMonthly != nil {
			return "$" + formatPrice(*l.RentMonthly) + "/mo"
		}
		return "-"
	}
	if l.Price != nil {
		return "$" + formatPrice(*l.Price)
	}
	return "-"
}

// printImportTable prints queued drafts as a formatted table.
func printImportTable(out io.Writer, entries []importqueue.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "Import queue is empty.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tADDRESS\tSOURCE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, e := range entries {
		address := "-"
		if d, err := importqueue.ParseDraft(e.ListingDraft); err == nil {
			address = d.Address
		}
		source := "-"
		if e.SourceURL != "" {
			source = truncate(e.SourceURL, 50)
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Status, e.CreatedAt.Format("2006-01-02 15:04"), truncate(address, 40), source); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(out, "\nTotal: %d imports\n", len(entries))
	return err
}

// printReceipt prints the result of a draft submission.
func printReceipt(out io.Writer, r *importqueue.Receipt) error {
	if !r.Wrote {
		_, err := fmt.Fprintf(out, "Draft %s accepted but not stored (%s).\n", r.ID, r.Reason)
		return err
	}
	_, err := fmt.Fprintf(out, "✓ Draft %s queued.\n  Preview: %s\n", r.ID, r.PreviewURL)
	return err
}

// printLeadTable prints leads as a formatted table.
func printLeadTable(out io.Writer, leads []*lead.Lead) error {
	if len(leads) == 0 {
		_, err := fmt.Fprintln(out, "No leads.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "RECEIVED\tNAME\tCONTACT\tLISTING\tMESSAGE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, l := range leads {
		name := l.Name
		if name == "" {
			name = "-"
		}
		contact := l.Email
		if contact == "" {
			contact = l.Phone
		}
		listingID := "-"
		if l.ListingID != nil {
			listingID = fmt.Sprintf("#%d", *l.ListingID)
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			l.CreatedAt.Format("2006-01-02 15:04"), name, contact, listingID, truncate(l.Message, 40)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(out, "\nTotal: %d leads\n", len(leads))
	return err
}

// formatPrice formats a dollar amount as a whole number with commas.
func formatPrice(dollars float64) string {
	s := fmt.Sprintf("%d", int64(math.Round(dollars)))

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// readInput reads file, or r when file is "-".
func readInput(r io.Reader, file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return data, nil
}
