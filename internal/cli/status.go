package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/homefront/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks that the stored admin token is accepted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runStatus(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	serverURL := getServerURL()
	token := getAdminToken()

	fmt.Fprintf(out, "Server:  %s\n", serverURL)

	c := client.New(serverURL, token)
	if err := c.Health(ctx); err != nil {
		fmt.Fprintf(out, "Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}

	if token == "" {
		fmt.Fprintln(out, "Token:   not configured")
		fmt.Fprintln(out, "\nRun 'homefront login' to store the admin token.")
		return nil
	}

	prefix := token
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	fmt.Fprintf(out, "Token:   %s…\n", prefix)

	// The leads list is guarded by the admin token.
	if _, err := c.ListLeads(ctx); err != nil {
		fmt.Fprintf(out, "Status:  ✗ token rejected (%v)\n", err)
		fmt.Fprintln(out, "\nRun 'homefront login' to store a new token.")
		return nil
	}

	fmt.Fprintln(out, "Status:  ✓ connected and authenticated")
	return nil
}
