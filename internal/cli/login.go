package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the admin token",
		Long:  "Reads the import admin token from stdin and stores it with the server URL for later commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.InOrStdin(), cmd.OutOrStdout(), server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or http://localhost:8080)")

	return cmd
}

func runLogin(in io.Reader, out io.Writer, serverFlag string) error {
	if _, err := fmt.Fprint(out, "Paste the admin token: "); err != nil {
		return err
	}

	token, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading input: %w", err)
	}

	token = strings.TrimSpace(token)
	if err := validateAdminToken(token); err != nil {
		return err
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.AdminToken = token
	if serverFlag != "" {
		cfg.ServerURL = strings.TrimRight(serverFlag, "/")
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, err = fmt.Fprintln(out, "\n✓ Admin token saved.")
	return err
}

// validateAdminToken rejects empty tokens and tokens with embedded whitespace,
// which cannot be sent in a header.
func validateAdminToken(token string) error {
	if token == "" {
		return fmt.Errorf("no admin token provided")
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return fmt.Errorf("admin token must not contain whitespace")
	}
	return nil
}
