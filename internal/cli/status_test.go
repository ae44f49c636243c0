package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"authenticated", testToken, "✓ connected and authenticated"},
		{"wrong token", "not-the-token", "✗ token rejected"},
		{"no token", "", "Token:   not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testServer(t)
			t.Setenv("HOMEFRONT_ADMIN_TOKEN", tt.token)

			var out bytes.Buffer
			if err := runStatus(context.Background(), &out); err != nil {
				t.Fatalf("status: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.want)
			}
		})
	}
}

func TestStatusShortToken(t *testing.T) {
	testServer(t)
	t.Setenv("HOMEFRONT_ADMIN_TOKEN", "ab")

	// Should not panic with a short token
	if err := runStatus(context.Background(), new(bytes.Buffer)); err != nil {
		t.Fatalf("status with short token: %v", err)
	}
}

func TestStatusServerDown(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HOMEFRONT_SERVER_URL", "http://127.0.0.1:1")

	var out bytes.Buffer
	if err := runStatus(context.Background(), &out); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out.String(), "cannot reach server") {
		t.Errorf("output = %q", out.String())
	}
}
