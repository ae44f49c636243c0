package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/evcraddock/homefront/internal/config"
	"github.com/evcraddock/homefront/internal/importqueue"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "test.db")
	cfg.ImportBackend = backend
	cfg.ImportToken = "s3cret"
	return cfg
}

func TestNewQueueBackends(t *testing.T) {
	tests := []struct {
		backend        string
		binID          string
		wantType       string
		wantConfigured bool
	}{
		{config.BackendDocument, "", "*importqueue.DocumentQueue", false},
		{config.BackendDocument, "bin123", "*importqueue.DocumentQueue", true},
		{config.BackendSQL, "", "*importqueue.SQLQueue", true},
		{config.BackendDynamo, "", "*importqueue.DynamoQueue", false},
	}

	for _, tt := range tests {
		t.Run(tt.backend+"/"+tt.binID, func(t *testing.T) {
			cfg := testConfig(t, tt.backend)
			cfg.JSONBinBinID = tt.binID
			cfg.JSONBinKey = "key"

			a, err := New(context.Background(), cfg)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			t.Cleanup(func() { _ = a.Close() })

			q, err := NewQueue(context.Background(), cfg, a.DB)
			if err != nil {
				t.Fatalf("queue: %v", err)
			}
			if got := typeName(q); got != tt.wantType {
				t.Errorf("queue type = %s, want %s", got, tt.wantType)
			}
			if importqueue.Configured(q) != tt.wantConfigured {
				t.Errorf("configured = %v, want %v", importqueue.Configured(q), tt.wantConfigured)
			}
		})
	}
}

func TestNewQueueUnknownBackend(t *testing.T) {
	cfg := testConfig(t, "redis")
	if _, err := NewQueue(context.Background(), cfg, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestAppServesSQLBackedImports(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, config.BackendSQL))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	r := httptest.NewRequest("GET", "/import/list", nil)
	w := httptest.NewRecorder()
	a.Server.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func typeName(q importqueue.Queue) string {
	switch q.(type) {
	case *importqueue.DocumentQueue:
		return "*importqueue.DocumentQueue"
	case *importqueue.SQLQueue:
		return "*importqueue.SQLQueue"
	case *importqueue.DynamoQueue:
		return "*importqueue.DynamoQueue"
	}
	return "unknown"
}
