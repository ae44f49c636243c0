package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/homefront/internal/db"
)

// isolate runs the test in an empty directory so a stray .env is not loaded.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Dialect() != db.SQLite {
		t.Errorf("dialect = %q, want sqlite", cfg.Dialect())
	}
	if cfg.ImportBackend != BackendDocument {
		t.Errorf("backend = %q, want document", cfg.ImportBackend)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.Retention() != 90*24*time.Hour {
		t.Errorf("retention = %v, want 90 days", cfg.Retention())
	}
	if cfg.ImportToken != "" {
		t.Errorf("import token = %q, want empty", cfg.ImportToken)
	}
	if cfg.PreviewPath != "/admin/import-preview" {
		t.Errorf("preview path = %q", cfg.PreviewPath)
	}

	t.Setenv("HOME", t.TempDir())
	dsn, err := cfg.DSN()
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	if !strings.HasSuffix(dsn, filepath.Join(".config", "homefront", "homefront.db")) {
		t.Errorf("dsn = %q, want default sqlite path", dsn)
	}
}

func TestDSNRequiredForPostgres(t *testing.T) {
	cfg := Default()
	cfg.DBDriver = "postgres"
	if _, err := cfg.DSN(); err == nil {
		t.Error("expected error for postgres without a DSN")
	}

	cfg.DatabaseURL = "postgres://db/homefront"
	dsn, err := cfg.DSN()
	if err != nil || dsn != "postgres://db/homefront" {
		t.Errorf("dsn = %q, err = %v", dsn, err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("HOMEFRONT_DB_DRIVER", "postgres")
	t.Setenv("HOMEFRONT_DATABASE_URL", "postgres://localhost/homefront?sslmode=disable")
	t.Setenv("HOMEFRONT_IMPORT_TOKEN", "s3cret")
	t.Setenv("HOMEFRONT_IMPORT_BACKEND", "SQL")
	t.Setenv("HOMEFRONT_JSONBIN_BIN_ID", "bin123")
	t.Setenv("HOMEFRONT_PRUNE_SCHEDULE", "@daily")
	t.Setenv("HOMEFRONT_PRUNE_RETENTION_DAYS", "30")
	t.Setenv("HOMEFRONT_PORT", "9090")
	t.Setenv("HOMEFRONT_DEV_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Dialect() != db.Postgres {
		t.Errorf("dialect = %q", cfg.Dialect())
	}
	if cfg.ImportToken != "s3cret" {
		t.Errorf("token = %q", cfg.ImportToken)
	}
	if cfg.ImportBackend != BackendSQL {
		t.Errorf("backend = %q, want normalized sql", cfg.ImportBackend)
	}
	if cfg.JSONBinBinID != "bin123" || cfg.PruneSchedule != "@daily" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Retention() != 30*24*time.Hour || cfg.Port != 9090 || !cfg.DevMode {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	// godotenv never overrides variables that are already set, so make sure
	// this one is unset for the duration of the test.
	t.Setenv("HOMEFRONT_IMPORT_TOKEN", "")
	os.Unsetenv("HOMEFRONT_IMPORT_TOKEN")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HOMEFRONT_IMPORT_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ImportToken != "from-dotenv" {
		t.Errorf("token = %q, want from-dotenv", cfg.ImportToken)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "homefront.yaml")
	content := `
import_backend: dynamodb
dynamo_table: homefront-imports
preview_path: /admin/drafts
port: 3000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOMEFRONT_CONFIG", path)
	t.Setenv("HOMEFRONT_PORT", "4000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ImportBackend != BackendDynamo || cfg.DynamoTable != "homefront-imports" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PreviewPath != "/admin/drafts" {
		t.Errorf("preview path = %q", cfg.PreviewPath)
	}
	if cfg.Port != 4000 {
		t.Errorf("port = %d, want env to win over file", cfg.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{"bad backend", map[string]string{"HOMEFRONT_IMPORT_BACKEND": "redis"}, "unknown import backend"},
		{"bad driver", map[string]string{"HOMEFRONT_DB_DRIVER": "oracle"}, "oracle"},
		{"bad port", map[string]string{"HOMEFRONT_PORT": "eighty"}, "HOMEFRONT_PORT"},
		{"zero retention", map[string]string{"HOMEFRONT_PRUNE_RETENTION_DAYS": "0"}, "retention"},
		{"bad dev mode", map[string]string{"HOMEFRONT_DEV_MODE": "sometimes"}, "HOMEFRONT_DEV_MODE"},
		{"missing file", map[string]string{"HOMEFRONT_CONFIG": "/nonexistent/homefront.yaml"}, "reading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}
