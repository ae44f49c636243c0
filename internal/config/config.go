// Package config loads server configuration from .env, an optional YAML file
// and HOMEFRONT_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/evcraddock/homefront/internal/db"
	"github.com/evcraddock/homefront/internal/docstore"
	"github.com/evcraddock/homefront/internal/importqueue"
)

// Import queue backends.
const (
	BackendDocument = "document"
	BackendSQL      = "sql"
	BackendDynamo   = "dynamodb"
)

// DefaultRetentionDays is how long queue entries are kept by the prune job.
const DefaultRetentionDays = 90

// Config holds server configuration.
type Config struct {
	DBDriver    string `yaml:"db_driver"`
	DatabaseURL string `yaml:"database_url"`

	ImportToken   string `yaml:"import_token"`
	ImportBackend string `yaml:"import_backend"`
	PreviewPath   string `yaml:"preview_path"`

	JSONBinURL   string `yaml:"jsonbin_url"`
	JSONBinBinID string `yaml:"jsonbin_bin_id"`
	JSONBinKey   string `yaml:"jsonbin_key"`

	DynamoTable string `yaml:"dynamo_table"`

	PruneSchedule      string `yaml:"prune_schedule"`
	PruneRetentionDays int    `yaml:"prune_retention_days"`

	Port    int  `yaml:"port"`
	DevMode bool `yaml:"dev_mode"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DBDriver:           string(db.SQLite),
		ImportBackend:      BackendDocument,
		PreviewPath:        importqueue.DefaultPreviewPath,
		JSONBinURL:         docstore.DefaultBaseURL,
		PruneRetentionDays: DefaultRetentionDays,
		Port:               8080,
	}
}

// Load reads .env (if present), the YAML file named by HOMEFRONT_CONFIG (if
// set) and then environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("HOMEFRONT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	slog.Debug("loaded config file", "path", path)
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.DBDriver, "HOMEFRONT_DB_DRIVER")
	setString(&c.DatabaseURL, "HOMEFRONT_DATABASE_URL")
	setString(&c.ImportToken, "HOMEFRONT_IMPORT_TOKEN")
	setString(&c.ImportBackend, "HOMEFRONT_IMPORT_BACKEND")
	setString(&c.PreviewPath, "HOMEFRONT_PREVIEW_PATH")
	setString(&c.JSONBinURL, "HOMEFRONT_JSONBIN_URL")
	setString(&c.JSONBinBinID, "HOMEFRONT_JSONBIN_BIN_ID")
	setString(&c.JSONBinKey, "HOMEFRONT_JSONBIN_KEY")
	setString(&c.DynamoTable, "HOMEFRONT_DYNAMO_TABLE")
	setString(&c.PruneSchedule, "HOMEFRONT_PRUNE_SCHEDULE")

	if err := setInt(&c.PruneRetentionDays, "HOMEFRONT_PRUNE_RETENTION_DAYS"); err != nil {
		return err
	}
	if err := setInt(&c.Port, "HOMEFRONT_PORT"); err != nil {
		return err
	}
	if v := os.Getenv("HOMEFRONT_DEV_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HOMEFRONT_DEV_MODE: %w", err)
		}
		c.DevMode = b
	}
	return nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	if _, err := db.ParseDialect(c.DBDriver); err != nil {
		return err
	}

	c.ImportBackend = strings.ToLower(strings.TrimSpace(c.ImportBackend))
	switch c.ImportBackend {
	case "":
		c.ImportBackend = BackendDocument
	case BackendDocument, BackendSQL, BackendDynamo:
	default:
		return fmt.Errorf("unknown import backend %q (want %s, %s or %s)",
			c.ImportBackend, BackendDocument, BackendSQL, BackendDynamo)
	}

	if c.PruneRetentionDays <= 0 {
		return fmt.Errorf("prune retention must be positive, got %d days", c.PruneRetentionDays)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Retention returns the prune retention as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.PruneRetentionDays) * 24 * time.Hour
}

// DSN returns the database connection string. An unset SQLite DSN falls back
// to db.DefaultPath.
func (c *Config) DSN() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.Dialect() != db.SQLite {
		return "", fmt.Errorf("HOMEFRONT_DATABASE_URL is required for %s", c.Dialect())
	}
	return db.DefaultPath()
}

// Dialect returns the parsed database dialect. Validate must have passed.
func (c *Config) Dialect() db.Dialect {
	d, _ := db.ParseDialect(c.DBDriver)
	return d
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
