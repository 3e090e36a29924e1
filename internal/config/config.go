package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mrlokans/mazo/internal/apperr"
)

type (
	Config struct {
		HTTP
		Global
		Store
		Google
		XLSX
		Database
		Speech
		Workspace
		Tasks
		Reconcile
		Audit
		Admin
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Store struct {
		Backend        string // google, xlsx or memory
		MaxRetries     int
		InitialBackoff time.Duration
		MaxBackoff     time.Duration
		CallTimeout    time.Duration
	}
	Google struct {
		SpreadsheetID       string
		ServiceAccountEmail string
		PrivateKey          string
	}
	XLSX struct {
		Path string
	}
	Database struct {
		Path string
	}
	Speech struct {
		APIKey  string
		BaseURL string
	}
	Workspace struct {
		OwnerEmail       string
		SeedFile         string // .xlsx or .csv with sourceText/targetText columns
		ProvisionOnStart bool
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		RepairDelay       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Reconcile struct {
		Enabled         bool
		Schedule        string // Cron format: "*/5 * * * *" = every 5 minutes
		MinAge          time.Duration
		MaxAttempts     int
		CleanupSchedule string
	}
	Audit struct {
		RetentionDays int // Days to keep audit events and closed intents (default: 30)
	}
	Admin struct {
		TokenHash        string
		BcryptCost       int
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}
)

// LoadEnvFile loads variables from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Printf("Loaded environment from %s", path)
	return nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Store defaults
	v.SetDefault("store_backend", StoreBackendGoogle)
	v.SetDefault("store_max_retries", 4)
	v.SetDefault("store_initial_backoff", "500ms")
	v.SetDefault("store_max_backoff", "10s")
	v.SetDefault("store_call_timeout", "20s")
	v.SetDefault("xlsx_path", DefaultXLSXPath)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("tts_base_url", "https://texttospeech.googleapis.com")
	v.SetDefault("workspace_provision_on_start", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_repair_delay", "30s")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Reconciliation defaults
	v.SetDefault("reconcile_enabled", true)
	v.SetDefault("reconcile_schedule", "*/5 * * * *")
	v.SetDefault("reconcile_min_age", "2m")
	v.SetDefault("reconcile_max_attempts", 10)
	v.SetDefault("reconcile_cleanup_schedule", "0 3 * * *")
	v.SetDefault("audit_retention_days", 30)

	// Admin defaults
	v.SetDefault("admin_bcrypt_cost", 12)
	v.SetDefault("admin_max_login_attempts", 5)
	v.SetDefault("admin_rate_limit_window", "15m")
	v.SetDefault("admin_lockout_duration", "30m")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Store: Store{
			Backend:        strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
			MaxRetries:     v.GetInt("STORE_MAX_RETRIES"),
			InitialBackoff: v.GetDuration("STORE_INITIAL_BACKOFF"),
			MaxBackoff:     v.GetDuration("STORE_MAX_BACKOFF"),
			CallTimeout:    v.GetDuration("STORE_CALL_TIMEOUT"),
		},
		Google: Google{
			SpreadsheetID:       v.GetString("GOOGLE_SPREADSHEET_ID"),
			ServiceAccountEmail: v.GetString("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
			PrivateKey:          normalizePrivateKey(v.GetString("GOOGLE_PRIVATE_KEY")),
		},
		XLSX: XLSX{
			Path: v.GetString("XLSX_PATH"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Speech: Speech{
			APIKey:  v.GetString("TTS_API_KEY"),
			BaseURL: v.GetString("TTS_BASE_URL"),
		},
		Workspace: Workspace{
			OwnerEmail:       v.GetString("WORKSPACE_OWNER_EMAIL"),
			SeedFile:         v.GetString("WORKSPACE_SEED_FILE"),
			ProvisionOnStart: v.GetBool("WORKSPACE_PROVISION_ON_START"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			RepairDelay:       v.GetDuration("TASK_REPAIR_DELAY"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Reconcile: Reconcile{
			Enabled:         v.GetBool("RECONCILE_ENABLED"),
			Schedule:        v.GetString("RECONCILE_SCHEDULE"),
			MinAge:          v.GetDuration("RECONCILE_MIN_AGE"),
			MaxAttempts:     v.GetInt("RECONCILE_MAX_ATTEMPTS"),
			CleanupSchedule: v.GetString("RECONCILE_CLEANUP_SCHEDULE"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Admin: Admin{
			TokenHash:        v.GetString("ADMIN_TOKEN_HASH"),
			BcryptCost:       v.GetInt("ADMIN_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("ADMIN_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("ADMIN_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("ADMIN_LOCKOUT_DURATION"),
		},
	}
}

// Validate checks the settings the selected store backend needs. The speech
// key is checked on first use instead.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendGoogle:
		if c.Google.SpreadsheetID == "" {
			return apperr.MissingConfig("GOOGLE_SPREADSHEET_ID")
		}
		if c.Google.ServiceAccountEmail == "" {
			return apperr.MissingConfig("GOOGLE_SERVICE_ACCOUNT_EMAIL")
		}
		if c.Google.PrivateKey == "" {
			return apperr.MissingConfig("GOOGLE_PRIVATE_KEY")
		}
	case StoreBackendXLSX:
		if c.XLSX.Path == "" {
			return apperr.MissingConfig("XLSX_PATH")
		}
	case StoreBackendMemory:
	default:
		return &apperr.ConfigurationError{
			Key:     "STORE_BACKEND",
			Message: fmt.Sprintf("must be one of google, xlsx, memory (got %q)", c.Store.Backend),
		}
	}
	if c.Database.Path == "" {
		return apperr.MissingConfig("DATABASE_PATH")
	}
	if c.Store.MaxRetries < 0 {
		return &apperr.ConfigurationError{Key: "STORE_MAX_RETRIES", Message: "must not be negative"}
	}
	return nil
}

// normalizePrivateKey turns the literal "\n" sequences that env files use for
// PEM line breaks into real newlines.
func normalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"`)
	return strings.ReplaceAll(key, `\n`, "\n")
}
