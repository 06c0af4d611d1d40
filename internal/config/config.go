package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "ARCHIVE_CONFIG"

var ErrMissingCredential = errors.New("missing credential")

type Config struct {
	DatabaseURL string         `yaml:"database_url"`
	RedisURL    string         `yaml:"redis_url"`
	API         APIConfig      `yaml:"api"`
	Polygon     ProviderConfig `yaml:"polygon"`
	FMP         ProviderConfig `yaml:"fmp"`
	Backfill    BackfillConfig `yaml:"backfill"`
	Updater     UpdaterConfig  `yaml:"updater"`
	Log         LogConfig      `yaml:"log"`
}

type APIConfig struct {
	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type BackfillConfig struct {
	Days     int           `yaml:"days"`
	PageSize int           `yaml:"page_size"`
	Pause    time.Duration `yaml:"pause"`
	// Only restricts the run to one provider ("polygon" or "fmp").
	Only string `yaml:"only"`
}

type UpdaterConfig struct {
	Limit int `yaml:"limit"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		API:      APIConfig{Port: "8080"},
		Backfill: BackfillConfig{Days: 180, PageSize: 50, Pause: 150 * time.Millisecond},
		Updater:  UpdaterConfig{Limit: 100},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads .env (if present), then the YAML file named by ARCHIVE_CONFIG,
// then environment overrides.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.API.Port, "PORT")
	setString(&c.API.FrontendURL, "FRONTEND_URL")
	setString(&c.Polygon.APIKey, "POLYGON_API_KEY")
	setString(&c.Polygon.BaseURL, "POLYGON_BASE_URL")
	setString(&c.FMP.APIKey, "FMP_API_KEY")
	setString(&c.FMP.BaseURL, "FMP_BASE_URL")
	setString(&c.Backfill.Only, "ONLY")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if err := setInt(&c.Backfill.Days, "BACKFILL_DAYS"); err != nil {
		return err
	}
	if err := setInt(&c.Backfill.PageSize, "PAGE_SIZE"); err != nil {
		return err
	}
	if err := setInt(&c.Updater.Limit, "UPDATER_LIMIT"); err != nil {
		return err
	}

	if v := os.Getenv("BACKFILL_PAUSE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: BACKFILL_PAUSE: %w", err)
		}
		c.Backfill.Pause = d
	}

	c.Backfill.Only = strings.ToLower(strings.TrimSpace(c.Backfill.Only))
	return nil
}

func (c *Config) validate() error {
	if c.Backfill.Days < 1 {
		return fmt.Errorf("config: backfill days must be positive, got %d", c.Backfill.Days)
	}
	if c.Backfill.PageSize < 1 || c.Backfill.PageSize > 1000 {
		return fmt.Errorf("config: page size must be within [1, 1000], got %d", c.Backfill.PageSize)
	}
	if c.Backfill.Pause < 0 {
		return fmt.Errorf("config: backfill pause must not be negative")
	}
	if c.Updater.Limit < 1 {
		return fmt.Errorf("config: updater limit must be positive, got %d", c.Updater.Limit)
	}
	switch c.Backfill.Only {
	case "", "polygon", "fmp":
	default:
		return fmt.Errorf("config: unknown provider %q in ONLY", c.Backfill.Only)
	}
	return nil
}

// RequireDatabase reports a missing DATABASE_URL.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL", ErrMissingCredential)
	}
	return nil
}

// RequireProviders reports missing API keys for the providers a run will call.
// An empty only means both.
func (c *Config) RequireProviders(only string) error {
	var missing []string
	if (only == "" || only == "polygon") && c.Polygon.APIKey == "" {
		missing = append(missing, "POLYGON_API_KEY")
	}
	if (only == "" || only == "fmp") && c.FMP.APIKey == "" {
		missing = append(missing, "FMP_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}

// Since is the backfill lower bound relative to now.
func (c *Config) Since(now time.Time) time.Time {
	return now.Add(-time.Duration(c.Backfill.Days) * 24 * time.Hour)
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
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}
