package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Last.fm API key and the user whose charts are served
	LastFM LastFMConfig

	// ExpirationTime is the max-age sent with every chart, in seconds
	ExpirationTime int

	// Addr is the HTTP listen address
	// Default: ":8080"
	Addr string

	// CoverTimeout bounds a single cover download
	// Default: 5s
	CoverTimeout time.Duration

	// CoverConcurrency is how many covers a chart fetches at once
	// Default: 1 (sequential)
	CoverConcurrency int

	// MaxTiles caps the number of tiles in one chart
	// Default: 400
	MaxTiles int

	// HistoryDB is the SQLite file charts are logged to; empty disables the log
	// Default: ~/.local/share/albumgrid/history.db
	HistoryDB string

	expirationSet bool
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey string
	User   string

	// BaseURL overrides the API root, mainly for tests
	BaseURL string
}

// Load reads configuration from .env, config file and environment
func Load() (*Config, error) {
	// A missing .env is fine; variables may come from the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return load(viper.New(), getConfigDir(), ".")
}

func load(v *viper.Viper, configPaths ...string) (*Config, error) {
	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	// Set defaults
	v.SetDefault("addr", ":8080")
	v.SetDefault("cover_timeout", "5s")
	v.SetDefault("cover_concurrency", 1)
	v.SetDefault("max_tiles", 400)
	v.SetDefault("history_db", filepath.Join(GetDataDir(), "history.db"))

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// ALBUMGRID_ADDR, ALBUMGRID_COVER_TIMEOUT, ...
	v.SetEnvPrefix("ALBUMGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments
	_ = v.BindEnv("lastfm.api_key", "LASTFM_API_KEY")
	_ = v.BindEnv("lastfm.user", "LASTFM_USER")
	_ = v.BindEnv("expiration_time", "EXPIRATION_TIME")

	cfg := &Config{
		LastFM: LastFMConfig{
			APIKey:  v.GetString("lastfm.api_key"),
			User:    v.GetString("lastfm.user"),
			BaseURL: v.GetString("lastfm.base_url"),
		},
		Addr:             v.GetString("addr"),
		CoverConcurrency: v.GetInt("cover_concurrency"),
		MaxTiles:         v.GetInt("max_tiles"),
		HistoryDB:        v.GetString("history_db"),
	}

	timeout, err := time.ParseDuration(v.GetString("cover_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid cover_timeout: %w", err)
	}
	cfg.CoverTimeout = timeout

	if raw := strings.TrimSpace(v.GetString("expiration_time")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid expiration_time %q: must be a number of seconds", raw)
		}
		cfg.ExpirationTime = seconds
		cfg.expirationSet = true
	}

	return cfg, nil
}

// Validate reports every missing or invalid setting the server needs.
func (c *Config) Validate() error {
	var missing []string
	if c.LastFM.APIKey == "" {
		missing = append(missing, "LASTFM_API_KEY")
	}
	if c.LastFM.User == "" {
		missing = append(missing, "LASTFM_USER")
	}
	if !c.expirationSet {
		missing = append(missing, "EXPIRATION_TIME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.ExpirationTime < 0 {
		return fmt.Errorf("expiration_time must not be negative, got %d", c.ExpirationTime)
	}
	if c.CoverTimeout <= 0 {
		return fmt.Errorf("cover_timeout must be positive, got %s", c.CoverTimeout)
	}
	if c.CoverConcurrency < 1 {
		return fmt.Errorf("cover_concurrency must be at least 1, got %d", c.CoverConcurrency)
	}
	if c.MaxTiles < 1 {
		return fmt.Errorf("max_tiles must be at least 1, got %d", c.MaxTiles)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", "albumgrid")
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// GetDataDir returns the directory for the history database
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "albumgrid")
}
