package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override file-based settings.
const (
	EnvCredentialsFile = "GBP_CREDENTIALS_FILE"
	EnvTokenFile       = "GBP_TOKEN_FILE"
	EnvRedirectURI     = "GBP_REDIRECT_URI"
)

const appName = "gbp-toolkit"

// Config holds all gbp-toolkit configuration.
type Config struct {
	Auth    AuthConfig    `toml:"auth"`
	API     APIConfig     `toml:"api"`
	Reviews ReviewsConfig `toml:"reviews"`
}

// AuthConfig holds OAuth credential and token locations.
type AuthConfig struct {
	CredentialsFile string `toml:"credentials_file"`
	TokenFile       string `toml:"token_file"`
	RedirectURI     string `toml:"redirect_uri"`
	// TokenStore selects where tokens are persisted: "file" or "keyring".
	TokenStore string `toml:"token_store"`
	// CallbackServer captures the authorization code on the redirect URI
	// instead of asking for it on stdin.
	CallbackServer bool `toml:"callback_server"`
}

// APIConfig holds Business Profile API client settings.
type APIConfig struct {
	BusinessEndpoint    string  `toml:"business_endpoint"`
	PerformanceEndpoint string  `toml:"performance_endpoint"`
	LocationsPageSize   int     `toml:"locations_page_size"`
	ReviewsPageSize     int     `toml:"reviews_page_size"`
	RequestsPerSecond   float64 `toml:"requests_per_second"`
	Burst               int     `toml:"burst"`
}

// ReviewsConfig holds review helper defaults.
type ReviewsConfig struct {
	ReplyTemplate string `toml:"reply_template"`
	RecentDays    int    `toml:"recent_days"`
}

const (
	TokenStoreFile    = "file"
	TokenStoreKeyring = "keyring"
)

func defaults() Config {
	return Config{
		Auth: AuthConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
			RedirectURI:     "http://localhost:8080/callback",
			TokenStore:      TokenStoreFile,
		},
		API: APIConfig{
			LocationsPageSize: 100,
			ReviewsPageSize:   50,
			Burst:             1,
		},
		Reviews: ReviewsConfig{
			ReplyTemplate: "Thank you for your review!",
			RecentDays:    30,
		},
	}
}

// Load reads config from path and applies GBP_* environment overrides. If
// path is empty or the file does not exist, defaults are used.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvCredentialsFile); v != "" {
		cfg.Auth.CredentialsFile = v
	}
	if v := os.Getenv(EnvTokenFile); v != "" {
		cfg.Auth.TokenFile = v
	}
	if v := os.Getenv(EnvRedirectURI); v != "" {
		cfg.Auth.RedirectURI = v
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Auth.TokenStore {
	case TokenStoreFile, TokenStoreKeyring:
	default:
		return fmt.Errorf("invalid token_store %q (use %q or %q)", c.Auth.TokenStore, TokenStoreFile, TokenStoreKeyring)
	}
	if c.API.LocationsPageSize < 0 || c.API.ReviewsPageSize < 0 {
		return fmt.Errorf("page sizes must not be negative")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	return nil
}

// LoadEnv loads KEY=VALUE pairs from the given dotenv files (default ".env")
// into the process environment. Missing files are ignored and variables
// already set are not overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ConfigDir returns the gbp-toolkit config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}
