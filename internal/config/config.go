package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Discord    DiscordConfig    `envPrefix:"DISCORD_"`
	Store      StoreConfig      `envPrefix:"STORE_"`
	Onboarding OnboardingConfig `envPrefix:"ONBOARDING_"`
	HTTP       HTTPConfig       `envPrefix:"HTTP_"`
	Metrics    MetricsConfig    `envPrefix:"METRICS_"`
	Log        LogConfig        `envPrefix:"LOG_"`
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Token   string `env:"TOKEN"`
	AppID   string `env:"APP_ID"`
	GuildID string `env:"GUILD_ID"` // Optional: for guild-specific commands

	// AssetBaseURL prefixes avatar paths in embeds; thumbnails are skipped when empty
	AssetBaseURL string `env:"ASSET_BASE_URL"`
}

// StoreConfig selects where profile records live. Records are created by
// signup, which runs outside this service; the memory backend starts empty
// and is meant for local runs and tests, seeded through SeedProfiles.
type StoreConfig struct {
	Backend    string `env:"BACKEND" envDefault:"memory"`
	RedisURL   string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"profiles.db"`

	// SeedProfiles creates missing records at startup, as "id:FirstName"
	// pairs separated by commas
	SeedProfiles []string `env:"SEED_PROFILES" envSeparator:","`
}

// ProfileSeed is one record to create at startup
type ProfileSeed struct {
	ID        string
	FirstName string
}

// Seeds parses SeedProfiles
func (c StoreConfig) Seeds() ([]ProfileSeed, error) {
	seeds := make([]ProfileSeed, 0, len(c.SeedProfiles))
	for _, entry := range c.SeedProfiles {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, firstName, _ := strings.Cut(entry, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("STORE_SEED_PROFILES entry %q has no ID", entry)
		}
		seeds = append(seeds, ProfileSeed{ID: id, FirstName: strings.TrimSpace(firstName)})
	}
	return seeds, nil
}

// OnboardingConfig tunes the commit
type OnboardingConfig struct {
	// CommitInterests adds the selected interests to the commit payload
	CommitInterests bool `env:"COMMIT_INTERESTS" envDefault:"false"`
}

// HTTPConfig configures the JSON API
type HTTPConfig struct {
	Enabled   bool   `env:"ENABLED" envDefault:"false"`
	Addr      string `env:"ADDR" envDefault:":8080"`
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"profile-onboarding"`
}

// MetricsConfig configures the Prometheus endpoint; empty Addr disables it
type MetricsConfig struct {
	Addr string `env:"ADDR"`
}

// LogConfig configures zap
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom parses configuration from the given variables only
func LoadFrom(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields each enabled shell needs
func (c *Config) Validate() error {
	if c.Discord.Enabled {
		if c.Discord.Token == "" {
			return fmt.Errorf("DISCORD_TOKEN is required")
		}
		if c.Discord.AppID == "" {
			return fmt.Errorf("DISCORD_APP_ID is required")
		}
	}
	if c.HTTP.Enabled && c.HTTP.JWTSecret == "" {
		return fmt.Errorf("HTTP_JWT_SECRET is required when the HTTP API is enabled")
	}
	if !c.Discord.Enabled && !c.HTTP.Enabled {
		return fmt.Errorf("at least one of DISCORD_ENABLED or HTTP_ENABLED must be true")
	}

	switch strings.ToLower(c.Store.Backend) {
	case BackendMemory, BackendRedis, BackendSQLite:
		c.Store.Backend = strings.ToLower(c.Store.Backend)
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if _, err := c.Store.Seeds(); err != nil {
		return err
	}

	return nil
}
