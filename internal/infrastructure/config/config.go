package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all daemon configuration.
type Config struct {
	Server    ServerConfig
	Broker    BrokerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds the HTTP/WebSocket listener configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// BrokerConfig holds service-broker configuration.
type BrokerConfig struct {
	// WellKnownName is the name the root dispatcher is installed under.
	WellKnownName string `envconfig:"SM_NAME" default:"sm:"`
	// MaxSessions caps concurrent sessions on the root dispatcher's port.
	MaxSessions uint32 `envconfig:"SM_MAX_SESSIONS" default:"64"`
	// SeedServices pre-registers service names at bring-up. Entries are
	// "name" or "name=max_sessions".
	SeedServices []string `envconfig:"SM_SEED_SERVICES"`
	// SeedMaxSessions is the capacity for seeded services without an
	// explicit "=max_sessions" suffix.
	SeedMaxSessions uint32 `envconfig:"SM_SEED_MAX_SESSIONS" default:"16"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds HTTP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Seed is one pre-registered service parsed from BrokerConfig.
type Seed struct {
	Name        string
	MaxSessions uint32
}

// Seeds parses SeedServices into (name, capacity) pairs. Malformed
// capacity suffixes fall back to SeedMaxSessions.
func (b BrokerConfig) Seeds() []Seed {
	seeds := make([]Seed, 0, len(b.SeedServices))
	for _, entry := range b.SeedServices {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, suffix, found := strings.Cut(entry, "=")
		max := b.SeedMaxSessions
		if found {
			if n, err := strconv.ParseUint(suffix, 10, 32); err == nil && n > 0 {
				max = uint32(n)
			}
		}
		seeds = append(seeds, Seed{Name: name, MaxSessions: max})
	}
	return seeds
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8600",
			Host: "0.0.0.0",
		},
		Broker: BrokerConfig{
			WellKnownName:   "sm:",
			MaxSessions:     64,
			SeedMaxSessions: 16,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
