// Package config loads the travel circle service settings from the
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/safetrip/travel-circle/internal/messaging"
)

// DefaultNotifierNATSURL is where cmd/notifier connects when
// CIRCLE_NATS_URL is unset.
const DefaultNotifierNATSURL = "nats://localhost:4222"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Candidate sources.
const (
	SourceFixture = "fixture"
	SourceRedis   = "redis"
)

// Config is the full runtime configuration of cmd/circled.
type Config struct {
	ListenAddr      string   `env:"CIRCLE_LISTEN_ADDR" envDefault:":8080"`
	StoreBackend    string   `env:"CIRCLE_STORE_BACKEND" envDefault:"bolt"`
	BoltPath        string   `env:"CIRCLE_BOLT_PATH" envDefault:"travel-circle.db"`
	RedisAddr       string   `env:"CIRCLE_REDIS_ADDR" envDefault:"localhost:6379"`
	DatabaseURL     string   `env:"CIRCLE_DATABASE_URL"`
	CandidateSource string   `env:"CIRCLE_CANDIDATE_SOURCE" envDefault:"fixture"`
	SameDestination bool     `env:"CIRCLE_SAME_DESTINATION_ONLY" envDefault:"false"`
	RateLimit       bool     `env:"CIRCLE_RATE_LIMIT" envDefault:"false"`
	CORSOrigins     []string `env:"CIRCLE_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	UserID          string   `env:"CIRCLE_USER_ID" envDefault:"current_user"`
	UserName        string   `env:"CIRCLE_USER_NAME" envDefault:"Current User"`

	NATS messaging.NATSConfig
}

// Notifier is the configuration of cmd/notifier.
type Notifier struct {
	NATS messaging.NATSConfig
}

// LoadNotifier parses the notifier settings. Unlike circled, the notifier
// always connects, so an unset URL falls back to a local server.
func LoadNotifier() (Notifier, error) {
	var cfg Notifier
	if err := env.Parse(&cfg); err != nil {
		return Notifier{}, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = DefaultNotifierNATSURL
	}
	cfg.NATS.Name += "-notifier"
	return cfg, nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and the settings they require.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendBolt:
		if strings.TrimSpace(c.BoltPath) == "" {
			return fmt.Errorf("config: CIRCLE_BOLT_PATH is required for the bolt backend")
		}
	case BackendRedis:
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("config: CIRCLE_DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.StoreBackend)
	}

	switch c.CandidateSource {
	case SourceFixture, SourceRedis:
	default:
		return fmt.Errorf("config: unknown candidate source %q", c.CandidateSource)
	}

	if c.NATS.Enabled() && c.NATS.ReconnectWait <= 0 {
		return fmt.Errorf("config: CIRCLE_NATS_RECONNECT_WAIT must be positive")
	}
	return nil
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c Config) NeedsRedis() bool {
	return c.StoreBackend == BackendRedis || c.CandidateSource == SourceRedis || c.RateLimit
}
