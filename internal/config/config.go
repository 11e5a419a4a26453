// Package config loads service settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Document store backends.
const (
	DocstoreFirestore = "firestore"
	DocstoreMemory    = "memory"
)

// Identity providers for the document API.
const (
	IdentityFirebase = "firebase"
	IdentityLocal    = "local"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8000"`

	// Relational store (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Sessions, token cache and rate limits (Redis)
	RedisURL      string `env:"REDIS_URL,required,notEmpty"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Document store
	DocstoreBackend     string `env:"DOCSTORE_BACKEND" envDefault:"firestore"`
	FirestoreCollection string `env:"FIRESTORE_COLLECTION" envDefault:"todos"`

	// Identity
	IdentityProvider string `env:"IDENTITY_PROVIDER" envDefault:"firebase"`
	// Service-account credential file, read once at start.
	FirebaseCredentialsFile string        `env:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string        `env:"FIREBASE_PROJECT_ID"`
	JWTSecret               string        `env:"JWT_SECRET"`
	TokenTTL                time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	SessionTTL              time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	// Accept the unsigned X-Firebase-UID header as identity. Compatibility only.
	TrustUIDHeader bool `env:"TRUST_UID_HEADER" envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting (per authenticated user)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPM     int  `env:"RATE_LIMIT_RPM" envDefault:"120"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment reports APP_ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// NeedsFirebase reports whether a Firebase app must be initialized.
func (c *Config) NeedsFirebase() bool {
	return c.DocstoreBackend == DocstoreFirestore || c.IdentityProvider == IdentityFirebase
}

// GetCORSAllowedOrigins splits CORS_ALLOWED_ORIGINS on commas, dropping
// blanks.
func (c *Config) GetCORSAllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.DocstoreBackend {
	case DocstoreFirestore, DocstoreMemory:
	default:
		return fmt.Errorf("unknown DOCSTORE_BACKEND %q", c.DocstoreBackend)
	}

	switch c.IdentityProvider {
	case IdentityFirebase:
	case IdentityLocal:
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 bytes for the local identity provider")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	if c.NeedsFirebase() && c.FirebaseCredentialsFile == "" {
		return errors.New("FIREBASE_CREDENTIALS_FILE is required for firestore or firebase identity")
	}

	return nil
}

// Load parses environment variables and returns a Config.
// A .env file in the working directory is applied first when present;
// variables already set in the environment take precedence.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
