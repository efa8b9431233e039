// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSessionSecretLength is the minimum accepted SESSION_SECRET length (256 bits).
const MinSessionSecretLength = 32

var weakSecrets = []string{"secret", "password", "test", "admin", "default", "changeme"}

// Config is the process configuration for cmd/api.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	Version  string `env:"VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP HTTPConfig

	DB DBConfig

	Session SessionConfig

	Comments CommentConfig

	Login LoginConfig

	CSP CSPConfig

	// TraceSampleRatio is the fraction of new traces recorded (0..1).
	TraceSampleRatio float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"1"`

	// SecurityConfigPath optionally points to a YAML password policy file.
	SecurityConfigPath string `env:"SECURITY_CONFIG"`
}

// HTTPConfig bounds individual requests.
type HTTPConfig struct {
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	MaxBodyBytes   int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	// TrustedProxies lists reverse proxies (IP or CIDR) whose X-Forwarded-For is believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// DBConfig selects and tunes the database.
type DBConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	URL             string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"blog.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"30m"`
}

// SessionConfig controls the login cookie and admin tokens.
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// CommentConfig is the per-user comment throttle. A zero rate turns it off.
type CommentConfig struct {
	RatePerMinute float64 `env:"COMMENT_RATE_PER_MINUTE" envDefault:"0"`
	Burst         int     `env:"COMMENT_BURST" envDefault:"5"`
}

// LoginConfig is the per-IP limit on credential submissions.
type LoginConfig struct {
	RateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	RateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
}

// CSPConfig toggles the Content-Security-Policy header.
type CSPConfig struct {
	Enabled    bool `env:"CSP_ENABLED" envDefault:"true"`
	ReportOnly bool `env:"CSP_REPORT_ONLY" envDefault:"false"`
}

// Load parses the process environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case "postgres":
		if c.DB.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	case "sqlite":
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}

	if err := ValidateSessionSecret(c.Session.Secret); err != nil {
		errs = append(errs, err)
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Comments.RatePerMinute < 0 {
		errs = append(errs, errors.New("COMMENT_RATE_PER_MINUTE must not be negative"))
	}
	if c.Comments.RatePerMinute > 0 && c.Comments.Burst < 1 {
		errs = append(errs, errors.New("COMMENT_BURST must be at least 1 when comments are rate limited"))
	}
	if c.Login.RateLimit < 1 || c.Login.RateWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive"))
	}
	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		errs = append(errs, errors.New("TRACE_SAMPLE_RATIO must be between 0 and 1"))
	}

	return errors.Join(errs...)
}

// ValidateSessionSecret rejects empty, short and well-known secrets.
func ValidateSessionSecret(secret string) error {
	if secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(secret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", MinSessionSecretLength)
	}
	lower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if strings.Trim(lower, "0123456789") == weak || strings.Repeat(weak, len(lower)/max(len(weak), 1)) == lower {
			return fmt.Errorf("SESSION_SECRET must not be a common weak value")
		}
	}
	return nil
}
