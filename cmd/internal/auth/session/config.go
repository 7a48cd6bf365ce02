package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines all runtime configuration for the session subsystem.
//
// It controls access-token and refresh-token TTLs, refresh entropy size, and
// the symmetric signing secret. The struct is explicit and environment-driven
// so deployments can tune security parameters without code changes; it is
// passed to constructors and never read from globals afterwards.
type Config struct {
	// Issuer is the value set in the "iss" claim of access tokens.
	Issuer string

	// SigningSecret is the symmetric HS256 secret for access tokens.
	// Required; loaded once at startup and never mutated.
	SigningSecret string

	// AccessTokenTTL defines the lifetime of signed access tokens.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL defines the lifetime of stored refresh tokens.
	RefreshTokenTTL time.Duration

	// RefreshTokenBytes defines the number of random bytes used
	// to generate opaque refresh tokens.
	RefreshTokenBytes int
}

// DefaultConfig returns a secure default configuration suitable for development.
//
// Production environments should override values via environment variables.
func DefaultConfig() Config {
	return Config{
		Issuer:            "authd",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   7 * 24 * time.Hour,
		RefreshTokenBytes: 32,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - AUTHD_SIGNING_SECRET
//
// Optional (durations must be valid Go duration strings):
//   - AUTHD_AUTH_ISSUER
//   - AUTHD_ACCESS_TTL
//   - AUTHD_REFRESH_TTL
//   - AUTHD_REFRESH_TOKEN_BYTES
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("AUTHD_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("AUTHD_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("AUTHD_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenTTL = d
	}

	if v := os.Getenv("AUTHD_REFRESH_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenBytes = n
	}

	cfg.SigningSecret = os.Getenv("AUTHD_SIGNING_SECRET")
	if cfg.SigningSecret == "" {
		return Config{}, ErrConfig
	}

	// Refresh tokens must always outlive the access tokens minted from them.
	if cfg.RefreshTokenTTL < cfg.AccessTokenTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
