package password

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Config controls hashing cost and password policy.
type Config struct {
	// Cost is the bcrypt cost parameter.
	Cost int

	// MinLength/MaxLength bound accepted plaintext lengths (bytes).
	// MaxLength never exceeds 72, the bcrypt input limit.
	MinLength int
	MaxLength int
}

// DefaultConfig returns defaults suitable for development and most
// production deployments.
func DefaultConfig() Config {
	return Config{
		Cost:      bcrypt.DefaultCost,
		MinLength: 8,
		MaxLength: 72,
	}
}

// FromEnv loads Config from environment variables on top of defaults.
//
// Optional:
//   - AUTHD_PASSWORD_BCRYPT_COST (4..31)
//   - AUTHD_PASSWORD_MIN_LENGTH
//   - AUTHD_PASSWORD_MAX_LENGTH
//
// Returns ErrConfig if configuration is invalid.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("AUTHD_PASSWORD_BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return Config{}, ErrConfig
		}
		cfg.Cost = n
	}

	if v := os.Getenv("AUTHD_PASSWORD_MIN_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, ErrConfig
		}
		cfg.MinLength = n
	}

	if v := os.Getenv("AUTHD_PASSWORD_MAX_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 72 {
			return Config{}, ErrConfig
		}
		cfg.MaxLength = n
	}

	if cfg.MinLength > cfg.MaxLength {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
