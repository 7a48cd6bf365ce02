package identity

import (
	"errors"

	"authd/cmd/security/password"
)

// identity delegates password hashing to cmd/security/password as the single
// source of truth for cost and policy. A baseline minimum length of 8 is
// enforced here even if the env policy is looser.

// HashPassword returns a bcrypt hash of plain under the effective policy.
func HashPassword(plain string) (string, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		// Treat invalid env as an operational error, not a weak fallback.
		return "", err
	}
	if cfg.MinLength < 8 {
		cfg.MinLength = 8
	}

	enc, err := cfg.Hash(plain)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooShort):
			return "", OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: "password too short"}
		case errors.Is(err, password.ErrPasswordTooLong):
			return "", OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: "password too long"}
		default:
			return "", err
		}
	}
	return enc, nil
}

// VerifyPassword checks a password against a stored bcrypt hash.
// A mismatch is (false, nil); only operational failures return an error.
func VerifyPassword(plain, encoded string) (bool, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return false, err
	}
	return cfg.Verify(encoded, plain)
}
