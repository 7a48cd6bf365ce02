package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hash returns a bcrypt hash of plain under the config's cost and policy.
func (c Config) Hash(plain string) (string, error) {
	if len(plain) < c.MinLength {
		return "", ErrPasswordTooShort
	}
	if c.MaxLength > 0 && len(plain) > c.MaxLength {
		return "", ErrPasswordTooLong
	}

	b, err := bcrypt.GenerateFromPassword([]byte(plain), c.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify checks plain against a stored bcrypt hash.
//
// A mismatch is (false, nil); an unparseable hash is (false, ErrInvalidHash).
// Policy bounds are not re-applied here: a stored hash predating a stricter
// policy must remain verifiable.
func (c Config) Verify(encoded, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}
