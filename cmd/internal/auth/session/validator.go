package session

import (
	"context"
	"strings"
	"time"

	"authd/cmd/identity"
)

// Identity is the projection of a user handed to protected-resource
// handlers. It is a plain value threaded explicitly through calls, never
// attached to a request object.
type Identity struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Validator resolves inbound bearer credentials to live user identities.
//
// Access tokens verify statelessly, but the subject is re-checked against
// the directory on every call: tokens are not invalidated when an account is
// deleted, and this lookup is the only guard.
type Validator struct {
	tokens AccessTokenManager
	users  Directory
}

// NewValidator constructs a Validator over the given token manager and
// user directory.
func NewValidator(tokens AccessTokenManager, users Directory) *Validator {
	return &Validator{tokens: tokens, users: users}
}

// Resolve extracts the token from a "Bearer <token>" header value, verifies
// it, and resolves the subject to a user.
//
// Failure kinds: ErrMissingCredential (absent/malformed header),
// ErrInvalidSignature / ErrAccessTokenExpired (from verification), and
// ErrUserNotFound (account gone since issuance).
func (v *Validator) Resolve(ctx context.Context, rawHeaderValue string, now time.Time) (Identity, error) {
	token, ok := bearerToken(rawHeaderValue)
	if !ok {
		return Identity{}, ErrMissingCredential
	}

	claims, err := v.tokens.Verify(token, now)
	if err != nil {
		return Identity{}, err
	}

	u, err := v.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if identity.IsNotFound(err) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, err
	}

	return Identity{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}, nil
}

func bearerToken(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
