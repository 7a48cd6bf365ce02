package session

import (
	"context"
	"time"
)

// Record is a persisted refresh token.
//
// TokenHash is the hashed form of the opaque token (64 hex chars); the plain
// token exists only on the client. Validity is derived from ExpiresAt at
// read time and never stored.
type Record struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store abstracts persistence for refresh-token records.
//
// All operations are atomic at the record level; the session authority never
// needs a multi-record transaction because each of its operations issues at
// most one mutation. Deletes are idempotent: removing an absent record is
// not an error.
type Store interface {
	// Create inserts a new refresh-token record and returns its ID.
	Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (id string, err error)

	// GetByToken loads a record by token hash.
	// Returns ErrInvalidRefreshToken when no record matches.
	GetByToken(ctx context.Context, tokenHash string) (Record, error)

	// DeleteByID removes a single record by ID.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByToken removes the record with the given token hash and reports
	// how many records were removed (0 or 1).
	DeleteByToken(ctx context.Context, tokenHash string) (int64, error)

	// DeleteAllForUser removes every record belonging to userID.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes every record whose expiry is strictly before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
