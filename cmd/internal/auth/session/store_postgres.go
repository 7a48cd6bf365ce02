package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"authd/cmd/identity/ids"
)

// PostgresStore implements Store using PostgreSQL (authd.refresh_tokens).
// The pool is owned by the caller and never closed here.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema used by the store (default "authd").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("session: empty schema")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore creates a Postgres-backed refresh-token store.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "authd"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "refresh_tokens"}.Sanitize()
}

// Create inserts a new refresh-token record and returns its ULID.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id, err := ids.NewULID(now)
	if err != nil {
		return "", err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO `+s.table()+` (id, user_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userID, tokenHash, now, expiresAt)
	if err != nil {
		return "", err
	}

	return id, nil
}

// GetByToken loads a record by token hash.
func (s *PostgresStore) GetByToken(ctx context.Context, tokenHash string) (Record, error) {
	var rec Record

	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at
		FROM `+s.table()+`
		WHERE token_hash = $1
	`, tokenHash).Scan(&rec.ID, &rec.UserID, &rec.TokenHash, &rec.CreatedAt, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// DeleteByID removes a single record (idempotent).
func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM `+s.table()+` WHERE id = $1`, id)
	return err
}

// DeleteByToken removes the record with the given token hash (idempotent).
func (s *PostgresStore) DeleteByToken(ctx context.Context, tokenHash string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table()+` WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteAllForUser removes every record for a user.
func (s *PostgresStore) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table()+` WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes every record strictly past its expiry.
// Records expiring at exactly now are still valid and kept.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table()+` WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*PostgresStore)(nil)
