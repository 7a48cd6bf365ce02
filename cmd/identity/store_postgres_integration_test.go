package identity

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"authd/cmd/identity/ids"
)

// Integration tests are opt-in and require AUTHD_TEST_DATABASE_URL.
// Each test creates its own throwaway schema and drops it on cleanup.

func TestPostgresStore_CreateUser_ConflictEmail_CaseInsensitive(t *testing.T) {
	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "4")

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyUsersSchema(t, pool, schema)

	s := mustNewStore(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := s.CreateUser(ctx, CreateUserInput{
		Email:    "User@Example.com",
		Password: "very-strong-password-1",
		Now:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create user 1: %v", err)
	}

	// Same email (case-insensitive) should conflict.
	_, err = s.CreateUser(ctx, CreateUserInput{
		Email:    "user@example.COM",
		Password: "very-strong-password-2",
		Now:      time.Now().UTC(),
	})
	if !IsConflict(err) {
		t.Fatalf("expected conflict error, got: %v", err)
	}
}

func TestPostgresStore_LookupAndList(t *testing.T) {
	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "4")

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyUsersSchema(t, pool, schema)

	s := mustNewStore(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	base := time.Now().UTC().Truncate(time.Second)
	first, err := s.CreateUser(ctx, CreateUserInput{Email: "first@x.com", Password: "very-strong-password-1", Now: base})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := s.CreateUser(ctx, CreateUserInput{Email: "second@x.com", Password: "very-strong-password-2", Now: base.Add(time.Minute)})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, err := s.GetUserByID(ctx, first.ID)
	if err != nil || got.Email != "first@x.com" {
		t.Fatalf("GetUserByID: %+v, %v", got, err)
	}

	ua, err := s.GetUserAuthByEmail(ctx, "FIRST@x.com")
	if err != nil {
		t.Fatalf("GetUserAuthByEmail: %v", err)
	}
	if ok, err := VerifyPassword("very-strong-password-1", ua.PasswordHash); err != nil || !ok {
		t.Fatalf("VerifyPassword: %v, %v", ok, err)
	}

	if _, err := s.GetUserByID(ctx, "01AAAAAAAAAAAAAAAAAAAAAAAA"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].ID != second.ID || users[1].ID != first.ID {
		t.Fatalf("expected newest first [%s %s], got %+v", second.ID, first.ID, users)
	}
}

// ---- helpers ----

func mustNewStore(t *testing.T, pool *pgxpool.Pool, schema string) *PostgresStore {
	t.Helper()
	s, err := NewPostgresStore(pool, WithSchema(schema))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func mustOpenTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv("AUTHD_TEST_DATABASE_URL"))
	if raw == "" {
		t.Skip("integration test skipped: AUTHD_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(raw)
	if err != nil {
		t.Fatalf("parse AUTHD_TEST_DATABASE_URL: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer pingCancel()

	c, err := pool.Acquire(pingCtx)
	if err != nil {
		pool.Close()
		t.Skipf("integration test skipped: Postgres unreachable: %v", err)
	}
	c.Release()

	return pool
}

func mustCreateTestSchema(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	id, err := ids.NewULID(time.Now().UTC())
	if err != nil {
		t.Fatalf("ulid: %v", err)
	}
	schema := "authd_it_" + strings.ToLower(id)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, `CREATE SCHEMA `+pgx.Identifier{schema}.Sanitize()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return schema
}

func mustDropSchema(t *testing.T, pool *pgxpool.Pool, schema string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = pool.Exec(ctx, `DROP SCHEMA IF EXISTS `+pgx.Identifier{schema}.Sanitize()+` CASCADE`)
}

func mustApplyUsersSchema(t *testing.T, pool *pgxpool.Pool, schema string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	users := pgx.Identifier{schema, "users"}.Sanitize()
	schemaSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  email_norm TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

  CONSTRAINT chk_users_id_ulid_len CHECK (char_length(id) = 26),
  CONSTRAINT uq_users_email_norm UNIQUE (email_norm)
);`, users)

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
}
