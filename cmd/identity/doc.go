// Package identity implements authd's user registry.
//
// It owns the User model, registration, and the lookups the session
// authority depends on (by email for login, by ID for bearer validation).
// Persistence is Postgres in production and an in-memory store for
// database-less runs and tests.
//
// This package is intentionally dependency-light and security-first.
package identity
