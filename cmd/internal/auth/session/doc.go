// Package session implements authd's token lifecycle.
//
// It issues short-lived HS256 access tokens and long-lived opaque refresh
// tokens, validates both, and owns revocation (per token and per user) and
// the expiry sweep. Refresh tokens are random strings stored hashed
// (HMAC-SHA256 when AUTHD_TOKEN_HMAC_KEY is set; otherwise SHA-256 for dev).
//
// Refresh tokens are deliberately not rotated on use: the same token may be
// exchanged for access tokens any number of times until it expires or is
// revoked. Concurrent refreshes with one token are therefore safe and
// independent.
//
// Transport (HTTP) integration is intentionally out of scope here: every
// operation takes plain values and an explicit clock, and returns plain
// values or a sentinel error.
package session
