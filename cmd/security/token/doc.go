// Package token provides refresh-token hashing primitives for authd.
//
// It is the single source of truth for how an opaque refresh token is
// reduced to the value the server stores and indexes.
//
// Design goals:
// - Default dev mode: SHA-256(token) when no HMAC key is configured.
// - Production-enforced mode: HMAC-SHA256(token, key) when policy requires it.
// - Stable 64-char hex output for storage and lookup.
//
// Environment:
// - AUTHD_TOKEN_HMAC_KEY: when set, enables HMAC mode.
// Policy:
//   - If RequireTokenHMAC=true, callers MUST enforce a minimum key size (>= 32 bytes)
//     and MUST use HMAC (no SHA fallback).
package token
