package session

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the user is unknown or
	// the password does not match. The two cases are indistinguishable to
	// callers to avoid account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRefreshToken is returned when a refresh token matches no
	// stored record (never issued, revoked, or already swept).
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrRefreshTokenExpired is returned when a refresh token is found but
	// past its expiry. The record is deleted as a side effect.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrInvalidSignature is returned when an access token is tampered,
	// garbled, or signed with the wrong secret. Claims of such tokens are
	// never inspected.
	ErrInvalidSignature = errors.New("invalid access token signature")

	// ErrAccessTokenExpired is returned when an access token's signature is
	// valid but its expiry has passed.
	ErrAccessTokenExpired = errors.New("access token expired")

	// ErrUserNotFound is returned when a verified token's subject no longer
	// resolves to a live user account.
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingCredential is returned when a bearer credential is absent or
	// its scheme prefix is malformed.
	ErrMissingCredential = errors.New("missing bearer credential")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
