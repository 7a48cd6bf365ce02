package session

import (
	"context"
	"strings"
	"time"

	"authd/cmd/identity"
)

// Directory resolves users for login and for re-binding refresh tokens to a
// live account. Implemented by the identity stores.
type Directory interface {
	GetUserAuthByEmail(ctx context.Context, email string) (identity.UserAuth, error)
	GetUserByID(ctx context.Context, id string) (identity.User, error)
}

// Service implements the high-level session operations for authd.
//
// It authenticates passwords, issues token pairs, exchanges refresh tokens
// for new access tokens, and performs per-token and per-user revocation.
// It is the sole writer of refresh-token records.
type Service struct {
	cfg    Config
	tokens AccessTokenManager
	store  Store
	users  Directory

	// dummyHash absorbs the timing difference between "unknown user" and
	// "wrong password" on the login path.
	dummyHash string
}

// Issued is the result of a successful login: a short-lived access token, an
// opaque refresh token, and a summary of the authenticated user.
type Issued struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	User         identity.User
}

// Refreshed is the result of exchanging a refresh token.
type Refreshed struct {
	AccessToken string
	AccessExp   time.Time
}

// NewService constructs a Service with the provided configuration, store,
// token manager, and user directory.
func NewService(cfg Config, store Store, tokens AccessTokenManager, users Directory) *Service {
	s := &Service{cfg: cfg, store: store, tokens: tokens, users: users}

	if hash, err := identity.HashPassword("dummy-password-for-timing-only"); err == nil {
		s.dummyHash = hash
	}

	return s
}

// Login authenticates email+password and, on success, issues a fresh token
// pair. Each successful call creates one new refresh-token record; multiple
// concurrent sessions per user are allowed and uncapped.
//
// Unknown user and wrong password are both ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, now time.Time, email, password string) (Issued, error) {
	ua, err := s.users.GetUserAuthByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) {
			// Burn comparable time when the user is missing.
			if s.dummyHash != "" {
				_, _ = identity.VerifyPassword(password, s.dummyHash)
			}
			return Issued{}, ErrInvalidCredentials
		}
		return Issued{}, err
	}

	ok, err := identity.VerifyPassword(password, ua.PasswordHash)
	if err != nil || !ok {
		return Issued{}, ErrInvalidCredentials
	}

	refreshPlain, refreshHash, err := newOpaqueRefreshToken(s.cfg.RefreshTokenBytes)
	if err != nil {
		return Issued{}, err
	}
	refreshExp := now.Add(s.cfg.RefreshTokenTTL)

	if _, err := s.store.Create(ctx, now, ua.User.ID, refreshHash, refreshExp); err != nil {
		return Issued{}, err
	}

	accessToken, accessExp, err := s.tokens.Issue(ua.User.ID, ua.User.Email, now)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		AccessToken:  accessToken,
		AccessExp:    accessExp,
		RefreshToken: refreshPlain,
		RefreshExp:   refreshExp,
		User:         ua.User,
	}, nil
}

// Refresh exchanges a stored refresh token for a new access token.
//
// The refresh token itself is not rotated and not consumed: the same token
// remains valid until expiry or revocation, so repeated and concurrent use
// is safe. The one side-effecting failure is an expired record, which is
// deleted before ErrRefreshTokenExpired is returned.
func (s *Service) Refresh(ctx context.Context, now time.Time, refreshToken string) (Refreshed, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	// Basic sanity bounds to avoid pathological inputs.
	if refreshToken == "" || len(refreshToken) > 4096 {
		return Refreshed{}, ErrInvalidRefreshToken
	}

	rec, err := s.store.GetByToken(ctx, hashRefreshToken(refreshToken))
	if err != nil {
		return Refreshed{}, err
	}

	if now.After(rec.ExpiresAt) {
		// Opportunistic cleanup: the record is dead either way.
		if err := s.store.DeleteByID(ctx, rec.ID); err != nil {
			return Refreshed{}, err
		}
		return Refreshed{}, ErrRefreshTokenExpired
	}

	u, err := s.users.GetUserByID(ctx, rec.UserID)
	if err != nil {
		if identity.IsNotFound(err) {
			return Refreshed{}, ErrInvalidRefreshToken
		}
		return Refreshed{}, err
	}

	accessToken, accessExp, err := s.tokens.Issue(u.ID, u.Email, now)
	if err != nil {
		return Refreshed{}, err
	}

	return Refreshed{AccessToken: accessToken, AccessExp: accessExp}, nil
}

// Logout revokes a single refresh token. It is idempotent: an unknown,
// already-revoked, or empty token succeeds the same way as a live one.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	_, err := s.store.DeleteByToken(ctx, hashRefreshToken(refreshToken))
	return err
}

// RevokeAll revokes every refresh token for a user ("logout everywhere")
// and reports how many were removed.
func (s *Service) RevokeAll(ctx context.Context, userID string) (int64, error) {
	return s.store.DeleteAllForUser(ctx, userID)
}

// CleanupExpired sweeps all records past their expiry and reports the count.
// Scheduling is the caller's concern; the sweep only removes records that
// are already logically dead, so it is safe alongside any other operation.
func (s *Service) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.store.DeleteExpired(ctx, now)
}
