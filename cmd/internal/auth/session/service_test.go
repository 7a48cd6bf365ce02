package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"authd/cmd/identity"
)

// Unit tests run against the in-memory stores with bcrypt.MinCost so the
// full login path stays fast.

type testEnv struct {
	svc   *Service
	store *MemoryStore
	users *identity.MemoryStore
	user  identity.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "4")

	cfg := testTokenConfig()
	tokens := mustHS256Manager(t, cfg)

	users := identity.NewMemoryStore()
	u, err := users.CreateUser(context.Background(), identity.CreateUserInput{
		Email:    "alice@example.com",
		Password: "correct horse battery",
		Now:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	store := NewMemoryStore()
	return &testEnv{
		svc:   NewService(cfg, store, tokens, users),
		store: store,
		users: users,
		user:  u,
	}
}

func TestService_LoginThenRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issued, err := env.svc.Login(ctx, now, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if issued.AccessToken == "" || issued.RefreshToken == "" {
		t.Fatalf("expected non-empty token pair")
	}
	if issued.User.ID != env.user.ID {
		t.Fatalf("user mismatch: %q vs %q", issued.User.ID, env.user.ID)
	}
	if !issued.AccessExp.After(now) || !issued.RefreshExp.After(issued.AccessExp) {
		t.Fatalf("unexpected expiries: access=%v refresh=%v", issued.AccessExp, issued.RefreshExp)
	}

	refreshed, err := env.svc.Refresh(ctx, now.Add(time.Minute), issued.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatalf("expected a new access token")
	}
}

func TestService_Login_WrongPasswordAndUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := env.svc.Login(ctx, now, "alice@example.com", "wrong password here")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	_, err = env.svc.Login(ctx, now, "nobody@example.com", "whatever password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_Refresh_SameTokenReusable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issued, err := env.svc.Login(ctx, now, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// The refresh token is not rotated: the same token must keep working
	// until it expires or is revoked.
	for i := 0; i < 3; i++ {
		if _, err := env.svc.Refresh(ctx, now.Add(time.Duration(i)*time.Minute), issued.RefreshToken); err != nil {
			t.Fatalf("Refresh #%d: %v", i+1, err)
		}
	}
}

func TestService_Refresh_UnknownToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := env.svc.Refresh(ctx, now, "never-issued-token")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}

	_, err = env.svc.Refresh(ctx, now, "")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("empty token: expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestService_Refresh_ExpiredTokenDeletesRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issued, err := env.svc.Login(ctx, now, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	after := issued.RefreshExp.Add(time.Second)
	_, err = env.svc.Refresh(ctx, after, issued.RefreshToken)
	if !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired, got %v", err)
	}

	// The expired record is gone, so a second attempt is plain invalid.
	_, err = env.svc.Refresh(ctx, after, issued.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken after cleanup, got %v", err)
	}
}

func TestService_Refresh_ValidAtExactExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issued, err := env.svc.Login(ctx, now, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Inclusive boundary: still exchangeable at the exact expiry instant.
	if _, err := env.svc.Refresh(ctx, issued.RefreshExp, issued.RefreshToken); err != nil {
		t.Fatalf("expected success at exact expiry, got %v", err)
	}
}

func TestService_Logout_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issued, err := env.svc.Login(ctx, now, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := env.svc.Logout(ctx, issued.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// Second and third logout of the same token still succeed.
	if err := env.svc.Logout(ctx, issued.RefreshToken); err != nil {
		t.Fatalf("Logout (repeat): %v", err)
	}
	if err := env.svc.Logout(ctx, "never-issued-token"); err != nil {
		t.Fatalf("Logout (unknown): %v", err)
	}
	if err := env.svc.Logout(ctx, ""); err != nil {
		t.Fatalf("Logout (empty): %v", err)
	}

	_, err = env.svc.Refresh(ctx, now, issued.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken after logout, got %v", err)
	}
}

func TestService_RevokeAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var tokens []string
	for i := 0; i < 3; i++ {
		issued, err := env.svc.Login(ctx, now, "alice@example.com", "correct horse battery")
		if err != nil {
			t.Fatalf("Login #%d: %v", i+1, err)
		}
		tokens = append(tokens, issued.RefreshToken)
	}

	n, err := env.svc.RevokeAll(ctx, env.user.ID)
	if err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 revoked, got %d", n)
	}

	for _, tok := range tokens {
		if _, err := env.svc.Refresh(ctx, now, tok); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("expected ErrInvalidRefreshToken after revoke-all, got %v", err)
		}
	}
}

func TestService_Refresh_DeletedUser(t *testing.T) {
	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "4")

	cfg := testTokenConfig()
	tokens := mustHS256Manager(t, cfg)
	users := identity.NewMemoryStore()
	store := NewMemoryStore()
	svc := NewService(cfg, store, tokens, users)

	ctx := context.Background()
	now := time.Now().UTC()

	// Plant a record whose user never existed in the directory.
	plain, hash, err := newOpaqueRefreshToken(cfg.RefreshTokenBytes)
	if err != nil {
		t.Fatalf("newOpaqueRefreshToken: %v", err)
	}
	if _, err := store.Create(ctx, now, "01HGONEGONEGONEGONEGONEGONE", hash, now.Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Refresh(ctx, now, plain)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for deleted user, got %v", err)
	}
}

func TestService_CleanupExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issued, err := env.svc.Login(ctx, now, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	n, err := env.svc.CleanupExpired(ctx, issued.RefreshExp.Add(time.Second))
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept, got %d", n)
	}

	_, err = env.svc.Refresh(ctx, now, issued.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken after sweep, got %v", err)
	}
}
