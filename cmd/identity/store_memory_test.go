package identity

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_CreateAndLookup(t *testing.T) {
	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "4")

	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	u, err := st.CreateUser(ctx, CreateUserInput{Email: "A@X.com", Password: "secret-pw-1", Now: now})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" || u.Email != "A@X.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	got, err := st.GetUserByID(ctx, u.ID)
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetUserByID: %+v, %v", got, err)
	}

	// Email lookup is case-insensitive.
	ua, err := st.GetUserAuthByEmail(ctx, "a@x.COM")
	if err != nil {
		t.Fatalf("GetUserAuthByEmail: %v", err)
	}
	if ua.User.ID != u.ID || ua.PasswordHash == "" {
		t.Fatalf("unexpected auth record: %+v", ua)
	}

	ok, err := VerifyPassword("secret-pw-1", ua.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("VerifyPassword: %v, %v", ok, err)
	}
}

func TestMemoryStore_DuplicateEmailConflicts(t *testing.T) {
	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "4")

	ctx := context.Background()
	st := NewMemoryStore()

	if _, err := st.CreateUser(ctx, CreateUserInput{Email: "a@x.com", Password: "secret-pw-1"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := st.CreateUser(ctx, CreateUserInput{Email: "A@x.com ", Password: "secret-pw-2"})
	if !IsConflict(err) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	if _, err := st.GetUserByID(ctx, "nope"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := st.GetUserAuthByEmail(ctx, "nobody@x.com"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "4")

	ctx := context.Background()
	st := NewMemoryStore()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	for i, email := range []string{"first@x.com", "second@x.com", "third@x.com"} {
		_, err := st.CreateUser(ctx, CreateUserInput{
			Email:    email,
			Password: "secret-pw-1",
			Now:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateUser(%s): %v", email, err)
		}
	}

	users, err := st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].Email != "third@x.com" || users[2].Email != "first@x.com" {
		t.Fatalf("expected newest first, got %v", []string{users[0].Email, users[1].Email, users[2].Email})
	}
}
