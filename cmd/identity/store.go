package identity

import (
	"context"
	"time"
)

// User is authd's canonical security principal.
// Email is unique (after normalization) and required.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// UserAuth pairs a user with its stored password hash.
// The hash never leaves the login path; it must not appear in responses or logs.
type UserAuth struct {
	User         User
	PasswordHash string
}

// CreateUserInput describes a registration request.
type CreateUserInput struct {
	Email    string
	Password string
	Now      time.Time
}

// Store is the user persistence boundary consumed by the API layer and the
// session authority.
type Store interface {
	// CreateUser registers a new user. Fails with a ConflictError on a
	// duplicate (normalized) email.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// GetUserByID loads a user by ID. ErrNotFound when absent.
	GetUserByID(ctx context.Context, id string) (User, error)

	// GetUserAuthByEmail loads a user and its password hash for login.
	// ErrNotFound when absent; callers must not leak the distinction to clients.
	GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error)

	// ListUsers returns all users, newest first.
	ListUsers(ctx context.Context) ([]User, error)
}
