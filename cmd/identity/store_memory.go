package identity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"authd/cmd/identity/ids"
)

// MemoryStore is an in-memory Store used when no database is configured and
// in unit tests. Contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]memUser
	byEmail map[string]string // normalized email -> user ID
}

type memUser struct {
	user         User
	passwordHash string
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]memUser),
		byEmail: make(map[string]string),
	}
}

// CreateUser registers a new user.
func (s *MemoryStore) CreateUser(_ context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if strings.TrimSpace(in.Password) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	pwHash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return User{}, err
	}

	norm := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[norm]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	u := User{ID: id, Email: email, CreatedAt: now}
	s.byID[id] = memUser{user: u, passwordHash: pwHash}
	s.byEmail[norm] = id
	return u, nil
}

// GetUserByID loads a user by ID.
func (s *MemoryStore) GetUserByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mu, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetUserByID", Resource: "user"}
	}
	return mu.user, nil
}

// GetUserAuthByEmail loads a user and its password hash for login.
func (s *MemoryStore) GetUserAuthByEmail(_ context.Context, email string) (UserAuth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return UserAuth{}, NotFoundError{Op: "identity.GetUserAuthByEmail", Resource: "user"}
	}
	mu := s.byID[id]
	return UserAuth{User: mu.user, PasswordHash: mu.passwordHash}, nil
}

// ListUsers returns all users, newest first.
func (s *MemoryStore) ListUsers(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.byID))
	for _, mu := range s.byID {
		out = append(out, mu.user)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)
