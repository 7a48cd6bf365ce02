package session

import (
	"context"
	"sync"
	"time"

	"authd/cmd/identity/ids"
)

// MemoryStore is an in-memory Store for development and tests.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]Record
	byToken map[string]string
}

// NewMemoryStore creates an empty in-memory refresh-token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Record),
		byToken: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id, err := ids.NewULID(now)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[id] = Record{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	s.byToken[tokenHash] = id

	return id, nil
}

func (s *MemoryStore) GetByToken(_ context.Context, tokenHash string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byToken[tokenHash]
	if !ok {
		return Record{}, ErrInvalidRefreshToken
	}
	return s.byID[id], nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	delete(s.byToken, rec.TokenHash)
	return nil
}

func (s *MemoryStore) DeleteByToken(_ context.Context, tokenHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byToken[tokenHash]
	if !ok {
		return 0, nil
	}
	delete(s.byID, id)
	delete(s.byToken, tokenHash)
	return 1, nil
}

func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.byID {
		if rec.UserID != userID {
			continue
		}
		delete(s.byID, id)
		delete(s.byToken, rec.TokenHash)
		n++
	}
	return n, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.byID {
		// Strictly past expiry only. Records expiring at exactly now stay.
		if !rec.ExpiresAt.Before(now) {
			continue
		}
		delete(s.byID, id)
		delete(s.byToken, rec.TokenHash)
		n++
	}
	return n, nil
}

var _ Store = (*MemoryStore)(nil)
