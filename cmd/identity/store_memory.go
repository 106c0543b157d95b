package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the dev fallback when no database is configured.
// A single mutex makes check-then-create atomic, so two racing registrations
// with the same username cannot both succeed.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]Account
	byUsername map[string]string // username -> account id
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]Account),
		byUsername: make(map[string]string),
	}
}

// Close closes the store (noop for in-memory).
func (s *MemoryStore) Close() error { return nil }

// CreateAccount hashes the password and persists a new account.
func (s *MemoryStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.CreateAccount"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	username := strings.TrimSpace(in.Username)
	if !ValidUsername(username) {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid username"}
	}
	if in.Password == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// Hash outside the lock; Argon2id is deliberately slow.
	hash, err := HashPassword(in.Password)
	if err != nil {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	id, err := NewULID(now)
	if err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return Account{}, ConflictError{Op: op, Field: "username"}
	}

	acc := Account{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	s.byID[id] = acc
	s.byUsername[username] = id

	return acc, nil
}

// GetByUsername looks up an account by its exact (case-sensitive) username.
func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (Account, error) {
	const op = "identity.GetByUsername"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[strings.TrimSpace(username)]
	if !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	return s.byID[id], nil
}

// GetByID looks up an account by id.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (Account, error) {
	const op = "identity.GetByID"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[id]
	if !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	return acc, nil
}
