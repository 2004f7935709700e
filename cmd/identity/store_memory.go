package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"fooddecider/cmd/identity/ids"
)

// MemoryStore is the in-process Store used when no database is configured.
// The email index makes Create atomic with respect to uniqueness.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Account
	byEmail map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Create(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.Create"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	in, norm, err := in.normalize(op)
	if err != nil {
		return Account{}, err
	}

	id, err := ids.NewULID(in.Now)
	if err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[norm]; exists {
		return Account{}, conflict(op, "email")
	}

	acc := Account{
		ID:           id,
		Email:        in.Email,
		EmailNorm:    norm,
		PasswordHash: in.PasswordHash,
		DisplayName:  in.DisplayName,
		CreatedAt:    in.Now,
		UpdatedAt:    in.Now,
	}
	s.byID[id] = acc
	s.byEmail[norm] = id
	return acc, nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	const op = "identity.GetByEmail"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	norm := NormalizeEmail(email)
	if norm == "" {
		return Account{}, invalid(op, "email is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[norm]
	if !ok {
		return Account{}, notFound(op)
	}
	return s.byID[id], nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (Account, error) {
	const op = "identity.GetByID"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, invalid(op, "id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[id]
	if !ok {
		return Account{}, notFound(op)
	}
	return acc, nil
}

func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	const op = "identity.UpdatePasswordHash"

	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(hash) == "" {
		return invalid(op, "password hash is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byID[id]
	if !ok {
		return notFound(op)
	}
	acc.PasswordHash = hash
	acc.UpdatedAt = now
	s.byID[id] = acc
	return nil
}

// Delete removes an account. It exists for tests exercising a profile whose
// account vanished after the token was issued.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.byID[id]; ok {
		delete(s.byEmail, acc.EmailNorm)
		delete(s.byID, id)
	}
}
