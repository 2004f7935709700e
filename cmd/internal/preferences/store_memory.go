package preferences

import (
	"context"
	"sync"
	"time"

	"fooddecider/cmd/identity/ids"
)

// AccountCheck reports whether an account exists.
type AccountCheck func(ctx context.Context, accountID string) (bool, error)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithAccountCheck makes Upsert fail with ErrNotFound for unknown accounts,
// as the foreign key does in Postgres.
func WithAccountCheck(fn AccountCheck) MemoryOption {
	return func(s *MemoryStore) { s.accountExists = fn }
}

// MemoryStore keeps records in a map keyed by account id. Without an
// AccountCheck it accepts any account id.
type MemoryStore struct {
	mu            sync.RWMutex
	byAccount     map[string]Preference
	accountExists AccountCheck
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{byAccount: make(map[string]Preference)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(ctx context.Context, accountID string) (Preference, error) {
	if err := ctx.Err(); err != nil {
		return Preference{}, err
	}
	accountID, err := cleanAccountID(accountID)
	if err != nil {
		return Preference{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byAccount[accountID]
	if !ok {
		return Preference{}, ErrNotFound
	}
	return copyOf(p), nil
}

func (s *MemoryStore) Upsert(ctx context.Context, accountID string, p Patch, now time.Time) (Preference, error) {
	if err := ctx.Err(); err != nil {
		return Preference{}, err
	}
	accountID, err := cleanAccountID(accountID)
	if err != nil {
		return Preference{}, err
	}
	if err := p.validate(); err != nil {
		return Preference{}, err
	}
	if s.accountExists != nil {
		ok, err := s.accountExists(ctx, accountID)
		if err != nil {
			return Preference{}, err
		}
		if !ok {
			return Preference{}, ErrNotFound
		}
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec Preference
	if cur, ok := s.byAccount[accountID]; ok {
		rec = Merge(cur, p, now)
	} else {
		id, err := ids.NewULID(now)
		if err != nil {
			return Preference{}, err
		}
		rec = New(id, accountID, p, now)
	}
	s.byAccount[accountID] = rec
	return copyOf(rec), nil
}

func (s *MemoryStore) Delete(ctx context.Context, accountID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	accountID, err := cleanAccountID(accountID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byAccount[accountID]; !ok {
		return ErrNotFound
	}
	delete(s.byAccount, accountID)
	return nil
}

func copyOf(p Preference) Preference {
	p.DietaryRestrictions = clone(p.DietaryRestrictions)
	p.Allergies = clone(p.Allergies)
	p.CuisinePreferences = clone(p.CuisinePreferences)
	return p
}
