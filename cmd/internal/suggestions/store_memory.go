package suggestions

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"fooddecider/cmd/identity/ids"
)

// DefaultResponseLimit bounds the questionnaire responses a MemoryStore keeps.
const DefaultResponseLimit = 10000

// AccountCheck reports whether an account exists.
type AccountCheck func(ctx context.Context, accountID string) (bool, error)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithAccountCheck makes Add fail with ErrAccountNotFound for unknown
// accounts, as the foreign key does in Postgres.
func WithAccountCheck(fn AccountCheck) MemoryOption {
	return func(s *MemoryStore) { s.accountExists = fn }
}

// WithResponseLimit sets how many responses are kept. Values below 1 are ignored.
func WithResponseLimit(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxResponses = n
		}
	}
}

// MemoryStore implements ResponseStore and HistoryStore in process.
// Responses live in a ring: once full, the oldest is overwritten.
// History is unbounded per account; reads return the newest entries.
type MemoryStore struct {
	mu            sync.RWMutex
	responses     []Response
	next          int
	maxResponses  int
	history       map[string][]Entry
	accountExists AccountCheck
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{history: make(map[string][]Entry), maxResponses: DefaultResponseLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ ResponseStore = (*MemoryStore)(nil)
	_ HistoryStore  = (*MemoryStore)(nil)
)

func (s *MemoryStore) Record(ctx context.Context, r Response) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	id, err := ids.NewULID(r.CreatedAt)
	if err != nil {
		return Response{}, err
	}
	r.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responses) < s.maxResponses {
		s.responses = append(s.responses, r)
		return r, nil
	}
	s.responses[s.next] = r
	s.next = (s.next + 1) % s.maxResponses
	return r, nil
}

// Responses returns the retained submissions, oldest first.
func (s *MemoryStore) Responses() []Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Concat(s.responses[s.next:], s.responses[:s.next])
}

func (s *MemoryStore) Add(ctx context.Context, accountID string, e NewEntry, now time.Time) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return Entry{}, ErrInvalidInput
	}
	if s.accountExists != nil {
		ok, err := s.accountExists(ctx, accountID)
		if err != nil {
			return Entry{}, err
		}
		if !ok {
			return Entry{}, ErrAccountNotFound
		}
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ids.NewULID(now)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:          id,
		AccountID:   accountID,
		MealType:    e.MealType,
		MealID:      e.MealID,
		MealName:    e.MealName,
		MealImage:   e.MealImage,
		CookingTime: e.CookingTime,
		Budget:      e.Budget,
		Rating:      e.Rating,
		CreatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[accountID] = append(s.history[accountID], entry)
	return entry, nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, accountID string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	s.mu.RLock()
	out := slices.Clone(s.history[strings.TrimSpace(accountID)])
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}
