package preferences

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestNew_SeedsDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := New("p1", "acc", Patch{Allergies: []string{"peanut"}}, now)

	assert.Equal(t, []string{}, p.DietaryRestrictions)
	assert.Equal(t, []string{"peanut"}, p.Allergies)
	assert.Equal(t, []string{}, p.CuisinePreferences)
	assert.Equal(t, DefaultSpiceLevel, p.SpiceLevel)
	assert.Equal(t, now, p.CreatedAt)

	p = New("p1", "acc", Patch{SpiceLevel: intp(5)}, now)
	assert.Equal(t, 5, p.SpiceLevel)
}

func TestMerge(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)
	cur := Preference{
		ID:                  "p1",
		AccountID:           "acc",
		DietaryRestrictions: []string{"vegan"},
		Allergies:           []string{"peanut"},
		CuisinePreferences:  []string{},
		SpiceLevel:          2,
		CreatedAt:           created,
		UpdatedAt:           created,
	}

	got := Merge(cur, Patch{
		DietaryRestrictions: []string{},
		Allergies:           []string{"shellfish"},
		SpiceLevel:          intp(4),
	}, later)

	assert.Equal(t, []string{"vegan"}, got.DietaryRestrictions, "empty list keeps stored value")
	assert.Equal(t, []string{"shellfish"}, got.Allergies)
	assert.Equal(t, []string{}, got.CuisinePreferences)
	assert.Equal(t, 4, got.SpiceLevel)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)

	got = Merge(got, Patch{}, later)
	assert.Equal(t, 4, got.SpiceLevel, "absent spice level keeps stored value")
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "acc")
	require.ErrorIs(t, err, ErrNotFound)

	first, err := s.Upsert(ctx, "acc", Patch{DietaryRestrictions: []string{"vegan"}}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.SpiceLevel)

	second, err := s.Upsert(ctx, "acc", Patch{Allergies: []string{"peanut"}, SpiceLevel: intp(3)}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"vegan"}, second.DietaryRestrictions)
	assert.Equal(t, []string{"peanut"}, second.Allergies)
	assert.Equal(t, 3, second.SpiceLevel)

	second.Allergies[0] = "mutated"
	got, err := s.Get(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, []string{"peanut"}, got.Allergies, "callers get copies")

	require.NoError(t, s.Delete(ctx, "acc"))
	require.ErrorIs(t, s.Delete(ctx, "acc"), ErrNotFound)
}

func TestMemoryStore_AccountCheck(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithAccountCheck(func(_ context.Context, id string) (bool, error) {
		return id == "known", nil
	}))

	_, err := s.Upsert(ctx, "gone", Patch{Allergies: []string{"gluten"}}, time.Time{})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "gone")
	require.ErrorIs(t, err, ErrNotFound, "no orphan record is created")

	_, err = s.Upsert(ctx, "known", Patch{}, time.Time{})
	require.NoError(t, err)

	boom := errors.New("lookup failed")
	failing := NewMemoryStore(WithAccountCheck(func(context.Context, string) (bool, error) {
		return false, boom
	}))
	_, err = failing.Upsert(ctx, "known", Patch{}, time.Time{})
	assert.ErrorIs(t, err, boom)
}

func TestMemoryStore_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Upsert(ctx, " ", Patch{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Upsert(ctx, "acc", Patch{SpiceLevel: intp(9)}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Get(canceled, "acc")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_ConcurrentUpsertsShareOneRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := s.Upsert(ctx, "acc", Patch{}, time.Time{})
			if err == nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}
