package suggestions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fooddecider/cmd/internal/preferences"
)

// PreferenceReader loads the caller's stored preferences.
type PreferenceReader interface {
	Get(ctx context.Context, accountID string) (preferences.Preference, error)
}

// Filters echoes the inputs the suggestions were computed from.
type Filters struct {
	WantToCook          bool     `json:"wantToCook"`
	TimeAvailable       int      `json:"timeAvailable"`
	Budget              string   `json:"budget"`
	MealTime            string   `json:"mealTime"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
}

// Result is the body of a generate response.
type Result struct {
	Suggestions []Suggestion `json:"suggestions"`
	Filters     Filters      `json:"filters"`
}

// Service generates suggestions and serves history.
type Service struct {
	responses ResponseStore
	history   HistoryStore
	prefs     PreferenceReader
	now       func() time.Time
}

// NewService wires a Service. prefs may be nil.
func NewService(responses ResponseStore, history HistoryStore, prefs PreferenceReader) (*Service, error) {
	if responses == nil || history == nil {
		return nil, errors.New("suggestions: nil store")
	}
	return &Service{
		responses: responses,
		history:   history,
		prefs:     prefs,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Generate records the answers and returns matching meals. accountID is
// empty for anonymous callers; authenticated callers get their stored
// restrictions and allergies applied too.
func (s *Service) Generate(ctx context.Context, accountID string, a Answers) (Result, error) {
	const op = "suggestions.Generate"

	if a.WantToCook == nil {
		return Result{}, ErrInvalidInput
	}

	if _, err := s.responses.Record(ctx, Response{
		AccountID:     accountID,
		WantToCook:    *a.WantToCook,
		TimeAvailable: a.TimeAvailable,
		Budget:        a.Budget,
		MealTime:      a.MealTime,
		CreatedAt:     s.now(),
	}); err != nil {
		return Result{}, fmt.Errorf("%s: record: %w", op, err)
	}

	restrictions := mergeTags(a.DietaryRestrictions)
	if accountID != "" && s.prefs != nil {
		pref, err := s.prefs.Get(ctx, accountID)
		switch {
		case errors.Is(err, preferences.ErrNotFound):
		case err != nil:
			return Result{}, fmt.Errorf("%s: preferences: %w", op, err)
		default:
			restrictions = mergeTags(restrictions, pref.DietaryRestrictions, pref.Allergies)
		}
	}

	return Result{
		Suggestions: match(a.Budget, restrictions),
		Filters: Filters{
			WantToCook:          *a.WantToCook,
			TimeAvailable:       a.TimeAvailable,
			Budget:              a.Budget,
			MealTime:            a.MealTime,
			DietaryRestrictions: restrictions,
		},
	}, nil
}

// SaveToHistory appends a meal to the account's history.
func (s *Service) SaveToHistory(ctx context.Context, accountID string, e NewEntry) (Entry, error) {
	return s.history.Add(ctx, accountID, e, s.now())
}

// History returns the newest MaxHistory entries.
func (s *Service) History(ctx context.Context, accountID string) ([]Entry, error) {
	return s.history.ListRecent(ctx, accountID, MaxHistory)
}
