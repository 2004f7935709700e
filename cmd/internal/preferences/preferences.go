// Package preferences stores one dietary preference record per account and
// applies the field-level merge used by updates.
package preferences

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// DefaultSpiceLevel seeds new records created without an explicit level.
	DefaultSpiceLevel = 2

	MinSpiceLevel = 1
	MaxSpiceLevel = 5
)

var (
	// ErrNotFound reports that the account has no preference record
	// (or, on upsert, that the account itself is gone).
	ErrNotFound = errors.New("preferences: not found")

	// ErrInvalidInput reports a malformed account id or patch.
	ErrInvalidInput = errors.New("preferences: invalid input")
)

// Preference is the stored record.
type Preference struct {
	ID                  string    `json:"id"`
	AccountID           string    `json:"userId"`
	DietaryRestrictions []string  `json:"dietaryRestrictions"`
	Allergies           []string  `json:"allergies"`
	CuisinePreferences  []string  `json:"cuisinePreferences"`
	SpiceLevel          int       `json:"spiceLevel"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Patch is a partial update. Nil or empty lists leave the stored list alone;
// a nil SpiceLevel leaves the stored level alone.
type Patch struct {
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty" validate:"omitempty,max=50,dive,required,max=100"`
	Allergies           []string `json:"allergies,omitempty" validate:"omitempty,max=50,dive,required,max=100"`
	CuisinePreferences  []string `json:"cuisinePreferences,omitempty" validate:"omitempty,max=50,dive,required,max=100"`
	SpiceLevel          *int     `json:"spiceLevel,omitempty" validate:"omitempty,min=1,max=5"`
}

func (p Patch) validate() error {
	if p.SpiceLevel != nil && (*p.SpiceLevel < MinSpiceLevel || *p.SpiceLevel > MaxSpiceLevel) {
		return ErrInvalidInput
	}
	return nil
}

// New builds the record created by the first update of an account.
func New(id, accountID string, p Patch, now time.Time) Preference {
	spice := DefaultSpiceLevel
	if p.SpiceLevel != nil {
		spice = *p.SpiceLevel
	}
	return Preference{
		ID:                  id,
		AccountID:           accountID,
		DietaryRestrictions: orEmpty(p.DietaryRestrictions),
		Allergies:           orEmpty(p.Allergies),
		CuisinePreferences:  orEmpty(p.CuisinePreferences),
		SpiceLevel:          spice,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Merge applies p to cur: each list is replaced only when p's list is
// non-empty and the spice level whenever p supplies one.
func Merge(cur Preference, p Patch, now time.Time) Preference {
	out := cur
	if len(p.DietaryRestrictions) > 0 {
		out.DietaryRestrictions = clone(p.DietaryRestrictions)
	}
	if len(p.Allergies) > 0 {
		out.Allergies = clone(p.Allergies)
	}
	if len(p.CuisinePreferences) > 0 {
		out.CuisinePreferences = clone(p.CuisinePreferences)
	}
	if p.SpiceLevel != nil {
		out.SpiceLevel = *p.SpiceLevel
	}
	out.UpdatedAt = now
	return out
}

// Store persists preference records.
//
// Upsert must create-or-merge as one step per account: two concurrent upserts
// never produce two records.
type Store interface {
	Get(ctx context.Context, accountID string) (Preference, error)
	Upsert(ctx context.Context, accountID string, p Patch, now time.Time) (Preference, error)
	Delete(ctx context.Context, accountID string) error
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return clone(s)
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cleanAccountID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrInvalidInput
	}
	return id, nil
}
