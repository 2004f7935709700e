// Package suggestions turns questionnaire answers into meal suggestions and
// keeps each account's meal history.
//
// The generator is a fixed catalog filtered by dietary restrictions; only its
// request and response shapes are stable.
package suggestions

import (
	"context"
	"errors"
	"time"
)

// MaxHistory caps the history list returned to clients.
const MaxHistory = 50

var (
	// ErrInvalidInput reports a malformed entry or account id.
	ErrInvalidInput = errors.New("suggestions: invalid input")

	// ErrAccountNotFound means the account behind a history write is gone.
	ErrAccountNotFound = errors.New("suggestions: account not found")
)

// Answers is the questionnaire submitted by the client.
type Answers struct {
	WantToCook          *bool    `json:"wantToCook" validate:"required"`
	TimeAvailable       int      `json:"timeAvailable" validate:"required,min=1,max=300"`
	Budget              string   `json:"budget" validate:"required,oneof=low medium high"`
	MealTime            string   `json:"mealTime" validate:"required,oneof=breakfast lunch dinner snack"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty" validate:"omitempty,max=50,dive,required,max=100"`
}

// Response is a stored questionnaire submission. AccountID is empty for
// anonymous callers.
type Response struct {
	ID            string
	AccountID     string
	WantToCook    bool
	TimeAvailable int
	Budget        string
	MealTime      string
	CreatedAt     time.Time
}

// Entry is one meal saved to an account's history.
type Entry struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"userId"`
	MealType    string    `json:"mealType"`
	MealID      string    `json:"mealId"`
	MealName    string    `json:"mealName"`
	MealImage   *string   `json:"mealImage"`
	CookingTime *int      `json:"cookingTime"`
	Budget      string    `json:"budget"`
	Rating      *float64  `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewEntry is the body of a history write.
type NewEntry struct {
	MealType    string   `json:"mealType" validate:"required,max=50"`
	MealID      string   `json:"mealId" validate:"required,max=100"`
	MealName    string   `json:"mealName" validate:"required,max=200"`
	MealImage   *string  `json:"mealImage,omitempty" validate:"omitempty,max=2048"`
	CookingTime *int     `json:"cookingTime,omitempty" validate:"omitempty,min=0,max=1440"`
	Budget      string   `json:"budget" validate:"required,oneof=low medium high"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
}

// ResponseStore records questionnaire submissions for analytics.
type ResponseStore interface {
	Record(ctx context.Context, r Response) (Response, error)
}

// HistoryStore keeps meal history.
//
// ListRecent returns at most limit entries, newest first.
type HistoryStore interface {
	Add(ctx context.Context, accountID string, e NewEntry, now time.Time) (Entry, error)
	ListRecent(ctx context.Context, accountID string, limit int) ([]Entry, error)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxHistory {
		return MaxHistory
	}
	return limit
}
