package suggestions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fooddecider/cmd/identity/ids"
	"fooddecider/cmd/internal/store"
)

// PostgresStore implements ResponseStore and HistoryStore over PostgreSQL.
type PostgresStore struct {
	db     store.DB
	schema string
}

// NewPostgresStore constructs a PostgresStore over the tables the embedded
// migrations create in store.DefaultSchema.
func NewPostgresStore(db store.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("suggestions: nil db")
	}
	return &PostgresStore{db: db, schema: store.DefaultSchema}, nil
}

var (
	_ ResponseStore = (*PostgresStore)(nil)
	_ HistoryStore  = (*PostgresStore)(nil)
)

const historyColumns = `id, account_id, meal_type, meal_id, meal_name, meal_image, cooking_time, budget, rating, created_at`

func (s *PostgresStore) Record(ctx context.Context, r Response) (Response, error) {
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

	var account any
	if r.AccountID != "" {
		account = r.AccountID
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO `+store.Ident(s.schema, "questionnaire_responses")+`
		   (id, account_id, want_to_cook, time_available, budget, meal_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, account, r.WantToCook, r.TimeAvailable, r.Budget, r.MealTime, r.CreatedAt,
	)
	if err != nil {
		return Response{}, err
	}
	return r, nil
}

func (s *PostgresStore) Add(ctx context.Context, accountID string, e NewEntry, now time.Time) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return Entry{}, ErrInvalidInput
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

	_, err = s.db.Exec(ctx,
		`INSERT INTO `+store.Ident(s.schema, "meal_history")+` (`+historyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.AccountID, entry.MealType, entry.MealID, entry.MealName,
		entry.MealImage, entry.CookingTime, entry.Budget, entry.Rating, entry.CreatedAt,
	)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return Entry{}, ErrAccountNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, accountID string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+historyColumns+` FROM `+store.Ident(s.schema, "meal_history")+`
		  WHERE account_id = $1
		  ORDER BY created_at DESC, id DESC
		  LIMIT $2`,
		strings.TrimSpace(accountID), clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.MealType,
			&e.MealID,
			&e.MealName,
			&e.MealImage,
			&e.CookingTime,
			&e.Budget,
			&e.Rating,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
