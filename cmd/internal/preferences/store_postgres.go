package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fooddecider/cmd/identity/ids"
	"fooddecider/cmd/internal/store"

	"github.com/jackc/pgx/v5"
)

// PostgresStore implements Store over PostgreSQL.
// The merge runs inside a single INSERT ... ON CONFLICT statement.
type PostgresStore struct {
	db     store.DB
	schema string
}

// NewPostgresStore constructs a PostgresStore over the tables the embedded
// migrations create in store.DefaultSchema.
func NewPostgresStore(db store.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("preferences: nil db")
	}
	return &PostgresStore{db: db, schema: store.DefaultSchema}, nil
}

var _ Store = (*PostgresStore)(nil)

const prefColumns = `id, account_id, dietary_restrictions, allergies, cuisine_preferences, spice_level, created_at, updated_at`

func (s *PostgresStore) Get(ctx context.Context, accountID string) (Preference, error) {
	if err := ctx.Err(); err != nil {
		return Preference{}, err
	}
	accountID, err := cleanAccountID(accountID)
	if err != nil {
		return Preference{}, err
	}

	row := s.db.QueryRow(ctx,
		`SELECT `+prefColumns+` FROM `+store.Ident(s.schema, "preferences")+` WHERE account_id = $1`,
		accountID,
	)
	return scanPreference(row)
}

func (s *PostgresStore) Upsert(ctx context.Context, accountID string, p Patch, now time.Time) (Preference, error) {
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
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return Preference{}, err
	}
	seed := New(id, accountID, p, now)

	// Empty incoming arrays keep the stored value; $8 says whether the
	// caller supplied a spice level at all.
	row := s.db.QueryRow(ctx,
		`INSERT INTO `+store.Ident(s.schema, "preferences")+` AS p (`+prefColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (account_id) DO UPDATE SET
		   dietary_restrictions = CASE WHEN cardinality(EXCLUDED.dietary_restrictions) > 0
		                               THEN EXCLUDED.dietary_restrictions ELSE p.dietary_restrictions END,
		   allergies            = CASE WHEN cardinality(EXCLUDED.allergies) > 0
		                               THEN EXCLUDED.allergies ELSE p.allergies END,
		   cuisine_preferences  = CASE WHEN cardinality(EXCLUDED.cuisine_preferences) > 0
		                               THEN EXCLUDED.cuisine_preferences ELSE p.cuisine_preferences END,
		   spice_level          = CASE WHEN $8::boolean THEN EXCLUDED.spice_level ELSE p.spice_level END,
		   updated_at           = EXCLUDED.updated_at
		 RETURNING `+prefColumns,
		seed.ID, seed.AccountID, seed.DietaryRestrictions, seed.Allergies, seed.CuisinePreferences,
		seed.SpiceLevel, now, p.SpiceLevel != nil,
	)
	rec, err := scanPreference(row)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return Preference{}, ErrNotFound
		}
		return Preference{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, accountID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	accountID, err := cleanAccountID(accountID)
	if err != nil {
		return err
	}

	ct, err := s.db.Exec(ctx,
		`DELETE FROM `+store.Ident(s.schema, "preferences")+` WHERE account_id = $1`,
		accountID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPreference(row pgx.Row) (Preference, error) {
	var p Preference
	err := row.Scan(
		&p.ID,
		&p.AccountID,
		&p.DietaryRestrictions,
		&p.Allergies,
		&p.CuisinePreferences,
		&p.SpiceLevel,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Preference{}, ErrNotFound
		}
		return Preference{}, err
	}
	p.DietaryRestrictions = orEmpty(p.DietaryRestrictions)
	p.Allergies = orEmpty(p.Allergies)
	p.CuisinePreferences = orEmpty(p.CuisinePreferences)
	return p, nil
}
