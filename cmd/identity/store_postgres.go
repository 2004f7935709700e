package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fooddecider/cmd/identity/ids"
	"fooddecider/cmd/internal/store"

	"github.com/jackc/pgx/v5"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pool is owned by the caller; this store never closes it.
// Email uniqueness is enforced by the uq_accounts_email_norm constraint so
// racing registrations cannot both succeed.
type PostgresStore struct {
	db     store.DB
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema used by the store (default "fooddecider").
// The embedded migrations only create the default schema; any other must be
// provisioned with the same tables.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		v, err := store.ValidateSchema(schema)
		if err != nil {
			return fmt.Errorf("identity: %w", err)
		}
		s.schema = v
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db store.DB, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		db:     db,
		schema: store.DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.db == nil {
		return nil, fmt.Errorf("identity: nil db")
	}
	return st, nil
}

var _ Store = (*PostgresStore)(nil)

const accountColumns = `id, email, email_norm, password_hash, display_name, created_at, updated_at`

// Create inserts a new account.
func (s *PostgresStore) Create(ctx context.Context, in CreateAccountInput) (Account, error) {
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

	accounts := store.Ident(s.schema, "accounts")

	_, err = s.db.Exec(ctx,
		`INSERT INTO `+accounts+` (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		id, in.Email, norm, in.PasswordHash, in.DisplayName, in.Now,
	)
	if err != nil {
		if c, ok := store.UniqueViolation(err); ok {
			return Account{}, conflict(op, conflictField(c))
		}
		return Account{}, err
	}

	return Account{
		ID:           id,
		Email:        in.Email,
		EmailNorm:    norm,
		PasswordHash: in.PasswordHash,
		DisplayName:  in.DisplayName,
		CreatedAt:    in.Now,
		UpdatedAt:    in.Now,
	}, nil
}

// GetByEmail looks an account up by its normalized email.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	const op = "identity.GetByEmail"

	norm := NormalizeEmail(email)
	if norm == "" {
		return Account{}, invalid(op, "email is required")
	}
	return s.getOne(ctx, op, `email_norm = $1`, norm)
}

// GetByID looks an account up by id.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (Account, error) {
	const op = "identity.GetByID"

	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, invalid(op, "id is required")
	}
	return s.getOne(ctx, op, `id = $1`, id)
}

func (s *PostgresStore) getOne(ctx context.Context, op, where string, arg any) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	accounts := store.Ident(s.schema, "accounts")

	var acc Account
	err := s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM `+accounts+` WHERE `+where,
		arg,
	).Scan(
		&acc.ID,
		&acc.Email,
		&acc.EmailNorm,
		&acc.PasswordHash,
		&acc.DisplayName,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, notFound(op)
		}
		return Account{}, err
	}
	return acc, nil
}

// UpdatePasswordHash replaces the stored hash (rehash after a legacy login).
func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	const op = "identity.UpdatePasswordHash"

	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return invalid(op, "id is required")
	}
	if strings.TrimSpace(hash) == "" {
		return invalid(op, "password hash is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	accounts := store.Ident(s.schema, "accounts")

	ct, err := s.db.Exec(ctx,
		`UPDATE `+accounts+`
		    SET password_hash = $1,
		        updated_at = $2
		  WHERE id = $3`,
		hash, now, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return notFound(op)
	}
	return nil
}

// conflictField prefers the stable constraint name and falls back to substring matching.
func conflictField(constraint string) string {
	switch {
	case constraint == "uq_accounts_email_norm", strings.Contains(constraint, "email"):
		return "email"
	default:
		return "unique"
	}
}
