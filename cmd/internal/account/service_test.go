package account

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fooddecider/cmd/identity"
	"fooddecider/cmd/internal/preferences"
	"fooddecider/cmd/security/password"
	"fooddecider/cmd/security/token"
)

func fastHasher() password.Config {
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func newTokens(t *testing.T) *token.Manager {
	t.Helper()
	cfg := token.DefaultConfig()
	cfg.Secret = []byte("0123456789abcdef0123456789abcdef")
	m, err := token.NewManager(cfg)
	require.NoError(t, err)
	return m
}

type fixture struct {
	svc      *Service
	accounts *identity.MemoryStore
	prefs    *preferences.MemoryStore
	tokens   *token.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		accounts: identity.NewMemoryStore(),
		prefs:    preferences.NewMemoryStore(),
		tokens:   newTokens(t),
	}
	svc, err := NewService(f.accounts, fastHasher(), f.tokens, WithPreferences(f.prefs))
	require.NoError(t, err)
	f.svc = svc
	return f
}

func strp(s string) *string { return &s }

func TestRegisterLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reg, err := f.svc.Register(ctx, RegisterInput{Email: "Ada@Example.com", Password: "secret1", Name: strp("Ada")})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "Ada@Example.com", reg.User.Email)
	require.NotNil(t, reg.User.Name)
	assert.Equal(t, "Ada", *reg.User.Name)

	claims, err := f.tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.AccountID)

	login, err := f.svc.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	stored, err := f.accounts.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	assert.NotContains(t, stored.PasswordHash, "secret1")
}

func TestRegister_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "A@B.CO", Password: "other12"})
	assert.ErrorIs(t, err, ErrIdentityConflict)
}

// A store that always misses on lookup forces both registrations past the
// pre-check, so only the store's uniqueness rule can stop the second one.
type racingStore struct {
	*identity.MemoryStore
}

func (racingStore) GetByEmail(context.Context, string) (identity.Account, error) {
	return identity.Account{}, identity.ErrNotFound
}

func TestRegister_RaceMapsStoreConflict(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(racingStore{identity.NewMemoryStore()}, fastHasher(), newTokens(t))
	require.NoError(t, err)

	var ok, conflicts atomic.Int32
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, RegisterInput{Email: "race@b.co", Password: "secret1"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrIdentityConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(3), conflicts.Load())
}

func TestRegister_PasswordPolicy(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: "123"})
	var fe FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "password", fe.Field)
	assert.Equal(t, "Password must be at least 6 characters", fe.Message)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, errUnknown := f.svc.Login(ctx, "nobody@b.co", "secret1")
	_, errWrong := f.svc.Login(ctx, "a@b.co", "wrong-pass")
	_, errEmpty := f.svc.Login(ctx, "", "secret1")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errEmpty, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLogin_UpgradesLegacyBcrypt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	acc, err := f.accounts.Create(ctx, identity.CreateAccountInput{Email: "old@b.co", PasswordHash: string(legacy)})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "old@b.co", "secret1")
	require.NoError(t, err)

	stored, err := f.accounts.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))

	_, err = f.svc.Login(ctx, "old@b.co", "secret1")
	assert.NoError(t, err)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetProfile(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	reg, err := f.svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	p, err := f.svc.GetProfile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Nil(t, p.Preferences)
	assert.Nil(t, p.Name)

	_, err = f.prefs.Upsert(ctx, reg.User.ID, preferences.Patch{Allergies: []string{"peanut"}}, time.Time{})
	require.NoError(t, err)

	p, err = f.svc.GetProfile(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Preferences)
	assert.Equal(t, []string{"peanut"}, p.Preferences.Allergies)

	f.accounts.Delete(reg.User.ID)
	_, err = f.svc.GetProfile(ctx, reg.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(nil, fastHasher(), newTokens(t))
	assert.Error(t, err)
}
