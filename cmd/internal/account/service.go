// Package account implements registration, login and profile lookup on top
// of the credential store, the password hasher and the token manager.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fooddecider/cmd/identity"
	"fooddecider/cmd/internal/preferences"
	"fooddecider/cmd/security/password"
	"fooddecider/cmd/security/token"
)

const dummyPassword = "dummy-password-for-timing-only"

// TokenIssuer signs session tokens. *token.Manager satisfies it.
type TokenIssuer interface {
	Issue(sub token.Subject, ttl time.Duration) (token.Issued, error)
}

// PreferenceReader loads the preference record attached to profiles.
type PreferenceReader interface {
	Get(ctx context.Context, accountID string) (preferences.Preference, error)
}

// rehasher is implemented by hashers that can tell when a stored hash is outdated.
type rehasher interface {
	NeedsRehash(encodedHash string) bool
}

// View is the public shape of an account. It has no hash field.
type View struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is a View plus the stored preferences, if any.
type Profile struct {
	View
	Preferences *preferences.Preference `json:"preferences"`
}

// Session is returned by Register and Login.
type Session struct {
	User      View      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email    string
	Password string
	Name     *string
}

// Service is safe for concurrent use.
type Service struct {
	accounts identity.Store
	hasher   password.Hasher
	tokens   TokenIssuer
	prefs    PreferenceReader
	log      *slog.Logger
	now      func() time.Time

	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithPreferences attaches preference records to profiles.
func WithPreferences(p PreferenceReader) Option {
	return func(s *Service) { s.prefs = p }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a Service. All three collaborators are required.
func NewService(accounts identity.Store, hasher password.Hasher, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if accounts == nil || hasher == nil || tokens == nil {
		return nil, errors.New("account: nil dependency")
	}
	s := &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	// Verified against when the email is unknown so both login failures
	// cost one hash verification.
	if h, err := hasher.Hash(dummyPassword); err == nil {
		s.dummyHash = h
	}
	return s, nil
}

// Register creates an account and signs the caller in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	const op = "account.Register"

	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return Session{}, FieldError{Field: "email", Message: "email is required"}
	}

	// Checked before hashing to skip the cost on a known duplicate. The
	// check and the create are separate calls: a concurrent registration can
	// slip between them and is caught by the store's uniqueness rule below.
	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, ErrIdentityConflict
	case !identity.IsNotFound(err):
		return Session{}, fmt.Errorf("%s: lookup: %w", op, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if fe, ok := passwordPolicyError(err); ok {
			return Session{}, fe
		}
		return Session{}, fmt.Errorf("%s: hash: %w", op, err)
	}

	acc, err := s.accounts.Create(ctx, identity.CreateAccountInput{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  in.Name,
		Now:          s.now(),
	})
	if err != nil {
		if identity.IsConflict(err) {
			return Session{}, ErrIdentityConflict
		}
		return Session{}, fmt.Errorf("%s: create: %w", op, err)
	}

	return s.issue(op, acc)
}

// Login verifies credentials and signs the caller in.
func (s *Service) Login(ctx context.Context, email, plaintext string) (Session, error) {
	const op = "account.Login"

	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) || identity.IsInvalidInput(err) {
			if s.dummyHash != "" {
				_, _ = s.hasher.Verify(s.dummyHash, plaintext)
			}
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("%s: lookup: %w", op, err)
	}

	ok, err := s.hasher.Verify(acc.PasswordHash, plaintext)
	if err != nil {
		s.log.Error("account.login.bad_hash", "account_id", acc.ID, "err", err)
		return Session{}, ErrInvalidCredentials
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	s.maybeRehash(ctx, acc, plaintext)

	return s.issue(op, acc)
}

// GetProfile returns the account behind accountID with its preferences.
func (s *Service) GetProfile(ctx context.Context, accountID string) (Profile, error) {
	const op = "account.GetProfile"

	if strings.TrimSpace(accountID) == "" {
		return Profile{}, ErrUnauthorized
	}
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if identity.IsNotFound(err) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("%s: lookup: %w", op, err)
	}

	p := Profile{View: toView(acc)}
	if s.prefs == nil {
		return p, nil
	}

	pref, err := s.prefs.Get(ctx, acc.ID)
	switch {
	case errors.Is(err, preferences.ErrNotFound):
	case err != nil:
		return Profile{}, fmt.Errorf("%s: preferences: %w", op, err)
	default:
		p.Preferences = &pref
	}
	return p, nil
}

func (s *Service) issue(op string, acc identity.Account) (Session, error) {
	iss, err := s.tokens.Issue(token.Subject{AccountID: acc.ID, Email: acc.Email}, 0)
	if err != nil {
		return Session{}, fmt.Errorf("%s: issue token: %w", op, err)
	}
	return Session{User: toView(acc), Token: iss.Token, ExpiresAt: iss.ExpiresAt}, nil
}

// maybeRehash upgrades legacy or weaker hashes after a successful login.
// Failures are logged and never fail the login.
func (s *Service) maybeRehash(ctx context.Context, acc identity.Account, plaintext string) {
	rh, ok := s.hasher.(rehasher)
	if !ok || !rh.NeedsRehash(acc.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		s.log.Warn("account.rehash.skip", "account_id", acc.ID, "err", err)
		return
	}
	if err := s.accounts.UpdatePasswordHash(ctx, acc.ID, hash, s.now()); err != nil {
		s.log.Warn("account.rehash.fail", "account_id", acc.ID, "err", err)
		return
	}
	s.log.Info("account.rehash.ok", "account_id", acc.ID)
}

func toView(acc identity.Account) View {
	return View{
		ID:        acc.ID,
		Email:     acc.Email,
		Name:      acc.DisplayName,
		CreatedAt: acc.CreatedAt,
	}
}

func passwordPolicyError(err error) (FieldError, bool) {
	var pe *password.PolicyError
	if !errors.As(err, &pe) {
		return FieldError{}, false
	}
	return FieldError{Field: "password", Message: pe.Message()}, true
}
