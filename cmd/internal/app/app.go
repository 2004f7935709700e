// Package app wires the fooddecider server runtime: config, logging, storage,
// the domain HTTP handlers and the middleware chain.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fooddecider/cmd/identity"
	"fooddecider/cmd/internal/account"
	authapi "fooddecider/cmd/internal/auth/api"
	"fooddecider/cmd/internal/auth/session"
	"fooddecider/cmd/internal/httpx"
	"fooddecider/cmd/internal/metrics"
	"fooddecider/cmd/internal/preferences"
	"fooddecider/cmd/internal/store"
	"fooddecider/cmd/internal/suggestions"
	"fooddecider/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
)

// stores groups the persistence ports of every domain package.
type stores struct {
	accounts    identity.Store
	preferences preferences.Store
	responses   suggestions.ResponseStore
	history     suggestions.HistoryStore
}

// App owns the HTTP handler graph and the resources behind it.
type App struct {
	cfg Config
	log *slog.Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	tracing *tracing
	metrics *metrics.Metrics
	handler http.Handler
}

// New constructs a fully wired App. With an empty DatabaseURL every store is
// in-memory; otherwise Postgres is used (and migrated first when MigrateOnStart).
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)
	}

	tokens, err := token.NewManager(cfg.Token)
	if err != nil {
		return nil, securityError(err)
	}

	st, pool, err := newStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		log:       log,
		dbPool:    pool,
		dbEnabled: pool != nil,
		metrics:   metrics.New(),
	}

	a.tracing, err = newTracing(cfg.TraceStdout, os.Stdout)
	if err != nil {
		a.closePool()
		return nil, fmt.Errorf("tracing: %w", err)
	}

	accounts, err := account.NewService(st.accounts, cfg.Password, tokens,
		account.WithPreferences(st.preferences),
		account.WithLogger(log),
	)
	if err != nil {
		a.closePool()
		return nil, err
	}

	suggestionSvc, err := suggestions.NewService(st.responses, st.history, st.preferences)
	if err != nil {
		a.closePool()
		return nil, err
	}

	validator := httpx.NewValidator()
	gate := session.NewGate(tokens, log, session.WithObserver(a.metrics.GateOutcome))

	authHandler, err := authapi.NewHandler(log, cfg.Auth, accounts,
		authapi.WithObserver(a.metrics.AuthEvent),
		authapi.WithValidator(validator),
	)
	if err != nil {
		a.closePool()
		return nil, err
	}

	mux := http.NewServeMux()
	registerHTTP(mux, routes{
		log:         log,
		cfg:         cfg,
		dbPool:      pool,
		metrics:     a.metrics,
		gate:        gate,
		auth:        authHandler,
		preferences: preferences.NewHandler(log, st.preferences, validator, cfg.Auth.MaxBodyBytes),
		suggestions: suggestions.NewHandler(log, suggestionSvc, validator, cfg.Auth.MaxBodyBytes),
	})

	a.handler = a.chain(mux)
	return a, nil
}

// chain wraps the mux, innermost first: metrics must see the matched pattern
// and the access log must see the request id.
func (a *App) chain(mux *http.ServeMux) http.Handler {
	var h http.Handler = a.metrics.Instrument(mux)
	h = WithCORS(h, a.cfg, a.log)
	h = WithSecurityHeaders(h)
	h = WithRecovery(h, a.log)
	h = WithRequestLogging(h, a.log)
	h = WithRequestID(h)
	return a.tracing.handler(h)
}

// Handler returns the complete HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled, "api_prefix", a.cfg.APIPrefix)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err, ok := <-errCh:
		if ok {
			a.log.Error("server.fail", "err", err)
			_ = a.Close(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		_ = a.Close(shutdownCtx)
		return err
	}
	<-errCh

	if err := a.Close(shutdownCtx); err != nil {
		a.log.Error("app.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

// Close flushes traces and releases the database pool.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.tracing != nil {
		err = a.tracing.shutdown(ctx)
	}
	a.closePool()
	return err
}

func (a *App) closePool() {
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// memoryAccountCheck lets the in-memory stores reject writes for accounts
// that do not exist, e.g. a token minted before a restart.
func memoryAccountCheck(accounts identity.Store) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, id string) (bool, error) {
		_, err := accounts.GetByID(ctx, id)
		switch {
		case err == nil:
			return true, nil
		case identity.IsNotFound(err):
			return false, nil
		default:
			return false, err
		}
	}
}

// newStores decides between Postgres-backed persistence and the in-memory dev stores.
func newStores(ctx context.Context, cfg Config, log *slog.Logger) (stores, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		accounts := identity.NewMemoryStore()
		exists := memoryAccountCheck(accounts)
		sug := suggestions.NewMemoryStore(suggestions.WithAccountCheck(exists))
		return stores{
			accounts:    accounts,
			preferences: preferences.NewMemoryStore(preferences.WithAccountCheck(exists)),
			responses:   sug,
			history:     sug,
		}, nil, nil
	}

	if cfg.MigrateOnStart {
		if err := migrateUp(cfg.DatabaseURL, log); err != nil {
			return stores{}, nil, err
		}
	}

	pool, err := NewDBPool(ctx, cfg, log)
	if err != nil {
		return stores{}, nil, err
	}

	st, err := postgresStores(pool)
	if err != nil {
		pool.Close()
		return stores{}, nil, err
	}

	log.Info("db.enabled.postgres_store")
	return st, pool, nil
}

func postgresStores(db store.DB) (stores, error) {
	accounts, err := identity.NewPostgresStore(db)
	if err != nil {
		return stores{}, err
	}
	prefs, err := preferences.NewPostgresStore(db)
	if err != nil {
		return stores{}, err
	}
	sug, err := suggestions.NewPostgresStore(db)
	if err != nil {
		return stores{}, err
	}
	return stores{
		accounts:    accounts,
		preferences: prefs,
		responses:   sug,
		history:     sug,
	}, nil
}

func migrateUp(databaseURL string, log *slog.Logger) error {
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			log.Warn("db.migrate.close.fail", "err", cerr)
		}
	}()

	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("db.migrate.up", "version", version, "dirty", dirty)
	return nil
}
