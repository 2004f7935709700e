package app

import (
	"log/slog"
	"net/http"
	"time"

	authapi "fooddecider/cmd/internal/auth/api"
	"fooddecider/cmd/internal/auth/session"
	"fooddecider/cmd/internal/httpx"
	"fooddecider/cmd/internal/metrics"
	"fooddecider/cmd/internal/preferences"
	"fooddecider/cmd/internal/suggestions"

	"github.com/jackc/pgx/v5/pgxpool"
)

type routes struct {
	log     *slog.Logger
	cfg     Config
	dbPool  *pgxpool.Pool
	metrics *metrics.Metrics
	gate    *session.Gate

	auth        *authapi.Handler
	preferences *preferences.Handler
	suggestions *suggestions.Handler
}

func registerHTTP(mux *http.ServeMux, rt routes) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if rt.cfg.ReadinessRequireDB && rt.dbPool == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if rt.dbPool != nil {
			if err := PingDB(r.Context(), rt.dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				rt.log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	// JSON health check polled by the mobile client.
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	mux.Handle("GET /metrics", rt.metrics.Handler())

	prefix := rt.cfg.APIPrefix
	rt.auth.Register(mux, prefix, rt.gate)
	rt.preferences.Register(mux, prefix, rt.gate)
	rt.suggestions.Register(mux, prefix, rt.gate)

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "Route not found")
	})
}
