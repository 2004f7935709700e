package suggestions

import (
	"errors"
	"log/slog"
	"net/http"

	"fooddecider/cmd/internal/auth/session"
	"fooddecider/cmd/internal/httpx"
)

// Handler serves the suggestion and history routes.
type Handler struct {
	log          *slog.Logger
	svc          *Service
	validate     *httpx.Validator
	maxBodyBytes int64
}

// NewHandler builds the routes over svc.
func NewHandler(log *slog.Logger, svc *Service, v *httpx.Validator, maxBodyBytes int64) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if v == nil {
		v = httpx.NewValidator()
	}
	return &Handler{log: log, svc: svc, validate: v, maxBodyBytes: maxBodyBytes}
}

// Register mounts the routes under prefix. Generation works anonymously;
// history requires a session.
func (h *Handler) Register(mux *http.ServeMux, prefix string, gate *session.Gate) {
	mux.Handle("POST "+prefix+"/suggestions/generate", gate.Optional(http.HandlerFunc(h.handleGenerate)))
	mux.Handle("POST "+prefix+"/suggestions/history", gate.Require(http.HandlerFunc(h.handleSaveHistory)))
	mux.Handle("GET "+prefix+"/suggestions/history", gate.Require(http.HandlerFunc(h.handleHistory)))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var a Answers
	if !httpx.DecodeAndValidate(w, r, h.maxBodyBytes, h.validate, &a) {
		return
	}

	res, err := h.svc.Generate(r.Context(), session.AccountID(r.Context()), a)
	if err != nil {
		httpx.WriteInternal(w, h.log, "suggestions.generate.fail", err)
		return
	}
	httpx.WriteDataMessage(w, http.StatusOK, res, "Suggestions generated successfully")
}

func (h *Handler) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var e NewEntry
	if !httpx.DecodeAndValidate(w, r, h.maxBodyBytes, h.validate, &e) {
		return
	}

	entry, err := h.svc.SaveToHistory(r.Context(), session.AccountID(r.Context()), e)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
	case err != nil:
		httpx.WriteInternal(w, h.log, "suggestions.history.save.fail", err)
	default:
		httpx.WriteDataMessage(w, http.StatusCreated, entry, "Meal saved to history")
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.History(r.Context(), session.AccountID(r.Context()))
	if err != nil {
		httpx.WriteInternal(w, h.log, "suggestions.history.list.fail", err)
		return
	}
	httpx.WriteData(w, http.StatusOK, entries)
}
