package preferences

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fooddecider/cmd/internal/auth/session"
	"fooddecider/cmd/internal/httpx"
)

// Handler serves the preference routes. All of them require a session.
type Handler struct {
	log          *slog.Logger
	store        Store
	validate     *httpx.Validator
	maxBodyBytes int64
	now          func() time.Time
}

// NewHandler builds the preference routes over st.
func NewHandler(log *slog.Logger, st Store, v *httpx.Validator, maxBodyBytes int64) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if v == nil {
		v = httpx.NewValidator()
	}
	return &Handler{
		log:          log,
		store:        st,
		validate:     v,
		maxBodyBytes: maxBodyBytes,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Register mounts the routes under prefix behind the mandatory gate.
func (h *Handler) Register(mux *http.ServeMux, prefix string, gate *session.Gate) {
	mux.Handle("GET "+prefix+"/preferences", gate.Require(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT "+prefix+"/preferences", gate.Require(http.HandlerFunc(h.handleUpsert)))
	mux.Handle("DELETE "+prefix+"/preferences", gate.Require(http.HandlerFunc(h.handleDelete)))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	pref, err := h.store.Get(r.Context(), session.AccountID(r.Context()))
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteData(w, http.StatusOK, nil)
	case err != nil:
		httpx.WriteInternal(w, h.log, "preferences.get.fail", err)
	default:
		httpx.WriteData(w, http.StatusOK, pref)
	}
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if !httpx.DecodeAndValidate(w, r, h.maxBodyBytes, h.validate, &patch) {
		return
	}

	pref, err := h.store.Upsert(r.Context(), session.AccountID(r.Context()), patch, h.now())
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
	case err != nil:
		httpx.WriteInternal(w, h.log, "preferences.upsert.fail", err)
	default:
		httpx.WriteDataMessage(w, http.StatusOK, pref, "Preferences updated successfully")
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(r.Context(), session.AccountID(r.Context()))
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "Preferences not found")
	case err != nil:
		httpx.WriteInternal(w, h.log, "preferences.delete.fail", err)
	default:
		httpx.WriteMessage(w, http.StatusOK, "Preferences deleted successfully")
	}
}
