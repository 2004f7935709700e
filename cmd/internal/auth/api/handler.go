package authapi

import (
	"errors"
	"log/slog"
	"net/http"

	"fooddecider/cmd/internal/account"
	"fooddecider/cmd/internal/auth/session"
	"fooddecider/cmd/internal/httpx"
)

// Handler wires the auth endpoints to the account service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	accounts *account.Service
	validate *httpx.Validator
	observe  func(action, outcome string)
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithObserver reports every audited auth event (metrics).
func WithObserver(fn func(action, outcome string)) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.observe = fn
		}
	}
}

// WithValidator shares a validator between handlers.
func WithValidator(v *httpx.Validator) HandlerOption {
	return func(h *Handler) {
		if v != nil {
			h.validate = v
		}
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, accounts *account.Service, opts ...HandlerOption) (*Handler, error) {
	if accounts == nil {
		return nil, errors.New("auth: nil account service")
	}
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		observe:  func(string, string) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.validate == nil {
		h.validate = httpx.NewValidator()
	}
	return h, nil
}

// Register wires auth routes under prefix. The profile route sits behind the mandatory gate.
func (h *Handler) Register(mux *http.ServeMux, prefix string, gate *session.Gate) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST "+prefix+"/auth/register", h.handleRegister)
	mux.HandleFunc("POST "+prefix+"/auth/login", h.handleLogin)
	mux.Handle("GET "+prefix+"/auth/profile", gate.Require(http.HandlerFunc(h.handleProfile)))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpx.DecodeAndValidate(w, r, h.cfg.MaxBodyBytes, h.validate, &req) {
		h.observe("register", outcomeInvalid)
		return
	}

	sess, err := h.accounts.Register(r.Context(), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		var fe account.FieldError
		switch {
		case errors.Is(err, account.ErrIdentityConflict):
			h.audit(r, "register", outcomeConflict, "", req.Email)
			httpx.WriteError(w, http.StatusBadRequest, httpx.CodeIdentityConflict, "User already exists with this email")
		case errors.As(err, &fe):
			h.audit(r, "register", outcomeInvalid, "", req.Email)
			httpx.WriteValidation(w, []httpx.FieldError{{Field: fe.Field, Message: fe.Message}})
		default:
			h.audit(r, "register", outcomeError, "", req.Email)
			httpx.WriteInternal(w, h.log, "auth.register.fail", err)
		}
		return
	}

	h.audit(r, "register", outcomeSuccess, sess.User.ID, req.Email)
	httpx.WriteDataMessage(w, http.StatusCreated, sess, "User registered successfully")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httpx.DecodeAndValidate(w, r, h.cfg.MaxBodyBytes, h.validate, &req) {
		h.observe("login", outcomeInvalid)
		return
	}

	sess, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			h.audit(r, "login", outcomeDenied, "", req.Email)
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeInvalidCredentials, "Invalid email or password")
			return
		}
		h.audit(r, "login", outcomeError, "", req.Email)
		httpx.WriteInternal(w, h.log, "auth.login.fail", err)
		return
	}

	h.audit(r, "login", outcomeSuccess, sess.User.ID, req.Email)
	httpx.WriteDataMessage(w, http.StatusOK, sess, "Login successful")
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.GetProfile(r.Context(), session.AccountID(r.Context()))
	switch {
	case errors.Is(err, account.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Access token required")
	case errors.Is(err, account.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
	case err != nil:
		httpx.WriteInternal(w, h.log, "auth.profile.fail", err)
	default:
		httpx.WriteData(w, http.StatusOK, profile)
	}
}
