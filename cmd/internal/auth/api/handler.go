package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quill/cmd/identity"
	"quill/cmd/internal/auth/session"
	"quill/cmd/internal/web"
)

// Handler wires HTTP account/session endpoints to identity and token services.
type Handler struct {
	log *slog.Logger
	cfg Config

	accounts identity.Store
	tokens   *session.Manager

	dummyHash string
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, accounts identity.Store, tokens *session.Manager) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if accounts == nil {
		return nil, errors.New("auth: nil account store")
	}
	if tokens == nil {
		return nil, errors.New("auth: nil token manager")
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		tokens:   tokens,
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := identity.HashPassword("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	}

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /accounts", h.handleRegister)
	mux.HandleFunc("POST /sessions", h.handleLogin)
	mux.HandleFunc("GET /sessions/current", h.handleCheck)
	mux.HandleFunc("DELETE /sessions/current", h.handleLogout)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	var fieldErrs []web.FieldError
	if !identity.ValidUsername(req.Username) {
		fieldErrs = append(fieldErrs, web.FieldError{
			Field:   "username",
			Message: "must be 3-20 alphanumeric characters",
		})
	}
	if req.Password == "" {
		fieldErrs = append(fieldErrs, web.FieldError{
			Field:   "password",
			Message: "is required",
		})
	}
	if len(fieldErrs) > 0 {
		web.WriteValidation(w, fieldErrs)
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	acct, err := h.accounts.CreateAccount(ctx, identity.CreateAccountInput{
		Username: req.Username,
		Password: req.Password,
		Now:      now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			web.WriteError(w, http.StatusConflict, "DUPLICATED_USERNAME", "username already exists")
		case identity.IsInvalidInput(err):
			web.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid input")
		default:
			h.log.Error("auth.register.fail", "err", err)
			web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}

	if !h.issueSessionCookie(w, acct.ID, now) {
		return
	}

	h.log.Info("auth.register", "account_id", acct.ID)
	web.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusUnauthorized, "NO_CREDENTIALS", "username and password are required")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		web.WriteError(w, http.StatusUnauthorized, "NO_CREDENTIALS", "username and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	acct, err := h.accounts.GetByUsername(ctx, username)
	if err != nil {
		if identity.IsNotFound(err) {
			// Timing resistance: perform a dummy verify when the account is
			// missing so the response time never leaks username existence.
			if h.dummyHash != "" {
				_, _ = identity.VerifyPassword(req.Password, h.dummyHash)
			}
			web.WriteError(w, http.StatusUnauthorized, "NO_CREDENTIALS", "invalid credentials")
			return
		}
		h.log.Error("auth.login.lookup.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	ok, err := identity.VerifyPassword(req.Password, acct.PasswordHash)
	if err != nil || !ok {
		web.WriteError(w, http.StatusUnauthorized, "NO_CREDENTIALS", "invalid credentials")
		return
	}

	if !h.issueSessionCookie(w, acct.ID, now) {
		return
	}

	h.log.Info("auth.login", "account_id", acct.ID)
	web.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "NOT_LOGGED_IN", "not logged in")
		return
	}

	acct, err := h.accounts.GetByID(r.Context(), principal)
	if err != nil {
		if identity.IsNotFound(err) {
			web.WriteError(w, http.StatusUnauthorized, "NOT_LOGGED_IN", "not logged in")
			return
		}
		h.log.Error("auth.check.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	web.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// ---- cookie helpers ----

// issueSessionCookie mints a token for accountID and attaches it as the
// session cookie. On failure it writes a 500 and reports false.
func (h *Handler) issueSessionCookie(w http.ResponseWriter, accountID string, now time.Time) bool {
	token, exp, err := h.tokens.Issue(accountID, now)
	if err != nil {
		h.log.Error("auth.token.issue.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return false
	}
	h.setSessionCookie(w, token, exp)
	return true
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, value string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}
