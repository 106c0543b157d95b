package authapi

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type principalKey struct{}

// ContextWithPrincipal returns a context carrying the resolved account id.
// The value is immutable for the lifetime of the request.
func ContextWithPrincipal(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, principalKey{}, accountID)
}

// PrincipalFrom returns the account id resolved for this request, or
// ("", false) for an anonymous request.
func PrincipalFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithPrincipal resolves the session cookie into a principal and attaches it
// to the request context. It runs on every route and never blocks a request:
// a missing, malformed, or expired token simply leaves the request anonymous,
// and route-level authorization rejects later where login is required.
func (h *Handler) WithPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(h.cfg.CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		raw := strings.TrimSpace(c.Value)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.tokens.Verify(raw, time.Now().UTC())
		if err != nil {
			// The reason (expired vs forged) deliberately degrades to "not
			// logged in"; it is logged for operators, never surfaced.
			h.log.Debug("auth.principal.reject", "err", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), claims.AccountID)))
	})
}
