// Package authapi wires HTTP account/session endpoints to the identity store
// and the session-token manager, and provides the principal-resolution
// middleware used by every route.
package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls the auth HTTP surface: cookie transport and body limits.
type Config struct {
	// CookieName is the session cookie carrying the signed token.
	CookieName string

	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// MaxBodyBytes bounds request bodies on auth endpoints.
	MaxBodyBytes int64
}

// DefaultConfig returns defaults suitable for development.
func DefaultConfig() Config {
	return Config{
		CookieName:     "access_token",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		MaxBodyBytes:   1 << 20,
	}
}

// LoadConfigFromEnv loads auth API configuration from environment variables.
//
// Optional:
//   - QUILL_SESSION_COOKIE
//   - QUILL_COOKIE_DOMAIN
//   - QUILL_COOKIE_SECURE (bool)
//   - QUILL_AUTH_MAX_BODY_BYTES
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("QUILL_SESSION_COOKIE")); v != "" {
		cfg.CookieName = v
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_COOKIE_DOMAIN")); v != "" {
		cfg.CookieDomain = v
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_COOKIE_SECURE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CookieSecure = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_AUTH_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}

	return cfg
}
