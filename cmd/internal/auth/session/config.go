package session

import (
	"os"
	"time"
)

// Config defines runtime configuration for the session-token subsystem.
//
// It controls token lifetime, clock skew tolerance, and the PASETO v4 signing
// key. The struct is intentionally explicit and environment-driven so that
// production deployments can tune security parameters without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of session tokens.
	Issuer string

	// TokenTTL defines the lifetime of session tokens, fixed at issuance.
	TokenTTL time.Duration

	// ClockSkew defines the allowed time skew during token validation.
	ClockSkew time.Duration

	// SecretKeyHex is the hex-encoded Ed25519 secret key used to sign
	// tokens. When empty, NewManager generates an ephemeral key; tokens then
	// survive only the current process, which is acceptable for dev only.
	SecretKeyHex string
}

// DefaultConfig returns a secure default configuration suitable for development.
//
// Production environments should override values via environment variables.
func DefaultConfig() Config {
	return Config{
		Issuer:    "quill",
		TokenTTL:  7 * 24 * time.Hour,
		ClockSkew: 30 * time.Second,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional (durations must be valid Go duration strings):
//   - QUILL_AUTH_ISSUER
//   - QUILL_AUTH_TOKEN_TTL
//   - QUILL_AUTH_CLOCK_SKEW
//   - QUILL_TOKEN_SECRET_KEY_HEX
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("QUILL_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("QUILL_AUTH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TokenTTL = d
	}

	if v := os.Getenv("QUILL_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	cfg.SecretKeyHex = os.Getenv("QUILL_TOKEN_SECRET_KEY_HEX")

	return cfg, nil
}
