package identity

// cmd/security/password is the single source of truth for Argon2id parameters
// (defaults + env overrides), password policy, and strict PHC decoding with
// anti-DoS bounds during Verify. identity exposes the small surface the
// stores and HTTP handlers need.

import (
	"quill/cmd/security/password"
)

// HashPassword returns a PHC-style Argon2id hash string using the effective
// (env-merged) configuration.
func HashPassword(plain string) (string, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		// Invalid env is an operational error, not a weak fallback.
		return "", err
	}
	return cfg.Hash(plain)
}

// VerifyPassword checks a password against a PHC Argon2id hash in constant
// time. Mismatch returns (false, nil); only malformed hashes or invalid env
// produce an error.
func VerifyPassword(plain, encodedPHC string) (bool, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return false, err
	}
	return cfg.Verify(encodedPHC, plain)
}
