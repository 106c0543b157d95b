// Package identity implements Quill's account & credential foundation.
//
// It contains the Account model, username validation, Argon2id credential
// hashing, ULID generation, and the store interface with Postgres and
// in-memory implementations used by the HTTP layer.
//
// This package is intentionally dependency-light and security-first.
package identity
