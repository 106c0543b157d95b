package identity

import (
	"context"
	"time"
)

// Account is Quill's canonical security principal.
// Username is globally unique and case-sensitive; neither field mutates after
// creation. PasswordHash is a PHC-encoded Argon2id hash and must never leave
// this package's store boundary unserialized.
type Account struct {
	ID           string
	Username     string
	PasswordHash string

	CreatedAt time.Time
}

// CreateAccountInput describes an account registration request.
type CreateAccountInput struct {
	Username string
	Password string
	Now      time.Time
}

// Store is the account persistence boundary.
//
// CreateAccount must treat the username uniqueness check and the insert as a
// single logical operation: of two racing registrations with the same
// username, at most one may succeed; the loser gets a ConflictError.
type Store interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	Close() error
}
