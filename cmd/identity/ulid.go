package identity

import (
	"time"

	"quill/cmd/identity/ids"
)

// NewULID returns a new monotonic ULID (26-char string).
func NewULID(now time.Time) (string, error) {
	return ids.NewULID(now)
}
