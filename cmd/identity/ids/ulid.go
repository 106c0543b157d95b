// Package ids provides identity ID primitives (ULID) used across Quill stores.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	monoMu      sync.Mutex
	monoEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a new ULID string (26 chars).
// ULIDs are lexicographically sortable; the shared monotonic entropy source
// guarantees that successive calls within a process yield strictly increasing
// identifiers even inside the same millisecond, which is the ordering contract
// post listings rely on.
func NewULID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	monoMu.Lock()
	defer monoMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now), monoEntropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsValid reports whether s is a well-formed canonical ULID.
func IsValid(s string) bool {
	if len(s) != ulid.EncodedSize {
		return false
	}
	_, err := ulid.ParseStrict(s)
	return err == nil
}
