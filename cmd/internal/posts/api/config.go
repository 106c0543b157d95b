package postsapi

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries the HTTP-facing knobs of the posts API.
type Config struct {
	// MaxBodyBytes bounds post create/update request bodies.
	MaxBodyBytes int64

	// StreamWriteTimeout bounds each WebSocket event write.
	StreamWriteTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:       1 << 20,
		StreamWriteTimeout: 5 * time.Second,
	}
}

// LoadConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("QUILL_POSTS_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("posts: invalid QUILL_POSTS_MAX_BODY_BYTES %q", v)
		}
		cfg.MaxBodyBytes = n
	}
	if v := os.Getenv("QUILL_POSTS_STREAM_WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("posts: invalid QUILL_POSTS_STREAM_WRITE_TIMEOUT %q", v)
		}
		cfg.StreamWriteTimeout = d
	}

	return cfg, nil
}
