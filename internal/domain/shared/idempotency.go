package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client supplied idempotency keys so a retried
// request replays the first outcome instead of repeating side effects.
type IdempotencyStore interface {
	// Claim reserves key for ttl. It returns false when the key is already
	// claimed or completed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete records the result reference for a claimed key.
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Lookup returns the stored result reference. done is false while the
	// key is claimed but not completed; found is false for unknown keys.
	Lookup(ctx context.Context, key string) (result string, done bool, found bool, err error)

	// Release drops a claim so the client can retry after a failure.
	Release(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key is remembered. Default: 24 hours
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
