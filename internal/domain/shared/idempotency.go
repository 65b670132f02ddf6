package shared

import (
	"context"
	"time"
)

// RequestClaimer records client-supplied idempotency keys so a replayed
// write command can be detected.
type RequestClaimer interface {
	// Claim marks key as in use for ttl. It returns false when the key was
	// already claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees a key so the client may retry after a failed command.
	Release(ctx context.Context, key string) error
}
