package ports

import (
	"context"
	"io"
	"time"
)

// SessionStore tracks the single active token per identity. A token is only
// accepted while its ID matches the stored one.
type SessionStore interface {
	Save(ctx context.Context, userID uint, tokenID string, ttl time.Duration) error
	// Current returns the active token ID, or "" when there is none.
	Current(ctx context.Context, userID uint) (string, error)
	Revoke(ctx context.Context, userID uint) error
}

// IdempotencyStore remembers which order an Idempotency-Key produced. Claim
// reserves a key before the order exists; Lookup reports a claimed key whose
// order is not stored yet as found with orderID 0.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
	Lookup(ctx context.Context, scope, key string) (orderID uint, found bool, err error)
	Remember(ctx context.Context, scope, key string, orderID uint) error
	Release(ctx context.Context, scope, key string) error
}

// PhotoStore stores product photos and returns their public reference.
type PhotoStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
