package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour

	// claimTTL bounds how long a crashed request can hold a key.
	claimTTL     = time.Minute
	pendingValue = "pending"
)

// IdempotencyStore maps an Idempotency-Key to the order it created.
// Key format: idem:<scope>:<key>. The value is "pending" between Claim and
// Remember, then the decimal order id.
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim reserves the key for one request. It returns false when the key is
// already claimed or remembered.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKey(scope, key), pendingValue, claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency claim: %w", err)
	}
	return ok, nil
}

func (s *IdempotencyStore) Lookup(ctx context.Context, scope, key string) (uint, bool, error) {
	raw, err := s.client.Get(ctx, idempotencyKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if raw == pendingValue {
		return 0, true, nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: corrupt value %q", raw)
	}
	return uint(id), true, nil
}

// Remember replaces the claim with the created order id for the full TTL.
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key string, orderID uint) error {
	value := strconv.FormatUint(uint64(orderID), 10)
	if err := s.client.Set(ctx, idempotencyKey(scope, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Release drops a claim whose request failed so the key can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, idempotencyKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func idempotencyKey(scope, key string) string {
	return "idem:" + scope + ":" + key
}
