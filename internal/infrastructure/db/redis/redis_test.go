package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the handful of commands the adapters use. Any other
// command panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// ---------------------------------------------------------------------------
// SessionStore
// ---------------------------------------------------------------------------

func TestSessionStore_SaveCurrentRevoke(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := NewSessionStore(fake)

	current, err := store.Current(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, current)

	require.NoError(t, store.Save(ctx, 7, "jti-1", time.Hour))
	assert.Equal(t, time.Hour, fake.ttls["session:7"])

	require.NoError(t, store.Save(ctx, 7, "jti-2", time.Hour))
	current, err = store.Current(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "jti-2", current, "a new login replaces the session")

	require.NoError(t, store.Revoke(ctx, 7))
	current, err = store.Current(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestSessionStore_BackendError(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	store := NewSessionStore(fake)

	_, err := store.Current(context.Background(), 1)
	assert.Error(t, err)
	assert.Error(t, store.Revoke(context.Background(), 1))
}

// ---------------------------------------------------------------------------
// IdempotencyStore
// ---------------------------------------------------------------------------

func TestIdempotencyStore_ClaimRememberLookup(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := NewIdempotencyStore(fake, 0)

	_, found, err := store.Lookup(ctx, "user:1", "abc")
	require.NoError(t, err)
	assert.False(t, found)

	claimed, err := store.Claim(ctx, "user:1", "abc")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, claimTTL, fake.ttls["idem:user:1:abc"])

	claimed, err = store.Claim(ctx, "user:1", "abc")
	require.NoError(t, err)
	assert.False(t, claimed, "a second request cannot claim the same key")

	id, found, err := store.Lookup(ctx, "user:1", "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, id, "a pending claim has no order yet")

	require.NoError(t, store.Remember(ctx, "user:1", "abc", 42))
	assert.Equal(t, defaultIdempotencyTTL, fake.ttls["idem:user:1:abc"])

	id, found, err = store.Lookup(ctx, "user:1", "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint(42), id)

	_, found, err = store.Lookup(ctx, "user:2", "abc")
	require.NoError(t, err)
	assert.False(t, found, "keys are scoped per identity")
}

func TestIdempotencyStore_ReleaseFreesKey(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(newFakeRedis(), time.Hour)

	claimed, err := store.Claim(ctx, "user:1", "abc")
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, store.Release(ctx, "user:1", "abc"))

	claimed, err = store.Claim(ctx, "user:1", "abc")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestIdempotencyStore_CorruptValue(t *testing.T) {
	fake := newFakeRedis()
	fake.data["idem:user:1:abc"] = "not-a-number"

	_, _, err := NewIdempotencyStore(fake, time.Minute).Lookup(context.Background(), "user:1", "abc")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// DedupChecker
// ---------------------------------------------------------------------------

func TestDedupChecker_MarkThenDuplicate(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDedupChecker(newFakeRedis())

	dup, err := d.IsDuplicate(ctx, 1, "created", ts)
	require.NoError(t, err)
	assert.False(t, dup)

	require.NoError(t, d.Mark(ctx, 1, "created", ts))

	dup, err = d.IsDuplicate(ctx, 1, "created", ts)
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = d.IsDuplicate(ctx, 1, "delivered", ts)
	require.NoError(t, err)
	assert.False(t, dup)
}
