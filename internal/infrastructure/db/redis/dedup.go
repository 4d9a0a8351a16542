package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker guards the audit pipeline against recording the same order
// event twice.
// Key format: dedup:order:<order_id>:<type>:<unix_nano>
type DedupChecker struct {
	client redis.Cmdable
}

func NewDedupChecker(client redis.Cmdable) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact event has already been recorded.
func (d *DedupChecker) IsDuplicate(ctx context.Context, orderID uint, eventType string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(orderID, eventType, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this event has been recorded (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, orderID uint, eventType string, ts time.Time) error {
	return d.client.Set(ctx, d.key(orderID, eventType, ts), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(orderID uint, eventType string, ts time.Time) string {
	return fmt.Sprintf("dedup:order:%d:%s:%d", orderID, eventType, ts.UnixNano())
}
