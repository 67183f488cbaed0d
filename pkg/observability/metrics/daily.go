package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dailyKeyPrefix = "mobility:assessments:"

// DailyCounter keeps per-day assessment totals in Redis, shared across
// replicas. Keys expire after ttl.
type DailyCounter struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewDailyCounter(client *redis.Client, ttl time.Duration) *DailyCounter {
	return &DailyCounter{client: client, ttl: ttl, now: time.Now}
}

func DailyKey(day time.Time) string {
	return dailyKeyPrefix + day.UTC().Format("20060102")
}

// Increment bumps today's total and its risk-level bucket.
func (c *DailyCounter) Increment(ctx context.Context, riskLevel string) error {
	key := DailyKey(c.now())
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.HIncrBy(ctx, key+":risk", riskLevel, 1)
	pipe.Expire(ctx, key, c.ttl)
	pipe.Expire(ctx, key+":risk", c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("increment daily counter: %w", err)
	}
	return nil
}

// Count returns the total for day, zero when no key exists.
func (c *DailyCounter) Count(ctx context.Context, day time.Time) (int64, error) {
	n, err := c.client.Get(ctx, DailyKey(day)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read daily counter: %w", err)
	}
	return n, nil
}

// ByRiskLevel returns the per-level totals for day.
func (c *DailyCounter) ByRiskLevel(ctx context.Context, day time.Time) (map[string]int64, error) {
	raw, err := c.client.HGetAll(ctx, DailyKey(day)+":risk").Result()
	if err != nil {
		return nil, fmt.Errorf("read daily risk counters: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for level, v := range raw {
		var n int64
		if _, err := fmt.Sscan(v, &n); err == nil {
			out[level] = n
		}
	}
	return out, nil
}
