// Package analytics tracks medication adherence counters in Redis.
// Each dose resolution (taken, missed) increments a per-medicine daily
// counter, giving caretakers an adherence picture without scanning the
// full history table.
package analytics

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Viveksharma8542/healthalert-app/internal/domain"
)

// DefaultRetention is how long adherence counters live in Redis.
const DefaultRetention = 90 * 24 * time.Hour

// RedisSink writes adherence counters to Redis. Writes are best-effort:
// failures are logged and never surfaced to the reminder core.
type RedisSink struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client, retention: DefaultRetention}
}

// WithRetention overrides the counter TTL.
func (s *RedisSink) WithRetention(d time.Duration) *RedisSink {
	if d > 0 {
		s.retention = d
	}
	return s
}

// Record increments the daily counter for one dose resolution.
func (s *RedisSink) Record(ctx context.Context, medicineID uuid.UUID, resolution domain.Resolution, at time.Time) {
	key := buildKey(medicineID, resolution, at)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.retention)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("analytics: record %s: %v", key, err)
	}
}

// DailyCounts returns per-day counts of the given resolution for one
// medicine over the last days days, newest first. Days with no counter
// report zero.
func (s *RedisSink) DailyCounts(ctx context.Context, medicineID uuid.UUID, resolution domain.Resolution, days int) ([]DayCount, error) {
	now := time.Now().UTC()

	keys := make([]string, days)
	dates := make([]string, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -i)
		keys[i] = buildKey(medicineID, resolution, day)
		dates[i] = day.Format(domain.DateLayout)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	counts := make([]DayCount, days)
	for i, v := range values {
		counts[i] = DayCount{Date: dates[i]}
		if str, ok := v.(string); ok {
			if n, err := strconv.Atoi(str); err == nil {
				counts[i].Count = n
			}
		}
	}
	return counts, nil
}

// DayCount is one day's adherence counter.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func buildKey(medicineID uuid.UUID, resolution domain.Resolution, at time.Time) string {
	return fmt.Sprintf("med:%s:%s:%s", medicineID, resolution, at.UTC().Format("20060102"))
}
