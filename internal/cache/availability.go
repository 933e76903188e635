package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"climabook/internal/domain"
)

// AvailabilityCache is the explicit presentation-boundary cache for
// month availability. The booking core itself holds no state between
// calls; this cache is read-through only and is invalidated after every
// mutating operation so a freed slot shows up on the next query.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func NewRedisClient(addr, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Username:     username,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func monthKey(t time.Time) string {
	return "availability:" + t.Format("2006-01")
}

// Get returns the cached month payload. A nil receiver, a miss, or any
// redis failure all report ok=false; the caller falls through to the
// store.
func (c *AvailabilityCache) Get(ctx context.Context, month time.Time) ([]domain.DayAvailability, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, monthKey(month)).Bytes()
	if err != nil {
		return nil, false
	}
	var days []domain.DayAvailability
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, false
	}
	return days, true
}

func (c *AvailabilityCache) Set(ctx context.Context, month time.Time, days []domain.DayAvailability) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, monthKey(month), raw, c.ttl).Err()
}

// Invalidate drops the cached month containing date.
func (c *AvailabilityCache) Invalidate(ctx context.Context, date time.Time) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	err := c.rdb.Del(ctx, monthKey(date)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
