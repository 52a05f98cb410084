// Package redis caches availability responses. The cache is strictly an
// accelerator: every mutation path invalidates, and a missing or down Redis
// degrades to direct database reads.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	Client *redis.Client
	Ctx    = context.Background()

	// loc is the business time zone; cache keys name calendar days in it
	// so an invalidation for an instant hits the same key a query wrote.
	loc = time.UTC
)

// Availability entries are short-lived; invalidation on booking covers the
// common case and the TTL covers everything else.
const slotsTTL = 2 * time.Minute

func InitRedis(businessLoc *time.Location) {
	if businessLoc != nil {
		loc = businessLoc
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		fmt.Println("REDIS_ADDR not set, availability caching disabled")
		return
	}

	Client = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	// Test connection
	if _, err := Client.Ping(Ctx).Result(); err != nil {
		fmt.Printf("Failed to connect to Redis, caching disabled: %v\n", err)
		Client = nil
		return
	}
	fmt.Println("✅ Connected to Redis")
}

func slotsKey(staffProfileID, serviceID string, date time.Time) string {
	return fmt.Sprintf("slots:%s:%s:%s", staffProfileID, date.In(loc).Format("2006-01-02"), serviceID)
}

// GetSlots returns the cached slot list, or ok=false on miss or when the
// cache is unavailable.
func GetSlots(ctx context.Context, staffProfileID, serviceID string, date time.Time) ([]time.Time, bool) {
	if Client == nil {
		return nil, false
	}
	raw, err := Client.Get(ctx, slotsKey(staffProfileID, serviceID, date)).Result()
	if err != nil {
		return nil, false
	}
	var slots []time.Time
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func SetSlots(ctx context.Context, staffProfileID, serviceID string, date time.Time, slots []time.Time) {
	if Client == nil {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	Client.Set(ctx, slotsKey(staffProfileID, serviceID, date), raw, slotsTTL)
}

// InvalidateSlots drops every cached availability list for the staff member
// on the given day, across all services.
func InvalidateSlots(ctx context.Context, staffProfileID string, date time.Time) {
	dropPattern(ctx, fmt.Sprintf("slots:%s:%s:*", staffProfileID, date.In(loc).Format("2006-01-02")))
}

// InvalidateStaff drops all cached availability for a staff member, used
// when their working hours change.
func InvalidateStaff(ctx context.Context, staffProfileID string) {
	dropPattern(ctx, fmt.Sprintf("slots:%s:*", staffProfileID))
}

// dropPattern deletes every key matching pattern. SCAN keeps the walk
// incremental instead of blocking the server the way KEYS would.
func dropPattern(ctx context.Context, pattern string) {
	if Client == nil {
		return
	}
	var keys []string
	iter := Client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil || len(keys) == 0 {
		return
	}
	Client.Del(ctx, keys...)
}
