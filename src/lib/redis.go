package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

const bookedDaysTTL = 24 * time.Hour

func bookedDaysKey(itemId uint) string {
	return fmt.Sprintf("item:%d:days", itemId)
}

// CacheBookedDays adds days to the item's cached day set. The cache is
// best-effort: the booked_days table stays the source of truth and a
// cache miss just falls through to the database.
func CacheBookedDays(ctx context.Context, itemId uint, days []string) {
	rd := GetRedisClient()
	if rd == nil || len(days) == 0 {
		return
	}
	members := make([]any, 0, len(days))
	for _, d := range days {
		members = append(members, d)
	}
	key := bookedDaysKey(itemId)
	if err := rd.SAdd(ctx, key, members...).Err(); err != nil {
		log.Printf("[redis] Failed to cache days for item %d: %s\n", itemId, err.Error())
		return
	}
	rd.Expire(ctx, key, bookedDaysTTL)
}

// UncacheBookedDays drops days from the item's cached day set.
func UncacheBookedDays(ctx context.Context, itemId uint, days []string) {
	rd := GetRedisClient()
	if rd == nil || len(days) == 0 {
		return
	}
	members := make([]any, 0, len(days))
	for _, d := range days {
		members = append(members, d)
	}
	if err := rd.SRem(ctx, bookedDaysKey(itemId), members...).Err(); err != nil {
		log.Printf("[redis] Failed to uncache days for item %d: %s\n", itemId, err.Error())
	}
}

// GetCachedBookedDays returns the cached day set for an item, or nil when
// the cache has nothing.
func GetCachedBookedDays(ctx context.Context, itemId uint) []string {
	rd := GetRedisClient()
	if rd == nil {
		return nil
	}
	days, err := rd.SMembers(ctx, bookedDaysKey(itemId)).Result()
	if err != nil || len(days) == 0 {
		return nil
	}
	return days
}
