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

// RateLimitExceeded bumps the fixed-window counter for key and reports
// whether the caller is over the ceiling. Counters live in redis so the
// limit holds across instances.
func RateLimitExceeded(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	rd := GetRedisClient()
	if rd == nil {
		return false, fmt.Errorf("redis client unavailable")
	}
	count, err := rd.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rd.Expire(ctx, key, window).Err(); err != nil {
			log.Printf("[redis] Error setting TTL for key [%s]: %s\n", key, err.Error())
		}
	}
	return count > limit, nil
}

// ResetRateLimit clears the counter, used when an expired credential
// legitimately needs a fresh link.
func ResetRateLimit(ctx context.Context, key string) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(ctx, key).Err(); err != nil {
		log.Printf("[redis] Error clearing key [%s]: %s\n", key, err.Error())
	}
}
