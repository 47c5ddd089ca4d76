package service

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/studiofit/gym-assistant-go/internal/redis"
)

// slidingWindowScript counts events in the last window and admits the new
// one only under the limit. Runs atomically on the Redis side.
var slidingWindowScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
    redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
    redis.call('PEXPIRE', key, window)
    return 1
end
return 0
`)

// RateLimiter throttles inbound messages per member phone number using a
// sliding one minute window.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  perMinute,
		window: time.Minute,
	}
}

// Allow reports whether the member may send another message. Redis
// failures admit the message; throttling is protection, not correctness.
func (r *RateLimiter) Allow(ctx context.Context, phone string) bool {
	now := time.Now().UnixMilli()
	result, err := slidingWindowScript.Run(ctx, r.client,
		[]string{redis.RateLimitKey(phone)},
		now, r.window.Milliseconds(), r.limit,
	).Int()
	if err != nil {
		log.Warn().Err(err).Str("phone", phone).Msg("Rate limiter unavailable, admitting message")
		return true
	}
	return result == 1
}
