// internal/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rl"

// slidingWindowScript counts requests in a rolling window held in a sorted
// set. The member for each request is "<now_ms>-<seq>" so two requests in the
// same millisecond stay distinct. Returns {allowed, remaining, reset_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local seq_key = KEYS[2]
local now_ms = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now_ms - window_ms)
local count = redis.call('ZCARD', key)

local allowed = 0
if count < limit then
  allowed = 1
  local seq = redis.call('INCR', seq_key)
  redis.call('ZADD', key, now_ms, tostring(now_ms) .. '-' .. tostring(seq))
  count = count + 1
end

redis.call('PEXPIRE', key, window_ms)
redis.call('PEXPIRE', seq_key, window_ms)

local reset_ms = now_ms + window_ms
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest and oldest[2] then
  reset_ms = tonumber(oldest[2]) + window_ms
end

local remaining = limit - count
if remaining < 0 then
  remaining = 0
end
return {allowed, remaining, reset_ms}
`)

// Result is one rate-limit decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter is a sliding-window rate limiter backed by Redis. A nil backing
// client makes every check pass: rate limiting is an optional feature and
// fails open rather than blocking all traffic.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{client: client, limit: limit, window: window, logger: logger}
}

// Check records one request under key and reports whether it is allowed.
// Backend errors also fail open, with a warning log.
func (l *Limiter) Check(ctx context.Context, key string) (Result, error) {
	if l.client == nil {
		return Result{Allowed: true}, nil
	}

	now := time.Now()
	storeKey := keyPrefix + ":" + key
	raw, err := slidingWindowScript.Run(ctx, l.client,
		[]string{storeKey, storeKey + ":seq"},
		now.UnixMilli(), l.window.Milliseconds(), l.limit,
	).Result()
	if err != nil {
		l.logger.Warn("rate limit backend error; failing open", "key", key, "error", err)
		return Result{Allowed: true}, nil
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		l.logger.Warn("unexpected rate limit script response; failing open", "key", key)
		return Result{Allowed: true}, nil
	}

	allowed, err1 := asInt64(values[0])
	remaining, err2 := asInt64(values[1])
	resetMS, err3 := asInt64(values[2])
	if err1 != nil || err2 != nil || err3 != nil {
		l.logger.Warn("unexpected rate limit script response; failing open", "key", key)
		return Result{Allowed: true}, nil
	}

	return Result{
		Allowed:   allowed == 1,
		Limit:     l.limit,
		Remaining: int(remaining),
		ResetAt:   time.UnixMilli(resetMS),
	}, nil
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected redis response type %T", v)
	}
}

var (
	defaultOnce    sync.Once
	defaultLimiter *Limiter
)

// Default returns the process-wide limiter, constructing it on first use.
// The guarded initializer avoids the initialization-order hazards of a bare
// mutable package variable under concurrent first use. When addr is empty or
// the server is unreachable, the limiter is constructed without a backing
// client and fails open.
func Default(addr, password string, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	defaultOnce.Do(func() {
		var client *redis.Client
		if addr != "" {
			client = redis.NewClient(&redis.Options{Addr: addr, Password: password})
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unreachable; rate limiting disabled", "addr", addr, "error", err)
				client = nil
			}
		}
		defaultLimiter = New(client, limit, window, logger)
	})
	return defaultLimiter
}
