package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/redis/go-redis/v9"
)

// RedisConfig controls redis client behavior.
// Keep it config-driven; defaults should be safe and conservative.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	ConnMaxIdleTime time.Duration

	PingTimeout time.Duration

	// PingAttempts bounds the startup connectivity check (with exponential backoff).
	PingAttempts uint
	PingBackoff  time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	out := c
	if out.DialTimeout <= 0 {
		out.DialTimeout = 3 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = 2 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 2 * time.Second
	}
	if out.PoolSize <= 0 {
		out.PoolSize = 10
	}
	if out.MinIdleConns < 0 {
		out.MinIdleConns = 0
	}
	if out.PoolTimeout <= 0 {
		out.PoolTimeout = 4 * time.Second
	}
	if out.ConnMaxIdleTime <= 0 {
		out.ConnMaxIdleTime = 5 * time.Minute
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	if out.PingAttempts == 0 {
		out.PingAttempts = 3
	}
	if out.PingBackoff <= 0 {
		out.PingBackoff = 200 * time.Millisecond
	}
	return out
}

// OpenRedis initializes a Redis client and validates connectivity via PING,
// retrying with backoff while the server comes up.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	})

	err := retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
			defer cancel()
			return rdb.Ping(pingCtx).Err()
		},
		retry.Context(ctx),
		retry.Attempts(cfg.PingAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(cfg.PingBackoff),
		retry.MaxDelay(4*cfg.PingBackoff),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

var windowQuotaScript = redis.NewScript(`
-- KEYS[1] = window counter key
-- ARGV[1] = cost (int)
-- ARGV[2] = limit (int)
-- ARGV[3] = window_ms (int)
--
-- Returns:
--  1 if the cost fits in the window
--  0 if rejected (counter left unchanged)
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local cost = tonumber(ARGV[1])
if current + cost > tonumber(ARGV[2]) then
  return 0
end
current = redis.call('INCRBY', KEYS[1], cost)
if current == cost or redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// ReserveWindowQuota atomically adds cost to a fixed-window counter if the
// result stays within limit. The counter expires with the window.
func ReserveWindowQuota(ctx context.Context, rdb *redis.Client, key string, cost, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return false, fmt.Errorf("key is required")
	}
	if cost <= 0 {
		return false, fmt.Errorf("cost must be > 0")
	}
	if limit <= 0 {
		return false, fmt.Errorf("limit must be > 0")
	}
	if window <= 0 {
		return false, fmt.Errorf("window must be > 0")
	}

	res, err := windowQuotaScript.Run(ctx, rdb, []string{key}, cost, limit, window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// WindowKey names the counter for the fixed window containing t.
func WindowKey(prefix string, window time.Duration, t time.Time) string {
	return fmt.Sprintf("%s:%d", prefix, t.UnixMilli()/window.Milliseconds())
}
