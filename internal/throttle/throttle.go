// Package throttle enforces the hourly call quota.
package throttle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"autodialer/pkg/utils"
)

// ErrQuotaExceeded is returned by callers that surface a rejected reservation.
var ErrQuotaExceeded = errors.New("throttle: hourly call quota exhausted")

// Limiter reserves n dial attempts. A false result leaves the quota untouched.
type Limiter interface {
	Allow(ctx context.Context, n int) (bool, error)
}

// Unlimited never rejects.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, int) (bool, error) { return true, nil }

// Local is an in-process token bucket refilled at perHour/hour, with a burst of perHour.
type Local struct {
	mu  sync.Mutex
	lim *rate.Limiter
	now func() time.Time
}

func NewLocal(perHour int) *Local {
	return &Local{
		lim: rate.NewLimiter(rate.Limit(float64(perHour)/time.Hour.Seconds()), perHour),
		now: time.Now,
	}
}

func (l *Local) Allow(_ context.Context, n int) (bool, error) {
	if n <= 0 {
		return true, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lim.AllowN(l.now(), n), nil
}

// Redis is a fixed one-hour window shared by every process pointing at the same server.
type Redis struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedis(rdb *redis.Client, prefix string, perHour int) *Redis {
	if prefix == "" {
		prefix = "autodialer:calls"
	}
	return &Redis{rdb: rdb, prefix: prefix, limit: perHour, window: time.Hour, now: time.Now}
}

func (r *Redis) Allow(ctx context.Context, n int) (bool, error) {
	if n <= 0 {
		return true, nil
	}
	key := utils.WindowKey(r.prefix, r.window, r.now())
	return utils.ReserveWindowQuota(ctx, r.rdb, key, n, r.limit, r.window)
}

// New picks the limiter for a configured quota: Unlimited when perHour is 0,
// Redis when a client is given, Local otherwise.
func New(perHour int, rdb *redis.Client) Limiter {
	switch {
	case perHour <= 0:
		return Unlimited{}
	case rdb != nil:
		return NewRedis(rdb, "", perHour)
	default:
		return NewLocal(perHour)
	}
}
