package services

import (
	"time"

	"github.com/maxaizer/placement-portal/internal/failures"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// LoginThrottle limits login attempts per account key. A key's limiter expires
// once the key has seen no attempt for the idle period.
type LoginThrottle struct {
	limiters *gocache.Cache
	limit    rate.Limit
	burst    int
}

func NewLoginThrottle(attemptsPerMinute float64, burst int, idle time.Duration) *LoginThrottle {
	return &LoginThrottle{
		limiters: gocache.New(idle, 2*idle),
		limit:    rate.Limit(attemptsPerMinute / 60),
		burst:    burst,
	}
}

// Allow returns RateLimited once key has used up its attempts. A nil throttle
// allows everything.
func (t *LoginThrottle) Allow(key string) error {
	if t == nil {
		return nil
	}
	if t.limiter(key).Allow() {
		return nil
	}
	return failures.New(failures.KindRateLimited, "too many login attempts, try again later")
}

// limiter returns the key's limiter and pushes its expiry back by the idle period.
func (t *LoginThrottle) limiter(key string) *rate.Limiter {
	if value, found := t.limiters.Get(key); found {
		t.limiters.SetDefault(key, value)
		return value.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(t.limit, t.burst)
	if err := t.limiters.Add(key, limiter, gocache.DefaultExpiration); err != nil {
		if value, found := t.limiters.Get(key); found {
			return value.(*rate.Limiter)
		}
	}
	return limiter
}
