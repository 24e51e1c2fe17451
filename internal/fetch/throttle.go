package fetch

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out requests per authority.
//
// Authorities without a registered delay are not limited. A delay is usually
// registered from the Crawl-delay line of the authority's robots.txt.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle creates an empty Throttle.
func NewThrottle() *Throttle {
	return &Throttle{limiters: make(map[string]*rate.Limiter)}
}

// SetDelay sets the minimum interval between requests to u's authority.
// A non-positive delay removes the limit.
func (t *Throttle) SetDelay(u *url.URL, delay time.Duration) {
	key := authorityKey(u)

	t.mu.Lock()
	defer t.mu.Unlock()

	if delay <= 0 {
		delete(t.limiters, key)
		return
	}
	if l, ok := t.limiters[key]; ok {
		l.SetLimit(rate.Every(delay))
		return
	}
	t.limiters[key] = rate.NewLimiter(rate.Every(delay), 1)
}

// Delay returns the interval registered for u's authority, or zero.
func (t *Throttle) Delay(u *url.URL) time.Duration {
	t.mu.Lock()
	l, ok := t.limiters[authorityKey(u)]
	t.mu.Unlock()
	if !ok {
		return 0
	}
	limit := l.Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(limit))
}

// Wait blocks until a request to u is permitted or ctx is done.
func (t *Throttle) Wait(ctx context.Context, u *url.URL) error {
	t.mu.Lock()
	l, ok := t.limiters[authorityKey(u)]
	t.mu.Unlock()
	if !ok {
		return ctx.Err()
	}
	return l.Wait(ctx)
}

func authorityKey(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
