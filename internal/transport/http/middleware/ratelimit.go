package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle hands out one token bucket per client address.
type Throttle struct {
	perSecond rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	*rate.Limiter
	seen time.Time
}

// NewThrottle allows perSecond requests with bursts of burst per client.
// Buckets idle for longer than idle are dropped by a sweeper that runs until
// ctx is cancelled.
func NewThrottle(ctx context.Context, perSecond float64, burst int, idle time.Duration) *Throttle {
	t := &Throttle{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		idle:      idle,
		now:       time.Now,
		buckets:   map[string]*bucket{},
	}
	go t.sweepEvery(ctx, idle/2)
	return t
}

func (t *Throttle) take(client string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	b, ok := t.buckets[client]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(t.perSecond, t.burst)}
		t.buckets[client] = b
	}
	b.seen = now
	res := b.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Sweep drops idle buckets and reports how many remain.
func (t *Throttle) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-t.idle)
	for k, b := range t.buckets {
		if b.seen.Before(cutoff) {
			delete(t.buckets, k)
		}
	}
	return len(t.buckets)
}

func (t *Throttle) sweepEvery(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.Sweep()
		}
	}
}

// Middleware answers 429 with a Retry-After hint once a client's bucket is empty.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, wait := t.take(clientAddr(r)); !ok {
			secs := int(wait / time.Second)
			if wait%time.Second != 0 {
				secs++
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			reject(w, http.StatusTooManyRequests, "slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr uses the left-most X-Forwarded-For entry, then X-Real-Ip, then
// the peer address.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, _ := strings.Cut(xff, ","); strings.TrimSpace(first) != "" {
			return strings.TrimSpace(first)
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
