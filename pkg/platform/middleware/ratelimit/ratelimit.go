// Package ratelimit throttles requests per client IP with a token bucket.
//
// The key is the client IP resolved by the metadata middleware, which only
// believes forwarding headers from trusted proxies.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/httputil"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

// SecurityEvaluator evaluates security events.
type SecurityEvaluator interface {
	Evaluate(ctx context.Context, ev audit.SecurityEvent)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// DefaultMaxClients caps the number of tracked buckets.
const DefaultMaxClients = 10000

// Limiter holds one token bucket per client IP. At most maxClients buckets
// are kept; a new client beyond that evicts the least recently seen one.
type Limiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	rps        rate.Limit
	burst      int
	idleTTL    time.Duration
	maxClients int
	now        func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithIdleTTL sets how long an idle client's bucket is kept.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idleTTL = d
		}
	}
}

// WithMaxClients overrides DefaultMaxClients.
func WithMaxClients(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.maxClients = n
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int, opts ...Option) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	l := &Limiter{
		visitors:   make(map[string]*visitor),
		rps:        rate.Limit(rps),
		burst:      burst,
		idleTTL:    10 * time.Minute,
		maxClients: DefaultMaxClients,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether a request from key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		if len(l.visitors) >= l.maxClients {
			l.evictOldestLocked()
		}
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *Limiter) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, v := range l.visitors {
		if oldestKey == "" || v.lastSeen.Before(oldest) {
			oldestKey, oldest = key, v.lastSeen
		}
	}
	delete(l.visitors, oldestKey)
}

// Sweep drops buckets idle for longer than the TTL and returns how many.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Middleware answers 429 once a client's bucket is empty and evaluates the
// breach as RATE_LIMIT_EXCEEDED.
func Middleware(l *Limiter, evaluator SecurityEvaluator, logger *slog.Logger) func(http.Handler) http.Handler {
	retryAfter := "1"
	if l.rps > 0 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / float64(l.rps))))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = "unknown"
			}
			if l.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}

			logger.WarnContext(ctx, "rate limit exceeded",
				"client_ip", ip,
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(ctx),
			)
			evaluator.Evaluate(ctx, audit.SecurityEvent{
				Kind:          audit.KindRateLimitExceeded,
				ActorID:       requestcontext.ActorID(ctx),
				SourceAddress: ip,
				UserAgent:     requestcontext.UserAgent(ctx),
				Details: map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				},
			})
			w.Header().Set("Retry-After", retryAfter)
			httputil.WriteJSONError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
		})
	}
}
