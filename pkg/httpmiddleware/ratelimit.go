package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/jx"
)

// Limiter enforces a per-client sliding window rate limit. A single Limiter
// guards one limit; routes with different budgets get their own Limiter
// sharing nothing.
type Limiter struct {
	max    int
	window time.Duration
	keyFn  func(*http.Request) string

	mu      sync.Mutex
	clients map[string]*window
}

// window tracks counts for two adjacent intervals so the effective rate can
// be interpolated across the boundary.
type window struct {
	prev      float64
	curr      float64
	currStart time.Time
}

// NewLimiter returns a Limiter allowing max requests per period, keyed by
// client IP.
func NewLimiter(max int, period time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  period,
		keyFn:   clientIP,
		clients: make(map[string]*window),
	}
}

// WithKeyFunc replaces the client key extractor and returns the Limiter.
func (l *Limiter) WithKeyFunc(fn func(*http.Request) string) *Limiter {
	l.keyFn = fn
	return l
}

func (l *Limiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Windows are anchored to wall-clock boundaries on creation and on
	// rollover, so prev always covers exactly one interval.
	w, found := l.clients[key]
	if !found {
		w = &window{currStart: now.Truncate(l.window)}
		l.clients[key] = w
	}

	if elapsed := now.Sub(w.currStart); elapsed >= l.window {
		if elapsed >= 2*l.window {
			w.prev = 0
		} else {
			w.prev = w.curr
		}
		w.curr = 0
		w.currStart = now.Truncate(l.window)
	}

	// Weight the previous interval by how much of it still overlaps the
	// sliding window ending now.
	frac := 1 - now.Sub(w.currStart).Seconds()/l.window.Seconds()
	if frac < 0 {
		frac = 0
	}
	effective := w.prev*frac + w.curr
	resetAt = w.currStart.Add(l.window)

	if effective >= float64(l.max) {
		return 0, resetAt, false
	}
	w.curr++

	remaining = int(float64(l.max) - effective - 1)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetAt, true
}

// evict drops clients whose windows have fully expired.
func (l *Limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.clients {
		if now.Sub(w.currStart) >= 2*l.window {
			delete(l.clients, key)
		}
	}
}

// StartCleanup launches a goroutine that evicts stale clients until ctx is
// cancelled.
func (l *Limiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(2 * l.window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()
}

// Middleware returns a Middleware enforcing the limit. Rejected requests get
// 429 with Retry-After and a JSON envelope body. Every response carries the
// X-RateLimit-* headers.
func (l *Limiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.take(l.keyFn(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := time.Until(resetAt)
				if retryAfter < 0 {
					retryAfter = 0
				}
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				var e jx.Encoder
				e.Obj(func(e *jx.Encoder) {
					e.Field("success", func(e *jx.Encoder) { e.Bool(false) })
					e.Field("message", func(e *jx.Encoder) { e.Str("rate limit exceeded, try again later") })
				})
				_, _ = w.Write(e.Bytes())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the caller's IP, preferring X-Forwarded-For, then
// X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
