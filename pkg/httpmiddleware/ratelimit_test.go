package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedHandler(l *Limiter) http.Handler {
	return Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		l.Middleware(),
	)
}

func doRequest(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLimiterAllowsWithinBudget(t *testing.T) {
	h := limitedHandler(NewLimiter(3, time.Minute))

	for i := range 3 {
		w := doRequest(h, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := doRequest(h, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestLimiterKeysByClient(t *testing.T) {
	h := limitedHandler(NewLimiter(1, time.Minute))

	require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1").Code)

	// A different client has its own budget.
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2").Code)
}

func TestLimiterHeaders(t *testing.T) {
	h := limitedHandler(NewLimiter(5, time.Minute))

	w := doRequest(h, "10.0.0.1")
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestLimiterHonorsForwardedFor(t *testing.T) {
	h := limitedHandler(NewLimiter(1, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Same forwarded client, different proxy address: still over budget.
	req2 := httptest.NewRequest(http.MethodGet, "/products", nil)
	req2.RemoteAddr = "127.0.0.2:9999"
	req2.Header.Set("X-Forwarded-For", "203.0.113.7")
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}

func TestLimiterSlidingWindow(t *testing.T) {
	l := NewLimiter(2, time.Second)

	now := time.Unix(1000, 0)
	_, _, ok := l.take("k", now)
	require.True(t, ok)
	_, _, ok = l.take("k", now)
	require.True(t, ok)
	_, _, ok = l.take("k", now)
	require.False(t, ok)

	// At the window boundary the previous window still counts fully.
	_, _, ok = l.take("k", now.Add(time.Second))
	assert.False(t, ok)

	// Two full windows later the budget is fresh.
	_, _, ok = l.take("k", now.Add(2500*time.Millisecond))
	assert.True(t, ok)
}

func TestLimiterClockAlignedAnchor(t *testing.T) {
	l := NewLimiter(2, time.Second)

	// A client's first request lands late in a wall-clock second; the
	// window anchors to the second boundary, not the request time.
	now := time.Unix(1000, 0).Add(950 * time.Millisecond)
	_, _, ok := l.take("k", now)
	require.True(t, ok)
	_, _, ok = l.take("k", now)
	require.True(t, ok)

	l.mu.Lock()
	assert.Equal(t, time.Unix(1000, 0), l.clients["k"].currStart)
	l.mu.Unlock()

	// Those requests are more than a full window old by 1002.0, so they
	// carry no weight and the budget is fresh.
	_, _, ok = l.take("k", time.Unix(1002, 0))
	assert.True(t, ok)
}

func TestLimiterEvict(t *testing.T) {
	l := NewLimiter(1, time.Second)

	now := time.Unix(1000, 0)
	l.take("stale", now)
	l.take("fresh", now.Add(3*time.Second))

	l.evict(now.Add(3 * time.Second))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "stale")
	assert.Contains(t, l.clients, "fresh")
}
