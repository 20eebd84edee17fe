package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing() Check {
	return func(_ context.Context) error { return nil }
}

func failing(msg string) Check {
	return func(_ context.Context) error { return errors.New(msg) }
}

type probeBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func decodeProbe(t *testing.T, w *httptest.ResponseRecorder) probeBody {
	t.Helper()
	var body probeBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestLiveEndpointAllPassing(t *testing.T) {
	s := New()
	s.Register(Liveness, "check1", time.Second, passing())
	s.Register(Liveness, "check2", time.Second, passing())

	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeProbe(t, w).Status)
}

func TestLiveEndpointFailingCheck(t *testing.T) {
	s := New()
	s.Register(Liveness, "db", time.Second, failing("connection refused"))

	// Drive the check past the consecutive-failure threshold by hand.
	ctx := context.Background()
	for range 3 {
		s.monitors[0].run(ctx)
	}

	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeProbe(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestFailureThresholdPreventsFlapping(t *testing.T) {
	s := New()
	s.Register(Liveness, "db", time.Second, failing("down"))

	ctx := context.Background()
	s.monitors[0].run(ctx)
	s.monitors[0].run(ctx)

	// Two failures is still under the threshold.
	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	s.monitors[0].run(ctx)

	w = httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyEndpointNotReadyUntilSet(t *testing.T) {
	s := New()
	s.Register(Readiness, "postgres", time.Second, passing())

	w := httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service is not ready", decodeProbe(t, w).Checks["_readiness"])

	s.SetReady(true)

	w = httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIsReady(t *testing.T) {
	s := New()
	s.Register(Readiness, "postgres", time.Second, failing("dial error"))
	s.SetReady(true)

	// Check starts healthy, so the service is ready.
	assert.True(t, s.IsReady())

	ctx := context.Background()
	for range 3 {
		s.monitors[0].run(ctx)
	}
	assert.False(t, s.IsReady())
}

func TestSetReadyFalseDuringShutdown(t *testing.T) {
	s := New()
	s.SetReady(true)
	require.True(t, s.IsReady())

	s.SetReady(false)
	assert.False(t, s.IsReady())
}

func TestCheckRecoversAfterSuccess(t *testing.T) {
	var fail bool
	s := New()
	s.Register(Liveness, "flaky", time.Second, func(_ context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})

	ctx := context.Background()
	fail = true
	for range 3 {
		s.monitors[0].run(ctx)
	}
	_, unhealthy := s.monitors[0].failure()
	require.True(t, unhealthy)

	fail = false
	s.monitors[0].run(ctx)
	_, unhealthy = s.monitors[0].failure()
	assert.False(t, unhealthy)
}

func TestStartAndStop(t *testing.T) {
	s := New()
	s.Register(Liveness, "noop", time.Second, passing())

	s.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
