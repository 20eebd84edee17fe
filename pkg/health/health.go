// Package health implements liveness and readiness probes. Registered checks
// run on their own tickers and must fail several times in a row before a
// probe flips unhealthy, so a single slow database ping does not bounce the
// pod.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// Check reports nil when the component it guards is healthy.
type Check func(ctx context.Context) error

// Probe distinguishes liveness checks (is the process functional) from
// readiness checks (can it take traffic).
type Probe int

const (
	Liveness Probe = iota
	Readiness
)

const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

// monitor is one registered check plus its runtime state. run is only ever
// called from the check's own goroutine, so the consecutive counters need no
// locking; healthy and lastErr are read from HTTP handlers and use atomics.
type monitor struct {
	name    string
	probe   Probe
	timeout time.Duration
	check   Check

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (m *monitor) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.check(checkCtx)
	m.lastErr.Store(&err)

	if err != nil {
		m.oks = 0
		if m.fails++; m.fails >= defaultFailureThreshold {
			m.healthy.Store(false)
		}
		return
	}
	m.fails = 0
	if m.oks++; m.oks >= defaultSuccessThreshold {
		m.healthy.Store(true)
	}
}

func (m *monitor) failure() (string, bool) {
	if m.healthy.Load() {
		return "", false
	}
	if p := m.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error(), true
	}
	return "check is unhealthy", true
}

// Service tracks all registered monitors and the manual ready flag.
type Service struct {
	ready atomic.Bool

	mu       sync.RWMutex
	monitors []*monitor
	cancel   context.CancelFunc
}

// New returns a Service in the not-ready state. Call SetReady(true) once
// startup finishes.
func New() *Service {
	return &Service{}
}

// Register adds a check under the given probe. Checks start out healthy and
// only flip after consecutive failures.
func (s *Service) Register(probe Probe, name string, timeout time.Duration, check Check) {
	m := &monitor{name: name, probe: probe, timeout: timeout, check: check}
	m.healthy.Store(true)

	s.mu.Lock()
	s.monitors = append(s.monitors, m)
	s.mu.Unlock()
}

// Start runs every registered check on its own ticker until Stop or context
// cancellation.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	monitors := make([]*monitor, len(s.monitors))
	copy(monitors, s.monitors)
	s.mu.Unlock()

	for _, m := range monitors {
		go func(m *monitor) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			m.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					m.run(ctx)
				}
			}
		}(m)
	}
}

// Stop cancels the check goroutines. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness flag. Graceful shutdown sets it false
// so load balancers stop routing before the listener closes.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the manual flag is set and every readiness check
// passes.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}
	for _, m := range s.snapshot(Readiness) {
		if !m.healthy.Load() {
			return false
		}
	}
	return true
}

func (s *Service) snapshot(probe Probe) []*monitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*monitor, 0, len(s.monitors))
	for _, m := range s.monitors {
		if m.probe == probe {
			out = append(out, m)
		}
	}
	return out
}

// LiveEndpoint serves /livez: 200 when all liveness checks pass, 503 with
// per-check failure details otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, collectFailures(s.snapshot(Liveness)))
}

// ReadyEndpoint serves /readyz: 200 when the service is marked ready and all
// readiness checks pass.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	failures := collectFailures(s.snapshot(Readiness))
	if !s.ready.Load() {
		failures = append(failures, checkFailure{name: "_readiness", detail: "service is not ready"})
	}
	writeProbe(w, failures)
}

type checkFailure struct {
	name   string
	detail string
}

func collectFailures(monitors []*monitor) []checkFailure {
	var failures []checkFailure
	for _, m := range monitors {
		if detail, failed := m.failure(); failed {
			failures = append(failures, checkFailure{name: m.name, detail: detail})
		}
	}
	return failures
}

func writeProbe(w http.ResponseWriter, failures []checkFailure) {
	w.Header().Set("Content-Type", "application/json")

	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) {
			if len(failures) == 0 {
				e.Str("ok")
			} else {
				e.Str("unhealthy")
			}
		})
		if len(failures) > 0 {
			e.Field("checks", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					for _, f := range failures {
						e.Field(f.name, func(e *jx.Encoder) { e.Str(f.detail) })
					}
				})
			})
		}
	})
	_, _ = w.Write(e.Bytes())
}
