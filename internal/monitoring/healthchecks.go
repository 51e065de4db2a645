package monitoring

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

// Probe returns nil when the dependency is usable
type Probe func(ctx context.Context) error

// Status tracks the last known health of each watched dependency. Every
// dependency starts healthy until a probe says otherwise.
type Status struct {
	mu     sync.RWMutex
	checks map[string]*atomic.Bool
}

func NewStatus() *Status {
	return &Status{checks: make(map[string]*atomic.Bool)}
}

// Watch runs probe every interval until ctx is done
func (s *Status) Watch(ctx context.Context, name string, probe Probe, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	healthy := s.register(name)
	go MonitorHealth(ctx, name, probe, interval, healthy)
}

func (s *Status) register(name string) *atomic.Bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	healthy, ok := s.checks[name]
	if !ok {
		healthy = &atomic.Bool{}
		healthy.Store(true)
		s.checks[name] = healthy
	}
	return healthy
}

// Snapshot returns the current health of every watched dependency
func (s *Status) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.checks))
	for name, healthy := range s.checks {
		out[name] = healthy.Load()
	}
	return out
}

// Unhealthy lists the dependencies whose last probe failed, sorted
func (s *Status) Unhealthy() []string {
	var out []string
	for name, ok := range s.Snapshot() {
		if !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func MonitorHealth(ctx context.Context, name string, probe Probe, interval time.Duration, healthy *atomic.Bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			err := probe(checkCtx)
			cancel()

			wasHealthy := healthy.Swap(err == nil)
			switch {
			case err != nil && wasHealthy:
				slog.Warn("[HealthCheck] Dependency is unhealthy",
					slog.String("name", name),
					slog.String("error", err.Error()))
			case err == nil && !wasHealthy:
				slog.Info("[HealthCheck] Dependency recovered", slog.String("name", name))
			}
		}
	}
}
