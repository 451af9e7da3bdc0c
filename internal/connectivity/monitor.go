// Package connectivity observes whether the remote record service is
// reachable and notifies subscribers on transitions.
//
// Signals are best-effort and advisory: a delivery attempt that fails for
// network reasons while the monitor still reports online is handled by the
// sync engine's own failure path, never by the monitor.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Provider exposes current boolean connectivity and a subscription
// mechanism for transition events.
//
// Subscribers are notified exactly once per actual transition: no
// duplicate online events while already online, and likewise for offline.
type Provider interface {
	// Online returns the current connectivity state.
	Online() bool

	// Subscribe registers fn to be called on each transition with the new
	// state. The returned cancel func unregisters it; cancel is idempotent.
	Subscribe(fn func(online bool)) (cancel func())
}

// Probe checks reachability once. Implementations should apply their own
// bounded timeout; a probe that blocks stalls the monitor's next check.
type Probe func(ctx context.Context) bool

// Monitor is a Provider driven by polling a Probe at a fixed interval.
//
// The monitor starts offline; the first successful check transitions it
// online and notifies subscribers, which is what kicks off the initial
// drain pass after startup.
type Monitor struct {
	probe    Probe
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)
}

// NewMonitor creates a monitor polling probe every interval.
func NewMonitor(probe Probe, interval time.Duration, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		log:      log,
		subs:     make(map[int]func(online bool)),
	}
}

// Online returns the state established by the most recent check.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe implements Provider.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Check runs the probe once and applies any resulting transition,
// returning the new state. Safe to call from any goroutine.
func (m *Monitor) Check(ctx context.Context) bool {
	return m.apply(m.probe(ctx))
}

// Run polls the probe until ctx is done. An immediate check is performed
// on entry so callers observe connectivity without waiting a full interval.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// apply records the observed state and notifies subscribers if it changed.
func (m *Monitor) apply(online bool) bool {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return online
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	m.log.Info("connectivity changed", "online", online)
	for _, fn := range fns {
		fn(online)
	}
	return online
}
