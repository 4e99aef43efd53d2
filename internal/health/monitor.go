// Package health tracks whether the Sagipero backend is reachable.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/metrics"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// DefaultInterval is the polling period of the monitor.
const DefaultInterval = 30 * time.Second

// Connectivity states.
const (
	StatusChecking = "checking"
	StatusOnline   = "online"
	StatusOffline  = "offline"
)

// Prober checks the backend once.
type Prober interface {
	Health(ctx context.Context) error
}

// Snapshot is the monitor's latest result.
type Snapshot struct {
	Status    string     `json:"status"`
	Text      string     `json:"text"`
	LastCheck *time.Time `json:"lastCheck,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Monitor polls the backend health endpoint.
type Monitor struct {
	prober   Prober
	interval time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	state  Snapshot
	subs   map[int]func(Snapshot)
	nextID int
}

func NewMonitor(prober Prober, interval time.Duration, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logger.With().Str("component", "health-monitor").Logger(),
		state:    Snapshot{Status: StatusChecking, Text: textFor(StatusChecking)},
		subs:     make(map[int]func(Snapshot)),
	}
}

func textFor(status string) string {
	switch status {
	case StatusOnline:
		return "Backend Online"
	case StatusOffline:
		return "Backend Offline"
	case StatusChecking:
		return "Checking..."
	}
	return "Unknown"
}

// Snapshot returns the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for every state change.
func (m *Monitor) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Check probes the backend now and returns the new state.
func (m *Monitor) Check(ctx context.Context) Snapshot {
	m.set(Snapshot{Status: StatusChecking, Text: textFor(StatusChecking), LastCheck: m.Snapshot().LastCheck})

	err := m.prober.Health(ctx)
	now := time.Now()
	next := Snapshot{Status: StatusOnline, LastCheck: &now}
	if err != nil {
		next.Status = StatusOffline
		next.Error = sagipero.UserMessage(err)
		m.logger.Warn().Err(err).Msg("backend health check failed")
		metrics.BackendUp.Set(0)
	} else {
		metrics.BackendUp.Set(1)
	}
	next.Text = textFor(next.Status)
	m.set(next)
	return next
}

// RunLoop checks immediately and then every interval until ctx ends.
func (m *Monitor) RunLoop(ctx context.Context) {
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

func (m *Monitor) set(s Snapshot) {
	m.mu.Lock()
	changed := m.state.Status != s.Status
	m.state = s
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(s)
	}
}
