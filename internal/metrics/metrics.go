package metrics

import (
	"sync"
	"time"
)

// Metrics is the thread-safe store behind the collector.
type Metrics struct {
	mutex       sync.RWMutex
	probes      map[string]int64
	lastLoss    map[string]int
	averageLoss map[string]int
	states      map[string]string
	transitions map[string]int64
	startTime   time.Time
}

// Snapshot is the JSON view served by the status endpoint.
type Snapshot struct {
	Uptime      time.Duration             `json:"uptime"`
	TotalProbes int64                     `json:"total_probes"`
	Driver      string                    `json:"driver"`
	Backends    map[string]BackendMetrics `json:"backends"`
}

// BackendMetrics aggregates one backend's health telemetry.
type BackendMetrics struct {
	Probes      int64  `json:"probes"`
	LastLoss    int    `json:"last_loss"`
	AverageLoss int    `json:"average_loss"`
	State       string `json:"state"`
	Transitions int64  `json:"transitions"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		probes:      make(map[string]int64),
		lastLoss:    make(map[string]int),
		averageLoss: make(map[string]int),
		states:      make(map[string]string),
		transitions: make(map[string]int64),
		startTime:   time.Now(),
	}
}

// RecordProbe stores the outcome of one probe round.
func (m *Metrics) RecordProbe(backend string, loss, average int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.probes[backend]++
	m.lastLoss[backend] = loss
	m.averageLoss[backend] = average
}

// RecordTransition stores a membership state change.
func (m *Metrics) RecordTransition(backend, state string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.states[backend] = state
	m.transitions[backend]++
}

// Snapshot returns a consistent copy of everything recorded so far.
func (m *Metrics) Snapshot(driver string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:   time.Since(m.startTime),
		Driver:   driver,
		Backends: make(map[string]BackendMetrics),
	}

	allBackends := make(map[string]bool)
	for backend := range m.probes {
		allBackends[backend] = true
	}
	for backend := range m.states {
		allBackends[backend] = true
	}

	for backend := range allBackends {
		snap.TotalProbes += m.probes[backend]

		snap.Backends[backend] = BackendMetrics{
			Probes:      m.probes[backend],
			LastLoss:    m.lastLoss[backend],
			AverageLoss: m.averageLoss[backend],
			State:       m.states[backend],
			Transitions: m.transitions[backend],
		}
	}

	return snap
}
