package monitor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/angeloszaimis/lvs-monitor/internal/ipvs"
	"github.com/angeloszaimis/lvs-monitor/internal/losswindow"
)

// Monitor owns the per-backend loss histories, membership states and the
// created-services memo, all guarded by one mutex. Control-plane calls
// execute inside the same critical section as the bookkeeping so that two
// workers never interleave mutations for overlapping services.
type Monitor struct {
	mutex sync.Mutex

	controlPlane ipvs.ControlPlane
	logger       *slog.Logger

	virtualAddr string
	scheduler   string
	tcpPorts    []int
	udpPorts    []int
	threshold   int
	window      int

	histories map[string]*losswindow.History
	states    map[string]State
	created   map[ipvs.ServiceKey]struct{}
}

// BackendStatus is a read-only view of one backend for reporting.
type BackendStatus struct {
	State   string `json:"state"`
	Average int    `json:"average_loss"`
	Samples int    `json:"samples"`
}

// New creates a Monitor for a fixed backend set. Port lists are the
// already-expanded TCP and UDP service ports; they are cached for the
// process lifetime.
func New(
	controlPlane ipvs.ControlPlane,
	virtualAddr string,
	scheduler string,
	tcpPorts, udpPorts []int,
	threshold, window int,
	backends []string,
	logger *slog.Logger,
) *Monitor {
	m := &Monitor{
		controlPlane: controlPlane,
		logger:       logger,
		virtualAddr:  virtualAddr,
		scheduler:    scheduler,
		tcpPorts:     tcpPorts,
		udpPorts:     udpPorts,
		threshold:    threshold,
		window:       window,
		histories:    make(map[string]*losswindow.History, len(backends)),
		states:       make(map[string]State, len(backends)),
		created:      make(map[ipvs.ServiceKey]struct{}),
	}

	for _, b := range backends {
		m.histories[b] = losswindow.NewHistory(window)
		m.states[b] = StateUnknown
	}

	return m
}

// Observe records one loss sample for the backend, recomputes the rolling
// average and applies the transition rule. It returns the resulting state,
// the average, and whether a transition happened.
//
// Control-plane failures do not block the transition: the state is
// committed regardless and the discrepancy is logged. Retrying is the
// runner's concern, not the state machine's.
func (m *Monitor) Observe(ctx context.Context, backend string, sample int) (State, int, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	history, ok := m.histories[backend]
	if !ok {
		history = losswindow.NewHistory(m.window)
		m.histories[backend] = history
	}

	history.Record(sample)
	average := history.Average()
	state := m.states[backend]

	switch {
	case average >= m.threshold && state != StateDown:
		m.removeFromPool(ctx, backend)
		m.states[backend] = StateDown
		m.logger.Warn("backend removed from pool",
			slog.String("backend", backend),
			slog.Int("average_loss", average),
			slog.String("previous_state", state.String()))
		return StateDown, average, true

	case average < m.threshold && state != StateUp:
		m.ensureServices(ctx)
		m.addToPool(ctx, backend)
		m.states[backend] = StateUp
		m.logger.Info("backend added to pool",
			slog.String("backend", backend),
			slog.Int("average_loss", average),
			slog.String("previous_state", state.String()))
		return StateUp, average, true
	}

	return state, average, false
}

// StateOf returns the backend's current membership state.
func (m *Monitor) StateOf(backend string) State {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.states[backend]
}

// AverageOf returns the backend's current rolling loss average.
func (m *Monitor) AverageOf(backend string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	history, ok := m.histories[backend]
	if !ok {
		return 0
	}
	return history.Average()
}

// Snapshot returns a copy of every backend's status keyed by address.
func (m *Monitor) Snapshot() map[string]BackendStatus {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	snap := make(map[string]BackendStatus, len(m.states))
	for backend, state := range m.states {
		status := BackendStatus{State: state.String()}
		if history := m.histories[backend]; history != nil {
			status.Average = history.Average()
			status.Samples = history.Len()
		}
		snap[backend] = status
	}

	return snap
}

// EnsureService creates the virtual service for (proto, port) unless this
// process already did. The key is memoized even when the create call
// fails, preserving at-most-once creation per process lifetime.
func (m *Monitor) EnsureService(ctx context.Context, proto ipvs.Protocol, port int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.ensureService(ctx, proto, port)
}

func (m *Monitor) ensureService(ctx context.Context, proto ipvs.Protocol, port int) {
	key := ipvs.ServiceKey{Protocol: proto, Port: port}
	if _, exists := m.created[key]; exists {
		return
	}
	m.created[key] = struct{}{}

	if err := m.controlPlane.CreateService(ctx, proto, m.virtualAddr, port, m.scheduler); err != nil {
		m.logger.Warn("service creation failed, memo kept",
			slog.String("service", key.String()),
			slog.String("error", err.Error()))
		return
	}

	m.logger.Info("created virtual service",
		slog.String("service", key.String()),
		slog.String("scheduler", m.scheduler))
}

func (m *Monitor) ensureServices(ctx context.Context) {
	for _, port := range m.tcpPorts {
		m.ensureService(ctx, ipvs.TCP, port)
	}
	for _, port := range m.udpPorts {
		m.ensureService(ctx, ipvs.UDP, port)
	}
}

func (m *Monitor) addToPool(ctx context.Context, backend string) {
	m.forEachService(func(proto ipvs.Protocol, port int) {
		err := m.controlPlane.AddDestination(ctx, proto, m.virtualAddr, port, backend, port)
		if err != nil {
			m.logger.Warn("state committed despite control-plane failure",
				slog.String("operation", "add"),
				slog.String("backend", backend),
				slog.String("service", ipvs.ServiceKey{Protocol: proto, Port: port}.String()),
				slog.String("error", err.Error()))
		}
	})
}

func (m *Monitor) removeFromPool(ctx context.Context, backend string) {
	m.forEachService(func(proto ipvs.Protocol, port int) {
		err := m.controlPlane.RemoveDestination(ctx, proto, m.virtualAddr, port, backend, port)
		if err != nil {
			m.logger.Warn("state committed despite control-plane failure",
				slog.String("operation", "remove"),
				slog.String("backend", backend),
				slog.String("service", ipvs.ServiceKey{Protocol: proto, Port: port}.String()),
				slog.String("error", err.Error()))
		}
	})
}

func (m *Monitor) forEachService(fn func(proto ipvs.Protocol, port int)) {
	for _, port := range m.tcpPorts {
		fn(ipvs.TCP, port)
	}
	for _, port := range m.udpPorts {
		fn(ipvs.UDP, port)
	}
}
