// Package metrics provides real-time metrics collection for the monitor.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Probe counts and the latest loss sample per backend
//   - Rolling loss averages
//   - Membership state and transition counts
//
// The collector runs in a dedicated goroutine and processes events without
// blocking the probe cycle. Events are emitted with non-blocking semantics;
// a full buffer drops the event rather than stalling a worker. Shutdown
// drains the buffer so late events are not lost.
package metrics
