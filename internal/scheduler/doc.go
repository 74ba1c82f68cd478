// Package scheduler drives the probe-evaluate-act cycle at a fixed cadence.
//
// Two functionally equivalent drivers exist:
//
//   - concurrent: one worker goroutine per backend, so a slow probe never
//     delays the other backends
//   - sequential: one loop over all backends per cycle, sleeping only the
//     remainder of the interval to hold a steady cadence
//
// Probes run outside the monitor's lock; only the bookkeeping and the
// resulting control-plane mutation are serialized.
package scheduler
