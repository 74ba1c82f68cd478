// Package monitor implements the membership state machine that keeps the
// IPVS destination pool in sync with measured packet loss.
//
// Each backend carries a sliding window of loss samples and a membership
// state:
//
//   - UNKNOWN: no evaluation yet; the first one always acts
//   - UP: destinations present in the pool
//   - DOWN: destinations removed from the pool
//
// Pool mutations are issued only on a state transition, never on every
// probe, so sustained readings on either side of the threshold cost
// nothing. The monitor is the single serialized owner of all shared
// health state and the only caller of the control plane.
package monitor
