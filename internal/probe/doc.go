// Package probe measures backend reachability. The production prober shells
// out to the system ping utility and parses its packet-loss summary; any
// failure to probe is reported as 100% loss, never as an error.
package probe
