// Package losswindow implements a bounded sliding window of packet-loss
// samples. The rolling mean over the last W one-probe-per-interval samples
// approximates the loss rate over the preceding W intervals without storing
// timestamps.
package losswindow
