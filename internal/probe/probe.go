package probe

import (
	"context"
	"log/slog"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"time"
)

// FullLoss is the sentinel fed into the loss window when a probe times out,
// the host is unreachable, or the ping output cannot be parsed.
// Unreachability is data, not failure.
const FullLoss = 100

// Prober measures the packet loss of one probe round against an address,
// returning a percentage in [0, 100].
type Prober interface {
	Probe(ctx context.Context, address string) int
}

// Func adapts a plain function to the Prober interface.
type Func func(ctx context.Context, address string) int

func (f Func) Probe(ctx context.Context, address string) int {
	return f(ctx, address)
}

var lossPattern = regexp.MustCompile(`(\d+(\.\d+)?)%\s*packet loss`)

// PingProber probes reachability with a single ICMP echo per round via the
// system ping utility.
type PingProber struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewPingProber creates a prober that runs one ping per call, bounded by
// the given timeout.
func NewPingProber(binary string, timeout time.Duration, logger *slog.Logger) *PingProber {
	if binary == "" {
		binary = "ping"
	}

	return &PingProber{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
	}
}

// Probe runs `ping -c 1 -W <secs>` against the address and returns the
// reported packet loss, truncated to an integer percentage. Timeouts,
// unreachable hosts and unparseable output all map to FullLoss.
func (p *PingProber) Probe(ctx context.Context, address string) int {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	waitSecs := int(math.Ceil(p.timeout.Seconds()))
	if waitSecs < 1 {
		waitSecs = 1
	}

	cmd := exec.CommandContext(ctx, p.binary, "-c", "1", "-W", strconv.Itoa(waitSecs), address)

	// ping exits non-zero on loss but still prints the summary line, so
	// the output is parsed regardless of the exit status.
	output, err := cmd.CombinedOutput()
	if err != nil && len(output) == 0 {
		p.logger.Debug("probe command failed",
			slog.String("address", address),
			slog.String("error", err.Error()))
		return FullLoss
	}

	return ParseLoss(string(output))
}

// ParseLoss extracts the packet-loss percentage from ping output. Output
// without a recognizable summary counts as full loss.
func ParseLoss(output string) int {
	match := lossPattern.FindStringSubmatch(output)
	if match == nil {
		return FullLoss
	}

	loss, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return FullLoss
	}

	if loss < 0 {
		return 0
	}
	if loss > 100 {
		return FullLoss
	}

	return int(loss)
}
