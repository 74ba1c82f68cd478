package ipvs

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
)

const defaultBinary = "ipvsadm"

// CmdRunner drives ipvsadm through the exec interface. Each command is
// attempted up to the configured number of times; a single attempt
// reproduces the historical fire-and-forget behavior.
type CmdRunner struct {
	binary     string
	attempts   uint
	retryDelay time.Duration
	logger     *slog.Logger

	// run is swappable for tests.
	run func(ctx context.Context, name string, args ...string) error
}

// NewCmdRunner creates a runner for the given ipvsadm binary. Attempts
// below 1 are treated as 1.
func NewCmdRunner(binary string, attempts int, logger *slog.Logger) *CmdRunner {
	if binary == "" {
		binary = defaultBinary
	}
	if attempts < 1 {
		attempts = 1
	}

	return &CmdRunner{
		binary:     binary,
		attempts:   uint(attempts),
		retryDelay: 100 * time.Millisecond,
		logger:     logger,
		run:        runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w: %s", name, args, err, output)
	}
	return nil
}

// CreateService issues `ipvsadm -A <proto> vip:port -s <scheduler>`.
func (r *CmdRunner) CreateService(ctx context.Context, proto Protocol, virtualAddr string, port int, scheduler string) error {
	return r.exec(ctx,
		"-A", proto.Flag(), hostPort(virtualAddr, port),
		"-s", scheduler,
	)
}

// AddDestination issues `ipvsadm -a <proto> vip:port -r rip:rport -m`.
// Destinations are added in masquerade (NAT) forwarding mode.
func (r *CmdRunner) AddDestination(ctx context.Context, proto Protocol, virtualAddr string, port int, backendAddr string, backendPort int) error {
	return r.exec(ctx,
		"-a", proto.Flag(), hostPort(virtualAddr, port),
		"-r", hostPort(backendAddr, backendPort),
		"-m",
	)
}

// RemoveDestination issues `ipvsadm -d <proto> vip:port -r rip:rport`.
func (r *CmdRunner) RemoveDestination(ctx context.Context, proto Protocol, virtualAddr string, port int, backendAddr string, backendPort int) error {
	return r.exec(ctx,
		"-d", proto.Flag(), hostPort(virtualAddr, port),
		"-r", hostPort(backendAddr, backendPort),
	)
}

func (r *CmdRunner) exec(ctx context.Context, args ...string) error {
	return retry.Do(
		func() error {
			return r.run(ctx, r.binary, args...)
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			r.logger.Warn("retrying control-plane command",
				slog.Uint64("attempt", uint64(attempt+1)),
				slog.String("error", err.Error()))
		}),
	)
}

func hostPort(addr string, port int) string {
	return net.JoinHostPort(addr, strconv.Itoa(port))
}
