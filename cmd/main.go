package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeloszaimis/lvs-monitor/config"
	"github.com/angeloszaimis/lvs-monitor/internal/httpserver"
	"github.com/angeloszaimis/lvs-monitor/internal/ipvs"
	"github.com/angeloszaimis/lvs-monitor/internal/metrics"
	"github.com/angeloszaimis/lvs-monitor/internal/monitor"
	"github.com/angeloszaimis/lvs-monitor/internal/ports"
	"github.com/angeloszaimis/lvs-monitor/internal/probe"
	"github.com/angeloszaimis/lvs-monitor/internal/scheduler"
	"github.com/angeloszaimis/lvs-monitor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	interval, err := time.ParseDuration(cfg.Monitor.Interval)
	if err != nil {
		log.Error("Invalid probe interval", slog.Any("err", err))
		os.Exit(1)
	}

	probeTimeout, err := time.ParseDuration(cfg.Monitor.ProbeTimeout)
	if err != nil {
		log.Error("Invalid probe timeout", slog.Any("err", err))
		os.Exit(1)
	}

	tcpPorts, err := ports.Expand(cfg.Services.TCP)
	if err != nil {
		log.Error("Invalid TCP port specification", slog.Any("err", err))
		os.Exit(1)
	}

	udpPorts, err := ports.Expand(cfg.Services.UDP)
	if err != nil {
		log.Error("Invalid UDP port specification", slog.Any("err", err))
		os.Exit(1)
	}

	controlPlane := ipvs.NewCmdRunner(cfg.Ipvsadm.Path, cfg.Ipvsadm.Retries, log)
	prober := probe.NewPingProber("ping", probeTimeout, log)

	mon := monitor.New(
		controlPlane,
		cfg.Virtual.Address,
		cfg.Monitor.Scheduler,
		tcpPorts,
		udpPorts,
		cfg.Monitor.LossThreshold,
		cfg.Monitor.WindowSamples,
		cfg.Backends,
		log,
	)

	collector := metrics.NewCollector(1024, log)
	collector.Start(ctx)

	sched, err := scheduler.New(
		cfg.Monitor.Driver,
		cfg.Backends,
		prober,
		mon,
		collector,
		interval,
		log,
	)
	if err != nil {
		log.Error("Failed to create scheduler", slog.Any("err", err))
		os.Exit(1)
	}

	var srv *httpserver.Server
	srvErrCh := make(chan error, 1)

	if cfg.Server.Enabled {
		srv, err = httpserver.New(cfg.Server.Address, setupRouter(collector, sched.Mode()))
		if err != nil {
			log.Error("Failed to create status server", slog.Any("err", err))
			os.Exit(1)
		}

		go func() {
			srvErrCh <- srv.Start()
		}()
	}

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx)
	}()

	log.Info("LVS health monitor started",
		slog.String("virtual_address", cfg.Virtual.Address),
		slog.Int("backends", len(cfg.Backends)),
		slog.Int("tcp_ports", len(tcpPorts)),
		slog.Int("udp_ports", len(udpPorts)),
		slog.Int("loss_threshold", cfg.Monitor.LossThreshold),
		slog.Int("window_samples", cfg.Monitor.WindowSamples))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")

		// Let the in-flight cycle finish before tearing anything down.
		<-schedDone

		if srv != nil {
			if err := srv.Shutdown(context.Background()); err != nil {
				log.Error("Error during shutdown", slog.Any("err", err))
			}
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error running status server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}
