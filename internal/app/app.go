// Package app wires together every collaborator the daemon needs and runs
// it to completion, mirroring the teacher's app.Run(cfg, version) int shape.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"netconnd/internal/config"
	"netconnd/internal/connection"
	"netconnd/internal/container"
	"netconnd/internal/control"
	"netconnd/internal/events"
	"netconnd/internal/logging"
	"netconnd/internal/metrics"
	"netconnd/internal/procfs"
	"netconnd/internal/reporter"
	"netconnd/internal/rpc"
	"netconnd/internal/runtimeconfig"
	signalrouter "netconnd/internal/signal"
	"netconnd/internal/signal/network"
	"netconnd/internal/signal/selfcheck"
	"netconnd/internal/tracker"
)

// reportInterval is how often the reporter loop pushes a ConnectionUpdate
// diff, mirroring the teacher's ConntrackCollector polling cadence.
const reportInterval = 15 * time.Second

// Run wires the application together and blocks until termination.
func Run(cfg config.Config, version string) int {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logging.Info
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		format = logging.Logfmt
	}
	log := logging.New(os.Stderr, level, format)

	if cfg.ShowHelp {
		return 0
	}
	if cfg.ShowVersion {
		log.Info("version", "version", version)
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	reg := prometheus.NewRegistry()
	if !cfg.WebDisableExporterMetrics {
		reg.MustRegister(
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			prometheus.NewGoCollector(),
		)
	}

	t := tracker.New()
	t.MustRegister(reg)

	rcfg := runtimeconfig.New()
	resolver := container.NewProcfsResolver(procfs.FS{Root: cfg.ProcfsPath})

	dialer, err := rpc.NewGRPCDialer(cfg.ControlTarget)
	if err != nil {
		log.Error("failed to build control dialer", "err", err)
		return 1
	}
	defer dialer.Close()

	controlClient := control.New(log, dialer, rcfg)
	controlClient.Start(ctx)
	defer controlClient.Stop(false)

	rep := reporter.NewMetricsReporter(reporter.NewGRPCReporter(controlClient))
	rep.MustRegister(reg)

	router := signalrouter.NewRouter(log)

	processHandler := selfcheck.NewProcessHandler(selfcheck.Identity{Comm: cfg.SelfCheckComm, Exe: cfg.SelfCheckExe}, cfg.SelfCheckTimeout)
	networkSelfCheckHandler := selfcheck.NewNetworkHandler(selfcheck.Identity{Comm: cfg.SelfCheckComm, Exe: cfg.SelfCheckExe}, cfg.SelfCheckTimeout)
	router.Register(processHandler)
	router.Register(networkSelfCheckHandler)
	router.Register(network.New(log, t, rcfg))

	src, closeSrc, err := openEventSource(cfg)
	if err != nil {
		log.Error("failed to open event source", "err", err)
		return 1
	}
	if closeSrc != nil {
		defer closeSrc()
	}

	eventLoopDone := make(chan struct{})
	go runEventLoop(ctx, log, src, resolver, router, eventLoopDone)

	srv := &metrics.Server{
		Logger:            log,
		Registry:          reg,
		TelemetryPath:     cfg.WebTelemetryPath,
		ListenAddrs:       cfg.WebListenAddresses,
		MaxRequests:       cfg.WebMaxRequests,
		DisableExpMetrics: cfg.WebDisableExporterMetrics,
	}
	metricsErrCh := make(chan error, 1)
	go func() { metricsErrCh <- srv.Start(ctx) }()

	supervisor := selfcheck.NewSupervisor(processHandler, networkSelfCheckHandler)
	if err := supervisor.Await(); err != nil {
		log.Error("self-check failed", "err", err)
		_ = rep.PushSelfCheckResult(processHandler.State().Observed(), "process")
		_ = rep.PushSelfCheckResult(networkSelfCheckHandler.State().Observed(), "network")
		cancel()
		<-eventLoopDone
		router.Stop()
		return 1
	}
	log.Info("self-check passed")
	_ = rep.PushSelfCheckResult(true, "process")
	_ = rep.PushSelfCheckResult(true, "network")

	go runReportLoop(ctx, log, t, rep)

	select {
	case <-ctx.Done():
	case err := <-metricsErrCh:
		if err != nil {
			log.Error("metrics server error", "err", err)
		}
		cancel()
	}

	<-eventLoopDone
	router.Stop()
	time.Sleep(10 * time.Millisecond)
	return 0
}

// openEventSource builds the EventSource named by spec.md §6. A real kernel
// probe is an external collaborator reached only through this contract;
// absent one, events.JSONLSource replays either a fixed tape file or stdin,
// the same "fixture directory in place of /proc" role the teacher's
// procfs.FS plays in tests.
func openEventSource(cfg config.Config) (events.EventSource, func(), error) {
	if cfg.EventTapePath == "" {
		return events.NewJSONLSource(os.Stdin), nil, nil
	}

	f, err := os.Open(cfg.EventTapePath)
	if err != nil {
		return nil, nil, err
	}
	return events.NewJSONLSource(f), func() { _ = f.Close() }, nil
}

func runEventLoop(ctx context.Context, log *logging.Logger, src events.EventSource, resolver container.Resolver, router *signalrouter.Router, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		ev, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return
			}
			log.Warn("event source read error", "err", err)
			return
		}

		if !ev.Thread.HasContainerID {
			if id, ok := resolver.ContainerID(ev); ok {
				ev.Thread.ContainerID = id
				ev.Thread.HasContainerID = true
			}
		}

		router.Dispatch(ctx, ev)
	}
}

// nextGeneration derives the connection set a DiffSince(prev) call implies
// for the following cycle, without a second Tracker.Snapshot call (which
// would re-walk and re-publish the gauge for no reason).
func nextGeneration(prev, added, removed []connection.Connection) []connection.Connection {
	removedSet := make(map[connection.Connection]struct{}, len(removed))
	for _, c := range removed {
		removedSet[c] = struct{}{}
	}

	out := make([]connection.Connection, 0, len(prev)+len(added))
	for _, c := range prev {
		if _, gone := removedSet[c]; !gone {
			out = append(out, c)
		}
	}
	out = append(out, added...)
	return out
}

func runReportLoop(ctx context.Context, log *logging.Logger, t *tracker.Tracker, rep reporter.Reporter) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	var prev []connection.Connection
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			added, removed := t.DiffSince(prev)
			prev = nextGeneration(prev, added, removed)
			if len(added) == 0 && len(removed) == 0 {
				continue
			}
			if err := rep.PushDiff(added, removed, time.Now()); err != nil {
				log.Warn("failed to push connection diff", "err", err)
			}
		}
	}
}
