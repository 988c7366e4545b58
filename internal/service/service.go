// Package service exposes the probing operations callers use: single-host
// probes, batches, continuous monitors and network type queries. Every
// operation returns results rather than errors.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pira/internal/latency"
	"pira/internal/netstate"
)

// Options holds dependencies for a Service. Zero values select defaults.
type Options struct {
	Workers int64
	Binary  string
	Network *netstate.Inspector
	ICMP    latency.Strategy
	TCP     latency.Strategy
	System  latency.Strategy
	Sleep   latency.SleepFunc
	Logger  *zap.Logger
}

// Service is the public face of the prober.
type Service struct {
	network *netstate.Inspector
	tester  *latency.Tester
	monitor *latency.Monitor
	logger  *zap.Logger
}

// New builds a Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	network := opts.Network
	if network == nil {
		network = netstate.New(netstate.WithLogger(logger))
	}
	system := opts.System
	if system == nil && opts.Binary != "" {
		s := latency.NewSystemStrategy()
		s.Binary = opts.Binary
		system = s
	}

	tester := latency.NewTester(latency.TesterConfig{
		Workers: opts.Workers,
		ICMP:    opts.ICMP,
		TCP:     opts.TCP,
		System:  system,
		Gate:    network,
		Logger:  logger.Named("tester"),
	})

	return &Service{
		network: network,
		tester:  tester,
		monitor: latency.NewMonitor(tester,
			latency.WithSleep(opts.Sleep),
			latency.WithLogger(logger.Named("monitor")),
		),
		logger: logger,
	}
}

// ProbeHost answers one reachability question for host:port.
func (s *Service) ProbeHost(ctx context.Context, host string, port, timeoutMS int, useICMP, useTCP bool) latency.Result {
	return s.tester.TestSingle(ctx, target(host, port, timeoutMS, useICMP, useTCP))
}

// ProbeHosts probes every host concurrently and keys results by "host:port".
func (s *Service) ProbeHosts(ctx context.Context, hosts []latency.HostPort, timeoutMS int, useICMP, useTCP bool, progress latency.ProgressFunc) map[string]latency.Result {
	return s.tester.TestBatch(ctx, hosts, target("", 0, timeoutMS, useICMP, useTCP), progress)
}

// StartMonitor begins probing host:port every intervalMS milliseconds.
// Monitors use both optional strategies and the default timeout.
func (s *Service) StartMonitor(ctx context.Context, host string, port, intervalMS int, onResult latency.ResultFunc) *latency.Handle {
	if intervalMS < 0 {
		intervalMS = int(latency.DefaultInterval / time.Millisecond)
	}
	return s.monitor.Start(ctx, latency.NewTarget(host, port), time.Duration(intervalMS)*time.Millisecond, onResult)
}

// CancelMonitor stops a monitor. Nil and already-cancelled handles are ignored.
func (s *Service) CancelMonitor(h *latency.Handle) {
	if h == nil {
		return
	}
	h.Cancel()
}

// NetworkType reports the active network's transport.
func (s *Service) NetworkType() string {
	return s.network.NetworkType()
}

// NetworkAvailable reports whether any usable network path is up.
func (s *Service) NetworkAvailable() bool {
	return s.network.Available()
}

// Tester exposes the underlying orchestrator.
func (s *Service) Tester() *latency.Tester {
	return s.tester
}

// Close cancels all running monitors.
func (s *Service) Close() {
	s.monitor.Close()
}

func target(host string, port, timeoutMS int, useICMP, useTCP bool) latency.Target {
	return latency.Target{
		Host:    host,
		Port:    port,
		Timeout: time.Duration(timeoutMS) * time.Millisecond,
		UseICMP: useICMP,
		UseTCP:  useTCP,
	}
}
