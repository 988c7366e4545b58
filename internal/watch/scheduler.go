package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"pira/internal/latency"
	"pira/internal/storage"
	"pira/internal/storage/models"
	perrors "pira/pkg/errors"
)

// BatchRunner probes many hosts at once. *latency.Tester implements it.
type BatchRunner interface {
	TestBatch(ctx context.Context, hosts []latency.HostPort, template latency.Target, progress latency.ProgressFunc) map[string]latency.Result
}

// Report is the outcome of one watch run.
type Report struct {
	RunAt    time.Time
	Duration time.Duration
	Targets  []*models.Target
	Results  map[string]latency.Result // keyed by "host:port"
}

// ReportFunc receives every completed run.
type ReportFunc func(*Report)

// Scheduler periodically probes every enabled saved target.
type Scheduler struct {
	scheduler gocron.Scheduler
	store     storage.Storage
	runner    BatchRunner
	interval  time.Duration
	report    ReportFunc
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new watch scheduler
func NewScheduler(store storage.Storage, runner BatchRunner, interval time.Duration, report ReportFunc, logger *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("watch interval must be positive, got %s", interval)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		scheduler: scheduler,
		store:     store,
		runner:    runner,
		interval:  interval,
		report:    report,
		logger:    logger,
	}, nil
}

// Start schedules the probe job and runs it immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return perrors.ErrWatchRunning
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("watch run failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create watch job: %w", err)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("watch started", zap.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler and waits for a run in progress.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return perrors.ErrWatchNotRunning
	}

	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}

	s.running = false
	s.logger.Info("watch stopped")
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce probes all enabled targets now. Targets sharing timeout and
// strategy flags are probed as one batch.
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, error) {
	enabled := true
	targets, err := s.store.GetAllTargets(ctx, storage.TargetFilter{Enabled: &enabled})
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}

	report := &Report{
		RunAt:   time.Now(),
		Targets: targets,
		Results: make(map[string]latency.Result, len(targets)),
	}

	for profile, hosts := range groupByProfile(targets) {
		results := s.runner.TestBatch(ctx, hosts, profile, nil)
		for key, result := range results {
			report.Results[key] = result
		}
	}
	report.Duration = time.Since(report.RunAt)

	summary := latency.Summarize(report.Results)
	s.logger.Info("watch run completed",
		zap.Int("tested", summary.Tested),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", report.Duration),
	)

	if s.report != nil {
		s.report(report)
	}
	return report, nil
}

// groupByProfile buckets targets by their probe options.
func groupByProfile(targets []*models.Target) map[latency.Target][]latency.HostPort {
	groups := make(map[latency.Target][]latency.HostPort)
	for _, t := range targets {
		profile := latency.Target{
			Timeout: time.Duration(t.TimeoutMS) * time.Millisecond,
			UseICMP: t.UseICMP,
			UseTCP:  t.UseTCP,
		}
		groups[profile] = append(groups[profile], latency.HostPort{Host: t.Host, Port: t.Port})
	}
	return groups
}
