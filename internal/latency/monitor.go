package latency

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Prober answers one reachability question. *Tester implements it.
type Prober interface {
	TestSingle(ctx context.Context, target Target) Result
}

// ResultFunc receives each result produced by a monitor loop.
type ResultFunc func(Result)

// Monitor runs continuous probing loops and owns their handles.
type Monitor struct {
	prober Prober
	sleep  SleepFunc
	logger *zap.Logger

	mu      sync.Mutex
	handles map[*Handle]struct{}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithSleep replaces the delay used between iterations.
func WithSleep(fn SleepFunc) MonitorOption {
	return func(m *Monitor) {
		if fn != nil {
			m.sleep = fn
		}
	}
}

// WithLogger sets the monitor logger.
func WithLogger(logger *zap.Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMonitor creates a Monitor probing through prober.
func NewMonitor(prober Prober, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		prober:  prober,
		sleep:   sleepContext,
		logger:  zap.NewNop(),
		handles: make(map[*Handle]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle controls one monitor loop. Cancel is idempotent.
type Handle struct {
	target Target

	cancelled atomic.Bool
	stop      context.CancelFunc
	deliverMu sync.Mutex
	done      chan struct{}
}

// Target returns the monitored target.
func (h *Handle) Target() Target { return h.target }

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancelled reports whether Cancel has been called.
func (h *Handle) Cancelled() bool { return h.cancelled.Load() }

// Cancel stops the loop. A probe already in flight finishes, and a callback
// already running when Cancel is called may still complete, but no new
// delivery starts after Cancel returns. Calling Cancel from inside the
// result callback is allowed.
func (h *Handle) Cancel() {
	if h.deliverMu.TryLock() {
		h.cancelled.Store(true)
		h.deliverMu.Unlock()
	} else {
		// A delivery is in progress, possibly the caller itself. Later
		// deliveries check the flag under the lock.
		h.cancelled.Store(true)
	}
	h.stop()
}

// deliver hands result to fn unless the handle was cancelled.
func (h *Handle) deliver(fn ResultFunc, result Result) {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()
	if h.cancelled.Load() {
		return
	}
	fn(result)
}

// Start launches a loop that probes target, delivers the result to onResult
// and waits interval before the next iteration, until the handle is
// cancelled or ctx is done.
func (m *Monitor) Start(ctx context.Context, target Target, interval time.Duration, onResult ResultFunc) *Handle {
	if interval < 0 {
		interval = 0
	}
	loopCtx, stop := context.WithCancel(ctx)
	h := &Handle{
		target: target.withDefaults(),
		stop:   stop,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.handles[h] = struct{}{}
	m.mu.Unlock()

	m.logger.Info("monitor started",
		zap.String("target", h.target.Key()),
		zap.Duration("interval", interval),
	)

	go m.run(loopCtx, h, interval, onResult)
	return h
}

func (m *Monitor) run(ctx context.Context, h *Handle, interval time.Duration, onResult ResultFunc) {
	defer func() {
		m.mu.Lock()
		delete(m.handles, h)
		m.mu.Unlock()
		close(h.done)
		m.logger.Info("monitor stopped", zap.String("target", h.target.Key()))
	}()

	// Cancellation stops the loop, never a probe in flight.
	probeCtx := context.WithoutCancel(ctx)

	for {
		if h.Cancelled() || ctx.Err() != nil {
			return
		}

		if err := m.iterate(probeCtx, h, onResult); err != nil {
			m.logger.Warn("monitor iteration failed",
				zap.String("target", h.target.Key()),
				zap.Error(err),
			)
			m.deliverSafe(h, onResult, Failedf(MethodContinuous, "Continuous ping error: %v", err))
		}

		if err := m.sleep(ctx, interval); err != nil {
			return
		}
	}
}

// iterate runs one probe and delivery, converting a panic into an error.
func (m *Monitor) iterate(ctx context.Context, h *Handle, onResult ResultFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	result := m.prober.TestSingle(ctx, h.target)
	h.deliver(onResult, result)
	return nil
}

func (m *Monitor) deliverSafe(h *Handle, onResult ResultFunc, result Result) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("result callback panicked", zap.Any("panic", r))
		}
	}()
	h.deliver(onResult, result)
}

// Active returns the number of running loops.
func (m *Monitor) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Close cancels every running loop.
func (m *Monitor) Close() {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.handles))
	for h := range m.handles {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}
