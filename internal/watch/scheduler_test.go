package watch

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pira/internal/latency"
	"pira/internal/storage/models"
	"pira/internal/storage/sqlite"
	perrors "pira/pkg/errors"
)

type batchCall struct {
	hosts    []latency.HostPort
	template latency.Target
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []batchCall
}

func (f *fakeRunner) TestBatch(ctx context.Context, hosts []latency.HostPort, template latency.Target, progress latency.ProgressFunc) map[string]latency.Result {
	f.mu.Lock()
	f.calls = append(f.calls, batchCall{hosts: hosts, template: template})
	f.mu.Unlock()

	out := make(map[string]latency.Result, len(hosts))
	for _, hp := range hosts {
		out[hp.Key()] = latency.Succeeded(latency.MethodTCP, 12)
	}
	return out
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func seed(t *testing.T) *sqlite.DB {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "pira.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	for _, target := range []*models.Target{
		{Name: "web", Host: "example.com", Port: 443, TimeoutMS: 5000, UseICMP: true, UseTCP: true, Enabled: true},
		{Name: "dns", Host: "1.1.1.1", Port: 53, TimeoutMS: 5000, UseICMP: true, UseTCP: true, Enabled: true},
		{Name: "ssh", Host: "10.0.0.7", Port: 22, TimeoutMS: 1000, UseTCP: true, Enabled: true},
		{Name: "old", Host: "192.0.2.1", Port: 80, TimeoutMS: 5000, Enabled: false},
	} {
		require.NoError(t, store.CreateTarget(ctx, target))
	}
	return store
}

func TestRunOnceProbesEnabledTargetsByProfile(t *testing.T) {
	store := seed(t)
	runner := &fakeRunner{}

	var reported *Report
	s, err := NewScheduler(store, runner, time.Minute, func(r *Report) { reported = r }, nil)
	require.NoError(t, err)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Same(t, report, reported)
	assert.Len(t, report.Targets, 3)
	assert.Len(t, report.Results, 3)
	assert.Contains(t, report.Results, "example.com:443")
	assert.Contains(t, report.Results, "10.0.0.7:22")
	assert.NotContains(t, report.Results, "192.0.2.1:80")

	// Two distinct timeout/strategy profiles.
	require.Equal(t, 2, runner.callCount())
	for _, call := range runner.calls {
		if call.template.Timeout == time.Second {
			assert.False(t, call.template.UseICMP)
			assert.Equal(t, []latency.HostPort{{Host: "10.0.0.7", Port: 22}}, call.hosts)
		} else {
			assert.Len(t, call.hosts, 2)
		}
	}
}

func TestNewSchedulerRejectsBadInterval(t *testing.T) {
	_, err := NewScheduler(seed(t), &fakeRunner{}, 0, nil, nil)
	assert.Error(t, err)
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	store := seed(t)
	runner := &fakeRunner{}
	reports := make(chan *Report, 4)

	s, err := NewScheduler(store, runner, time.Hour, func(r *Report) { reports <- r }, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), perrors.ErrWatchRunning)

	select {
	case r := <-reports:
		assert.Len(t, r.Results, 3)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not run on start")
	}

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), perrors.ErrWatchNotRunning)
}
