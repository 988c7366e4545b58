package latency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout   string
	exitCode int
	err      error
	block    bool

	name string
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	f.name = name
	f.args = args
	if f.block {
		<-ctx.Done()
		return nil, -1, ctx.Err()
	}
	return []byte(f.stdout), f.exitCode, f.err
}

func probeSystem(runner *fakeRunner, timeout time.Duration) Result {
	s := &SystemStrategy{Binary: "ping", Runner: runner}
	return s.Probe(context.Background(), Target{Host: "example.com", Timeout: timeout})
}

func TestSystemStrategySuccess(t *testing.T) {
	runner := &fakeRunner{stdout: "time=18.2 ms\ntime=20.1 ms\n"}

	r := probeSystem(runner, 3*time.Second)

	require.True(t, r.Success, r.Error)
	assert.Equal(t, MethodSystem, r.Method)
	assert.Equal(t, 19, r.LatencyMS)
	assert.Equal(t, "ping", runner.name)
	assert.Contains(t, runner.args, "example.com")
	assert.Contains(t, runner.args, "2")
}

func TestSystemStrategyNonZeroExit(t *testing.T) {
	r := probeSystem(&fakeRunner{stdout: "", exitCode: 1}, time.Second)

	assert.False(t, r.Success)
	assert.Equal(t, "System ping failed with exit code 1", r.Error)
}

func TestSystemStrategyUnparseable(t *testing.T) {
	r := probeSystem(&fakeRunner{stdout: "PING example.com: no samples\n"}, time.Second)

	assert.False(t, r.Success)
	assert.Equal(t, NoLatency, r.LatencyMS)
	assert.Equal(t, "could not parse ping output", r.Error)
}

func TestSystemStrategyStartFailure(t *testing.T) {
	r := probeSystem(&fakeRunner{err: errors.New("executable file not found")}, time.Second)

	assert.False(t, r.Success)
	assert.Equal(t, "System ping failed: executable file not found", r.Error)
}

func TestSystemStrategyTimeout(t *testing.T) {
	start := time.Now()
	r := probeSystem(&fakeRunner{block: true}, 50*time.Millisecond)

	assert.False(t, r.Success)
	assert.Equal(t, "System ping timeout", r.Error)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPingArgs(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{goos: "linux", want: []string{"-c", "2", "-W", "3", "host"}},
		{goos: "darwin", want: []string{"-c", "2", "-t", "3", "host"}},
		{goos: "windows", want: []string{"-n", "2", "-w", "3000", "host"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			assert.Equal(t, tt.want, pingArgs(tt.goos, 2, 3, "host"))
		})
	}
}

// lateRunner finishes successfully but only after the caller's deadline.
type lateRunner struct{}

func (lateRunner) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	<-ctx.Done()
	return []byte("time=5.0 ms\n"), 0, nil
}

func TestSystemStrategySuccessPastDeadlineIsTimeout(t *testing.T) {
	s := &SystemStrategy{Runner: lateRunner{}}
	r := s.Probe(context.Background(), Target{Host: "example.com", Timeout: 30 * time.Millisecond})

	assert.False(t, r.Success)
	assert.Equal(t, "System ping timeout", r.Error)
}
