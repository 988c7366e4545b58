package latency

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	perrors "pira/pkg/errors"
)

// systemPingCount is kept low so the external tool finishes inside the
// caller's budget.
const systemPingCount = 2

// CommandRunner executes an external tool and captures its standard output.
// A non-zero exit is reported through exitCode with a nil error; err is
// reserved for failures to start or wait for the process.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, exitCode int, err error)
}

// ExecRunner runs commands with os/exec and kills the process (and its
// process group where supported) when ctx is done.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	configureKill(cmd)
	cmd.WaitDelay = 500 * time.Millisecond

	err := cmd.Run()
	if ctx.Err() != nil {
		return stdout.Bytes(), -1, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return nil, -1, err
	}
	return stdout.Bytes(), 0, nil
}

// SystemStrategy shells out to the platform ping tool and parses its output
// with ParsePingOutput.
type SystemStrategy struct {
	Binary string
	Runner CommandRunner
}

// NewSystemStrategy returns a strategy that runs "ping" from PATH.
func NewSystemStrategy() *SystemStrategy {
	return &SystemStrategy{Binary: "ping", Runner: ExecRunner{}}
}

func (s *SystemStrategy) Name() Method { return MethodSystem }

func (s *SystemStrategy) Probe(ctx context.Context, target Target) Result {
	target = target.withDefaults()

	binary := s.Binary
	if binary == "" {
		binary = "ping"
	}
	runner := s.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	waitSeconds := max(int(target.Timeout/time.Second), 1)

	// The whole run is bounded by the caller's timeout, not by the
	// per-packet wait handed to the tool.
	runCtx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	stdout, exitCode, err := runner.Run(runCtx, binary, pingArgs(runtime.GOOS, systemPingCount, waitSeconds, target.Host)...)
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Failed(MethodSystem, perrors.ErrSystemPingTimeout.Error())
	}
	if err != nil {
		return Failedf(MethodSystem, "System ping failed: %v", err)
	}
	if exitCode != 0 {
		return Failedf(MethodSystem, "System ping failed with exit code %d", exitCode)
	}

	latencyMS := ParsePingOutput(string(stdout))
	if latencyMS <= 0 {
		return Failed(MethodSystem, perrors.ErrPingUnparseable.Error())
	}
	return Succeeded(MethodSystem, latencyMS)
}

// pingArgs builds the argument list for the platform ping tool.
func pingArgs(goos string, count, waitSeconds int, host string) []string {
	c := strconv.Itoa(count)
	switch goos {
	case "windows":
		return []string{"-n", c, "-w", strconv.Itoa(waitSeconds * 1000), host}
	case "darwin", "freebsd", "openbsd", "netbsd":
		return []string{"-c", c, "-t", strconv.Itoa(waitSeconds), host}
	default:
		return []string{"-c", c, "-W", strconv.Itoa(waitSeconds), host}
	}
}
