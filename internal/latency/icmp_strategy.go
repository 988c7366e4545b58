package latency

import (
	"context"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	perrors "pira/pkg/errors"
)

const (
	icmpAttempts     = 3
	icmpAttemptPause = 100 * time.Millisecond
)

// EchoFunc sends one echo request to ip and reports whether a reply arrived
// within timeout.
type EchoFunc func(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ICMPStrategy measures latency with repeated echo requests, independent of
// the target port. Attempts that error or time out are skipped.
type ICMPStrategy struct {
	Resolver *net.Resolver
	Echo     EchoFunc
	Sleep    SleepFunc
}

// NewICMPStrategy returns a strategy backed by pro-bing.
func NewICMPStrategy() *ICMPStrategy {
	return &ICMPStrategy{
		Echo:  proBingEcho,
		Sleep: sleepContext,
	}
}

func (s *ICMPStrategy) Name() Method { return MethodICMP }

func (s *ICMPStrategy) Probe(ctx context.Context, target Target) Result {
	target = target.withDefaults()

	ip, err := resolveHost(ctx, s.Resolver, target.Host, target.Timeout)
	if err != nil {
		return Failedf(MethodICMP, "ICMP ping failed: %v", err)
	}

	echo := s.Echo
	if echo == nil {
		echo = proBingEcho
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	perAttempt := target.Timeout / icmpAttempts
	var total time.Duration
	var replies int

	for attempt := 0; attempt < icmpAttempts; attempt++ {
		start := time.Now()
		ok, err := echo(ctx, ip, perAttempt)
		elapsed := time.Since(start)
		if err == nil && ok {
			total += elapsed
			replies++
		}

		if attempt < icmpAttempts-1 {
			if err := sleep(ctx, icmpAttemptPause); err != nil {
				break
			}
		}
	}

	if replies == 0 {
		return Failed(MethodICMP, perrors.ErrHostUnreachable.Error())
	}
	return Succeeded(MethodICMP, int(total.Milliseconds())/replies)
}

// proBingEcho sends a single echo request. Unprivileged (UDP) ICMP is used
// unless the process runs as root.
func proBingEcho(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
	pinger := probing.New(ip.String())
	pinger.SetIPAddr(&net.IPAddr{IP: ip})
	pinger.SetPrivileged(privilegedICMP())
	pinger.Count = 1
	pinger.Timeout = timeout

	if err := pinger.RunWithContext(ctx); err != nil {
		return false, err
	}
	return pinger.Statistics().PacketsRecv > 0, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
