package latency

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	perrors "pira/pkg/errors"
)

// maxTCPTimeout caps the connect probe regardless of the caller's budget.
const maxTCPTimeout = 3 * time.Second

// Strategy is one technique for estimating reachability and latency.
// Implementations never return errors: every failure becomes a failed Result.
type Strategy interface {
	// Name returns the method recorded on results ("icmp", "tcp" or "system").
	Name() Method
	// Probe runs the strategy once against target.
	Probe(ctx context.Context, target Target) Result
}

// TCPStrategy measures the duration of a single TCP handshake to
// target.Host:target.Port.
type TCPStrategy struct {
	// Resolver defaults to net.DefaultResolver.
	Resolver *net.Resolver
}

func (s *TCPStrategy) Name() Method { return MethodTCP }

func (s *TCPStrategy) Probe(ctx context.Context, target Target) Result {
	target = target.withDefaults()

	ip, err := resolveHost(ctx, s.Resolver, target.Host, target.Timeout)
	if err != nil {
		return Failedf(MethodTCP, "TCP ping failed: %v", err)
	}

	timeout := min(target.Timeout, maxTCPTimeout)
	dialer := net.Dialer{Timeout: timeout}
	address := net.JoinHostPort(ip.String(), strconv.Itoa(target.Port))

	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	elapsed := time.Since(start)
	if conn != nil {
		defer conn.Close()
	}
	if err != nil {
		return classifyDialError(err)
	}

	return Succeeded(MethodTCP, int(elapsed.Milliseconds()))
}

func classifyDialError(err error) Result {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Failed(MethodTCP, perrors.ErrTCPRefused.Error())
	}
	if isTimeout(err) {
		return Failed(MethodTCP, perrors.ErrTCPTimeout.Error())
	}
	return Failedf(MethodTCP, "TCP ping failed: %v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// resolveHost returns the first IPv4 address of host, or the first address
// of any family when host has no IPv4 record. IP literals are returned as is.
func resolveHost(ctx context.Context, r *net.Resolver, host string, timeout time.Duration) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	if r == nil {
		r = net.DefaultResolver
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := r.LookupIPAddr(lookupCtx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses found for %s", host)
	}
	for _, addr := range addrs {
		if addr.IP.To4() != nil {
			return addr.IP, nil
		}
	}
	return addrs[0].IP, nil
}

// NewStrategy creates a Strategy by name. Valid names: "icmp", "tcp", "system".
func NewStrategy(name string) (Strategy, error) {
	switch Method(name) {
	case MethodICMP:
		return NewICMPStrategy(), nil
	case MethodTCP:
		return &TCPStrategy{}, nil
	case MethodSystem:
		return NewSystemStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown probe strategy: %s (available: icmp, tcp, system)", name)
	}
}
