package latency

import (
	"net"
	"strconv"
	"time"
)

const (
	DefaultPort     = 80
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = 5 * time.Second
)

// Target describes one reachability question. The system strategy is always
// attempted regardless of UseICMP and UseTCP.
type Target struct {
	Host    string
	Port    int
	Timeout time.Duration
	UseICMP bool
	UseTCP  bool
}

// NewTarget returns a target with both optional strategies enabled and the
// default port/timeout applied where zero.
func NewTarget(host string, port int) Target {
	t := Target{Host: host, Port: port, UseICMP: true, UseTCP: true}
	return t.withDefaults()
}

func (t Target) withDefaults() Target {
	if t.Port <= 0 {
		t.Port = DefaultPort
	}
	if t.Timeout <= 0 {
		t.Timeout = DefaultTimeout
	}
	return t
}

// Key returns the literal "host:port" identifier used by batch results.
func (t Target) Key() string {
	return HostPort{Host: t.Host, Port: t.Port}.Key()
}

// HostPort is a batch input entry.
type HostPort struct {
	Host string
	Port int
}

// normalized applies DefaultPort to a non-positive port, matching the port
// the target is actually probed on.
func (hp HostPort) normalized() HostPort {
	if hp.Port <= 0 {
		hp.Port = DefaultPort
	}
	return hp
}

// Key returns "host:port". IPv6 literals are not bracketed so keys match
// the plain concatenation callers build.
func (hp HostPort) Key() string {
	return hp.Host + ":" + strconv.Itoa(hp.Port)
}

// ParseHostPort splits "host:port" (or "[v6]:port") and falls back to
// DefaultPort when no port is present.
func ParseHostPort(s string) (HostPort, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// No port component.
		if addrErr, ok := err.(*net.AddrError); ok && addrErr.Err == "missing port in address" {
			return HostPort{Host: s, Port: DefaultPort}, nil
		}
		return HostPort{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return HostPort{}, &net.AddrError{Err: "invalid port", Addr: s}
	}
	return HostPort{Host: host, Port: port}, nil
}
