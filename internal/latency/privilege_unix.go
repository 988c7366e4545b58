//go:build !windows

package latency

import "golang.org/x/sys/unix"

// privilegedICMP reports whether raw ICMP sockets are available.
func privilegedICMP() bool {
	return unix.Geteuid() == 0
}
