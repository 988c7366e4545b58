package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// Precondition errors
	ErrNoNetwork = errors.New("No network connection available")

	// Per-probe errors. The messages are user visible on failed results.
	ErrHostUnreachable   = errors.New("Host not reachable via icmp")
	ErrTCPTimeout        = errors.New("TCP connection timeout")
	ErrTCPRefused        = errors.New("TCP connection refused")
	ErrSystemPingTimeout = errors.New("System ping timeout")
	ErrPingUnparseable   = errors.New("could not parse ping output")

	// Aggregate errors
	ErrNoMethods = errors.New("All ping methods failed")

	// Target errors
	ErrTargetNotFound = errors.New("target not found")
	ErrTargetInvalid  = errors.New("invalid target")
	ErrTargetExists   = errors.New("target already exists")

	// Scheduler errors
	ErrWatchRunning    = errors.New("watch is already running")
	ErrWatchNotRunning = errors.New("watch is not running")
)

// ProbeError represents a failure of one strategy against one host
type ProbeError struct {
	Method string
	Host   string
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s probe %s: %v", e.Method, e.Host, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// TargetError represents a saved-target related error
type TargetError struct {
	Name string
	Err  error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target '%s': %v", e.Name, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}
