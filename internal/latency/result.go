package latency

import (
	"encoding/json"
	"fmt"
	"time"
)

// Method identifies which strategy produced a Result, or the pre-flight /
// aggregate category for results no strategy produced.
type Method string

const (
	MethodICMP         Method = "icmp"
	MethodTCP          Method = "tcp"
	MethodSystem       Method = "system"
	MethodNetworkCheck Method = "network_check"
	MethodException    Method = "exception"
	MethodNoMethods    Method = "no_methods"
	MethodContinuous   Method = "continuous"
)

// NoLatency is the sentinel latency of a failed or unmeasured result.
const NoLatency = -1

// Result is the outcome of one reachability question. Build it with
// Succeeded or Failed so the success/latency/error invariant holds.
type Result struct {
	Success   bool
	LatencyMS int
	Method    Method
	Error     string
	Timestamp time.Time
}

// now is replaced in tests.
var now = time.Now

// Succeeded returns a successful result. A negative latency is clamped to 0.
func Succeeded(method Method, latencyMS int) Result {
	if latencyMS < 0 {
		latencyMS = 0
	}
	return Result{
		Success:   true,
		LatencyMS: latencyMS,
		Method:    method,
		Timestamp: now(),
	}
}

// Failed returns a failed result carrying msg as its error.
func Failed(method Method, msg string) Result {
	return Result{
		Success:   false,
		LatencyMS: NoLatency,
		Method:    method,
		Error:     msg,
		Timestamp: now(),
	}
}

// Failedf is Failed with a format string.
func Failedf(method Method, format string, args ...any) Result {
	return Failed(method, fmt.Sprintf(format, args...))
}

// String renders the result for terminal output.
func (r Result) String() string {
	if r.Success {
		return fmt.Sprintf("%d ms via %s", r.LatencyMS, r.Method)
	}
	return fmt.Sprintf("FAILED via %s (%s)", r.Method, r.Error)
}

type resultJSON struct {
	Success   bool   `json:"success"`
	Latency   int    `json:"latency"`
	Method    string `json:"method"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// MarshalJSON encodes the boundary representation: timestamp is epoch ms.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Success:   r.Success,
		Latency:   r.LatencyMS,
		Method:    string(r.Method),
		Error:     r.Error,
		Timestamp: r.Timestamp.UnixMilli(),
	})
}

// UnmarshalJSON decodes the boundary representation.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{
		Success:   raw.Success,
		LatencyMS: raw.Latency,
		Method:    Method(raw.Method),
		Error:     raw.Error,
		Timestamp: time.UnixMilli(raw.Timestamp),
	}
	return nil
}
