package tui

import "pira/internal/latency"

// resultMsg carries one monitor result into the update loop.
type resultMsg struct {
	result latency.Result
}

// monitorStoppedMsg is sent once the result stream is closed.
type monitorStoppedMsg struct{}

// networkTypeMsg reports the active network type.
type networkTypeMsg struct {
	kind string
}
