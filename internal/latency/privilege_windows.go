package latency

// privilegedICMP is always true on Windows, where pro-bing only supports
// raw sockets.
func privilegedICMP() bool {
	return true
}
