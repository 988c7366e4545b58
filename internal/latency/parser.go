package latency

import (
	"regexp"
	"strconv"
)

var (
	// "64 bytes from 1.1.1.1: icmp_seq=1 ttl=57 time=12.3 ms"
	pingTimePattern = regexp.MustCompile(`time=(\d+(?:\.\d+)?)`)
	// "rtt min/avg/max/mdev = 10.0/15.5/20.0/2.1 ms"
	pingSummaryPattern = regexp.MustCompile(`=\s*(\d+(?:\.\d+)?)/(\d+(?:\.\d+)?)/(\d+(?:\.\d+)?)`)
)

// ParsePingOutput extracts a latency in milliseconds from ping output.
// Per-packet time= samples are averaged when present; otherwise the avg
// field of the min/avg/max summary is used. Returns -1 when neither is found.
func ParsePingOutput(output string) (latencyMS int) {
	defer func() {
		if recover() != nil {
			latencyMS = NoLatency
		}
	}()

	if matches := pingTimePattern.FindAllStringSubmatch(output, -1); len(matches) > 0 {
		var sum float64
		var n int
		for _, m := range matches {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			return int(sum / float64(n))
		}
	}

	if m := pingSummaryPattern.FindStringSubmatch(output); m != nil {
		avg, err := strconv.ParseFloat(m[2], 64)
		if err == nil {
			return int(avg)
		}
	}

	return NoLatency
}
