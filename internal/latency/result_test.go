package latency

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSucceededClampsNegativeLatency(t *testing.T) {
	r := Succeeded(MethodTCP, -5)
	assert.True(t, r.Success)
	assert.Equal(t, 0, r.LatencyMS)
	assert.Empty(t, r.Error)
	assert.False(t, r.Timestamp.IsZero())
}

func TestFailedCarriesSentinelLatency(t *testing.T) {
	r := Failedf(MethodSystem, "System ping failed with exit code %d", 2)
	assert.False(t, r.Success)
	assert.Equal(t, NoLatency, r.LatencyMS)
	assert.Equal(t, "System ping failed with exit code 2", r.Error)
}

func TestResultJSON(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	restore := now
	now = func() time.Time { return ts }
	defer func() { now = restore }()

	data, err := json.Marshal(Failed(MethodNetworkCheck, "No network connection available"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"latency": -1,
		"method": "network_check",
		"error": "No network connection available",
		"timestamp": 1700000000123
	}`, string(data))

	data, err = json.Marshal(Succeeded(MethodICMP, 12))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"error"`)

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Success)
	assert.Equal(t, 12, decoded.LatencyMS)
	assert.Equal(t, MethodICMP, decoded.Method)
	assert.True(t, ts.Equal(decoded.Timestamp))
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "25 ms via tcp", Succeeded(MethodTCP, 25).String())
	assert.Equal(t, "FAILED via icmp (Host not reachable via icmp)",
		Failed(MethodICMP, "Host not reachable via icmp").String())
}
