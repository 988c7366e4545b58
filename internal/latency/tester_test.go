package latency

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTester(icmp, tcp, system Strategy, gate Gate) *Tester {
	return NewTester(TesterConfig{
		Workers: 4,
		ICMP:    icmp,
		TCP:     tcp,
		System:  system,
		Gate:    gate,
	})
}

func TestTestSingleNoNetwork(t *testing.T) {
	icmp, tcp, system := ok(MethodICMP, 10), ok(MethodTCP, 10), ok(MethodSystem, 10)
	tester := newTestTester(icmp, tcp, system, fakeGate(false))

	r := tester.TestSingle(context.Background(), NewTarget("example.com", 443))

	assert.False(t, r.Success)
	assert.Equal(t, MethodNetworkCheck, r.Method)
	assert.Equal(t, "No network connection available", r.Error)
	assert.Equal(t, NoLatency, r.LatencyMS)
	assert.Zero(t, icmp.calls.Load())
	assert.Zero(t, tcp.calls.Load())
	assert.Zero(t, system.calls.Load())
}

func TestTestSingleSelectsLowestLatency(t *testing.T) {
	tester := newTestTester(
		ok(MethodICMP, 40),
		ok(MethodTCP, 25),
		fail(MethodSystem, "System ping timeout"),
		fakeGate(true),
	)

	r := tester.TestSingle(context.Background(), NewTarget("example.com", 443))

	assert.True(t, r.Success)
	assert.Equal(t, MethodTCP, r.Method)
	assert.Equal(t, 25, r.LatencyMS)
}

func TestTestSingleTieGoesToEarliestStrategy(t *testing.T) {
	tester := newTestTester(ok(MethodICMP, 20), ok(MethodTCP, 20), ok(MethodSystem, 20), nil)

	r := tester.TestSingle(context.Background(), NewTarget("example.com", 443))

	assert.Equal(t, MethodICMP, r.Method)
}

func TestTestSingleAllFailReturnsLastResult(t *testing.T) {
	tester := newTestTester(
		fail(MethodICMP, "Host not reachable via icmp"),
		fail(MethodTCP, "TCP connection refused"),
		fail(MethodSystem, "System ping failed with exit code 1"),
		fakeGate(true),
	)

	r := tester.TestSingle(context.Background(), NewTarget("example.com", 443))

	assert.False(t, r.Success)
	assert.Equal(t, MethodSystem, r.Method)
	assert.Equal(t, "System ping failed with exit code 1", r.Error)
}

func TestTestSingleRunsOnlyEnabledStrategies(t *testing.T) {
	icmp, tcp, system := ok(MethodICMP, 1), ok(MethodTCP, 1), ok(MethodSystem, 30)
	tester := newTestTester(icmp, tcp, system, fakeGate(true))

	target := Target{Host: "example.com", Port: 443}
	r := tester.TestSingle(context.Background(), target)

	assert.Equal(t, MethodSystem, r.Method)
	assert.Equal(t, 30, r.LatencyMS)
	assert.Zero(t, icmp.calls.Load())
	assert.Zero(t, tcp.calls.Load())
	assert.Equal(t, int32(1), system.calls.Load())
}

func TestTestSingleRunsStrategiesConcurrently(t *testing.T) {
	slow := func(name Method) *fakeStrategy {
		s := ok(name, 5)
		s.delay = 200 * time.Millisecond
		return s
	}
	tester := newTestTester(slow(MethodICMP), slow(MethodTCP), slow(MethodSystem), nil)

	start := time.Now()
	tester.TestSingle(context.Background(), NewTarget("example.com", 443))

	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestTestSinglePanicBecomesException(t *testing.T) {
	tcp := ok(MethodTCP, 5)
	tcp.panics = true
	tester := newTestTester(ok(MethodICMP, 5), tcp, ok(MethodSystem, 5), nil)

	var r Result
	require.NotPanics(t, func() {
		r = tester.TestSingle(context.Background(), NewTarget("example.com", 443))
	})

	assert.False(t, r.Success)
	assert.Equal(t, MethodException, r.Method)
	assert.Contains(t, r.Error, "Ping operation failed")
	assert.Contains(t, r.Error, "strategy exploded")
}

func TestSelectBestEmpty(t *testing.T) {
	r := selectBest(nil)
	assert.False(t, r.Success)
	assert.Equal(t, MethodNoMethods, r.Method)
	assert.Equal(t, "All ping methods failed", r.Error)
}

func TestTestBatch(t *testing.T) {
	tester := newTestTester(ok(MethodICMP, 8), ok(MethodTCP, 12), ok(MethodSystem, 20), fakeGate(true))

	hosts := []HostPort{
		{Host: "a.example", Port: 80},
		{Host: "b.example", Port: 443},
		{Host: "c.example", Port: 53},
		{Host: "a.example", Port: 80},
	}

	var mu sync.Mutex
	var calls []int
	results := tester.TestBatch(context.Background(), hosts, Target{UseICMP: true}, func(key string, r Result, current, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		calls = append(calls, current)
	})

	require.Len(t, results, 3)
	for _, key := range []string{"a.example:80", "b.example:443", "c.example:53"} {
		r, found := results[key]
		require.True(t, found, key)
		assert.True(t, r.Success)
		assert.Equal(t, MethodICMP, r.Method)
	}
	assert.ElementsMatch(t, []int{1, 2, 3}, calls)
}

func TestTestBatchRespectsWorkerLimit(t *testing.T) {
	var mu sync.Mutex
	var inFlight, peak int
	system := &countingStrategy{
		enter: func() {
			mu.Lock()
			inFlight++
			peak = max(peak, inFlight)
			mu.Unlock()
		},
		leave: func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		},
	}
	tester := NewTester(TesterConfig{Workers: 2, System: system, ICMP: ok(MethodICMP, 1), TCP: ok(MethodTCP, 1)})

	hosts := make([]HostPort, 8)
	for i := range hosts {
		hosts[i] = HostPort{Host: fmt.Sprintf("h%d.example", i), Port: 80}
	}
	results := tester.TestBatch(context.Background(), hosts, Target{}, nil)

	assert.Len(t, results, 8)
	assert.LessOrEqual(t, peak, 2)
}

type countingStrategy struct {
	enter, leave func()
}

func (c *countingStrategy) Name() Method { return MethodSystem }

func (c *countingStrategy) Probe(ctx context.Context, target Target) Result {
	c.enter()
	defer c.leave()
	time.Sleep(20 * time.Millisecond)
	return Succeeded(MethodSystem, 5)
}

func TestSortedKeysAndSummary(t *testing.T) {
	results := map[string]Result{
		"slow:80": Succeeded(MethodTCP, 90),
		"down:80": Failed(MethodSystem, "System ping timeout"),
		"fast:80": Succeeded(MethodICMP, 5),
	}

	assert.Equal(t, []string{"fast:80", "slow:80", "down:80"}, SortedKeys(results))
	assert.Equal(t, BatchSummary{Tested: 3, Succeeded: 2, Failed: 1}, Summarize(results))
}

func TestTestBatchKeysByProbedPort(t *testing.T) {
	var mu sync.Mutex
	var probed []int
	system := &recordingStrategy{record: func(target Target) {
		mu.Lock()
		probed = append(probed, target.Port)
		mu.Unlock()
	}}
	tester := NewTester(TesterConfig{System: system})

	results := tester.TestBatch(context.Background(), []HostPort{
		{Host: "h.example", Port: 0},
		{Host: "h.example", Port: 80},
		{Host: "h.example", Port: -1},
	}, Target{}, nil)

	require.Len(t, results, 1)
	assert.Contains(t, results, "h.example:80")
	assert.Equal(t, []int{80}, probed)
}

type recordingStrategy struct {
	record func(Target)
}

func (r *recordingStrategy) Name() Method { return MethodSystem }

func (r *recordingStrategy) Probe(ctx context.Context, target Target) Result {
	r.record(target)
	return Succeeded(MethodSystem, 4)
}
