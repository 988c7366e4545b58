package latency

import (
	"context"
	"sync/atomic"
	"time"
)

type fakeStrategy struct {
	name   Method
	result Result
	delay  time.Duration
	panics bool
	calls  atomic.Int32
}

func (f *fakeStrategy) Name() Method { return f.name }

func (f *fakeStrategy) Probe(ctx context.Context, target Target) Result {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panics {
		panic("strategy exploded")
	}
	return f.result
}

func ok(name Method, ms int) *fakeStrategy {
	return &fakeStrategy{name: name, result: Succeeded(name, ms)}
}

func fail(name Method, msg string) *fakeStrategy {
	return &fakeStrategy{name: name, result: Failed(name, msg)}
}

type fakeGate bool

func (g fakeGate) Available() bool { return bool(g) }
