package latency

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	perrors "pira/pkg/errors"
)

// Gate reports whether any network path is currently usable.
type Gate interface {
	Available() bool
}

// ProgressFunc is called each time a single target completes during batch testing.
type ProgressFunc func(key string, result Result, current, total int)

// TesterConfig holds configuration for the Tester. Nil strategies are
// replaced with the default implementations; a nil Gate is treated as
// always available.
type TesterConfig struct {
	Workers int64
	ICMP    Strategy
	TCP     Strategy
	System  Strategy
	Gate    Gate
	Logger  *zap.Logger
}

// Tester orchestrates reachability probing.
type Tester struct {
	config TesterConfig
	logger *zap.Logger
}

// NewTester creates a new Tester.
func NewTester(cfg TesterConfig) *Tester {
	if cfg.Workers <= 0 {
		cfg.Workers = 10
	}
	if cfg.ICMP == nil {
		cfg.ICMP = NewICMPStrategy()
	}
	if cfg.TCP == nil {
		cfg.TCP = &TCPStrategy{}
	}
	if cfg.System == nil {
		cfg.System = NewSystemStrategy()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tester{
		config: cfg,
		logger: logger,
	}
}

// TestSingle runs every enabled strategy for target concurrently, waits for
// all of them and returns the best result. It never panics or fails: every
// outcome, including an internal fault, is reported as a Result.
func (t *Tester) TestSingle(ctx context.Context, target Target) (result Result) {
	target = target.withDefaults()

	defer func() {
		if r := recover(); r != nil {
			result = Failedf(MethodException, "Ping operation failed: %v", r)
		}
		t.logger.Debug("probe completed",
			zap.String("target", target.Key()),
			zap.Bool("success", result.Success),
			zap.String("method", string(result.Method)),
			zap.Int("latency_ms", result.LatencyMS),
			zap.String("error", result.Error),
		)
	}()

	if t.config.Gate != nil && !t.config.Gate.Available() {
		return Failed(MethodNetworkCheck, perrors.ErrNoNetwork.Error())
	}

	strategies := t.strategiesFor(target)
	results := make([]Result, len(strategies))

	var g errgroup.Group
	for i, s := range strategies {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &perrors.ProbeError{Method: string(s.Name()), Host: target.Host, Err: fmt.Errorf("%v", r)}
				}
			}()
			results[i] = s.Probe(ctx, target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.logger.Warn("strategy aborted", zap.String("target", target.Key()), zap.Error(err))
		return Failedf(MethodException, "Ping operation failed: %v", err)
	}

	return selectBest(results)
}

// strategiesFor returns the strategies to run, in selection order:
// icmp, tcp, then system which is always included.
func (t *Tester) strategiesFor(target Target) []Strategy {
	strategies := make([]Strategy, 0, 3)
	if target.UseICMP {
		strategies = append(strategies, t.config.ICMP)
	}
	if target.UseTCP {
		strategies = append(strategies, t.config.TCP)
	}
	return append(strategies, t.config.System)
}

// selectBest picks the successful result with the lowest latency, earliest
// position winning ties. Without any success it returns the last result.
func selectBest(results []Result) Result {
	best := -1
	for i, r := range results {
		if !r.Success {
			continue
		}
		if best < 0 || r.LatencyMS < results[best].LatencyMS {
			best = i
		}
	}
	if best >= 0 {
		return results[best]
	}
	if len(results) == 0 {
		return Failed(MethodNoMethods, perrors.ErrNoMethods.Error())
	}
	return results[len(results)-1]
}

// TestBatch probes every host concurrently using a semaphore-based worker
// pool. The returned map holds exactly one entry per distinct "host:port",
// with non-positive ports keyed as DefaultPort.
// Timeout, UseICMP and UseTCP are taken from template.
func (t *Tester) TestBatch(ctx context.Context, hosts []HostPort, template Target, progress ProgressFunc) map[string]Result {
	unique := make([]HostPort, 0, len(hosts))
	seen := make(map[string]struct{}, len(hosts))
	for _, hp := range hosts {
		hp = hp.normalized()
		if _, ok := seen[hp.Key()]; ok {
			continue
		}
		seen[hp.Key()] = struct{}{}
		unique = append(unique, hp)
	}

	results := make(map[string]Result, len(unique))
	var mu sync.Mutex
	var completed int

	sem := semaphore.NewWeighted(t.config.Workers)
	var wg sync.WaitGroup

	for _, hp := range unique {
		wg.Add(1)
		go func(hp HostPort) {
			defer wg.Done()

			var result Result
			if err := sem.Acquire(ctx, 1); err != nil {
				result = Failedf(MethodException, "Ping operation failed: %v", err)
			} else {
				target := template
				target.Host = hp.Host
				target.Port = hp.Port
				result = t.TestSingle(ctx, target)
				sem.Release(1)
			}

			mu.Lock()
			results[hp.Key()] = result
			completed++
			current := completed
			mu.Unlock()

			if progress != nil {
				progress(hp.Key(), result, current, len(unique))
			}
		}(hp)
	}

	wg.Wait()
	return results
}

// BatchSummary counts outcomes of a batch.
type BatchSummary struct {
	Tested    int
	Succeeded int
	Failed    int
}

// Summarize counts successes and failures in results.
func Summarize(results map[string]Result) BatchSummary {
	s := BatchSummary{Tested: len(results)}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// SortedKeys orders keys successful-by-latency first, failures at the end,
// ties broken by key.
func SortedKeys(results map[string]Result) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := results[keys[i]], results[keys[j]]
		if ri.Success != rj.Success {
			return ri.Success
		}
		if ri.Success && ri.LatencyMS != rj.LatencyMS {
			return ri.LatencyMS < rj.LatencyMS
		}
		return keys[i] < keys[j]
	})
	return keys
}
