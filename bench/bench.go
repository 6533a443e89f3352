// Package bench runs parallel multi-configuration benchmarks: many isolated
// probes (browser/platform combinations) executed by a bounded worker pool,
// with results accumulated and reduced only after all workers finish.
package bench

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config identifies one probe configuration.
type Config struct {
	Browser  string `json:"browser" yaml:"browser"`
	Platform string `json:"platform" yaml:"platform"`
}

// DefaultConfigs is the standard matrix used when no configs are given.
var DefaultConfigs = []Config{
	{Browser: "chrome", Platform: "windows"},
	{Browser: "chrome", Platform: "linux"},
	{Browser: "firefox", Platform: "windows"},
	{Browser: "firefox", Platform: "linux"},
	{Browser: "edge", Platform: "windows"},
}

// Result is the outcome of one probe.
type Result struct {
	Browser    string  `json:"browser"`
	Platform   string  `json:"platform"`
	NodeID     string  `json:"node_id"`
	Success    bool    `json:"success"`
	DurationMS float64 `json:"duration_ms"`
	LoadTimeMS float64 `json:"load_time_ms"`
	Screenshot string  `json:"screenshot_path,omitempty"`
	Err        string  `json:"error,omitempty"`
}

// GridMetrics is the reduction over all probe results.
type GridMetrics struct {
	TotalTests      int      `json:"total_tests"`
	PassedTests     int      `json:"passed_tests"`
	FailedTests     int      `json:"failed_tests"`
	AvgDurationMS   float64  `json:"avg_duration_ms"`
	AvgLoadTimeMS   float64  `json:"avg_load_time_ms"`
	NodesUsed       int      `json:"nodes_used"`
	BrowsersTested  []string `json:"browsers_tested"`
	PlatformsTested []string `json:"platforms_tested"`
	Results         []Result `json:"results"`
}

// Probe runs a single fully isolated benchmark against url using cfg. It
// must honor ctx: on cancellation it terminates whatever external session it
// opened and returns a failed Result.
type Probe func(ctx context.Context, url string, cfg Config) Result

// Runner executes probe matrices with a bounded worker pool.
type Runner struct {
	logger     zerolog.Logger
	probe      Probe
	maxWorkers int
	timeout    time.Duration
}

// NewRunner returns a runner with the given pool bound and per-probe
// timeout. maxWorkers below 1 is treated as 1.
func NewRunner(logger zerolog.Logger, probe Probe, maxWorkers int, timeout time.Duration) *Runner {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Runner{
		logger:     logger,
		probe:      probe,
		maxWorkers: maxWorkers,
		timeout:    timeout,
	}
}

type job struct {
	index int
	cfg   Config
}

// Run executes one probe per config and reduces the results. Probes share no
// mutable state; each worker sends results over a channel and the reduction
// happens only after every worker has finished.
func (r *Runner) Run(ctx context.Context, url string, configs []Config) GridMetrics {
	if len(configs) == 0 {
		configs = DefaultConfigs
	}

	jobs := make(chan job)
	out := make(chan Result, len(configs))

	var wg sync.WaitGroup
	workers := r.maxWorkers
	if workers > len(configs) {
		workers = len(configs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out <- r.runOne(ctx, url, j)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, cfg := range configs {
			select {
			case jobs <- job{index: i, cfg: cfg}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(out)

	results := make([]Result, 0, len(configs))
	for res := range out {
		results = append(results, res)
	}
	return Reduce(results)
}

func (r *Runner) runOne(ctx context.Context, url string, j job) Result {
	probeCtx := ctx
	var cancel context.CancelFunc
	if r.timeout > 0 {
		probeCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	res := r.probe(probeCtx, url, j.cfg)
	res.Browser = j.cfg.Browser
	res.Platform = j.cfg.Platform
	res.NodeID = nodeID(j.index)
	if res.DurationMS == 0 {
		res.DurationMS = float64(time.Since(start).Milliseconds())
	}
	if probeCtx.Err() != nil && res.Err == "" {
		res.Success = false
		res.Err = probeCtx.Err().Error()
	}

	r.logger.Debug().
		Str("node", res.NodeID).
		Str("browser", res.Browser).
		Str("platform", res.Platform).
		Bool("success", res.Success).
		Msg("Probe finished")
	return res
}

func nodeID(index int) string {
	return fmt.Sprintf("node_%d", index)
}

// Reduce aggregates probe results into grid metrics. Pure function over the
// accumulated slice.
func Reduce(results []Result) GridMetrics {
	m := GridMetrics{
		TotalTests: len(results),
		NodesUsed:  len(results),
		Results:    results,
	}

	var durSum, loadSum float64
	loadCount := 0
	browsers := map[string]bool{}
	platforms := map[string]bool{}

	for _, res := range results {
		if res.Success {
			m.PassedTests++
		} else {
			m.FailedTests++
		}
		durSum += res.DurationMS
		if res.LoadTimeMS > 0 {
			loadSum += res.LoadTimeMS
			loadCount++
		}
		if res.Browser != "" && !browsers[res.Browser] {
			browsers[res.Browser] = true
			m.BrowsersTested = append(m.BrowsersTested, res.Browser)
		}
		if res.Platform != "" && !platforms[res.Platform] {
			platforms[res.Platform] = true
			m.PlatformsTested = append(m.PlatformsTested, res.Platform)
		}
	}

	if len(results) > 0 {
		m.AvgDurationMS = durSum / float64(len(results))
	}
	if loadCount > 0 {
		m.AvgLoadTimeMS = loadSum / float64(loadCount)
	}
	return m
}
