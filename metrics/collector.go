// Package metrics accumulates raw observation streams from test sessions and
// derives real-time statistics on demand. The collector is not safe for
// concurrent writers; callers serialize appends, typically a single
// orchestrator draining a completion channel.
package metrics

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Metric is a single immutable observation.
type Metric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags"`
	Metadata  map[string]string `json:"metadata"`
}

// RealTime holds derived statistics recomputed on demand from the
// accumulated series. It is never stored as authoritative state.
type RealTime struct {
	CrashRate         float64 `json:"crash_rate"`
	PassRate          float64 `json:"pass_rate"`
	FlakyTestRate     float64 `json:"flaky_test_rate"`
	AvgResponseTimeMS float64 `json:"avg_response_time_ms"`
	AvgLoadTimeMS     float64 `json:"avg_load_time_ms"`
	TotalTests        int     `json:"total_tests"`
	PassedTests       int     `json:"passed_tests"`
	FailedTests       int     `json:"failed_tests"`
	EngagementScore   float64 `json:"engagement_score"`
}

// FlakyTest describes one test name with mixed pass/fail outcomes.
type FlakyTest struct {
	Name          string  `json:"name"`
	TotalRuns     int     `json:"total_runs"`
	PassCount     int     `json:"pass_count"`
	FailCount     int     `json:"fail_count"`
	FlakinessRate float64 `json:"flakiness_rate"`
}

// Collector accumulates observation series for one testing session. All
// series are append-only and unbounded; call Reset if growth is a concern.
type Collector struct {
	logger      zerolog.Logger
	storagePath string
	now         func() time.Time

	metrics       []Metric
	testResults   map[string][]bool
	testOrder     []string
	crashEvents   []time.Time
	responseTimes []float64
	loadTimes     []float64
	sessionStart  time.Time
}

// NewCollector returns a collector with its session start fixed at now.
// When storagePath is non-empty, a persisted snapshot is reloaded at
// construction; a missing or corrupt snapshot degrades to empty history.
func NewCollector(logger zerolog.Logger, storagePath string) *Collector {
	c := &Collector{
		logger:      logger,
		storagePath: storagePath,
		now:         time.Now,
		testResults: make(map[string][]bool),
	}
	c.sessionStart = c.now()
	if storagePath != "" {
		c.loadHistory()
	}
	return c
}

// RecordMetric appends a single named observation.
func (c *Collector) RecordMetric(name string, value float64, tags, metadata map[string]string) {
	if tags == nil {
		tags = map[string]string{}
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	c.metrics = append(c.metrics, Metric{
		Name:      name,
		Value:     value,
		Timestamp: c.now(),
		Tags:      tags,
		Metadata:  metadata,
	})
}

// RecordTestResult appends a pass/fail outcome to the test's sequence.
func (c *Collector) RecordTestResult(testName string, passed bool) {
	if _, seen := c.testResults[testName]; !seen {
		c.testOrder = append(c.testOrder, testName)
	}
	c.testResults[testName] = append(c.testResults[testName], passed)
}

// RecordCrash appends a crash event.
func (c *Collector) RecordCrash() {
	c.crashEvents = append(c.crashEvents, c.now())
}

// RecordResponseTime appends a response time measurement in milliseconds.
func (c *Collector) RecordResponseTime(ms float64) {
	c.responseTimes = append(c.responseTimes, ms)
}

// RecordLoadTime appends a load time measurement in milliseconds.
func (c *Collector) RecordLoadTime(ms float64) {
	c.loadTimes = append(c.loadTimes, ms)
}

// RealTimeMetrics derives current statistics from the accumulated state.
//
// The crash rate is crashes per hour of elapsed session time, so it decays
// as the session ages without new crashes. That is the intended
// live-rate semantics, not a counter.
func (c *Collector) RealTimeMetrics() RealTime {
	var rt RealTime

	total, passed := 0, 0
	for _, results := range c.testResults {
		total += len(results)
		for _, ok := range results {
			if ok {
				passed++
			}
		}
	}
	if total > 0 {
		rt.PassRate = float64(passed) / float64(total) * 100
		rt.TotalTests = total
		rt.PassedTests = passed
		rt.FailedTests = total - passed
	}

	sessionHours := c.now().Sub(c.sessionStart).Hours()
	if sessionHours > 0 {
		rt.CrashRate = float64(len(c.crashEvents)) / sessionHours
	}

	flaky := 0
	for _, results := range c.testResults {
		if hasMixedOutcomes(results) {
			flaky++
		}
	}
	if len(c.testResults) > 0 {
		rt.FlakyTestRate = float64(flaky) / float64(len(c.testResults)) * 100
	}

	if len(c.responseTimes) > 0 {
		rt.AvgResponseTimeMS = mean(c.responseTimes)
	}
	if len(c.loadTimes) > 0 {
		rt.AvgLoadTimeMS = mean(c.loadTimes)
	}

	rt.EngagementScore = clamp(rt.PassRate*0.8+(100-rt.FlakyTestRate)*0.2, 0, 100)
	return rt
}

// FlakyTests returns tests with at least minRuns runs and mixed outcomes,
// sorted by flakiness rate descending. Ties keep first-seen order; that
// ordering is observed behavior, not a contract.
func (c *Collector) FlakyTests(minRuns int) []FlakyTest {
	var flaky []FlakyTest
	for _, name := range c.testOrder {
		results := c.testResults[name]
		if len(results) < minRuns {
			continue
		}
		pass := 0
		for _, ok := range results {
			if ok {
				pass++
			}
		}
		fail := len(results) - pass
		if pass == 0 || fail == 0 {
			continue
		}
		rate := float64(minInt(pass, fail)) / float64(len(results)) * 100
		flaky = append(flaky, FlakyTest{
			Name:          name,
			TotalRuns:     len(results),
			PassCount:     pass,
			FailCount:     fail,
			FlakinessRate: rate,
		})
	}
	sort.SliceStable(flaky, func(i, j int) bool {
		return flaky[i].FlakinessRate > flaky[j].FlakinessRate
	})
	return flaky
}

// TrendData returns the most recent lastN observations of one metric name.
func (c *Collector) TrendData(name string, lastN int) []Metric {
	var filtered []Metric
	for _, m := range c.metrics {
		if m.Name == name {
			filtered = append(filtered, m)
		}
	}
	if lastN > 0 && len(filtered) > lastN {
		filtered = filtered[len(filtered)-lastN:]
	}
	return filtered
}

// Export bundles the derived metrics with the raw event history.
type Export struct {
	RealTime    RealTime          `json:"real_time"`
	FlakyTests  []FlakyTest       `json:"flaky_tests"`
	AllMetrics  []Metric          `json:"all_metrics"`
	TestResults map[string][]bool `json:"test_results"`
	CrashCount  int               `json:"crash_count"`
}

// ExportAll returns everything the collector knows, derived and raw.
func (c *Collector) ExportAll() Export {
	return Export{
		RealTime:    c.RealTimeMetrics(),
		FlakyTests:  c.FlakyTests(3),
		AllMetrics:  c.metrics,
		TestResults: c.testResults,
		CrashCount:  len(c.crashEvents),
	}
}

// Reset clears all series and restarts the session clock.
func (c *Collector) Reset() {
	c.metrics = nil
	c.testResults = make(map[string][]bool)
	c.testOrder = nil
	c.crashEvents = nil
	c.responseTimes = nil
	c.loadTimes = nil
	c.sessionStart = c.now()
}

func hasMixedOutcomes(results []bool) bool {
	if len(results) < 2 {
		return false
	}
	pass := 0
	for _, ok := range results {
		if ok {
			pass++
		}
	}
	return pass > 0 && pass < len(results)
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
