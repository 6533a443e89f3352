package metrics

// This file contains snapshot persistence for the collector. The full raw
// event history is serialized, not derived aggregates, so a reloaded
// collector reproduces identical derived metrics.

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// snapshot is the on-disk JSON layout of a collector's raw history.
type snapshot struct {
	SessionStart  time.Time         `json:"session_start"`
	Metrics       []Metric          `json:"metrics"`
	TestResults   map[string][]bool `json:"test_results"`
	CrashEvents   []time.Time       `json:"crash_events"`
	ResponseTimes []float64         `json:"response_times"`
	LoadTimes     []float64         `json:"load_times"`
}

// Save writes the full raw history to the configured storage path. A
// collector without a storage path saves nothing.
func (c *Collector) Save() error {
	if c.storagePath == "" {
		return nil
	}

	if dir := filepath.Dir(c.storagePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create metrics directory %s", dir)
		}
	}

	snap := snapshot{
		SessionStart:  c.sessionStart,
		Metrics:       c.metrics,
		TestResults:   c.testResults,
		CrashEvents:   c.crashEvents,
		ResponseTimes: c.responseTimes,
		LoadTimes:     c.loadTimes,
	}
	if snap.Metrics == nil {
		snap.Metrics = []Metric{}
	}
	if snap.CrashEvents == nil {
		snap.CrashEvents = []time.Time{}
	}
	if snap.ResponseTimes == nil {
		snap.ResponseTimes = []float64{}
	}
	if snap.LoadTimes == nil {
		snap.LoadTimes = []float64{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal metrics snapshot")
	}
	if err := os.WriteFile(c.storagePath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write metrics snapshot to %s", c.storagePath)
	}
	return nil
}

// loadHistory restores a persisted snapshot. Missing or corrupt storage
// degrades to empty history; it is never fatal.
func (c *Collector) loadHistory() {
	data, err := os.ReadFile(c.storagePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("path", c.storagePath).Msg("Failed to read metrics snapshot")
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.Warn().Err(err).Str("path", c.storagePath).Msg("Corrupt metrics snapshot, starting empty")
		return
	}

	if !snap.SessionStart.IsZero() {
		c.sessionStart = snap.SessionStart
	}
	c.metrics = snap.Metrics
	names := make([]string, 0, len(snap.TestResults))
	for name := range snap.TestResults {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.testOrder = append(c.testOrder, name)
		c.testResults[name] = snap.TestResults[name]
	}
	c.crashEvents = snap.CrashEvents
	c.responseTimes = snap.ResponseTimes
	c.loadTimes = snap.LoadTimes
}
