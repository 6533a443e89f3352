package bench

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		check   func(t *testing.T, m GridMetrics)
	}{
		{
			name:    "empty",
			results: nil,
			check: func(t *testing.T, m GridMetrics) {
				require.Zero(t, m.TotalTests)
				require.Zero(t, m.AvgDurationMS)
			},
		},
		{
			name: "mixed results",
			results: []Result{
				{Browser: "chrome", Platform: "linux", Success: true, DurationMS: 100, LoadTimeMS: 40},
				{Browser: "chrome", Platform: "windows", Success: false, DurationMS: 300},
				{Browser: "firefox", Platform: "linux", Success: true, DurationMS: 200, LoadTimeMS: 60},
			},
			check: func(t *testing.T, m GridMetrics) {
				require.Equal(t, 3, m.TotalTests)
				require.Equal(t, 2, m.PassedTests)
				require.Equal(t, 1, m.FailedTests)
				require.InDelta(t, 200, m.AvgDurationMS, 0.001)
				// Load time averages only over probes that reported one.
				require.InDelta(t, 50, m.AvgLoadTimeMS, 0.001)
				require.Equal(t, []string{"chrome", "firefox"}, m.BrowsersTested)
				require.Equal(t, []string{"linux", "windows"}, m.PlatformsTested)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Reduce(tt.results))
		})
	}
}

func TestRunner_RunsEveryConfig(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}

	probe := func(ctx context.Context, url string, cfg Config) Result {
		mu.Lock()
		seen[cfg.Browser+"/"+cfg.Platform] = true
		mu.Unlock()
		return Result{Success: true, LoadTimeMS: 10}
	}

	r := NewRunner(zerolog.Nop(), probe, 3, time.Second)
	m := r.Run(context.Background(), "https://example.com", nil)

	require.Equal(t, len(DefaultConfigs), m.TotalTests)
	require.Equal(t, len(DefaultConfigs), m.PassedTests)
	require.Len(t, seen, len(DefaultConfigs))
	for _, cfg := range DefaultConfigs {
		require.True(t, seen[cfg.Browser+"/"+cfg.Platform])
	}
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0

	probe := func(ctx context.Context, url string, cfg Config) Result {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return Result{Success: true}
	}

	configs := make([]Config, 8)
	for i := range configs {
		configs[i] = Config{Browser: "chrome", Platform: "linux"}
	}

	r := NewRunner(zerolog.Nop(), probe, 2, time.Second)
	m := r.Run(context.Background(), "https://example.com", configs)

	require.Equal(t, 8, m.TotalTests)
	require.LessOrEqual(t, peak, 2)
}

func TestRunner_ProbeTimeout(t *testing.T) {
	probe := func(ctx context.Context, url string, cfg Config) Result {
		select {
		case <-ctx.Done():
			return Result{Success: false}
		case <-time.After(5 * time.Second):
			return Result{Success: true}
		}
	}

	r := NewRunner(zerolog.Nop(), probe, 1, 50*time.Millisecond)
	m := r.Run(context.Background(), "https://example.com", []Config{{Browser: "chrome", Platform: "linux"}})

	require.Equal(t, 1, m.FailedTests)
	require.Contains(t, m.Results[0].Err, "deadline")
}

func TestRunner_ResultCarriesNodeIdentity(t *testing.T) {
	probe := func(ctx context.Context, url string, cfg Config) Result {
		return Result{Success: true}
	}

	r := NewRunner(zerolog.Nop(), probe, 1, time.Second)
	m := r.Run(context.Background(), "https://example.com", []Config{{Browser: "edge", Platform: "windows"}})

	require.Len(t, m.Results, 1)
	require.Equal(t, "edge", m.Results[0].Browser)
	require.Equal(t, "windows", m.Results[0].Platform)
	require.Equal(t, "node_0", m.Results[0].NodeID)
}
