package trend

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/betakit/betakit/report"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(zerolog.Nop(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestStore_AppendAndRecent(t *testing.T) {
	s := openStore(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		sum := report.Summary{Total: 10, Passed: 7 + i, PassRate: float64(70 + 10*i)}
		require.NoError(t, s.Append(base.Add(time.Duration(i)*time.Hour), sum))
	}

	all, err := s.All()
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Chronological: badger iterates RFC3339 keys in lexical order.
	require.Equal(t, 70.0, all[0].Summary.PassRate)
	require.Equal(t, 90.0, all[2].Summary.PassRate)

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, 80.0, recent[0].Summary.PassRate)
	require.Equal(t, 90.0, recent[1].Summary.PassRate)
}

func TestStore_SubSecondOrdering(t *testing.T) {
	s := openStore(t)
	base := time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)

	// A fractional point and a whole-second point within the same second:
	// keys must still iterate chronologically.
	require.NoError(t, s.Append(base, report.Summary{PassRate: 60}))
	require.NoError(t, s.Append(base.Add(500*time.Millisecond), report.Summary{PassRate: 80}))

	series, err := s.PassRateSeries()
	require.NoError(t, err)
	require.Equal(t, []float64{60, 80}, series)
}

func TestStore_PassRateSeries(t *testing.T) {
	s := openStore(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(base, report.Summary{PassRate: 60}))
	require.NoError(t, s.Append(base.Add(time.Minute), report.Summary{PassRate: 80}))

	series, err := s.PassRateSeries()
	require.NoError(t, err)
	require.Equal(t, []float64{60, 80}, series)
}

func TestStore_EmptyStore(t *testing.T) {
	s := openStore(t)

	all, err := s.All()
	require.NoError(t, err)
	require.Empty(t, all)

	series, err := s.PassRateSeries()
	require.NoError(t, err)
	require.Empty(t, series)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   SeriesStats
	}{
		{name: "empty", series: nil, want: SeriesStats{}},
		{name: "single", series: []float64{50}, want: SeriesStats{Min: 50, Max: 50, Avg: 50}},
		{name: "spread", series: []float64{60, 90, 75}, want: SeriesStats{Min: 60, Max: 90, Avg: 75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Summarize(tt.series))
		})
	}
}
