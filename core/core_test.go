package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestIsAssertion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "assertion error", err: Assertionf("login button missing"), want: true},
		{name: "wrapped assertion error", err: errors.Wrap(Assertionf("bad title"), "scenario"), want: true},
		{name: "plain error", err: errors.New("browser crashed"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsAssertion(tt.err))
		})
	}
}

func TestNewBenchmarkMetricsDefaults(t *testing.T) {
	m := NewBenchmarkMetrics()
	require.Equal(t, 100.0, m.UIStabilityScore)
	require.Zero(t, m.CrashCount)
	require.Zero(t, m.LoadTime)
}
