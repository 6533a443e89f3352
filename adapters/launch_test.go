package adapters

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLaunch_MissingBinary(t *testing.T) {
	_, err := Launch(zerolog.Nop(), "/no/such/binary", nil, 0)
	require.Error(t, err)
}

func TestLaunch_ExitDuringStartup(t *testing.T) {
	_, err := Launch(zerolog.Nop(), "/bin/sh", []string{"-c", "exit 3"}, 500*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exited during startup")
}

func TestLaunch_ExitDuringStartupCarriesOutput(t *testing.T) {
	_, err := Launch(zerolog.Nop(), "/bin/sh", []string{"-c", "echo missing libGL; exit 1"}, 500*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exited during startup")
	require.Contains(t, err.Error(), "missing libGL")
}

func TestLaunch_StopTerminatesProcess(t *testing.T) {
	p, err := Launch(zerolog.Nop(), "/bin/sh", []string{"-c", "sleep 30"}, 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, p.Running())

	p.Stop(2 * time.Second)
	require.False(t, p.Running())

	// Safe to call again after the process is gone.
	p.Stop(time.Second)
}
