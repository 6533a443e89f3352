package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 5, cfg.Benchmark.MaxWorkers)
}

func TestLoad_ParsesSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "betakit.yaml")
	content := `
storage_path: /tmp/session/metrics.json
report_dir: out/reports
adapters:
  web:
    browser: firefox
    headless: false
  game:
    resolution: 1920x1080
benchmark:
  max_workers: 3
  timeout_seconds: 10
  matrix:
    - browser: chrome
      platform: linux
trend:
  dir: /tmp/session/trends
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/session/metrics.json", cfg.StoragePath)
	require.Equal(t, "out/reports", cfg.ReportDir)
	require.Equal(t, "firefox", cfg.Adapters["web"]["browser"])
	require.Equal(t, false, cfg.Adapters["web"]["headless"])
	require.Equal(t, "1920x1080", cfg.Adapters["game"]["resolution"])
	require.Equal(t, 3, cfg.Benchmark.MaxWorkers)
	require.Len(t, cfg.Benchmark.Matrix, 1)
	require.Equal(t, "chrome", cfg.Benchmark.Matrix[0].Browser)
	require.Equal(t, "/tmp/session/trends", cfg.Trend.Dir)
}

func TestLoad_InvalidYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "betakit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage_path: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ClampsWorkerBound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "betakit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("benchmark:\n  max_workers: 0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Benchmark.MaxWorkers)
}
