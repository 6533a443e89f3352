// Package config loads the betakit session configuration from betakit.yaml.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/betakit/betakit/bench"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "betakit.yaml"

// Benchmark configures the parallel grid benchmark.
type Benchmark struct {
	MaxWorkers     int            `yaml:"max_workers"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	Matrix         []bench.Config `yaml:"matrix,omitempty"`
}

// Trend configures the historical trend store.
type Trend struct {
	Dir string `yaml:"dir"`
}

// Session is the full session configuration.
type Session struct {
	// StoragePath is where the metrics collector persists its snapshot.
	StoragePath string `yaml:"storage_path"`
	// ReportDir receives generated report files.
	ReportDir string `yaml:"report_dir"`
	// HistoryPath points at past report documents for trend analysis.
	HistoryPath string `yaml:"history_path,omitempty"`
	// Adapters maps adapter name to its configuration options.
	Adapters  map[string]map[string]any `yaml:"adapters,omitempty"`
	Benchmark Benchmark                 `yaml:"benchmark"`
	Trend     Trend                     `yaml:"trend"`
}

// Default returns the configuration used when no file exists.
func Default() *Session {
	return &Session{
		StoragePath: ".betakit/metrics.json",
		ReportDir:   "reports",
		Benchmark: Benchmark{
			MaxWorkers:     5,
			TimeoutSeconds: 30,
		},
		Trend: Trend{Dir: ".betakit/trends"},
	}
}

// Load reads the session configuration from path. A missing file yields the
// defaults; a file that cannot be parsed is an error.
func Load(path string) (*Session, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}

	if cfg.Benchmark.MaxWorkers < 1 {
		cfg.Benchmark.MaxWorkers = 1
	}
	return cfg, nil
}
