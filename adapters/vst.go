package adapters

// This file contains the audio adapters: VST plugin testing and DAW project
// testing. Both drive an AudioHost, the narrow interface in front of the
// actual DAW automation binding.

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/betakit/betakit/core"
)

// AudioRenderStats is what an AudioHost reports after rendering audio
// through the loaded plugin or project.
type AudioRenderStats struct {
	PeakLevelDB float64
	Dropouts    int
	CPUPercent  float64
}

// AudioHost loads a plugin or project and renders audio through it.
type AudioHost interface {
	Open(ctx context.Context, target string) error
	Render(ctx context.Context, seconds float64) (AudioRenderStats, error)
	Close() error
}

// AudioAdapter drives VST plugins and DAW projects through an AudioHost.
type AudioAdapter struct {
	logger zerolog.Logger

	name      string
	typ       core.SoftwareType
	cfg       core.Config
	connected bool
	host      AudioHost
	logs      []string

	lastStats AudioRenderStats
}

// NewVST returns a disconnected VST plugin adapter.
func NewVST(logger zerolog.Logger) *AudioAdapter {
	return newAudio(logger, "vst", core.VstPlugin)
}

// NewDAW returns a disconnected DAW project adapter.
func NewDAW(logger zerolog.Logger) *AudioAdapter {
	return newAudio(logger, "daw", core.Daw)
}

func newAudio(logger zerolog.Logger, name string, typ core.SoftwareType) *AudioAdapter {
	return &AudioAdapter{
		logger: logger.With().Str("adapter", name).Logger(),
		name:   name,
		typ:    typ,
		cfg:    core.Config{},
	}
}

// SetHost attaches the external audio host binding.
func (a *AudioAdapter) SetHost(h AudioHost) { a.host = h }

func (a *AudioAdapter) Name() string            { return a.name }
func (a *AudioAdapter) Type() core.SoftwareType { return a.typ }
func (a *AudioAdapter) IsConnected() bool       { return a.connected }

// Configure merges options into the config store.
//
// Options: plugin_format ("vst3"), sample_rate, buffer_size.
func (a *AudioAdapter) Configure(cfg core.Config) {
	for k, v := range cfg {
		a.cfg[k] = v
	}
}

// Connect loads the plugin or project into the attached host.
func (a *AudioAdapter) Connect(ctx context.Context, target string) bool {
	if a.host == nil {
		a.log("no audio host attached")
		return false
	}
	if err := a.host.Open(ctx, target); err != nil {
		a.log("failed to load %s: %v", target, err)
		return false
	}
	a.connected = true
	a.log("loaded: %s (format=%s, rate=%.0f, buffer=%.0f)",
		target,
		cfgString(a.cfg, "plugin_format", "vst3"),
		cfgFloat(a.cfg, "sample_rate", 44100),
		cfgFloat(a.cfg, "buffer_size", 512))
	return true
}

// Disconnect unloads the host session. Idempotent.
func (a *AudioAdapter) Disconnect() {
	if a.connected && a.host != nil {
		if err := a.host.Close(); err != nil {
			a.log("host close failed: %v", err)
		}
	}
	a.connected = false
	a.log("audio session closed")
}

// RunTest renders audio and checks the result for defects. params may carry
// "render_seconds" (float64, default 1).
func (a *AudioAdapter) RunTest(ctx context.Context, name string, params core.Params) (res core.TestResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = core.TestResult{
				Name:         name,
				Status:       core.StatusError,
				Duration:     time.Since(start),
				Timestamp:    time.Now(),
				ErrorMessage: fmt.Sprint(r),
			}
		}
	}()

	if !a.connected {
		return core.TestResult{
			Name:         name,
			Status:       core.StatusError,
			Timestamp:    time.Now(),
			ErrorMessage: core.NotConnectedMessage,
		}
	}

	seconds := 1.0
	if v, ok := params["render_seconds"].(float64); ok {
		seconds = v
	}

	status := core.StatusPassed
	errMsg := ""

	stats, err := a.host.Render(ctx, seconds)
	switch {
	case err != nil && core.IsAssertion(err):
		status = core.StatusFailed
		errMsg = err.Error()
	case err != nil:
		status = core.StatusError
		errMsg = err.Error()
	case stats.Dropouts > 0:
		status = core.StatusFailed
		errMsg = fmt.Sprintf("audio dropouts detected: %d", stats.Dropouts)
	}
	if err == nil {
		a.lastStats = stats
	}

	metrics := a.CollectMetrics()
	screenshot := a.CaptureScreenshot(fmt.Sprintf("%s_%d", name, time.Now().Unix()))

	return core.TestResult{
		Name:           name,
		Status:         status,
		Duration:       time.Since(start),
		Timestamp:      time.Now(),
		ScreenshotPath: screenshot,
		ErrorMessage:   errMsg,
		Metadata: map[string]string{
			"cpu_percent":   fmt.Sprintf("%.1f", metrics.CPUUsagePercent),
			"peak_level_db": fmt.Sprintf("%.1f", a.lastStats.PeakLevelDB),
		},
	}
}

// CaptureScreenshot is not meaningful for headless audio rendering; it
// always returns "" after logging.
func (a *AudioAdapter) CaptureScreenshot(name string) string {
	a.log("screenshot unsupported for audio target: %s", name)
	return ""
}

// CollectMetrics returns telemetry from the last render.
func (a *AudioAdapter) CollectMetrics() core.BenchmarkMetrics {
	m := core.NewBenchmarkMetrics()
	m.CPUUsagePercent = a.lastStats.CPUPercent
	if a.lastStats.Dropouts > 0 {
		m.UIStabilityScore = 0
	}
	return m
}

// Logs returns a copy of the collected log entries.
func (a *AudioAdapter) Logs() []string {
	out := make([]string, len(a.logs))
	copy(out, a.logs)
	return out
}

func (a *AudioAdapter) log(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	a.logs = append(a.logs, entry)
	a.logger.Debug().Msg(entry)
}
