package adapters

// This file contains the video game adapter. It launches the game executable
// directly and drives gameplay scenarios through an optional ScenarioRunner.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/betakit/betakit/core"
)

// GameAdapter drives video game targets (Unity/Unreal style executables).
type GameAdapter struct {
	logger zerolog.Logger

	name      string
	cfg       core.Config
	connected bool
	proc      *Process
	logs      []string

	screenshotDir string
	scenarios     ScenarioRunner
	screenshots   Screenshotter
}

// NewGame returns a disconnected game adapter.
func NewGame(logger zerolog.Logger) *GameAdapter {
	return &GameAdapter{
		logger:        logger.With().Str("adapter", "game").Logger(),
		name:          "game",
		cfg:           core.Config{},
		screenshotDir: "screenshots",
	}
}

// SetScenarioRunner attaches the external automation runner.
func (a *GameAdapter) SetScenarioRunner(r ScenarioRunner) { a.scenarios = r }

// SetScreenshotter attaches the external screenshot capturer.
func (a *GameAdapter) SetScreenshotter(s Screenshotter) { a.screenshots = s }

func (a *GameAdapter) Name() string            { return a.name }
func (a *GameAdapter) Type() core.SoftwareType { return core.VideoGame }
func (a *GameAdapter) IsConnected() bool       { return a.connected }

// Configure merges options into the config store.
//
// Options: screenshot_dir, resolution ("1920x1080"), fullscreen,
// startup_delay (seconds).
func (a *GameAdapter) Configure(cfg core.Config) {
	for k, v := range cfg {
		a.cfg[k] = v
	}
	a.screenshotDir = cfgString(a.cfg, "screenshot_dir", a.screenshotDir)
	if a.screenshotDir != "" {
		if err := os.MkdirAll(a.screenshotDir, 0755); err != nil {
			a.log("failed to create screenshot directory: %v", err)
		}
	}
}

// Connect launches the game executable. Missing files and launch errors are
// recoverable: they append a log entry and return false.
func (a *GameAdapter) Connect(ctx context.Context, target string) bool {
	info, err := os.Stat(target)
	if err != nil {
		a.log("game executable not found: %s", target)
		return false
	}
	if info.IsDir() {
		a.log("target is not a file: %s", target)
		return false
	}

	args := a.launchArgs()
	proc, err := Launch(a.logger, target, args, cfgSeconds(a.cfg, "startup_delay", 2*time.Second))
	if err != nil {
		a.log("failed to launch game: %v", err)
		return false
	}

	a.proc = proc
	a.connected = true
	a.log("game launched: %s", target)
	return true
}

// launchArgs builds the command line from known config keys. Only recognized
// options produce arguments.
func (a *GameAdapter) launchArgs() []string {
	var args []string
	if res := cfgString(a.cfg, "resolution", ""); res != "" {
		parts := strings.SplitN(res, "x", 2)
		if len(parts) == 2 {
			if _, err1 := strconv.Atoi(parts[0]); err1 == nil {
				if _, err2 := strconv.Atoi(parts[1]); err2 == nil {
					args = append(args, "-screen-width", parts[0], "-screen-height", parts[1])
				}
			}
		}
	}
	if fs, ok := a.cfg["fullscreen"].(bool); ok && !fs {
		args = append(args, "-windowed")
	}
	return args
}

// Disconnect closes the game process. Idempotent.
func (a *GameAdapter) Disconnect() {
	if a.proc != nil {
		a.proc.Stop(DefaultGrace)
		a.proc = nil
	}
	a.connected = false
	a.log("game disconnected")
}

// RunTest runs a single gameplay test. params may carry "script", a path to
// an automation scenario executed through the attached ScenarioRunner.
func (a *GameAdapter) RunTest(ctx context.Context, name string, params core.Params) (res core.TestResult) {
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

	status := core.StatusPassed
	errMsg := ""

	if script, ok := paramString(params, "script"); ok && a.scenarios != nil {
		if err := a.scenarios.Run(ctx, script); err != nil {
			errMsg = err.Error()
			if core.IsAssertion(err) {
				status = core.StatusFailed
			} else {
				status = core.StatusError
			}
		}
	}

	// A dead target process is a crash, counted against the crash rate.
	if status == core.StatusPassed && a.proc != nil && !a.proc.Running() {
		status = core.StatusError
		errMsg = "game process crashed during test"
		if out := strings.TrimSpace(a.proc.Output()); out != "" {
			a.log("game output: %s", out)
		}
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
			"fps_average": fmt.Sprintf("%.1f", metrics.FPSAverage),
			"memory_mb":   fmt.Sprintf("%.1f", metrics.MemoryUsageMB),
		},
	}
}

// CaptureScreenshot captures the game's current frame. Best-effort: returns
// "" and logs on failure.
func (a *GameAdapter) CaptureScreenshot(name string) string {
	if a.screenshotDir == "" {
		return ""
	}
	path := filepath.Join(a.screenshotDir, name+".png")
	if a.screenshots != nil {
		if err := a.screenshots.Capture(path); err != nil {
			a.log("screenshot failed: %v", err)
			return ""
		}
	}
	a.log("screenshot captured: %s", path)
	return path
}

// CollectMetrics returns the current game telemetry. Without live hooks the
// snapshot carries defaults.
func (a *GameAdapter) CollectMetrics() core.BenchmarkMetrics {
	m := core.NewBenchmarkMetrics()
	if a.proc != nil && a.proc.Running() {
		m.Custom = map[string]float64{"process_alive": 1}
	}
	return m
}

// Logs returns a copy of the collected log entries.
func (a *GameAdapter) Logs() []string {
	out := make([]string, len(a.logs))
	copy(out, a.logs)
	return out
}

func (a *GameAdapter) log(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	a.logs = append(a.logs, entry)
	a.logger.Debug().Msg(entry)
}
