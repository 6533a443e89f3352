package adapters

// This file contains the desktop application adapter. It launches the target
// executable and drives UI scenarios through an optional ScenarioRunner;
// UI-automation bindings (WinAppDriver style) stay outside the core.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/betakit/betakit/core"
)

// WindowsAdapter drives desktop application targets.
type WindowsAdapter struct {
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

// NewWindows returns a disconnected desktop app adapter.
func NewWindows(logger zerolog.Logger) *WindowsAdapter {
	return &WindowsAdapter{
		logger:        logger.With().Str("adapter", "windows").Logger(),
		name:          "windows",
		cfg:           core.Config{},
		screenshotDir: "screenshots",
	}
}

// SetScenarioRunner attaches the external automation runner.
func (a *WindowsAdapter) SetScenarioRunner(r ScenarioRunner) { a.scenarios = r }

// SetScreenshotter attaches the external screenshot capturer.
func (a *WindowsAdapter) SetScreenshotter(s Screenshotter) { a.screenshots = s }

func (a *WindowsAdapter) Name() string            { return a.name }
func (a *WindowsAdapter) Type() core.SoftwareType { return core.WindowsApp }
func (a *WindowsAdapter) IsConnected() bool       { return a.connected }

// Configure merges options into the config store.
//
// Options: screenshot_dir, startup_delay (seconds), args ([]string passed to
// the target on launch).
func (a *WindowsAdapter) Configure(cfg core.Config) {
	for k, v := range cfg {
		a.cfg[k] = v
	}
	a.screenshotDir = cfgString(a.cfg, "screenshot_dir", a.screenshotDir)
}

// Connect launches the application executable and waits for it to survive
// startup.
func (a *WindowsAdapter) Connect(ctx context.Context, target string) bool {
	info, err := os.Stat(target)
	if err != nil {
		a.log("application not found: %s", target)
		return false
	}
	if info.IsDir() {
		a.log("target is not a file: %s", target)
		return false
	}

	var args []string
	if extra, ok := a.cfg["args"].([]string); ok {
		args = extra
	}

	proc, err := Launch(a.logger, target, args, cfgSeconds(a.cfg, "startup_delay", 3*time.Second))
	if err != nil {
		a.log("failed to launch application: %v", err)
		return false
	}

	a.proc = proc
	a.connected = true
	a.log("application launched: %s", target)
	return true
}

// Disconnect closes the application. Idempotent.
func (a *WindowsAdapter) Disconnect() {
	if a.proc != nil {
		a.proc.Stop(DefaultGrace)
		a.proc = nil
	}
	a.connected = false
	a.log("application closed")
}

// RunTest runs a single UI test. params may carry "script" for the attached
// ScenarioRunner.
func (a *WindowsAdapter) RunTest(ctx context.Context, name string, params core.Params) (res core.TestResult) {
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
		errMsg = "application crashed during test"
		if out := strings.TrimSpace(a.proc.Output()); out != "" {
			a.log("application output: %s", out)
		}
	}

	screenshot := a.CaptureScreenshot(fmt.Sprintf("%s_%d", name, time.Now().Unix()))

	return core.TestResult{
		Name:           name,
		Status:         status,
		Duration:       time.Since(start),
		Timestamp:      time.Now(),
		ScreenshotPath: screenshot,
		ErrorMessage:   errMsg,
	}
}

// CaptureScreenshot captures the application window. Best-effort.
func (a *WindowsAdapter) CaptureScreenshot(name string) string {
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

// CollectMetrics returns the current application telemetry.
func (a *WindowsAdapter) CollectMetrics() core.BenchmarkMetrics {
	m := core.NewBenchmarkMetrics()
	if a.proc != nil && a.proc.Running() {
		m.Custom = map[string]float64{"process_alive": 1}
	}
	return m
}

// Logs returns a copy of the collected log entries.
func (a *WindowsAdapter) Logs() []string {
	out := make([]string, len(a.logs))
	copy(out, a.logs)
	return out
}

func (a *WindowsAdapter) log(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	a.logs = append(a.logs, entry)
	a.logger.Debug().Msg(entry)
}
