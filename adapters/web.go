package adapters

// This file contains the web application adapter. Browser automation is
// reached through the BrowserDriver interface; concrete Playwright/Selenium
// bindings are supplied by the caller.

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/betakit/betakit/core"
)

// BrowserDriver is the narrow surface the web adapter needs from a browser
// automation binding.
type BrowserDriver interface {
	Navigate(ctx context.Context, url string) error
	// LastLoadTime reports how long the most recent navigation took.
	LastLoadTime() time.Duration
	Screenshot(path string) error
	Close() error
}

// BrowserFactory opens a browser session of the requested type.
type BrowserFactory func(browser string, headless bool) (BrowserDriver, error)

// WebAdapter drives web application targets through a BrowserDriver.
type WebAdapter struct {
	logger zerolog.Logger

	name      string
	cfg       core.Config
	connected bool
	logs      []string

	factory   BrowserFactory
	driver    BrowserDriver
	scenarios ScenarioRunner

	screenshotDir string
	currentURL    string
}

// NewWeb returns a disconnected web adapter.
func NewWeb(logger zerolog.Logger) *WebAdapter {
	return &WebAdapter{
		logger:        logger.With().Str("adapter", "web").Logger(),
		name:          "web",
		cfg:           core.Config{},
		screenshotDir: "screenshots",
	}
}

// SetBrowserFactory attaches the external browser binding.
func (a *WebAdapter) SetBrowserFactory(f BrowserFactory) { a.factory = f }

// SetScenarioRunner attaches the external automation runner.
func (a *WebAdapter) SetScenarioRunner(r ScenarioRunner) { a.scenarios = r }

func (a *WebAdapter) Name() string            { return a.name }
func (a *WebAdapter) Type() core.SoftwareType { return core.WebApp }
func (a *WebAdapter) IsConnected() bool       { return a.connected }

// Configure merges options into the config store.
//
// Options: browser ("chromium"), headless, screenshot_dir.
func (a *WebAdapter) Configure(cfg core.Config) {
	for k, v := range cfg {
		a.cfg[k] = v
	}
	a.screenshotDir = cfgString(a.cfg, "screenshot_dir", a.screenshotDir)
}

// Connect opens a browser session and navigates to the target URL.
func (a *WebAdapter) Connect(ctx context.Context, target string) bool {
	if a.factory == nil {
		a.log("no browser binding attached")
		return false
	}

	browser := cfgString(a.cfg, "browser", "chromium")
	headless := cfgBool(a.cfg, "headless", true)

	driver, err := a.factory(browser, headless)
	if err != nil {
		a.log("failed to start %s: %v", browser, err)
		return false
	}
	if err := driver.Navigate(ctx, target); err != nil {
		a.log("failed to open %s: %v", target, err)
		if cerr := driver.Close(); cerr != nil {
			a.log("browser close failed: %v", cerr)
		}
		return false
	}

	a.driver = driver
	a.connected = true
	a.currentURL = target
	a.log("connected to %s with %s", target, browser)
	return true
}

// Disconnect closes the browser session. Idempotent.
func (a *WebAdapter) Disconnect() {
	if a.driver != nil {
		if err := a.driver.Close(); err != nil {
			a.log("browser close failed: %v", err)
		}
		a.driver = nil
	}
	a.connected = false
	a.log("browser disconnected")
}

// RunTest runs a single web test. params may carry "url" to navigate before
// the check and "script" for the attached ScenarioRunner.
func (a *WebAdapter) RunTest(ctx context.Context, name string, params core.Params) (res core.TestResult) {
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

	if url, ok := paramString(params, "url"); ok {
		if err := a.driver.Navigate(ctx, url); err != nil {
			status = core.StatusFailed
			errMsg = fmt.Sprintf("navigation to %s failed: %v", url, err)
		} else {
			a.currentURL = url
		}
	}

	if status == core.StatusPassed {
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
			"url":              a.currentURL,
			"load_time_ms":     fmt.Sprintf("%.0f", metrics.LoadTime*1000),
			"response_time_ms": fmt.Sprintf("%.0f", metrics.ResponseTimeMS),
		},
	}
}

// CaptureScreenshot captures the current page. Best-effort: returns "" and
// logs on failure.
func (a *WebAdapter) CaptureScreenshot(name string) string {
	if a.driver == nil || a.screenshotDir == "" {
		return ""
	}
	path := filepath.Join(a.screenshotDir, name+".png")
	if err := a.driver.Screenshot(path); err != nil {
		a.log("screenshot failed: %v", err)
		return ""
	}
	a.log("screenshot captured: %s", path)
	return path
}

// CollectMetrics returns telemetry from the live browser session.
func (a *WebAdapter) CollectMetrics() core.BenchmarkMetrics {
	m := core.NewBenchmarkMetrics()
	if a.driver != nil {
		load := a.driver.LastLoadTime()
		m.LoadTime = load.Seconds()
		m.ResponseTimeMS = float64(load.Milliseconds())
	}
	return m
}

// Logs returns a copy of the collected log entries.
func (a *WebAdapter) Logs() []string {
	out := make([]string, len(a.logs))
	copy(out, a.logs)
	return out
}

func (a *WebAdapter) log(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	a.logs = append(a.logs, entry)
	a.logger.Debug().Msg(entry)
}
