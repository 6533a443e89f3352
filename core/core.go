// Package core defines the adapter contract and shared result types for
// betakit. Every target-specific adapter implements the same operation set so
// that one orchestrator can drive arbitrarily different software.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status represents the outcome of a single test execution.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// SoftwareType categorizes the kind of target software an adapter drives.
type SoftwareType string

const (
	VideoGame  SoftwareType = "video_game"
	VstPlugin  SoftwareType = "vst_plugin"
	Daw        SoftwareType = "daw"
	WebApp     SoftwareType = "web_app"
	WindowsApp SoftwareType = "windows_app"
	Fintech    SoftwareType = "fintech"
	Biotech    SoftwareType = "biotech"
)

// TestResult is the outcome of a single test run against a target.
type TestResult struct {
	Name           string            `json:"name"`
	Status         Status            `json:"status"`
	Duration       time.Duration     `json:"duration"`
	Timestamp      time.Time         `json:"timestamp"`
	ScreenshotPath string            `json:"screenshot_path,omitempty"`
	LogPath        string            `json:"log_path,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// BenchmarkMetrics is a point-in-time snapshot of target telemetry. Adapters
// return zero values for anything they cannot measure; CollectMetrics never
// fails.
type BenchmarkMetrics struct {
	LoadTime         float64            `json:"load_time"`
	MemoryUsageMB    float64            `json:"memory_usage_mb"`
	CPUUsagePercent  float64            `json:"cpu_usage_percent"`
	CrashCount       int                `json:"crash_count"`
	FPSAverage       float64            `json:"fps_average"`
	ResponseTimeMS   float64            `json:"response_time_ms"`
	UIStabilityScore float64            `json:"ui_stability_score"`
	Custom           map[string]float64 `json:"custom_metrics,omitempty"`
}

// NewBenchmarkMetrics returns a metrics snapshot with default values.
func NewBenchmarkMetrics() BenchmarkMetrics {
	return BenchmarkMetrics{UIStabilityScore: 100}
}

// Config holds adapter configuration options. Configure merges new options
// into the existing set; keys are never validated eagerly, unknown keys are
// kept and ignored by adapters that do not understand them.
type Config map[string]any

// Params carries per-test parameters into RunTest.
type Params map[string]any

// NotConnectedMessage is the error message carried by results of RunTest
// calls made while the adapter is disconnected.
const NotConnectedMessage = "not connected"

// Adapter is the uniform contract every target-specific driver implements.
//
// An adapter is in exactly one of two states, disconnected or connected.
// Connect transitions to connected on success and stays disconnected (with a
// log entry) on failure. Disconnect is idempotent. RunTest only touches the
// target while connected; when disconnected it returns an error-status result
// without attempting any external call. None of these operations return Go
// errors or panic: failures are communicated through result values.
type Adapter interface {
	// Name returns the adapter's identity.
	Name() string

	// Type returns the category of software this adapter drives.
	Type() SoftwareType

	// IsConnected reports whether a target session is established.
	IsConnected() bool

	// Configure merges options into the adapter's config store.
	Configure(cfg Config)

	// Connect establishes a session with the target (launch a process, open
	// a browser, attach to a host). It returns false on any recoverable
	// failure after appending a descriptive log entry.
	Connect(ctx context.Context, target string) bool

	// Disconnect releases external resources and flips the adapter to
	// disconnected. Safe to call when already disconnected.
	Disconnect()

	// RunTest executes a single named test against the connected target.
	RunTest(ctx context.Context, name string, params Params) TestResult

	// CaptureScreenshot captures the target's current state on a best-effort
	// basis, returning the saved path or "" on failure.
	CaptureScreenshot(name string) string

	// CollectMetrics returns the current telemetry snapshot. It always
	// succeeds, falling back to zero values when telemetry is unavailable.
	CollectMetrics() BenchmarkMetrics

	// Logs returns the log entries accumulated by the adapter.
	Logs() []string
}

// AssertionError marks a failure of the target's observed behavior, as
// opposed to an infrastructure fault. Scenario hooks return it to have the
// test reported as failed rather than errored.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return e.Msg
}

// Assertionf builds an AssertionError from a format string.
func Assertionf(format string, args ...any) error {
	return &AssertionError{Msg: fmt.Sprintf(format, args...)}
}

// IsAssertion reports whether err marks a target-behavior assertion failure.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}
