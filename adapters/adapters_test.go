package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/betakit/betakit/core"
)

// fakeHost implements AudioHost for audio adapter tests.
type fakeHost struct {
	openErr   error
	renderErr error
	stats     AudioRenderStats
	closed    int
}

func (h *fakeHost) Open(context.Context, string) error { return h.openErr }
func (h *fakeHost) Render(context.Context, float64) (AudioRenderStats, error) {
	return h.stats, h.renderErr
}
func (h *fakeHost) Close() error {
	h.closed++
	return nil
}

// fakeDriver implements BrowserDriver for web adapter tests.
type fakeDriver struct {
	navErr   error
	shotErr  error
	loadTime time.Duration
	closed   int
}

func (d *fakeDriver) Navigate(context.Context, string) error { return d.navErr }
func (d *fakeDriver) LastLoadTime() time.Duration            { return d.loadTime }
func (d *fakeDriver) Screenshot(string) error                { return d.shotErr }
func (d *fakeDriver) Close() error {
	d.closed++
	return nil
}

// scenarioFunc adapts a function to ScenarioRunner.
type scenarioFunc func(ctx context.Context, script string) error

func (f scenarioFunc) Run(ctx context.Context, script string) error { return f(ctx, script) }

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(zerolog.Nop())

	require.Equal(t, []string{"game", "vst", "daw", "web", "windows"}, r.Names())
	require.Equal(t, []string{"web"}, r.ListByType(core.WebApp))
	require.Equal(t, []string{"daw"}, r.ListByType(core.Daw))
	require.Nil(t, r.Create("mobile"))
}

func TestGameAdapter_ConnectMissingTarget(t *testing.T) {
	a := NewGame(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": ""})

	ok := a.Connect(context.Background(), filepath.Join(t.TempDir(), "no-such-game"))

	require.False(t, ok)
	require.False(t, a.IsConnected())
	require.NotEmpty(t, a.Logs())
	require.Contains(t, a.Logs()[0], "not found")
}

func TestGameAdapter_RunTestNotConnected(t *testing.T) {
	a := NewGame(zerolog.Nop())

	res := a.RunTest(context.Background(), "boot", core.Params{})

	require.Equal(t, core.StatusError, res.Status)
	require.Equal(t, core.NotConnectedMessage, res.ErrorMessage)
	require.Zero(t, res.Duration)
}

func TestGameAdapter_DisconnectIdempotent(t *testing.T) {
	a := NewGame(zerolog.Nop())
	a.Disconnect()
	a.Disconnect()
	require.False(t, a.IsConnected())
}

func TestGameAdapter_ConfigureMergesOptions(t *testing.T) {
	dir := t.TempDir()
	a := NewGame(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": filepath.Join(dir, "shots"), "resolution": "1920x1080"})
	a.Configure(core.Config{"fullscreen": false})

	// Both earlier and later options survive the merge.
	require.Equal(t, "1920x1080", a.cfg["resolution"])
	require.Equal(t, false, a.cfg["fullscreen"])
	require.Equal(t, []string{"-screen-width", "1920", "-screen-height", "1080", "-windowed"}, a.launchArgs())

	_, err := os.Stat(filepath.Join(dir, "shots"))
	require.NoError(t, err)
}

func TestGameAdapter_LaunchArgsIgnoresMalformedResolution(t *testing.T) {
	a := NewGame(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": "", "resolution": "bigxwide"})
	require.Empty(t, a.launchArgs())
}

func TestGameAdapter_DeadTargetIsCrash(t *testing.T) {
	a := NewGame(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": "", "startup_delay": 0})
	require.True(t, a.Connect(context.Background(), "/bin/sh"))
	defer a.Disconnect()

	// sh reads from /dev/null and exits on its own.
	require.Eventually(t, func() bool { return !a.proc.Running() }, 5*time.Second, 10*time.Millisecond)

	res := a.RunTest(context.Background(), "boot", core.Params{})
	require.Equal(t, core.StatusError, res.Status)
	require.Contains(t, res.ErrorMessage, "crashed")
}

func TestAudioAdapter_ConnectWithoutHost(t *testing.T) {
	a := NewVST(zerolog.Nop())
	require.False(t, a.Connect(context.Background(), "synth.vst3"))
	require.False(t, a.IsConnected())
}

func TestAudioAdapter_Lifecycle(t *testing.T) {
	host := &fakeHost{stats: AudioRenderStats{PeakLevelDB: -6, CPUPercent: 12}}
	a := NewVST(zerolog.Nop())
	a.SetHost(host)

	require.True(t, a.Connect(context.Background(), "synth.vst3"))
	require.True(t, a.IsConnected())

	res := a.RunTest(context.Background(), "render_sine", core.Params{"render_seconds": 0.5})
	require.Equal(t, core.StatusPassed, res.Status)
	require.Empty(t, res.ErrorMessage)

	m := a.CollectMetrics()
	require.Equal(t, 12.0, m.CPUUsagePercent)

	a.Disconnect()
	a.Disconnect()
	require.False(t, a.IsConnected())
	require.Equal(t, 1, host.closed)
}

func TestAudioAdapter_RunTestOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		host       *fakeHost
		wantStatus core.Status
	}{
		{
			name:       "dropouts fail the test",
			host:       &fakeHost{stats: AudioRenderStats{Dropouts: 3}},
			wantStatus: core.StatusFailed,
		},
		{
			name:       "assertion error fails the test",
			host:       &fakeHost{renderErr: core.Assertionf("output was silent")},
			wantStatus: core.StatusFailed,
		},
		{
			name:       "render fault is an infrastructure error",
			host:       &fakeHost{renderErr: errors.New("host crashed")},
			wantStatus: core.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewDAW(zerolog.Nop())
			a.SetHost(tt.host)
			require.True(t, a.Connect(context.Background(), "project.als"))

			res := a.RunTest(context.Background(), "mixdown", core.Params{})
			require.Equal(t, tt.wantStatus, res.Status)
			require.NotEmpty(t, res.ErrorMessage)
		})
	}
}

func TestWebAdapter_ConnectWithoutFactory(t *testing.T) {
	a := NewWeb(zerolog.Nop())
	require.False(t, a.Connect(context.Background(), "https://example.com"))

	res := a.RunTest(context.Background(), "smoke", core.Params{})
	require.Equal(t, core.StatusError, res.Status)
	require.Equal(t, core.NotConnectedMessage, res.ErrorMessage)
}

func TestWebAdapter_Lifecycle(t *testing.T) {
	driver := &fakeDriver{loadTime: 250 * time.Millisecond}
	a := NewWeb(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": t.TempDir(), "browser": "firefox"})
	a.SetBrowserFactory(func(browser string, headless bool) (BrowserDriver, error) {
		require.Equal(t, "firefox", browser)
		require.True(t, headless)
		return driver, nil
	})

	require.True(t, a.Connect(context.Background(), "https://example.com"))

	res := a.RunTest(context.Background(), "smoke", core.Params{})
	require.Equal(t, core.StatusPassed, res.Status)
	require.NotEmpty(t, res.ScreenshotPath)
	require.Equal(t, "https://example.com", res.Metadata["url"])
	require.Equal(t, "250", res.Metadata["response_time_ms"])

	m := a.CollectMetrics()
	require.Equal(t, 250.0, m.ResponseTimeMS)

	a.Disconnect()
	a.Disconnect()
	require.Equal(t, 1, driver.closed)
}

func TestWebAdapter_NavigationFailureFailsTest(t *testing.T) {
	driver := &fakeDriver{}
	a := NewWeb(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": ""})
	a.SetBrowserFactory(func(string, bool) (BrowserDriver, error) { return driver, nil })
	require.True(t, a.Connect(context.Background(), "https://example.com"))

	driver.navErr = errors.New("DNS lookup failed")
	res := a.RunTest(context.Background(), "broken_link", core.Params{"url": "https://bad.example"})

	require.Equal(t, core.StatusFailed, res.Status)
	require.Contains(t, res.ErrorMessage, "navigation")
}

func TestWebAdapter_ScenarioOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		scenario   error
		wantStatus core.Status
	}{
		{name: "clean run passes", scenario: nil, wantStatus: core.StatusPassed},
		{name: "assertion fails", scenario: core.Assertionf("title mismatch"), wantStatus: core.StatusFailed},
		{name: "internal fault errors", scenario: errors.New("script engine panic"), wantStatus: core.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewWeb(zerolog.Nop())
			a.Configure(core.Config{"screenshot_dir": ""})
			a.SetBrowserFactory(func(string, bool) (BrowserDriver, error) { return &fakeDriver{}, nil })
			a.SetScenarioRunner(scenarioFunc(func(context.Context, string) error { return tt.scenario }))
			require.True(t, a.Connect(context.Background(), "https://example.com"))

			res := a.RunTest(context.Background(), "checkout", core.Params{"script": "checkout.js"})
			require.Equal(t, tt.wantStatus, res.Status)
		})
	}
}

func TestWindowsAdapter_ConnectMissingTarget(t *testing.T) {
	a := NewWindows(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": ""})

	require.False(t, a.Connect(context.Background(), filepath.Join(t.TempDir(), "app.exe")))
	require.False(t, a.IsConnected())

	res := a.RunTest(context.Background(), "open_dialog", core.Params{})
	require.Equal(t, core.StatusError, res.Status)
	require.Equal(t, core.NotConnectedMessage, res.ErrorMessage)
}

func TestWindowsAdapter_DeadTargetIsCrash(t *testing.T) {
	a := NewWindows(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": "", "startup_delay": 0})
	require.True(t, a.Connect(context.Background(), "/bin/sh"))
	defer a.Disconnect()

	require.Eventually(t, func() bool { return !a.proc.Running() }, 5*time.Second, 10*time.Millisecond)

	res := a.RunTest(context.Background(), "open_dialog", core.Params{})
	require.Equal(t, core.StatusError, res.Status)
	require.Contains(t, res.ErrorMessage, "crashed")
}

func TestCaptureScreenshotFailureReturnsEmpty(t *testing.T) {
	a := NewWeb(zerolog.Nop())
	a.Configure(core.Config{"screenshot_dir": t.TempDir()})
	driver := &fakeDriver{shotErr: errors.New("no display")}
	a.SetBrowserFactory(func(string, bool) (BrowserDriver, error) { return driver, nil })
	require.True(t, a.Connect(context.Background(), "https://example.com"))

	require.Empty(t, a.CaptureScreenshot("shot"))
}
