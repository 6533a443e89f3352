// Package adapters provides the concrete adapter implementations for each
// supported software category plus the narrow collaborator interfaces they
// drive. Real third-party automation bindings (browser drivers, DAW hosts,
// image-based desktop automation) live behind those interfaces and are
// supplied by the caller.
package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/betakit/betakit/core"
)

// ScenarioRunner executes an external automation script against the
// connected target. An error that satisfies core.IsAssertion marks a
// target-behavior failure; any other error is an infrastructure fault.
type ScenarioRunner interface {
	Run(ctx context.Context, script string) error
}

// Screenshotter captures the target's current state into an image file.
type Screenshotter interface {
	Capture(path string) error
}

// DefaultGrace is how long Disconnect waits for a graceful shutdown before
// killing the target process.
const DefaultGrace = 5 * time.Second

// DefaultRegistry returns a registry populated with all built-in adapters.
func DefaultRegistry(logger zerolog.Logger) *core.Registry {
	r := core.NewRegistry(logger)
	r.Register(core.Registration{Name: "game", Type: core.VideoGame, New: func(l zerolog.Logger) core.Adapter { return NewGame(l) }})
	r.Register(core.Registration{Name: "vst", Type: core.VstPlugin, New: func(l zerolog.Logger) core.Adapter { return NewVST(l) }})
	r.Register(core.Registration{Name: "daw", Type: core.Daw, New: func(l zerolog.Logger) core.Adapter { return NewDAW(l) }})
	r.Register(core.Registration{Name: "web", Type: core.WebApp, New: func(l zerolog.Logger) core.Adapter { return NewWeb(l) }})
	r.Register(core.Registration{Name: "windows", Type: core.WindowsApp, New: func(l zerolog.Logger) core.Adapter { return NewWindows(l) }})
	return r
}

// cfgString reads a string option, falling back to def when absent or of the
// wrong type. Config stores are never validated eagerly.
func cfgString(cfg core.Config, key, def string) string {
	if v, ok := cfg[key].(string); ok {
		return v
	}
	return def
}

func cfgBool(cfg core.Config, key string, def bool) bool {
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return def
}

func cfgFloat(cfg core.Config, key string, def float64) float64 {
	switch v := cfg[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// cfgSeconds reads a numeric option expressed in seconds as a Duration.
func cfgSeconds(cfg core.Config, key string, def time.Duration) time.Duration {
	if v := cfgFloat(cfg, key, -1); v >= 0 {
		return time.Duration(v * float64(time.Second))
	}
	return def
}

// paramString reads a string parameter from RunTest params.
func paramString(params core.Params, key string) (string, bool) {
	v, ok := params[key].(string)
	return v, ok
}
