package cli

// This file contains the benchmark command: the parallel grid benchmark over
// a browser/platform matrix.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/betakit/betakit/adapters"
	"github.com/betakit/betakit/bench"
	"github.com/betakit/betakit/config"
	"github.com/betakit/betakit/core"
)

func (a *App) benchmark(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}

	workers := cfg.Benchmark.MaxWorkers
	if ctx.Int("workers") > 0 {
		workers = ctx.Int("workers")
	}
	timeout := time.Duration(cfg.Benchmark.TimeoutSeconds) * time.Second

	url := ctx.String("url")
	a.logger.Info().
		Str("url", url).
		Int("workers", workers).
		Dur("timeout", timeout).
		Msg("Starting grid benchmark")

	runner := bench.NewRunner(a.logger, a.webProbe(), workers, timeout)
	grid := runner.Run(ctx.Context, url, cfg.Benchmark.Matrix)

	data, err := json.MarshalIndent(grid, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	a.logger.Info().
		Int("total", grid.TotalTests).
		Int("passed", grid.PassedTests).
		Int("failed", grid.FailedTests).
		Msg("Grid benchmark finished")
	return nil
}

// webProbe builds an isolated probe around a fresh web adapter per
// configuration. Each probe owns its whole session; nothing is shared
// between workers. Without a browser binding wired in, probes fail with the
// adapter's connection log, which is still a valid grid result.
func (a *App) webProbe() bench.Probe {
	return func(ctx context.Context, url string, cfg bench.Config) bench.Result {
		adapter := adapters.NewWeb(a.logger)
		adapter.Configure(core.Config{"browser": cfg.Browser})

		start := time.Now()
		if !adapter.Connect(ctx, url) {
			errMsg := "connection failed"
			if logs := adapter.Logs(); len(logs) > 0 {
				errMsg = logs[len(logs)-1]
			}
			return bench.Result{
				Success:    false,
				DurationMS: float64(time.Since(start).Milliseconds()),
				Err:        errMsg,
			}
		}
		defer adapter.Disconnect()

		result := adapter.RunTest(ctx, fmt.Sprintf("grid_%s_%s", cfg.Browser, cfg.Platform), core.Params{})
		m := adapter.CollectMetrics()

		return bench.Result{
			Success:    result.Status == core.StatusPassed,
			DurationMS: float64(time.Since(start).Milliseconds()),
			LoadTimeMS: m.ResponseTimeMS,
			Screenshot: result.ScreenshotPath,
			Err:        result.ErrorMessage,
		}
	}
}
