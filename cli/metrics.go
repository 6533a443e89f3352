package cli

// This file contains the metrics, trends, and reset commands, all operating
// on the persisted session state.

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/betakit/betakit/config"
	"github.com/betakit/betakit/metrics"
	"github.com/betakit/betakit/trend"
)

func (a *App) metrics(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}

	collector := metrics.NewCollector(a.logger, cfg.StoragePath)

	rt := collector.RealTimeMetrics()
	data, err := json.MarshalIndent(rt, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	flaky := collector.FlakyTests(ctx.Int("min-runs"))
	if len(flaky) == 0 {
		return nil
	}
	fmt.Println("\nFlaky tests:")
	for _, ft := range flaky {
		fmt.Printf("  %-40s %5.1f%% (%d/%d runs failing)\n",
			ft.Name, ft.FlakinessRate, ft.FailCount, ft.TotalRuns)
	}
	return nil
}

func (a *App) trends(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}

	store, err := trend.Open(a.logger, cfg.Trend.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	points, err := store.Recent(ctx.Int("limit"))
	if err != nil {
		return err
	}
	if len(points) == 0 {
		fmt.Println("no trend data recorded yet")
		return nil
	}

	series := make([]float64, 0, len(points))
	for _, p := range points {
		fmt.Printf("%s  %3d tests  %5.1f%% pass rate  %d issues\n",
			p.At.Format("2006-01-02 15:04:05"), p.Summary.Total, p.Summary.PassRate, p.Summary.Issues)
		series = append(series, p.Summary.PassRate)
	}

	stats := trend.Summarize(series)
	fmt.Printf("\npass rate over %d runs: min %.1f%%, max %.1f%%, avg %.1f%%\n",
		len(series), stats.Min, stats.Max, stats.Avg)
	return nil
}

func (a *App) reset(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}

	collector := metrics.NewCollector(a.logger, cfg.StoragePath)
	collector.Reset()
	if err := collector.Save(); err != nil {
		return err
	}

	a.logger.Info().Str("path", cfg.StoragePath).Msg("Metrics session reset")
	return nil
}
