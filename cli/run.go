package cli

// This file contains the run command: drive a target through one adapter,
// feed the collector and report generator, persist everything.

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/betakit/betakit/adapters"
	"github.com/betakit/betakit/config"
	"github.com/betakit/betakit/core"
	"github.com/betakit/betakit/metrics"
	"github.com/betakit/betakit/report"
	"github.com/betakit/betakit/trend"
)

func (a *App) listAdapters(ctx *cli.Context) error {
	registry := adapters.DefaultRegistry(a.logger)

	names := registry.Names()
	if filter := ctx.String("type"); filter != "" {
		names = registry.ListByType(core.SoftwareType(filter))
	}
	for _, name := range names {
		adapter := registry.Create(name)
		fmt.Printf("%-10s %s\n", name, adapter.Type())
	}
	return nil
}

func (a *App) run(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}

	adapterName := ctx.String("adapter")
	target := ctx.String("target")
	testNames := ctx.Args().Slice()
	if len(testNames) == 0 {
		return fmt.Errorf("no tests specified: provide at least one test name")
	}

	registry := adapters.DefaultRegistry(a.logger)
	adapter := registry.Create(adapterName)
	if adapter == nil {
		return fmt.Errorf("unknown adapter %q (see 'betakit adapters')", adapterName)
	}

	if options, ok := cfg.Adapters[adapterName]; ok {
		adapter.Configure(core.Config(options))
	}

	collector := metrics.NewCollector(a.logger, cfg.StoragePath)
	generator := report.NewGenerator(a.logger)
	if cfg.HistoryPath != "" {
		generator.LoadHistory(cfg.HistoryPath)
	}

	a.logger.Info().
		Str("adapter", adapterName).
		Str("target", target).
		Msg("Connecting to target")

	if !adapter.Connect(ctx.Context, target) {
		for _, entry := range adapter.Logs() {
			a.logger.Warn().Msg(entry)
		}
		return fmt.Errorf("failed to connect %s adapter to %s", adapterName, target)
	}
	defer adapter.Disconnect()

	suite := &report.TestSuite{Name: ctx.String("suite"), StartTime: time.Now()}

	for _, testName := range testNames {
		result := adapter.RunTest(ctx.Context, testName, core.Params{})

		a.logger.Info().
			Str("test", result.Name).
			Str("status", string(result.Status)).
			Dur("duration", result.Duration).
			Msg("Test finished")

		recordResult(collector, generator, result)
		suite.AddCase(toTestCase(result))
	}
	suite.EndTime = time.Now()
	generator.AddSuite(suite)

	if err := collector.Save(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to persist metrics")
	}

	if path, err := generator.WriteJSON(cfg.ReportDir); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to write JSON report")
	} else {
		a.logger.Info().Str("path", path).Msg("Report written")
	}
	if _, err := generator.WriteHTML(cfg.ReportDir); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to write HTML report")
	}

	a.appendTrend(cfg, generator.GenerateSummary())

	for _, bullet := range generator.BulletPoints() {
		fmt.Println("- " + bullet)
	}
	return nil
}

// recordResult feeds one test result into the collector and, for defects,
// the issue tracker.
func recordResult(collector *metrics.Collector, generator *report.Generator, result core.TestResult) {
	switch result.Status {
	case core.StatusPassed:
		collector.RecordTestResult(result.Name, true)
	case core.StatusFailed:
		collector.RecordTestResult(result.Name, false)
		generator.AddIssue(result.ErrorMessage, result.ErrorMessage, report.SeverityMedium, result.Name, result.ScreenshotPath)
	case core.StatusError:
		collector.RecordTestResult(result.Name, false)
		collector.RecordCrash()
		generator.AddIssue(result.ErrorMessage, result.ErrorMessage, report.SeverityHigh, result.Name, result.ScreenshotPath)
	}

	if ms, ok := result.Metadata["load_time_ms"]; ok {
		if v, err := strconv.ParseFloat(ms, 64); err == nil && v > 0 {
			collector.RecordLoadTime(v)
		}
	}
	if ms, ok := result.Metadata["response_time_ms"]; ok {
		if v, err := strconv.ParseFloat(ms, 64); err == nil && v > 0 {
			collector.RecordResponseTime(v)
		}
	}
	collector.RecordMetric("test_duration_ms", float64(result.Duration.Milliseconds()),
		map[string]string{"test": result.Name}, nil)
}

// toTestCase converts an adapter result into report form. Error-status
// results map to "broken" so infrastructure faults stay distinguishable from
// product defects.
func toTestCase(result core.TestResult) report.TestCase {
	status := string(result.Status)
	if result.Status == core.StatusError {
		status = "broken"
	}
	tc := report.TestCase{
		Name:         result.Name,
		Status:       status,
		DurationMS:   float64(result.Duration.Milliseconds()),
		ErrorMessage: result.ErrorMessage,
		Labels:       result.Metadata,
	}
	if result.ScreenshotPath != "" {
		tc.Attachments = append(tc.Attachments, result.ScreenshotPath)
	}
	return tc
}

func (a *App) appendTrend(cfg *config.Session, sum report.Summary) {
	store, err := trend.Open(a.logger, cfg.Trend.Dir)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to open trend store")
		return
	}
	defer store.Close()

	if err := store.Append(time.Now(), sum); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record trend point")
	}
}
