// Package cli implements the betakit command-line launcher.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "betakit"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Drive heterogeneous beta-test targets through a uniform adapter lifecycle",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:    "config",
					Aliases: []string{"c"},
					Usage:   "Path to the session configuration file",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "adapters",
		Usage:  "List the registered adapters",
		Action: app.listAdapters,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "Filter by software category (video_game, vst_plugin, daw, web_app, windows_app, fintech, biotech)",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run tests against a target through one adapter",
		ArgsUsage: "TEST...",
		Action:    app.run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "adapter",
				Aliases:  []string{"a"},
				Usage:    "Adapter name (see 'betakit adapters')",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "target",
				Aliases:  []string{"t"},
				Usage:    "Target path or URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "suite",
				Usage: "Suite name for the generated report",
				Value: "default",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "benchmark",
		Usage:  "Run the parallel multi-configuration grid benchmark",
		Action: app.benchmark,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Usage:    "URL to benchmark",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Override the worker pool bound",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "metrics",
		Usage:  "Show real-time metrics derived from the persisted session",
		Action: app.metrics,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min-runs",
				Usage: "Minimum runs for the flaky test listing",
				Value: 3,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "trends",
		Usage:  "Show historical pass-rate trends",
		Action: app.trends,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of snapshots (default: 20)",
				Value:   20,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "reset",
		Usage:  "Clear the persisted metrics session",
		Action: app.reset,
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
