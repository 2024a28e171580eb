// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/playtime/internal/formatter"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "playtime",
		Usage:    "Rank your most listened recordings by time spent listening",
		Version:  version,
		Commands: r.register(),
	}
}

// commonFlags are accepted by every command that reads the config.
func commonFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}, extra...)
}

func countFlag(required bool) *cli.IntFlag {
	return &cli.IntFlag{
		Name:     "count",
		Aliases:  []string{"n"},
		Usage:    "Minimum number of recordings to fetch",
		Required: required,
	}
}

// reportCommand runs the pipeline and prints the ranking
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Rank the top recordings by minutes played",
		Flags: commonFlags(
			countFlag(true),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: " + strings.Join(formatter.Formats, ", "),
				Value:   formatter.FormatText,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Disable styling of text output",
			},
		),
		Action: r.Report,
	}
}

// tuiCommand runs the pipeline inside the interactive browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Build a report and browse it interactively",
		Flags: commonFlags(
			countFlag(true),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/playtime-tui.log",
			},
		),
		Action: r.TUI,
	}
}

// cacheCommand inspects and fills the duration cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the MusicBrainz response cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached recordings and their lengths",
				Flags: commonFlags(
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.CacheList,
			},
			{
				Name:  "show",
				Usage: "Print the cached MusicBrainz response for a recording",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  commonFlags(),
				Action: r.CacheShow,
			},
			{
				Name:  "import",
				Usage: "Copy a directory of {mbid}.json files into the configured cache",
				Flags: commonFlags(
					&cli.StringFlag{
						Name:     "dir",
						Usage:    "Directory holding the legacy cache",
						Required: true,
					},
				),
				Action: r.CacheImport,
			},
		},
	}
}

// rulesCommand validates the skip and remap rule files
func rulesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Work with skip and remap rules",
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Validate rule files; with --count, list recordings no rule resolves",
				Flags:  commonFlags(countFlag(false)),
				Action: r.RulesCheck,
			},
		},
	}
}

// runsCommand lists previous report runs
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List previous report runs",
		Flags: commonFlags(
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		),
		Action: r.Runs,
	}
}

// serveCommand starts the JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve reports, recorded runs and cached durations over HTTP",
		Flags: commonFlags(
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Address to listen on",
				Value:   "localhost:8080",
			},
		),
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  commonFlags(),
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recently applied migration",
				Flags:  commonFlags(),
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write an example config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
