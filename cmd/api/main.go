package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"subwayroute.dev/engine/internal/app"
	"subwayroute.dev/engine/internal/appconf"
	"subwayroute.dev/engine/internal/logging"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "api",
		Usage: "NYC subway route planner with live departures",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"SUBWAY_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "environment (development|test|production), overrides the config file",
				EnvVars: []string{"SUBWAY_ENV"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			planCommand(),
			departuresCommand(),
			stationsCommand(),
		},
	}
}

// loadConfig reads --config, or the defaults when no file is given.
func loadConfig(c *cli.Context) (*appconf.Config, error) {
	cfg := appconf.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = appconf.Load(path); err != nil {
			return nil, err
		}
	}
	if env := c.String("env"); env != "" {
		cfg.Env = appconf.EnvFlagToEnvironment(env)
		cfg.EnvName = cfg.Env.String()
	}
	return cfg, nil
}

func newLogger(c *cli.Context) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.String("log-level")))); err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	return logging.NewStructuredLogger(c.App.ErrWriter, level), nil
}

// loadApplication builds the engine for a command.
func loadApplication(c *cli.Context, cfg *appconf.Config) (*app.Application, error) {
	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	return app.New(c.Context, cfg, logger, app.Options{})
}
