package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/relic/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "relic",
		Usage: "Asset dependency engine CLI",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			depsCmd(),
			inspectCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loggerContext installs a logger built from the config file settings.
func loggerContext(ctx context.Context, cfg Config) context.Context {
	level := logger.ParseLevel(cfg.LogLevel)
	var log logger.Logger
	switch cfg.LogFormat {
	case "json":
		log = logger.JSON(os.Stderr, level)
	default:
		log = logger.Pretty(os.Stderr, level)
	}
	return logger.WithContext(ctx, log)
}
