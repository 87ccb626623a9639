package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/relic/internal/api"
	"github.com/samcharles93/relic/internal/catalog"
	"github.com/samcharles93/relic/internal/logger"
	"github.com/samcharles93/relic/pkg/asset"
)

func serveCmd() *cli.Command {
	var (
		pakPath     string
		gameName    string
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the asset catalog over a REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "pak",
				Aliases:     []string{"p"},
				Usage:       "path to .pak archive",
				Destination: &pakPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "game",
				Aliases:     []string{"g"},
				Usage:       "engine release (prime, echoes, corruption)",
				Value:       "prime",
				Destination: &gameName,
			},
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyServeConfig(c, cfg, &gameName, &addr)
			ctx = loggerContext(ctx, cfg)
			log := logger.FromContext(ctx)

			game, err := asset.ParseGame(gameName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			pak, err := catalog.OpenPAK(pakPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open pak: %v", err), 1)
			}
			defer func() { _ = pak.Close() }()

			cat := catalog.NewMemory()
			if err := pak.LoadInto(cat); err != nil {
				return cli.Exit(fmt.Sprintf("error: load pak: %v", err), 1)
			}

			server := api.NewServer(cat, game)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "game", game.String(), "assets", cat.Len())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
