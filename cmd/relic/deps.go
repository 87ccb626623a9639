package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/relic/internal/catalog"
	"github.com/samcharles93/relic/internal/logger"
	"github.com/samcharles93/relic/pkg/asset"
)

type depsOutput struct {
	Asset        string   `json:"asset"`
	Game         string   `json:"game"`
	Recursive    bool     `json:"recursive"`
	Dependencies []depRec `json:"dependencies"`
}

type depRec struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func depsCmd() *cli.Command {
	var (
		pakPath     string
		gameName    string
		idArg       string
		recursive   bool
		container   bool
		playerActor bool
		notExistOK  bool
		asJSON      bool
	)

	return &cli.Command{
		Name:  "deps",
		Usage: "Extract the dependencies of an asset from a PAK archive",
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
				Name:        "id",
				Usage:       "asset identifier (hex)",
				Destination: &idArg,
				Required:    true,
			},
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "walk transitive dependencies", Destination: &recursive},
			&cli.BoolFlag{Name: "container", Usage: "treat the asset as a level/container root", Destination: &container},
			&cli.BoolFlag{Name: "player-actor", Usage: "restrict an ANCS root to the player-actor character", Destination: &playerActor},
			&cli.BoolFlag{Name: "not-exist-ok", Usage: "tolerate references the archive cannot resolve", Destination: &notExistOK},
			&cli.BoolFlag{Name: "json", Usage: "emit JSON instead of a table", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyGameConfig(c, cfg, &gameName)
			ctx = loggerContext(ctx, cfg)
			log := logger.FromContext(ctx)

			game, err := asset.ParseGame(gameName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			id, err := parseAssetID(idArg)
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
			log.Debug("archive loaded", "path", pakPath, "assets", cat.Len())

			walker := catalog.NewWalker(cat, game)
			deps, err := walker.DependenciesFor(id, catalog.WalkOptions{
				Recursive:   recursive,
				NotExistOK:  notExistOK,
				Container:   container,
				PlayerActor: playerActor,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if asJSON {
				out := depsOutput{
					Asset:     id.String(),
					Game:      game.String(),
					Recursive: recursive,
				}
				for _, d := range deps {
					out.Dependencies = append(out.Dependencies, depRec{Type: string(d.Type), ID: d.ID.String()})
				}
				b, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			fmt.Printf("Dependencies of %s (%s, %d records)\n", id, game, len(deps))
			for _, d := range deps {
				tag := string(d.Type)
				if tag == "" {
					tag = "????"
				}
				fmt.Printf("%-6s %s\n", tag, d.ID)
			}
			return nil
		},
	}
}

// parseAssetID accepts hex identifiers with or without a 0x prefix, and
// plain decimal.
func parseAssetID(s string) (asset.AssetID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty asset id")
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err := strconv.ParseUint(rest, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid asset id %q", s)
		}
		return asset.AssetID(v), nil
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return asset.AssetID(v), nil
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid asset id %q", s)
	}
	return asset.AssetID(v), nil
}
