package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/relic/internal/catalog"
)

func inspectCmd() *cli.Command {
	var (
		pakPath       string
		showAll       bool
		showNamed     bool
		showResources bool
		typeFilter    string
		limit         int
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect the contents of a .pak archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "pak",
				Aliases:     []string{"p"},
				Usage:       "path to .pak file",
				Destination: &pakPath,
				Required:    true,
			},
			&cli.BoolFlag{Name: "all", Usage: "show the name table and full resource table", Destination: &showAll},
			&cli.BoolFlag{Name: "named", Usage: "show the name table", Destination: &showNamed},
			&cli.BoolFlag{Name: "resources", Usage: "list the resource table", Destination: &showResources},
			&cli.IntFlag{Name: "limit", Usage: "limit resource listing (0 = no limit)", Value: 50, Destination: &limit},
			&cli.StringFlag{Name: "type", Usage: "four-character type filter for the resource listing", Destination: &typeFilter},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			if showAll {
				showNamed = true
				showResources = true
				if limit == 50 {
					limit = 0
				}
			}

			stat, err := os.Stat(pakPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: stat pak path %q: %v", pakPath, err), 1)
			}

			pak, err := catalog.OpenPAK(pakPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open pak: %v", err), 1)
			}
			defer func() { _ = pak.Close() }()

			fmt.Printf("PAK Inspect: %s\n", pakPath)
			fmt.Printf("File: %s (%s)\n", filepath.Base(pakPath), formatBytes(uint64(stat.Size())))

			printSummary(pak)

			if showNamed {
				printNamedTable(pak)
			}
			if showResources {
				printResourceTable(pak, typeFilter, limit)
			}

			return nil
		},
	}
}

func printSummary(pak *catalog.PAK) {
	section("Summary")
	rowInt("named_resources", len(pak.Named))
	rowInt("resources", len(pak.Resources))

	typeCounts := map[string]int{}
	typeBytes := map[string]uint64{}
	var total uint64
	var compressed int
	for i := range pak.Resources {
		r := &pak.Resources[i]
		typeCounts[string(r.Type)]++
		typeBytes[string(r.Type)] += uint64(r.Size)
		total += uint64(r.Size)
		if r.Compressed {
			compressed++
		}
	}
	row("data_size", formatBytes(total))
	rowInt("compressed", compressed)

	keys := make([]string, 0, len(typeCounts))
	for k := range typeCounts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		row(fmt.Sprintf("type_%s", k), fmt.Sprintf("%d (%s)", typeCounts[k], formatBytes(typeBytes[k])))
	}
}

func printNamedTable(pak *catalog.PAK) {
	section("Named Resources")
	if len(pak.Named) == 0 {
		fmt.Println("(empty name table)")
		return
	}
	for _, n := range pak.Named {
		fmt.Printf("%-6s %s  %s\n", n.Type, n.ID, n.Name)
	}
}

func printResourceTable(pak *catalog.PAK, filter string, limit int) {
	section("Resources")
	if len(pak.Resources) == 0 {
		fmt.Println("(empty resource table)")
		return
	}
	printed := 0
	for i := range pak.Resources {
		r := &pak.Resources[i]
		if filter != "" && !strings.EqualFold(string(r.Type), filter) {
			continue
		}
		line := fmt.Sprintf("%-6s %s  off=%-10d size=%s", r.Type, r.ID, r.Offset, formatBytes(uint64(r.Size)))
		if r.Compressed {
			line += " (zlib)"
		}
		fmt.Println(line)
		printed++
		if limit > 0 && printed >= limit {
			break
		}
	}
	if limit > 0 && printed < len(pak.Resources) {
		fmt.Printf("... (%d shown of %d)\n", printed, len(pak.Resources))
	}
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-24s %s\n", label+":", value)
}

func rowInt(label string, v int) {
	if v == 0 {
		return
	}
	row(label, fmt.Sprintf("%d", v))
}

func formatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
