// Command analyze prints quick, human-readable statistics about the grid
// templates in a config directory: dimensions, wall density and, when both
// endpoints are set, the cost, length and search effort of the A* path.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/gridpath/grid/config"
	"github.com/wricardo/gridpath/grid/engine"
)

// Analysis summarizes one template
type Analysis struct {
	ConfigID    string  `json:"config_id"`
	Name        string  `json:"name"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Walls       int     `json:"walls"`
	WallDensity float64 `json:"wall_density"`

	// Search results, present when both endpoints are set
	Searched   bool             `json:"searched"`
	Found      bool             `json:"found"`
	Cost       int              `json:"cost,omitempty"`
	PathLength int              `json:"path_length,omitempty"`
	Expanded   int              `json:"expanded,omitempty"`
	LowerBound int              `json:"lower_bound,omitempty"` // heuristic from source to target
	Source     *engine.Position `json:"source,omitempty"`
	Target     *engine.Position `json:"target,omitempty"`
	Duration   time.Duration    `json:"duration_ns,omitempty"`
}

// analyzeConfig builds an engine from the template and runs a search when possible
func analyzeConfig(configID string, cfg *engine.GridConfig) (*Analysis, error) {
	eng, err := engine.NewEngineFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	walls := len(eng.Walls())
	a := &Analysis{
		ConfigID:    configID,
		Name:        cfg.Name,
		Width:       eng.Width(),
		Height:      eng.Height(),
		Walls:       walls,
		WallDensity: float64(walls) / float64(eng.Width()*eng.Height()),
	}

	source, hasSource := eng.Source()
	target, hasTarget := eng.Target()
	if !hasSource || !hasTarget {
		return a, nil
	}

	a.Searched = true
	a.Source, a.Target = &source, &target
	a.LowerBound = engine.Heuristic(source, target)

	start := time.Now()
	path, err := eng.Run()
	a.Duration = time.Since(start)
	a.Expanded = len(eng.Expanded())

	switch {
	case errors.Is(err, engine.ErrPathNotFound):
		return a, nil
	case err != nil:
		return nil, err
	}

	a.Found = true
	a.Cost = eng.PathCost()
	a.PathLength = len(path)
	return a, nil
}

// printAnalysis writes the text report for one template
func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Walls: %d (%.1f%%)\n", a.Walls, a.WallDensity*100)

	if !a.Searched {
		fmt.Fprintf(w, "⚠️  Source or target not set, no search run\n")
		return
	}

	fmt.Fprintf(w, "Source: (%d, %d)  Target: (%d, %d)\n", a.Source.X, a.Source.Y, a.Target.X, a.Target.Y)
	fmt.Fprintf(w, "Nodes expanded: %d of %d open cells\n", a.Expanded, a.Width*a.Height-a.Walls)

	if !a.Found {
		fmt.Fprintf(w, "❌ No path from source to target\n")
		return
	}

	fmt.Fprintf(w, "✅ Path: %d cells, cost %d (straight-line lower bound %d, detour +%d)\n",
		a.PathLength, a.Cost, a.LowerBound, a.Cost-a.LowerBound)
	fmt.Fprintf(w, "Search time: %s\n", a.Duration)
}

// resolveNames returns the requested config IDs, or every template in the directory
func resolveNames(manager *config.Manager, names []string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ConfigID)
	}
	return ids, nil
}

func run(ctx context.Context, w io.Writer, configDir, format string, names []string) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	ids, err := resolveNames(manager, names)
	if err != nil {
		return err
	}

	var results []*Analysis
	var failed []string
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		cfg, err := manager.LoadConfig(id)
		if err == nil {
			var a *Analysis
			if a, err = analyzeConfig(id, cfg); err == nil {
				results = append(results, a)
				if format == "text" {
					fmt.Fprintf(w, "\n=== Analyzing %s ===\n", id)
					printAnalysis(w, a)
				}
				continue
			}
		}

		failed = append(failed, id)
		if format == "text" {
			fmt.Fprintf(w, "\n=== Analyzing %s ===\n", id)
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to analyze: %s", strings.Join(failed, ", "))
	}
	return nil
}

func newCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Summarize grid templates and their A* paths",
		ArgsUsage: "[config-id...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing grid templates",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "output format: text or json",
				Validator: func(v string) error {
					if v != "text" && v != "json" {
						return fmt.Errorf("unknown format %q", v)
					}
					return nil
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, w, cmd.String("config-dir"), cmd.String("format"), cmd.Args().Slice())
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
