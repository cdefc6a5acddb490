// Command validate checks the grid templates in a config directory. It checks:
//   - JSON/YAML structure and required fields
//   - Dimensions within engine limits and rows matching width/height
//   - Allowed characters (. # S T) and at most one source and one target
//   - The legend mapping each character to its cell state
//   - Reachability: when both endpoints are set, an A* run must reach the target
//
// Unreachable targets are warnings unless --strict is given, since some
// templates deliberately have no path.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/gridpath/grid/config"
	"github.com/wricardo/gridpath/grid/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Warnings and Info are reported either way.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single template file.
// Unlike engine.ValidateGridConfig it keeps going after the first problem so
// every issue in the file is reported at once.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	cfg, err := config.ParseConfig(filePath, data)
	if err != nil {
		result.fail("Invalid file: %v", err)
		return result
	}

	if cfg.Name == "" {
		result.fail("name is required")
	}
	if cfg.Description == "" {
		result.fail("description is required")
	}

	if cfg.Width < engine.MinGridSize || cfg.Width > engine.MaxGridSize {
		result.fail("width must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, cfg.Width)
	}
	if cfg.Height < engine.MinGridSize || cfg.Height > engine.MaxGridSize {
		result.fail("height must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, cfg.Height)
	}

	if len(cfg.Layout) == 0 {
		result.fail("Layout is empty")
	} else if len(cfg.Layout) != cfg.Height {
		result.fail("Layout has %d rows, height is %d", len(cfg.Layout), cfg.Height)
	}

	walls, sources, targets := 0, 0, 0
	for y, row := range cfg.Layout {
		if len(row) != cfg.Width {
			result.fail("Row %d has %d characters, width is %d", y, len(row), cfg.Width)
		}
		for x, char := range row {
			switch char {
			case engine.EmptyChar:
			case engine.WallChar:
				walls++
			case engine.SourceChar:
				sources++
			case engine.TargetChar:
				targets++
			default:
				result.fail("Invalid character '%c' at (%d,%d)", char, x, y)
			}
		}
	}

	if sources > 1 {
		result.fail("Layout has %d sources (S), at most one allowed", sources)
	}
	if targets > 1 {
		result.fail("Layout has %d targets (T), at most one allowed", targets)
	}

	keys := make([]string, 0, len(engine.DefaultLegend))
	for key := range engine.DefaultLegend {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		expected := engine.DefaultLegend[key]
		if got, ok := cfg.Legend[key]; !ok {
			result.fail("Legend is missing '%s'", key)
		} else if got != expected {
			result.fail("Legend maps '%s' to %q, expected %q", key, got, expected)
		}
	}

	if !result.Valid {
		return result
	}

	if sources == 0 || targets == 0 {
		result.Warnings = append(result.Warnings, "Source or target not set, reachability not checked")
	} else {
		checkReachability(cfg, &result)
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", cfg.Name),
		fmt.Sprintf("✓ Grid: %dx%d", cfg.Width, cfg.Height),
		fmt.Sprintf("✓ Walls: %d (%.1f%%)", walls, 100*float64(walls)/float64(cfg.Width*cfg.Height)),
	)

	return result
}

// checkReachability runs A* on the template and records the outcome
func checkReachability(cfg *engine.GridConfig, result *ValidationResult) {
	eng, err := engine.NewEngineFromConfig(cfg)
	if err != nil {
		result.fail("Engine rejected template: %v", err)
		return
	}

	path, err := eng.Run()
	switch {
	case errors.Is(err, engine.ErrPathNotFound):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Target unreachable from source (%d cells explored)", len(eng.Expanded())))
	case err != nil:
		result.fail("Search failed: %v", err)
	default:
		result.Info = append(result.Info,
			fmt.Sprintf("✓ Reachability: path of %d cells, cost %d", len(path), eng.PathCost()))
	}
}

// templateFiles lists the template files in dir, sorted by name
func templateFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// report prints one result and reports whether it passed
func report(result ValidationResult, strict bool) bool {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	ok := result.Valid && !(strict && len(result.Warnings) > 0)
	if ok {
		fmt.Println("✅ VALID")
	} else {
		fmt.Println("❌ INVALID")
	}
	for _, err := range result.Errors {
		fmt.Println("  ❌ " + err)
	}
	for _, warning := range result.Warnings {
		fmt.Println("  ⚠️  " + warning)
	}
	for _, info := range result.Info {
		fmt.Println("  " + info)
	}
	return ok
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate grid templates",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat warnings (such as unreachable targets) as failures",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = templateFiles(cmd.String("config-dir"))
				if err != nil {
					return fmt.Errorf("finding config files: %w", err)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no templates found in %s", cmd.String("config-dir"))
			}

			allValid := true
			for _, file := range files {
				if !report(validateConfig(file), cmd.Bool("strict")) {
					allValid = false
				}
			}

			fmt.Printf("\n%s\n", strings.Repeat("=", 40))
			if !allValid {
				return errors.New("❌ Some templates have errors")
			}
			fmt.Println("✅ All templates are valid!")
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
