// Command gridtui is a terminal editor for pathfinding grids. Move the cursor
// with the arrow keys, place the source, target and walls, then press r to run
// A* and watch the open, closed and path cells.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/gridpath/grid/config"
	"github.com/wricardo/gridpath/grid/engine"
)

var configPath = flag.String("config", "", "Grid template to start from (JSON or YAML)")

func main() {
	flag.Parse()

	cfg := engine.DefaultGridConfig()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load template: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	app, err := NewApp(screen, cfg)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Failed to build grid: %v\n", err)
		os.Exit(1)
	}
	defer app.cleanup()

	app.run()
}
