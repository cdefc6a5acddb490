package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/gridpath/grid/engine"
)

const (
	cellWidth  = 2 // screen columns per grid cell
	gridLeft   = 1
	gridTop    = 1
	helpText   = "arrows move  s source  t target  w wall  e empty  c clear  r run  g/h/f costs  q quit"
	eventQueue = 100
)

var cellStyles = map[engine.CellState]tcell.Style{
	engine.Empty:  tcell.StyleDefault.Foreground(tcell.ColorGray),
	engine.Wall:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkGray),
	engine.Source: tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
	engine.Target: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	engine.Path:   tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	engine.Open:   tcell.StyleDefault.Foreground(tcell.ColorAqua),
	engine.Closed: tcell.StyleDefault.Foreground(tcell.ColorBlue),
}

// App holds the terminal state around a single grid engine
type App struct {
	screen tcell.Screen
	engine *engine.GridEngine

	cursor engine.Position

	// Cost overlays for the cursor cell
	showG, showH, showF bool

	status string
}

// NewApp builds the grid from cfg and places the cursor on the source, if any
func NewApp(screen tcell.Screen, cfg *engine.GridConfig) (*App, error) {
	eng, err := engine.NewEngineFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		screen: screen,
		engine: eng,
		status: fmt.Sprintf("Loaded %s (%dx%d)", cfg.Name, eng.Width(), eng.Height()),
	}
	if src, ok := eng.Source(); ok {
		a.cursor = src
	}
	return a, nil
}

func (a *App) moveCursor(dx, dy int) {
	next := engine.Position{X: a.cursor.X + dx, Y: a.cursor.Y + dy}
	if a.engine.InBounds(next) {
		a.cursor = next
	}
}

// edit applies a cell change at the cursor. Any edit invalidates the last result.
func (a *App) edit(name string, apply func(engine.Position) error) {
	a.engine.ClearResult()
	if err := apply(a.cursor); err != nil {
		a.status = fmt.Sprintf("Error: %v", err)
		return
	}
	a.status = fmt.Sprintf("Set %s at (%d, %d)", name, a.cursor.X, a.cursor.Y)
}

func (a *App) runSearch() {
	path, err := a.engine.Run()
	expanded := len(a.engine.Expanded())
	switch {
	case errors.Is(err, engine.ErrPathNotFound):
		a.status = fmt.Sprintf("No path found (%d nodes expanded)", expanded)
	case err != nil:
		a.status = fmt.Sprintf("Error: %v", err)
	default:
		a.status = fmt.Sprintf("Path: %d cells, cost %d (%d nodes expanded)", len(path), a.engine.PathCost(), expanded)
	}
}

// handleInput applies one event and reports whether the app should keep running
func (a *App) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			a.moveCursor(0, -1)
		case tcell.KeyDown:
			a.moveCursor(0, 1)
		case tcell.KeyLeft:
			a.moveCursor(-1, 0)
		case tcell.KeyRight:
			a.moveCursor(1, 0)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 's':
				a.edit("source", a.engine.SetSource)
			case 't':
				a.edit("target", a.engine.SetTarget)
			case 'w':
				a.edit("wall", a.engine.SetWall)
			case 'e':
				a.edit("empty", a.engine.SetEmpty)
			case 'c':
				a.engine.ClearResult()
				a.status = "Result cleared"
			case 'r':
				a.runSearch()
			case 'g':
				a.showG = !a.showG
			case 'h':
				a.showH = !a.showH
			case 'f':
				a.showF = !a.showF
			}
		}

	case *tcell.EventResize:
		a.screen.Sync()
	}

	return true
}

// cursorInfo describes the cell under the cursor, including the enabled cost overlays
func (a *App) cursorInfo() string {
	state, _ := a.engine.CellAt(a.cursor)
	info := fmt.Sprintf("(%d, %d) %s", a.cursor.X, a.cursor.Y, state)

	if !a.showG && !a.showH && !a.showF {
		return info
	}

	node, ok := a.engine.Node(a.cursor)
	if !ok {
		return info + "  not discovered"
	}

	var costs []string
	if a.showG {
		costs = append(costs, fmt.Sprintf("g=%d", node.GCost))
	}
	if a.showH {
		costs = append(costs, fmt.Sprintf("h=%d", node.HCost))
	}
	if a.showF {
		costs = append(costs, fmt.Sprintf("f=%d", node.FCost))
	}
	return info + "  " + strings.Join(costs, " ")
}

func (a *App) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		a.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (a *App) draw() {
	a.screen.Clear()

	for y := 0; y < a.engine.Height(); y++ {
		for x := 0; x < a.engine.Width(); x++ {
			p := engine.Position{X: x, Y: y}
			state, _ := a.engine.CellAt(p)
			style := cellStyles[state]
			if p == a.cursor {
				style = style.Reverse(true)
			}
			a.screen.SetContent(gridLeft+x*cellWidth, gridTop+y, rune(engine.StateChar(state)), nil, style)
		}
	}

	line := gridTop + a.engine.Height() + 1
	a.drawText(gridLeft, line, a.cursorInfo(), tcell.StyleDefault)
	a.drawText(gridLeft, line+1, a.status, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	a.drawText(gridLeft, line+2, helpText, tcell.StyleDefault.Foreground(tcell.ColorGray))

	a.screen.Show()
}

func (a *App) run() {
	eventChan := make(chan tcell.Event, eventQueue)
	go func() {
		for {
			eventChan <- a.screen.PollEvent()
		}
	}()

	a.draw()
	for ev := range eventChan {
		if ev == nil {
			return
		}
		if !a.handleInput(ev) {
			return
		}
		a.draw()
	}
}

func (a *App) cleanup() {
	a.screen.Fini()
}
