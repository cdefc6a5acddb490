package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrPathNotFound         = errors.New("cannot find a path")
)

// Engine provides the main interface for pathfinding operations
type Engine interface {
	// Grid setup
	Configure(width, height int, walls []Position, source, target Position) error
	SetSource(p Position) error
	SetTarget(p Position) error
	SetWall(p Position) error
	SetEmpty(p Position) error
	ClearResult()

	// Search
	Run() ([]Position, error)

	// Queries
	Width() int
	Height() int
	CellAt(p Position) (CellState, error)
	Node(p Position) (*Node, bool)
	Source() (Position, bool)
	Target() (Position, bool)
	Walls() []Position
	Expanded() []Position
	LastPath() []Position
	PathCost() int
	Snapshot() *GridSnapshot
}

// GridEngine implements the Engine interface
type GridEngine struct {
	width  int
	height int
	cells  [][]Cell

	source *Position
	target *Position

	open     []*Node
	closed   []*Node
	seq      int
	expanded []Position
	path     []Position

	observer func(StepEvent)
}

// NewEngine creates an empty grid of the given dimensions
func NewEngine(width, height int) (*GridEngine, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}

	e := &GridEngine{}
	e.allocate(width, height)
	return e, nil
}

// NewEngineWithDefaults creates an empty 20x20 grid
func NewEngineWithDefaults() *GridEngine {
	e := &GridEngine{}
	e.allocate(DefaultGridSize, DefaultGridSize)
	return e
}

// Configure replaces the grid with the given dimensions, walls and endpoints
func (e *GridEngine) Configure(width, height int, walls []Position, source, target Position) error {
	if err := validateDimensions(width, height); err != nil {
		return err
	}

	inBounds := func(p Position) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
	}

	wallSet := make(map[Position]bool, len(walls))
	for _, w := range walls {
		if !inBounds(w) {
			return fmt.Errorf("%w: wall (%d,%d) is out of bounds", ErrInvalidConfiguration, w.X, w.Y)
		}
		wallSet[w] = true
	}

	if !inBounds(source) {
		return fmt.Errorf("%w: source (%d,%d) is out of bounds", ErrInvalidConfiguration, source.X, source.Y)
	}
	if !inBounds(target) {
		return fmt.Errorf("%w: target (%d,%d) is out of bounds", ErrInvalidConfiguration, target.X, target.Y)
	}
	if wallSet[source] {
		return fmt.Errorf("%w: source (%d,%d) is a wall", ErrInvalidConfiguration, source.X, source.Y)
	}
	if wallSet[target] {
		return fmt.Errorf("%w: target (%d,%d) is a wall", ErrInvalidConfiguration, target.X, target.Y)
	}
	if source == target {
		return fmt.Errorf("%w: source and target are both (%d,%d)", ErrInvalidConfiguration, source.X, source.Y)
	}

	e.allocate(width, height)
	for w := range wallSet {
		e.cells[w.Y][w.X].State = Wall
	}

	src, tgt := source, target
	e.source, e.target = &src, &tgt
	e.cells[src.Y][src.X].State = Source
	e.cells[tgt.Y][tgt.X].State = Target

	return nil
}

// SetSource moves the source to p. The previous source cell becomes empty.
func (e *GridEngine) SetSource(p Position) error {
	if err := e.checkBounds(p); err != nil {
		return err
	}
	if e.target != nil && *e.target == p {
		return fmt.Errorf("%w: source cannot be placed on the target (%d,%d)", ErrInvalidConfiguration, p.X, p.Y)
	}

	if e.source != nil {
		e.cells[e.source.Y][e.source.X].State = Empty
	}
	src := p
	e.source = &src
	e.cells[p.Y][p.X] = Cell{State: Source}
	return nil
}

// SetTarget moves the target to p. The previous target cell becomes empty.
func (e *GridEngine) SetTarget(p Position) error {
	if err := e.checkBounds(p); err != nil {
		return err
	}
	if e.source != nil && *e.source == p {
		return fmt.Errorf("%w: target cannot be placed on the source (%d,%d)", ErrInvalidConfiguration, p.X, p.Y)
	}

	if e.target != nil {
		e.cells[e.target.Y][e.target.X].State = Empty
	}
	tgt := p
	e.target = &tgt
	e.cells[p.Y][p.X] = Cell{State: Target}
	return nil
}

// SetWall marks p as a wall, unsetting the source or target if it was there
func (e *GridEngine) SetWall(p Position) error {
	return e.setPlain(p, Wall)
}

// SetEmpty marks p as empty, unsetting the source or target if it was there
func (e *GridEngine) SetEmpty(p Position) error {
	return e.setPlain(p, Empty)
}

func (e *GridEngine) setPlain(p Position, state CellState) error {
	if err := e.checkBounds(p); err != nil {
		return err
	}

	if e.source != nil && *e.source == p {
		e.source = nil
	} else if e.target != nil && *e.target == p {
		e.target = nil
	}

	e.cells[p.Y][p.X] = Cell{State: state}
	return nil
}

// ClearResult removes search output (open, closed and path cells, node records)
// while keeping source, target and walls
func (e *GridEngine) ClearResult() {
	for y := range e.cells {
		for x := range e.cells[y] {
			cell := &e.cells[y][x]
			switch cell.State {
			case Open, Closed, Path:
				cell.State = Empty
			}
			cell.Node = nil
		}
	}

	e.open = e.open[:0]
	e.closed = e.closed[:0]
	e.seq = 0
	e.expanded = nil
	e.path = nil
}

// SetObserver registers a callback invoked after every expansion. Pass nil to remove it.
func (e *GridEngine) SetObserver(fn func(StepEvent)) {
	e.observer = fn
}

// Width returns the grid width
func (e *GridEngine) Width() int {
	return e.width
}

// Height returns the grid height
func (e *GridEngine) Height() int {
	return e.height
}

// CellAt returns the classification of the cell at p
func (e *GridEngine) CellAt(p Position) (CellState, error) {
	if err := e.checkBounds(p); err != nil {
		return "", err
	}
	return e.cells[p.Y][p.X].State, nil
}

// Node returns the search record at p from the latest run, if the cell was discovered
func (e *GridEngine) Node(p Position) (*Node, bool) {
	if !e.InBounds(p) {
		return nil, false
	}
	n := e.cells[p.Y][p.X].Node
	return n, n != nil
}

// Source returns the source position, if set
func (e *GridEngine) Source() (Position, bool) {
	if e.source == nil {
		return Position{}, false
	}
	return *e.source, true
}

// Target returns the target position, if set
func (e *GridEngine) Target() (Position, bool) {
	if e.target == nil {
		return Position{}, false
	}
	return *e.target, true
}

// Walls returns all wall positions in row-major order
func (e *GridEngine) Walls() []Position {
	var walls []Position
	for y := range e.cells {
		for x := range e.cells[y] {
			if e.cells[y][x].State == Wall {
				walls = append(walls, Position{X: x, Y: y})
			}
		}
	}
	return walls
}

// Expanded returns the positions in the order they were expanded during the latest run
func (e *GridEngine) Expanded() []Position {
	return append([]Position(nil), e.expanded...)
}

// LastPath returns the path found by the latest successful run
func (e *GridEngine) LastPath() []Position {
	return append([]Position(nil), e.path...)
}

// PathCost returns the accumulated cost of the latest path, or 0 if none
func (e *GridEngine) PathCost() int {
	if len(e.path) == 0 || e.target == nil {
		return 0
	}
	if n := e.cells[e.target.Y][e.target.X].Node; n != nil {
		return n.GCost
	}
	return 0
}

// Snapshot returns a deep copy of the grid suitable for rendering
func (e *GridEngine) Snapshot() *GridSnapshot {
	cells := make([][]Cell, e.height)
	for y := range e.cells {
		cells[y] = make([]Cell, e.width)
		for x, c := range e.cells[y] {
			cells[y][x] = Cell{State: c.State}
			if c.Node != nil {
				n := *c.Node
				if c.Node.Predecessor != nil {
					pred := *c.Node.Predecessor
					n.Predecessor = &pred
				}
				cells[y][x].Node = &n
			}
		}
	}

	snap := &GridSnapshot{
		Width:    e.width,
		Height:   e.height,
		Cells:    cells,
		Path:     e.LastPath(),
		PathCost: e.PathCost(),
		Rows:     RenderRows(cells),
	}
	if src, ok := e.Source(); ok {
		snap.Source = &src
	}
	if tgt, ok := e.Target(); ok {
		snap.Target = &tgt
	}
	return snap
}

// InBounds reports whether p lies on the grid
func (e *GridEngine) InBounds(p Position) bool {
	return p.X >= 0 && p.X < e.width && p.Y >= 0 && p.Y < e.height
}

func (e *GridEngine) checkBounds(p Position) error {
	if !e.InBounds(p) {
		return fmt.Errorf("%w: (%d,%d) is outside the %dx%d grid", ErrInvalidConfiguration, p.X, p.Y, e.width, e.height)
	}
	return nil
}

// allocate resets the engine to an empty grid of the given size
func (e *GridEngine) allocate(width, height int) {
	e.width = width
	e.height = height
	e.cells = make([][]Cell, height)
	for y := range e.cells {
		e.cells[y] = make([]Cell, width)
		for x := range e.cells[y] {
			e.cells[y][x].State = Empty
		}
	}
	e.source = nil
	e.target = nil
	e.open = nil
	e.closed = nil
	e.seq = 0
	e.expanded = nil
	e.path = nil
}

func validateDimensions(width, height int) error {
	if width < MinGridSize || width > MaxGridSize {
		return fmt.Errorf("%w: width must be between %d and %d, got %d", ErrInvalidConfiguration, MinGridSize, MaxGridSize, width)
	}
	if height < MinGridSize || height > MaxGridSize {
		return fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalidConfiguration, MinGridSize, MaxGridSize, height)
	}
	return nil
}
