package engine

// CellState represents the classification of a grid cell
type CellState string

const (
	Empty  CellState = "empty"
	Source CellState = "source"
	Target CellState = "target"
	Wall   CellState = "wall"
	Path   CellState = "path"
	Open   CellState = "open"
	Closed CellState = "closed"

	// Step costs: octile distance scaled to integers
	StraightCost = 10
	DiagonalCost = 14

	// Validation constants
	MinGridSize     = 1
	MaxGridSize     = 100
	DefaultGridSize = 20
)

// Layout characters used by grid templates
const (
	EmptyChar  = '.'
	WallChar   = '#'
	SourceChar = 'S'
	TargetChar = 'T'
)

// Position represents x,y coordinates. X is the column, Y the row.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Node is the per-cell search record created when a cell is first discovered
type Node struct {
	Position    Position  `json:"position"`
	GCost       int       `json:"g_cost"`
	HCost       int       `json:"h_cost"`
	FCost       int       `json:"f_cost"`
	Closed      bool      `json:"closed"`
	Predecessor *Position `json:"predecessor,omitempty"`
	Order       int       `json:"order"` // discovery sequence within a run
}

// Cell is the unified per-cell record: classification plus optional search metadata
type Cell struct {
	State CellState `json:"state"`
	Node  *Node     `json:"node,omitempty"`
}

// GridConfig represents a grid template loaded from JSON or YAML
type GridConfig struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Width       int               `json:"width" yaml:"width"`
	Height      int               `json:"height" yaml:"height"`
	Layout      []string          `json:"layout" yaml:"layout"`
	Legend      map[string]string `json:"legend" yaml:"legend"`
}

// GridSnapshot is a detached copy of the grid for rendering and transport
type GridSnapshot struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Cells    [][]Cell   `json:"cells"`
	Source   *Position  `json:"source,omitempty"`
	Target   *Position  `json:"target,omitempty"`
	Path     []Position `json:"path,omitempty"`
	PathCost int        `json:"path_cost,omitempty"`
	Rows     []string   `json:"rows,omitempty"` // compact character view
}

// StepEvent describes a single expansion of the search loop
type StepEvent struct {
	Iteration int      `json:"iteration"`
	Position  Position `json:"position"`
	GCost     int      `json:"g_cost"`
	HCost     int      `json:"h_cost"`
	FCost     int      `json:"f_cost"`
	OpenCount int      `json:"open_count"`
	Closed    int      `json:"closed_count"`
}
