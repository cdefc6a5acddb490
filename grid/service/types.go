package service

import (
	"time"

	"github.com/wricardo/gridpath/grid/engine"
)

// Cell edit actions accepted by EditCell
const (
	ActionSource = "source"
	ActionTarget = "target"
	ActionWall   = "wall"
	ActionEmpty  = "empty"
)

// SessionInfo provides information about a pathfinding session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	Grid           *engine.GridSnapshot `json:"grid"`
}

// ConfigureRequest replaces a session's grid wholesale
type ConfigureRequest struct {
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Walls  []engine.Position `json:"walls"`
	Source engine.Position   `json:"source"`
	Target engine.Position   `json:"target"`
}

// CellEdit changes the classification of a single cell
type CellEdit struct {
	Action string `json:"action"` // source|target|wall|empty
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// RunOptions configures a search run
type RunOptions struct {
	// Observer receives one event per expansion. Optional.
	Observer func(engine.StepEvent) `json:"-"`
}

// RunResult contains the outcome of a search run
type RunResult struct {
	RunID      string               `json:"run_id"`
	Found      bool                 `json:"found"`
	Path       []engine.Position    `json:"path,omitempty"`
	Cost       int                  `json:"cost"`
	PathLength int                  `json:"path_length"`
	Expanded   int                  `json:"expanded"`
	Message    string               `json:"message"`
	Grid       *engine.GridSnapshot `json:"grid"`
	DurationMS float64              `json:"duration_ms"`
}

// NodeInfo describes a single cell together with its search record
type NodeInfo struct {
	Position engine.Position  `json:"position"`
	State    engine.CellState `json:"state"`
	Node     *engine.Node     `json:"node,omitempty"`
}

// ConfigInfo provides information about a grid template
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	HasSource   bool   `json:"has_source"`
	HasTarget   bool   `json:"has_target"`
}
