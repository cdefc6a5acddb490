package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/gridpath/grid/engine"
)

// SweepStrategy visits every candidate target cell in row-major order and
// records the A* result from the fixed source to each of them
type SweepStrategy struct {
	width  int
	height int
	source engine.Position
	walls  map[engine.Position]bool

	candidates []engine.Position
	next       int

	results map[engine.Position]*CellResult
}

// CellResult is the outcome of running with the target on one cell
type CellResult struct {
	Reachable bool
	Cost      int
	Length    int
	Expanded  int
}

// Summary aggregates the sweep
type Summary struct {
	Candidates  int
	Reachable   int
	Unreachable int
	Farthest    *engine.Position // highest-cost reachable cell
	MaxCost     int
	Expanded    int // total over all runs
}

func NewSweepStrategy(grid *engine.GridSnapshot) (*SweepStrategy, error) {
	if grid.Source == nil {
		return nil, fmt.Errorf("grid has no source")
	}

	s := &SweepStrategy{
		width:   grid.Width,
		height:  grid.Height,
		source:  *grid.Source,
		walls:   make(map[engine.Position]bool),
		results: make(map[engine.Position]*CellResult),
	}

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			pos := engine.Position{X: x, Y: y}
			switch grid.Cells[y][x].State {
			case engine.Wall:
				s.walls[pos] = true
			case engine.Source:
			default:
				s.candidates = append(s.candidates, pos)
			}
		}
	}

	return s, nil
}

// NextTarget returns the next cell to try, or false when the sweep is done
func (s *SweepStrategy) NextTarget() (engine.Position, bool) {
	if s.next >= len(s.candidates) {
		return engine.Position{}, false
	}
	pos := s.candidates[s.next]
	s.next++
	return pos, true
}

// Record stores the run outcome for a target cell
func (s *SweepStrategy) Record(target engine.Position, r *CellResult) {
	s.results[target] = r
}

// Limit truncates the sweep to the first n candidates
func (s *SweepStrategy) Limit(n int) {
	if n > 0 && n < len(s.candidates) {
		s.candidates = s.candidates[:n]
	}
}

func (s *SweepStrategy) Summary() Summary {
	sum := Summary{Candidates: len(s.candidates)}
	for _, pos := range s.candidates {
		r, ok := s.results[pos]
		if !ok {
			continue
		}
		sum.Expanded += r.Expanded
		if !r.Reachable {
			sum.Unreachable++
			continue
		}
		sum.Reachable++
		if sum.Farthest == nil || r.Cost > sum.MaxCost {
			p := pos
			sum.Farthest = &p
			sum.MaxCost = r.Cost
		}
	}
	return sum
}

// WriteCostMap prints one row per grid row with the path cost to every cell.
// S marks the source, # walls, - unreachable cells and ? cells not swept.
func (s *SweepStrategy) WriteCostMap(w io.Writer) {
	for y := 0; y < s.height; y++ {
		cols := make([]string, s.width)
		for x := 0; x < s.width; x++ {
			pos := engine.Position{X: x, Y: y}
			switch {
			case pos == s.source:
				cols[x] = "S"
			case s.walls[pos]:
				cols[x] = "#"
			case s.results[pos] == nil:
				cols[x] = "?"
			case !s.results[pos].Reachable:
				cols[x] = "-"
			default:
				cols[x] = fmt.Sprintf("%d", s.results[pos].Cost)
			}
		}
		for i, col := range cols {
			cols[i] = fmt.Sprintf("%4s", col)
		}
		fmt.Fprintln(w, strings.Join(cols, ""))
	}
}

// Reset forgets all results so the sweep can start again
func (s *SweepStrategy) Reset() {
	s.next = 0
	s.results = make(map[engine.Position]*CellResult)
}
