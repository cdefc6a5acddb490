package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// Run executes one full A* search from the source to the target.
// On success it returns the inclusive source-to-target path and marks the
// intermediate cells as Path. When the open set runs dry it returns ErrPathNotFound;
// the grid then shows every explored cell as Open or Closed.
func (e *GridEngine) Run() ([]Position, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source is not set", ErrInvalidConfiguration)
	}
	if e.target == nil {
		return nil, fmt.Errorf("%w: target is not set", ErrInvalidConfiguration)
	}

	e.ClearResult()

	src, tgt := *e.source, *e.target
	start := e.discover(src, 0, nil)
	e.open = append(e.open, start)

	for len(e.open) > 0 {
		// Stable: equal f-costs keep their current relative order
		slices.SortStableFunc(e.open, func(a, b *Node) int {
			return cmp.Compare(a.FCost, b.FCost)
		})

		current := e.open[0]
		e.open = e.open[1:]
		current.Closed = true
		e.closed = append(e.closed, current)
		if cell := &e.cells[current.Position.Y][current.Position.X]; cell.State == Open {
			cell.State = Closed
		}
		e.expanded = append(e.expanded, current.Position)

		found := e.expand(current, tgt)
		e.notify(current)

		if found {
			e.path = e.reconstruct(src, tgt)
			return e.LastPath(), nil
		}
	}

	return nil, ErrPathNotFound
}

// expand visits the eight neighbours of current, row by row.
// It reports true as soon as the target is reached.
func (e *GridEngine) expand(current *Node, target Position) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}

			p := Position{X: current.Position.X + dx, Y: current.Position.Y + dy}
			if !e.InBounds(p) {
				continue
			}

			cell := &e.cells[p.Y][p.X]
			if cell.State == Wall {
				continue
			}

			g := current.GCost + StepCost(dx, dy)
			pred := current.Position

			if p == target {
				cell.Node = &Node{
					Position:    p,
					GCost:       g,
					FCost:       g,
					Predecessor: &pred,
					Order:       e.seq,
				}
				e.seq++
				return true
			}

			if cell.Node == nil {
				n := e.discover(p, g, &pred)
				e.open = append(e.open, n)
				cell.State = Open
				continue
			}

			n := cell.Node
			if n.Closed {
				continue
			}

			// Relaxation: open nodes only, strictly better paths only
			if g < n.GCost {
				n.GCost = g
				n.FCost = g + n.HCost
				n.Predecessor = &pred
			}
		}
	}
	return false
}

// discover creates the node for p and attaches it to its cell
func (e *GridEngine) discover(p Position, g int, pred *Position) *Node {
	h := Heuristic(p, *e.target)
	n := &Node{
		Position:    p,
		GCost:       g,
		HCost:       h,
		FCost:       g + h,
		Predecessor: pred,
		Order:       e.seq,
	}
	e.seq++
	e.cells[p.Y][p.X].Node = n
	return n
}

// reconstruct walks predecessor links from the target back to the source
func (e *GridEngine) reconstruct(source, target Position) []Position {
	path := []Position{target}
	p := target
	for p != source {
		n := e.cells[p.Y][p.X].Node
		if n == nil || n.Predecessor == nil {
			break
		}
		p = *n.Predecessor
		if p != source {
			e.cells[p.Y][p.X].State = Path
		}
		path = append(path, p)
	}

	slices.Reverse(path)
	return path
}

func (e *GridEngine) notify(current *Node) {
	if e.observer == nil {
		return
	}
	e.observer(StepEvent{
		Iteration: len(e.expanded),
		Position:  current.Position,
		GCost:     current.GCost,
		HCost:     current.HCost,
		FCost:     current.FCost,
		OpenCount: len(e.open),
		Closed:    len(e.closed),
	})
}
