package engine

// Heuristic returns the octile distance between two positions scaled by the
// integer step costs
func Heuristic(from, to Position) int {
	dx := abs(from.X - to.X)
	dy := abs(from.Y - to.Y)
	lo, hi := min(dx, dy), max(dx, dy)
	return (hi-lo)*StraightCost + lo*DiagonalCost
}

// StepCost returns the cost of moving by (dx, dy) to an adjacent cell
func StepCost(dx, dy int) int {
	if dx == 0 || dy == 0 {
		return StraightCost
	}
	return DiagonalCost
}

// PathStepCost sums the step costs along a path of adjacent positions
func PathStepCost(path []Position) int {
	total := 0
	for i := 1; i < len(path); i++ {
		total += StepCost(path[i].X-path[i-1].X, path[i].Y-path[i-1].Y)
	}
	return total
}

// CountCellState counts the cells in the given state
func CountCellState(cells [][]Cell, state CellState) int {
	count := 0
	for _, row := range cells {
		for _, cell := range row {
			if cell.State == state {
				count++
			}
		}
	}
	return count
}

// StateChar maps a cell state to its single-character display form
func StateChar(state CellState) byte {
	switch state {
	case Source:
		return SourceChar
	case Target:
		return TargetChar
	case Wall:
		return WallChar
	case Path:
		return '*'
	case Open:
		return 'o'
	case Closed:
		return 'x'
	default:
		return EmptyChar
	}
}

// RenderRows renders cells as one string per row using StateChar
func RenderRows(cells [][]Cell) []string {
	rows := make([]string, len(cells))
	for y, row := range cells {
		buf := make([]byte, len(row))
		for x, cell := range row {
			buf[x] = StateChar(cell.State)
		}
		rows[y] = string(buf)
	}
	return rows
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
