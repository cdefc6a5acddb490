package engine

import (
	"reflect"
	"testing"
)

func TestHeuristic(t *testing.T) {
	tests := []struct {
		from, to Position
		want     int
	}{
		{Position{X: 0, Y: 0}, Position{X: 0, Y: 0}, 0},
		{Position{X: 0, Y: 0}, Position{X: 3, Y: 0}, 30},
		{Position{X: 0, Y: 0}, Position{X: 0, Y: 3}, 30},
		{Position{X: 0, Y: 0}, Position{X: 3, Y: 3}, 42},
		{Position{X: 2, Y: 1}, Position{X: 5, Y: 5}, 52},
		{Position{X: 5, Y: 5}, Position{X: 2, Y: 1}, 52},
		{Position{X: 0, Y: 0}, Position{X: 1, Y: 1}, DiagonalCost},
		{Position{X: 4, Y: 2}, Position{X: 3, Y: 2}, StraightCost},
	}

	for _, tt := range tests {
		if got := Heuristic(tt.from, tt.to); got != tt.want {
			t.Errorf("Heuristic(%v, %v) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestHeuristic_Consistent(t *testing.T) {
	target := Position{X: 6, Y: 3}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			p := Position{X: x, Y: y}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					n := Position{X: x + dx, Y: y + dy}
					if Heuristic(p, target) > StepCost(dx, dy)+Heuristic(n, target) {
						t.Fatalf("Heuristic is not consistent between %v and %v", p, n)
					}
				}
			}
		}
	}
}

func TestStepCost(t *testing.T) {
	if StepCost(1, 0) != 10 || StepCost(0, -1) != 10 {
		t.Error("Expected straight steps to cost 10")
	}
	if StepCost(1, 1) != 14 || StepCost(-1, 1) != 14 {
		t.Error("Expected diagonal steps to cost 14")
	}
}

func TestPathStepCost(t *testing.T) {
	path := []Position{{0, 0}, {1, 1}, {2, 1}, {2, 2}}
	if got := PathStepCost(path); got != 34 {
		t.Errorf("Expected 34, got %d", got)
	}
	if got := PathStepCost(nil); got != 0 {
		t.Errorf("Expected 0 for empty path, got %d", got)
	}
}

func TestRenderRows(t *testing.T) {
	cells := [][]Cell{
		{{State: Source}, {State: Path}, {State: Wall}},
		{{State: Open}, {State: Closed}, {State: Target}},
		{{State: Empty}, {State: Empty}, {State: Empty}},
	}

	expected := []string{"S*#", "oxT", "..."}
	if got := RenderRows(cells); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if CountCellState(cells, Empty) != 3 {
		t.Errorf("Expected 3 empty cells, got %d", CountCellState(cells, Empty))
	}
}
