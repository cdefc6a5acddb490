package engine

import (
	"fmt"
	"strings"
)

// DefaultLegend maps layout characters to cell states
var DefaultLegend = map[string]string{
	string(EmptyChar):  string(Empty),
	string(WallChar):   string(Wall),
	string(SourceChar): string(Source),
	string(TargetChar): string(Target),
}

// ValidateGridConfig validates a grid template for correctness
func ValidateGridConfig(config *GridConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate dimensions
	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}

	// Validate layout
	if len(config.Layout) != config.Height {
		return fmt.Errorf("config validation: layout must have %d rows to match height, got %d",
			config.Height, len(config.Layout))
	}

	sources, targets := 0, 0
	for i, row := range config.Layout {
		if len(row) != config.Width {
			return fmt.Errorf("config validation: row %d must have %d characters to match width, got %d",
				i+1, config.Width, len(row))
		}

		for j, char := range row {
			switch char {
			case EmptyChar, WallChar:
			case SourceChar:
				sources++
			case TargetChar:
				targets++
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}

	if sources > 1 {
		return fmt.Errorf("config validation: layout may contain at most one source (S), got %d", sources)
	}
	if targets > 1 {
		return fmt.Errorf("config validation: layout may contain at most one target (T), got %d", targets)
	}

	// Validate legend
	for key, expectedValue := range DefaultLegend {
		if value, ok := config.Legend[key]; !ok || value != expectedValue {
			return fmt.Errorf("config validation: legend['%s'] must be '%s', got '%s'", key, expectedValue, value)
		}
	}

	return nil
}

// DefaultGridConfig returns an empty 20x20 template with no endpoints
func DefaultGridConfig() *GridConfig {
	layout := make([]string, DefaultGridSize)
	for i := range layout {
		layout[i] = strings.Repeat(string(EmptyChar), DefaultGridSize)
	}

	legend := make(map[string]string, len(DefaultLegend))
	for k, v := range DefaultLegend {
		legend[k] = v
	}

	return &GridConfig{
		Name:        "default",
		Description: "Empty 20x20 grid",
		Width:       DefaultGridSize,
		Height:      DefaultGridSize,
		Layout:      layout,
		Legend:      legend,
	}
}

// NewEngineFromConfig validates the template and builds an engine from it
func NewEngineFromConfig(config *GridConfig) (*GridEngine, error) {
	e := &GridEngine{}
	if err := e.ApplyConfig(config); err != nil {
		return nil, err
	}
	return e, nil
}

// ApplyConfig replaces the grid with the template's layout
func (e *GridEngine) ApplyConfig(config *GridConfig) error {
	if err := ValidateGridConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	e.allocate(config.Width, config.Height)
	for y, row := range config.Layout {
		for x := 0; x < len(row); x++ {
			p := Position{X: x, Y: y}
			switch row[x] {
			case WallChar:
				e.cells[y][x].State = Wall
			case SourceChar:
				e.source = &p
				e.cells[y][x].State = Source
			case TargetChar:
				e.target = &p
				e.cells[y][x].State = Target
			}
		}
	}
	return nil
}

// ExportConfig captures the current walls and endpoints as a template
func (e *GridEngine) ExportConfig(name, description string) *GridConfig {
	layout := make([]string, e.height)
	for y := range e.cells {
		buf := make([]byte, e.width)
		for x, cell := range e.cells[y] {
			switch cell.State {
			case Wall:
				buf[x] = WallChar
			case Source:
				buf[x] = SourceChar
			case Target:
				buf[x] = TargetChar
			default:
				buf[x] = EmptyChar
			}
		}
		layout[y] = string(buf)
	}

	legend := make(map[string]string, len(DefaultLegend))
	for k, v := range DefaultLegend {
		legend[k] = v
	}

	return &GridConfig{
		Name:        name,
		Description: description,
		Width:       e.width,
		Height:      e.height,
		Layout:      layout,
		Legend:      legend,
	}
}
