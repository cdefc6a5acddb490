package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/gridpath/grid/engine"
	"github.com/wricardo/gridpath/grid/service"
	"github.com/wricardo/gridpath/grid/session"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GridConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngineFromConfig(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GridConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GridConfig
	saved   map[string]*engine.GridConfig
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := &engine.GridConfig{
		Name:        "test",
		Description: "Test grid",
		Width:       5,
		Height:      5,
		Layout: []string{
			"S..#.",
			"...#.",
			"...#.",
			".....",
			"....T",
		},
		Legend: map[string]string{
			".": "empty",
			"#": "wall",
			"S": "source",
			"T": "target",
		},
	}

	blocked := &engine.GridConfig{
		Name:        "blocked",
		Description: "Target sealed off",
		Width:       4,
		Height:      3,
		Layout: []string{
			"S.#.",
			"..#T",
			"..#.",
		},
		Legend: defaultConfig.Legend,
	}

	return &MockConfigManager{
		configs: map[string]*engine.GridConfig{
			"test":    defaultConfig,
			"default": defaultConfig,
			"blocked": blocked,
		},
		saved: make(map[string]*engine.GridConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GridConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Width:       config.Width,
			Height:      config.Height,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GridConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GridConfig) error {
	if err := engine.ValidateGridConfig(config); err != nil {
		return fmt.Errorf("%w: %v", engine.ErrInvalidConfiguration, err)
	}
	m.saved[name] = config
	return nil
}

func newTestService(t *testing.T) (service.PathfinderService, string) {
	t.Helper()
	svc := service.NewPathfinderService(NewMockSessionManager(), NewMockConfigManager())
	info, err := svc.CreateSession(context.Background(), "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return svc, info.ID
}

// Test cases
func TestPathfinderService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewPathfinderService(NewMockSessionManager(), NewMockConfigManager())

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantErr:    false,
		},
		{
			name:       "create with specific config",
			configName: "blocked",
			wantErr:    false,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("Expected ErrConfigNotFound, got %v", err)
				}
				return
			}
			if session == nil || session.Grid == nil {
				t.Fatal("CreateSession() returned nil session or grid")
			}
			if tt.configName != "" && session.ConfigName != tt.configName {
				t.Errorf("Expected config name %q, got %q", tt.configName, session.ConfigName)
			}
		})
	}
}

func TestPathfinderService_Run(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	var events []engine.StepEvent
	result, err := svc.Run(ctx, id, service.RunOptions{
		Observer: func(ev engine.StepEvent) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Found {
		t.Fatalf("Expected a path, got message %q", result.Message)
	}
	if _, err := uuid.Parse(result.RunID); err != nil {
		t.Errorf("Expected a UUID run id, got %q", result.RunID)
	}
	if result.PathLength != len(result.Path) {
		t.Errorf("Path length %d does not match path %v", result.PathLength, result.Path)
	}
	if result.Cost != engine.PathStepCost(result.Path) {
		t.Errorf("Expected cost %d, got %d", engine.PathStepCost(result.Path), result.Cost)
	}
	if result.Cost != engine.Heuristic(engine.Position{X: 0, Y: 0}, engine.Position{X: 4, Y: 4}) {
		t.Errorf("Expected the diagonal to stay open, got cost %d", result.Cost)
	}
	if len(events) != result.Expanded || result.Expanded == 0 {
		t.Errorf("Expected %d step events, got %d", result.Expanded, len(events))
	}
	if result.Grid == nil || engine.CountCellState(result.Grid.Cells, engine.Path) != len(result.Path)-2 {
		t.Error("Expected the grid snapshot to show the path")
	}

	second, err := svc.Run(ctx, id, service.RunOptions{})
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if second.RunID == result.RunID {
		t.Error("Expected a fresh run id for every run")
	}
	if second.Cost != result.Cost {
		t.Errorf("Expected repeated runs to agree, got %d and %d", result.Cost, second.Cost)
	}
}

func TestPathfinderService_RunNoPath(t *testing.T) {
	ctx := context.Background()
	svc := service.NewPathfinderService(NewMockSessionManager(), NewMockConfigManager())
	info, err := svc.CreateSession(ctx, "blocked")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	result, err := svc.Run(ctx, info.ID, service.RunOptions{})
	if err != nil {
		t.Fatalf("Expected no error for a missing path, got %v", err)
	}
	if result.Found || len(result.Path) != 0 {
		t.Errorf("Expected no path, got %v", result.Path)
	}
	if result.Message != "Cannot find a path" {
		t.Errorf("Expected message %q, got %q", "Cannot find a path", result.Message)
	}
	if engine.CountCellState(result.Grid.Cells, engine.Closed) == 0 {
		t.Error("Expected explored cells to be visible")
	}
}

func TestPathfinderService_RunErrors(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	if _, err := svc.Run(ctx, "missing", service.RunOptions{}); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	if _, err := svc.EditCell(ctx, id, service.CellEdit{Action: "empty", X: 4, Y: 4}); err != nil {
		t.Fatalf("EditCell failed: %v", err)
	}
	if _, err := svc.Run(ctx, id, service.RunOptions{}); !errors.Is(err, engine.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration without a target, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := svc.Run(cancelled, id, service.RunOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestPathfinderService_EditCell(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	if _, err := svc.Run(ctx, id, service.RunOptions{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tests := []struct {
		name    string
		edit    service.CellEdit
		want    engine.CellState
		wantErr bool
	}{
		{"wall", service.CellEdit{Action: "wall", X: 1, Y: 1}, engine.Wall, false},
		{"empty", service.CellEdit{Action: "empty", X: 2, Y: 1}, engine.Empty, false},
		{"source", service.CellEdit{Action: "source", X: 0, Y: 4}, engine.Source, false},
		{"target upper case", service.CellEdit{Action: "TARGET", X: 4, Y: 0}, engine.Target, false},
		{"unknown action", service.CellEdit{Action: "lava", X: 1, Y: 1}, "", true},
		{"out of bounds", service.CellEdit{Action: "wall", X: 9, Y: 0}, "", true},
		{"target on source", service.CellEdit{Action: "target", X: 0, Y: 4}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := svc.EditCell(ctx, id, tt.edit)
			if tt.wantErr {
				if !errors.Is(err, engine.ErrInvalidConfiguration) {
					t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EditCell failed: %v", err)
			}
			if got := grid.Cells[tt.edit.Y][tt.edit.X].State; got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
			if engine.CountCellState(grid.Cells, engine.Path) != 0 {
				t.Error("Expected edits to clear the previous result")
			}
		})
	}
}

func TestPathfinderService_RejectedEditKeepsResult(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	result, err := svc.Run(ctx, id, service.RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rejected := []service.CellEdit{
		{Action: "source", X: 4, Y: 4},
		{Action: "target", X: 0, Y: 0},
		{Action: "wall", X: 5, Y: 0},
		{Action: "lava", X: 1, Y: 1},
	}
	for _, edit := range rejected {
		if _, err := svc.EditCell(ctx, id, edit); !errors.Is(err, engine.ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration for %+v, got %v", edit, err)
		}
	}

	grid, err := svc.GetGrid(ctx, id)
	if err != nil {
		t.Fatalf("GetGrid failed: %v", err)
	}
	if n := engine.CountCellState(grid.Cells, engine.Path); n != len(result.Path)-2 {
		t.Errorf("Expected rejected edits to keep %d path cells, got %d", len(result.Path)-2, n)
	}
	if grid.PathCost != result.Cost {
		t.Errorf("Expected path cost %d to survive, got %d", result.Cost, grid.PathCost)
	}
}

func TestPathfinderService_ConcurrentReads(t *testing.T) {
	ctx := context.Background()
	svc := service.NewPathfinderService(session.NewManager(), NewMockConfigManager())
	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 200)

	for i := 0; i < 50; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			if _, err := svc.GetSession(ctx, info.ID); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.GetGrid(ctx, info.ID); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.ListSessions(ctx); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.GetNode(ctx, info.ID, engine.Position{X: 0, Y: 0}); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
}

func TestPathfinderService_ConfigureAndReset(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	grid, err := svc.ConfigureGrid(ctx, id, service.ConfigureRequest{
		Width:  8,
		Height: 3,
		Walls:  []engine.Position{{X: 4, Y: 0}, {X: 4, Y: 1}},
		Source: engine.Position{X: 0, Y: 0},
		Target: engine.Position{X: 7, Y: 0},
	})
	if err != nil {
		t.Fatalf("ConfigureGrid failed: %v", err)
	}
	if grid.Width != 8 || grid.Height != 3 {
		t.Errorf("Expected 8x3 grid, got %dx%d", grid.Width, grid.Height)
	}

	_, err = svc.ConfigureGrid(ctx, id, service.ConfigureRequest{
		Width: 3, Height: 3,
		Source: engine.Position{X: 1, Y: 1},
		Target: engine.Position{X: 1, Y: 1},
	})
	if !errors.Is(err, engine.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}

	grid, err = svc.ResetGrid(ctx, id)
	if err != nil {
		t.Fatalf("ResetGrid failed: %v", err)
	}
	if grid.Width != 5 || grid.Height != 5 || grid.Rows[2] != "...#." {
		t.Errorf("Expected the template grid back, got %v", grid.Rows)
	}
}

func TestPathfinderService_GetNode(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	info, err := svc.GetNode(ctx, id, engine.Position{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if info.Node != nil {
		t.Error("Expected no node before a run")
	}

	if _, err := svc.Run(ctx, id, service.RunOptions{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	info, err = svc.GetNode(ctx, id, engine.Position{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if info.Node == nil || info.Node.GCost != engine.DiagonalCost {
		t.Errorf("Expected node with g=%d, got %+v", engine.DiagonalCost, info.Node)
	}
	if info.State != engine.Path {
		t.Errorf("Expected path cell, got %s", info.State)
	}

	if _, err := svc.GetNode(ctx, id, engine.Position{X: -1, Y: 0}); !errors.Is(err, engine.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestPathfinderService_ClearResult(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	if _, err := svc.Run(ctx, id, service.RunOptions{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	grid, err := svc.ClearResult(ctx, id)
	if err != nil {
		t.Fatalf("ClearResult failed: %v", err)
	}
	for _, state := range []engine.CellState{engine.Open, engine.Closed, engine.Path} {
		if n := engine.CountCellState(grid.Cells, state); n != 0 {
			t.Errorf("Expected no %s cells, got %d", state, n)
		}
	}
	if engine.CountCellState(grid.Cells, engine.Wall) != 3 {
		t.Error("Expected walls to survive")
	}
}

func TestPathfinderService_ListAndDeleteSessions(t *testing.T) {
	ctx := context.Background()
	svc := service.NewPathfinderService(NewMockSessionManager(), NewMockConfigManager())

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession(ctx, ""); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}

	if err := svc.DeleteSession(ctx, sessions[0].ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, sessions[0].ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.DeleteSession(ctx, sessions[0].ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestPathfinderService_Configs(t *testing.T) {
	ctx := context.Background()
	configs := NewMockConfigManager()
	svc := service.NewPathfinderService(NewMockSessionManager(), configs)

	list, err := svc.ListConfigs(ctx)
	if err != nil || len(list) != 3 {
		t.Fatalf("Expected 3 configs, got %d (%v)", len(list), err)
	}

	cfg, err := svc.LoadConfig(ctx, "blocked")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := svc.SaveConfig(ctx, "copy", cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if configs.saved["copy"] != cfg {
		t.Error("Expected config to reach the config manager")
	}

	if err := svc.SaveConfig(ctx, "bad", &engine.GridConfig{Name: "bad"}); !errors.Is(err, engine.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
}
