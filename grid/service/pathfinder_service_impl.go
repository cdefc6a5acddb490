package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/gridpath/grid/engine"
)

// pathfinderServiceImpl implements the PathfinderService interface
type pathfinderServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewPathfinderService creates a new pathfinder service instance
func NewPathfinderService(sessions SessionManager, configs ConfigManager) PathfinderService {
	return &pathfinderServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given template name, used for consistent API responses
func (s *pathfinderServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *pathfinderServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Grid:           sess.Engine.Snapshot(),
	}
}

// lookup fetches a session and refreshes its access time. Callers hold s.mu.Lock.
func (s *pathfinderServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new session from a named template, or the default one
func (s *pathfinderServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GridConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s': %w. Available configs: %v", configName, ErrConfigNotFound, configIDs)
				}
				return nil, fmt.Errorf("config '%s': %w. Use /api/configs to list available configurations", configName, ErrConfigNotFound)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information
func (s *pathfinderServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *pathfinderServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *pathfinderServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		return err
	}
	return nil
}

// GetGrid returns a snapshot of the session's grid
func (s *pathfinderServiceImpl) GetGrid(ctx context.Context, sessionID string) (*engine.GridSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// ConfigureGrid replaces the session's grid with the given dimensions, walls and endpoints
func (s *pathfinderServiceImpl) ConfigureGrid(ctx context.Context, sessionID string, req ConfigureRequest) (*engine.GridSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.Configure(req.Width, req.Height, req.Walls, req.Source, req.Target); err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// EditCell applies a single cell edit. A successful edit clears any previous search result.
func (s *pathfinderServiceImpl) EditCell(ctx context.Context, sessionID string, edit CellEdit) (*engine.GridSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	p := engine.Position{X: edit.X, Y: edit.Y}
	eng := sess.Engine
	switch strings.ToLower(edit.Action) {
	case ActionSource:
		err = eng.SetSource(p)
	case ActionTarget:
		err = eng.SetTarget(p)
	case ActionWall:
		err = eng.SetWall(p)
	case ActionEmpty:
		err = eng.SetEmpty(p)
	default:
		err = fmt.Errorf("%w: unknown cell action %q (use source, target, wall or empty)", engine.ErrInvalidConfiguration, edit.Action)
	}
	if err != nil {
		return nil, err
	}

	eng.ClearResult()
	return eng.Snapshot(), nil
}

// ClearResult removes search output from the session's grid
func (s *pathfinderServiceImpl) ClearResult(ctx context.Context, sessionID string) (*engine.GridSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.ClearResult()
	return sess.Engine.Snapshot(), nil
}

// ResetGrid restores the grid from the template the session was created with
func (s *pathfinderServiceImpl) ResetGrid(ctx context.Context, sessionID string) (*engine.GridSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.ApplyConfig(sess.Config); err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// GetNode returns the cell classification and search record at p
func (s *pathfinderServiceImpl) GetNode(ctx context.Context, sessionID string, p engine.Position) (*NodeInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Engine.CellAt(p)
	if err != nil {
		return nil, err
	}

	info := &NodeInfo{Position: p, State: state}
	if n, ok := sess.Engine.Node(p); ok {
		node := *n
		info.Node = &node
	}
	return info, nil
}

// Run executes a search on the session's grid. A missing path is reported
// through RunResult.Found, not as an error.
func (s *pathfinderServiceImpl) Run(ctx context.Context, sessionID string, opts RunOptions) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	eng := sess.Engine
	eng.SetObserver(opts.Observer)
	defer eng.SetObserver(nil)

	start := time.Now()
	path, err := eng.Run()
	elapsed := time.Since(start)

	result := &RunResult{
		RunID:      uuid.New().String(),
		Expanded:   len(eng.Expanded()),
		DurationMS: float64(elapsed.Microseconds()) / 1000,
	}

	switch {
	case err == nil:
		result.Found = true
		result.Path = path
		result.Cost = eng.PathCost()
		result.PathLength = len(path)
		result.Message = fmt.Sprintf("Path found: %d cells, cost %d, %d nodes expanded", len(path), result.Cost, result.Expanded)
	case errors.Is(err, engine.ErrPathNotFound):
		result.Message = "Cannot find a path"
	default:
		return nil, err
	}

	result.Grid = eng.Snapshot()
	return result, nil
}

// ListConfigs returns all available grid templates
func (s *pathfinderServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a grid template by name
func (s *pathfinderServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GridConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig stores a grid template
func (s *pathfinderServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GridConfig) error {
	return s.configs.SaveConfig(configName, config)
}
