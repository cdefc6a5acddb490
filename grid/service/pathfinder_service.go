package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/gridpath/grid/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// PathfinderService defines all pathfinding operations
type PathfinderService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Grid Operations
	GetGrid(ctx context.Context, sessionID string) (*engine.GridSnapshot, error)
	ConfigureGrid(ctx context.Context, sessionID string, req ConfigureRequest) (*engine.GridSnapshot, error)
	EditCell(ctx context.Context, sessionID string, edit CellEdit) (*engine.GridSnapshot, error)
	ClearResult(ctx context.Context, sessionID string) (*engine.GridSnapshot, error)
	ResetGrid(ctx context.Context, sessionID string) (*engine.GridSnapshot, error)
	GetNode(ctx context.Context, sessionID string, p engine.Position) (*NodeInfo, error)

	// Search
	Run(ctx context.Context, sessionID string, opts RunOptions) (*RunResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GridConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GridConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GridConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GridConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles grid template loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GridConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GridConfig
	SaveConfig(name string, config *engine.GridConfig) error
}

// Session represents an active pathfinding session
type Session struct {
	ID             string
	Engine         *engine.GridEngine
	Config         *engine.GridConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
