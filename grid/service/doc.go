// Package service provides the business logic layer for the grid pathfinder.
//
// The service package implements:
//   - Multi-session grid management
//   - Cell editing and wholesale grid configuration
//   - Search runs with optional per-step observation
//   - Grid template listing, loading and saving
//
// Core Interfaces:
//
// PathfinderService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and stores grid templates.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the search engine. All engine access goes through the service mutex, so a
// session's grid is never edited while a search on it is in progress.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewPathfinderService(sessionMgr, configMgr)
//
//	info, err := svc.CreateSession(ctx, "maze")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Run(ctx, info.ID, service.RunOptions{})
//	if err == nil && !result.Found {
//		fmt.Println(result.Message)
//	}
//
// Errors:
//
// ErrSessionNotFound and ErrConfigNotFound are wrapped with context and can be
// matched with errors.Is. Invalid input is reported as
// engine.ErrInvalidConfiguration. A search that finds no path is not an error.
package service
