// Package api provides HTTP REST API handlers for the grid pathfinder.
//
// The api package implements:
//   - Session management endpoints
//   - Grid editing and search endpoints
//   - Grid template listing, loading and saving
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "maze"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Grid Operations:
//   - GET /api/sessions/{id}/grid - Current grid snapshot
//   - PUT /api/sessions/{id}/grid - Replace the grid (width, height, walls, source, target)
//   - POST /api/sessions/{id}/cells - Edit one cell ({"action": "wall", "x": 3, "y": 1})
//   - POST /api/sessions/{id}/reset - Restore the session's template
//   - POST /api/sessions/{id}/clear - Drop search markings, keep walls and endpoints
//   - GET /api/sessions/{id}/nodes/{x}/{y} - Cell state and search record
//
// Search:
//   - POST /api/sessions/{id}/run - Run A*; ?trace=true streams search_step events
//
// Configuration:
//   - GET /api/configs - List available templates
//   - GET /api/configs/{name} - Load a template
//   - POST /api/configs - Save a template
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket updates for a session
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "invalid configuration: position (9,9) out of bounds"}
//
// Invalid configurations and malformed bodies map to 400, unknown sessions
// and templates to 404, anything else to 500. A run that finds no path is a
// successful response with "found": false.
package api
