// Package mcp provides a Model Context Protocol server for the grid pathfinder.
//
// The MCP server is a thin client: every tool call is translated into a REST
// request against a running API server, so MCP agents and browser viewers see
// the same sessions.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - get_grid, configure_grid, edit_cell, reset_grid: grid editing
//   - run_search, clear_result: A* search
//   - describe_cell: a cell's state and its g/h/f costs
//   - list_configs: available grid templates
//   - pathfinder_instructions: legend, cost model and workflow
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: server.NewStreamableHTTPServer(client.GetMCPServer()) mounted at /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
//
// API failures are returned as tool errors rather than protocol errors.
package mcp
