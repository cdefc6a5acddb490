package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/gridpath/grid/engine"
	"github.com/wricardo/gridpath/grid/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Pathfinder",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Pathfinder - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each session owns a grid with walls (#), a source (S) and a target (T).
Edit the grid, then run A* to find the cheapest 8-directional path.
Straight steps cost 10, diagonal steps cost 14.

AVAILABLE TOOLS:
- create_session: Create a session from a grid template
- get_session: Get session details
- list_sessions: List all active sessions
- get_grid: Show the grid of a session
- configure_grid: Replace the grid (size, walls, source, target)
- edit_cell: Set one cell to source, target, wall or empty
- reset_grid: Restore the session's template
- run_search: Run A* and report the path
- clear_result: Remove search markings, keep the layout
- describe_cell: Show a cell's state and its g/h/f costs
- list_configs: List available grid templates
- pathfinder_instructions: Legend and usage guide`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func positionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "integer", "description": "Column, 0-based"},
			"y": map[string]interface{}{"type": "integer", "description": "Row, 0-based"},
		},
		"required": []string{"x", "y"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new pathfinding session with optional template selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Template to load, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Grid operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_grid",
		Description: "Show the current grid of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetGrid)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "configure_grid",
		Description: "Replace the grid: dimensions, walls, source and target. Clears any previous result.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"width": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Grid width (%d-%d)", engine.MinGridSize, engine.MaxGridSize),
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Grid height (%d-%d)", engine.MinGridSize, engine.MaxGridSize),
				},
				"walls": map[string]interface{}{
					"type":        "array",
					"items":       positionProperty("Wall cell"),
					"description": "Wall cells",
				},
				"source": positionProperty("Start cell"),
				"target": positionProperty("Goal cell"),
			},
			Required: []string{"session_id", "width", "height", "source", "target"},
		},
	}, c.handleConfigureGrid)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "edit_cell",
		Description: "Change a single cell. Clears any previous result.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{service.ActionSource, service.ActionTarget, service.ActionWall, service.ActionEmpty},
					"description": "What to place at the cell",
				},
				"x": map[string]interface{}{"type": "integer", "description": "Column, 0-based"},
				"y": map[string]interface{}{"type": "integer", "description": "Row, 0-based"},
			},
			Required: []string{"session_id", "action", "x", "y"},
		},
	}, c.handleEditCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_grid",
		Description: "Restore the grid to the session's template",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetGrid)

	// Search
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_search",
		Description: "Run A* from source to target and report the path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"trace": map[string]interface{}{
					"type":        "boolean",
					"description": "Stream every expansion to WebSocket viewers",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunSearch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_result",
		Description: "Remove path and open/closed markings, keeping walls and endpoints",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleClearResult)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get a cell's state and its search costs (g, h, f, predecessor)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x":          map[string]interface{}{"type": "integer", "description": "Column, 0-based"},
				"y":          map[string]interface{}{"type": "integer", "description": "Row, 0-based"},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available grid templates",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pathfinder_instructions",
		Description: "Get the grid legend, cost model and usage guide",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handlePathfinderInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, never nil
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	v, ok := args[key].(float64)
	return int(v), ok
}

// positionArg reads an {x, y} object argument
func positionArg(v interface{}) (engine.Position, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return engine.Position{}, false
	}
	x, okX := intArg(obj, "x")
	y, okY := intArg(obj, "y")
	return engine.Position{X: x, Y: y}, okX && okY
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGrid(session.Grid))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		size := ""
		if s.Grid != nil {
			size = fmt.Sprintf(", Grid: %dx%d", s.Grid.Width, s.Grid.Height)
		}
		result += fmt.Sprintf("- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, size, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGetGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var grid engine.GridSnapshot
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/grid", sessionID), nil, &grid)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGrid(&grid)), nil
}

func (c *Client) handleConfigureGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	width, okW := intArg(args, "width")
	height, okH := intArg(args, "height")
	if !okW || !okH {
		return mcp.NewToolResultError("width and height are required integers"), nil
	}

	source, ok := positionArg(args["source"])
	if !ok {
		return mcp.NewToolResultError("source must be an object with integer x and y"), nil
	}
	target, ok := positionArg(args["target"])
	if !ok {
		return mcp.NewToolResultError("target must be an object with integer x and y"), nil
	}

	wallsRaw, _ := args["walls"].([]interface{})
	walls := make([]engine.Position, 0, len(wallsRaw))
	for i, w := range wallsRaw {
		p, ok := positionArg(w)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("walls[%d] must be an object with integer x and y", i)), nil
		}
		walls = append(walls, p)
	}

	body := service.ConfigureRequest{
		Width:  width,
		Height: height,
		Walls:  walls,
		Source: source,
		Target: target,
	}

	var grid engine.GridSnapshot
	err := c.apiCall("PUT", fmt.Sprintf("/api/sessions/%s/grid", sessionID), body, &grid)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Grid configured\n\n" + formatGrid(&grid)), nil
}

func (c *Client) handleEditCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	action, _ := args["action"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	body := service.CellEdit{Action: action, X: x, Y: y}

	var grid engine.GridSnapshot
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/cells", sessionID), body, &grid)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Set (%d,%d) to %s\n\n%s", x, y, action, formatGrid(&grid))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleResetGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string               `json:"message"`
		Grid    *engine.GridSnapshot `json:"grid"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGrid(response.Grid))), nil
}

func (c *Client) handleClearResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string               `json:"message"`
		Grid    *engine.GridSnapshot `json:"grid"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/clear", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGrid(response.Grid))), nil
}

func (c *Client) handleRunSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	trace, _ := args["trace"].(bool)

	path := fmt.Sprintf("/api/sessions/%s/run", sessionID)
	if trace {
		path += "?trace=true"
	}

	var result service.RunResult
	err := c.apiCall("POST", path, nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var info service.NodeInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/nodes/%d/%d", sessionID, x, y), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatNodeInfo(&info)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Templates:\n\n"
	for _, config := range configs {
		endpoints := "source+target"
		switch {
		case !config.HasSource && !config.HasTarget:
			endpoints = "no endpoints"
		case !config.HasSource:
			endpoints = "target only"
		case !config.HasTarget:
			endpoints = "source only"
		}
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Grid: %dx%d, %s\n\n",
			config.Name, config.ConfigID, config.Description, config.Width, config.Height, endpoints)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePathfinderInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Grid Pathfinder - Instructions

GOAL:
Find the cheapest path from the source (S) to the target (T) around walls (#).

GRID LEGEND:
  S  source
  T  target
  #  wall, impassable
  .  empty
  *  cell on the found path
  o  open: discovered but not expanded
  x  closed: expanded

COORDINATES:
x is the column, y is the row, both 0-based from the top-left corner.

MOVEMENT AND COST:
• 8 directions: horizontal, vertical and diagonal
• Straight step costs 10, diagonal step costs 14
• Diagonals may pass between two walls that touch at a corner
• Heuristic: octile distance, 14*min(dx,dy) + 10*(max(dx,dy)-min(dx,dy))

NODE COSTS (describe_cell):
• g: cost from the source along the best known route
• h: heuristic estimate to the target
• f: g + h, the value A* orders by
• predecessor: the cell g was reached from

TYPICAL WORKFLOW:
1. list_configs, then create_session with a config_id
2. get_grid to look at the layout
3. edit_cell or configure_grid to change it
4. run_search to find the path
5. describe_cell to inspect costs along the way
6. clear_result or reset_grid to start over

NOTES:
• A successful edit clears the previous result
• A grid with no route returns found=false; that is not an error
• Templates without a source or target must be edited before run_search`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339),
		session.LastAccessedAt.Format(time.RFC3339),
		formatGrid(session.Grid))
}

// formatGrid renders the character view with column and row rulers
func formatGrid(grid *engine.GridSnapshot) string {
	if grid == nil {
		return "Grid: unavailable"
	}

	rows := grid.Rows
	if len(rows) == 0 && len(grid.Cells) > 0 {
		rows = engine.RenderRows(grid.Cells)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grid: %dx%d\n", grid.Width, grid.Height)
	if grid.Source != nil {
		fmt.Fprintf(&b, "Source: (%d,%d)\n", grid.Source.X, grid.Source.Y)
	} else {
		b.WriteString("Source: not set\n")
	}
	if grid.Target != nil {
		fmt.Fprintf(&b, "Target: (%d,%d)\n", grid.Target.X, grid.Target.Y)
	} else {
		b.WriteString("Target: not set\n")
	}
	if len(grid.Path) > 0 {
		fmt.Fprintf(&b, "Path: %d cells, cost %d\n", len(grid.Path), grid.PathCost)
	}
	b.WriteString("\n")

	// Column ruler, last digit of x
	b.WriteString("    ")
	for x := 0; x < grid.Width; x++ {
		b.WriteByte(byte('0' + x%10))
	}
	b.WriteString("\n")
	for y, row := range rows {
		fmt.Fprintf(&b, "%3d %s\n", y, row)
	}
	return b.String()
}

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder
	if result.Found {
		fmt.Fprintf(&b, "✓ Path found (run %s)\n", result.RunID)
		fmt.Fprintf(&b, "Cost: %d\nLength: %d cells\n", result.Cost, result.PathLength)
	} else {
		fmt.Fprintf(&b, "✗ No path (run %s)\n", result.RunID)
	}
	fmt.Fprintf(&b, "Nodes expanded: %d\nDuration: %.3fms\n", result.Expanded, result.DurationMS)
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}

	if len(result.Path) > 0 {
		steps := make([]string, len(result.Path))
		for i, p := range result.Path {
			steps[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
		}
		fmt.Fprintf(&b, "Route: %s\n", strings.Join(steps, " → "))
	}

	b.WriteString("\n")
	b.WriteString(formatGrid(result.Grid))
	return b.String()
}

func formatNodeInfo(info *service.NodeInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell at position (%d, %d):\n", info.Position.X, info.Position.Y)
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "Character: %c\n", engine.StateChar(info.State))
	fmt.Fprintf(&b, "State: %s\n", info.State)
	fmt.Fprintf(&b, "Passable: %v\n", info.State != engine.Wall)

	if info.Node == nil {
		b.WriteString("\nNot reached by the last search.\n")
		return b.String()
	}

	n := info.Node
	fmt.Fprintf(&b, "\ng: %d\nh: %d\nf: %d\n", n.GCost, n.HCost, n.FCost)
	fmt.Fprintf(&b, "Closed: %v\n", n.Closed)
	if n.Predecessor != nil {
		fmt.Fprintf(&b, "Predecessor: (%d,%d)\n", n.Predecessor.X, n.Predecessor.Y)
	} else {
		b.WriteString("Predecessor: none\n")
	}
	fmt.Fprintf(&b, "Discovered: #%d\n", n.Order)
	return b.String()
}
