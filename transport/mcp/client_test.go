package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/gridpath/grid/engine"
	"github.com/wricardo/gridpath/grid/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content, got none")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func testGrid() *engine.GridSnapshot {
	return &engine.GridSnapshot{
		Width:    3,
		Height:   2,
		Source:   &engine.Position{X: 0, Y: 0},
		Target:   &engine.Position{X: 2, Y: 1},
		Path:     []engine.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}},
		PathCost: 24,
		Rows:     []string{"S*.", "..T"},
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "test-session"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api/sessions/test-session", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != "test-session" {
		t.Errorf("Expected id test-session, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall("GET", "/health", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"Plain error", http.StatusInternalServerError, "Internal Server Error", "API error: 500"},
		{"JSON error", http.StatusBadRequest, `{"error":"invalid configuration: source (9,9) is out of bounds"}`, "source (9,9) is out of bounds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall("GET", "/api/sessions", nil, nil)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected %q in error, got: %v", tt.expected, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "maze" {
			t.Errorf("Expected config_id maze, got %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "maze",
			Grid:       testGrid(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(),
		callRequest("create_session", map[string]interface{}{"config_id": "maze"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"test-session-123", "Config: maze", "S*."} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_configureGrid(t *testing.T) {
	var received service.ConfigureRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/api/sessions/s1/grid" {
			t.Errorf("Expected PUT /api/sessions/s1/grid, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(testGrid())
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	args := map[string]interface{}{
		"session_id": "s1",
		"width":      float64(5),
		"height":     float64(4),
		"walls": []interface{}{
			map[string]interface{}{"x": float64(2), "y": float64(1)},
			map[string]interface{}{"x": float64(2), "y": float64(2)},
		},
		"source": map[string]interface{}{"x": float64(0), "y": float64(0)},
		"target": map[string]interface{}{"x": float64(4), "y": float64(3)},
	}

	result, err := client.handleConfigureGrid(ctx, callRequest("configure_grid", args))
	if err != nil {
		t.Fatalf("configureGrid failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Unexpected tool error: %s", resultText(t, result))
	}

	if received.Width != 5 || received.Height != 4 {
		t.Errorf("Expected 5x4, got %dx%d", received.Width, received.Height)
	}
	if len(received.Walls) != 2 || received.Walls[1] != (engine.Position{X: 2, Y: 2}) {
		t.Errorf("Unexpected walls: %+v", received.Walls)
	}
	if received.Target != (engine.Position{X: 4, Y: 3}) {
		t.Errorf("Unexpected target: %+v", received.Target)
	}

	// Malformed wall entries are rejected before any request
	args["walls"] = []interface{}{"2,1"}
	result, _ = client.handleConfigureGrid(ctx, callRequest("configure_grid", args))
	if !result.IsError {
		t.Error("Expected a tool error for a malformed wall")
	}
}

func TestClient_editCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var edit service.CellEdit
		json.NewDecoder(r.Body).Decode(&edit)
		if edit.Action != "wall" || edit.X != 1 || edit.Y != 1 {
			t.Errorf("Unexpected edit: %+v", edit)
		}
		json.NewEncoder(w).Encode(testGrid())
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleEditCell(context.Background(), callRequest("edit_cell", map[string]interface{}{
		"session_id": "s1", "action": "wall", "x": float64(1), "y": float64(1),
	}))
	if err != nil {
		t.Fatalf("editCell failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Set (1,1) to wall") {
		t.Errorf("Unexpected result: %s", text)
	}

	result, _ = client.handleEditCell(context.Background(), callRequest("edit_cell", map[string]interface{}{
		"session_id": "s1", "action": "wall",
	}))
	if !result.IsError {
		t.Error("Expected a tool error when coordinates are missing")
	}
}

func TestClient_runSearch(t *testing.T) {
	tests := []struct {
		name     string
		trace    bool
		result   service.RunResult
		expected []string
	}{
		{
			name:  "Found",
			trace: true,
			result: service.RunResult{
				RunID: "r1", Found: true, Cost: 24, PathLength: 3, Expanded: 3,
				Path: []engine.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}},
				Grid: testGrid(),
			},
			expected: []string{"✓ Path found", "Cost: 24", "(0,0) → (1,0) → (2,1)", "Nodes expanded: 3"},
		},
		{
			name:     "No path",
			result:   service.RunResult{RunID: "r2", Found: false, Expanded: 21, Message: "No path exists"},
			expected: []string{"✗ No path", "Nodes expanded: 21", "No path exists"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/sessions/s1/run" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("trace") == "true"; got != tt.trace {
					t.Errorf("Expected trace=%v, got query %q", tt.trace, r.URL.RawQuery)
				}
				json.NewEncoder(w).Encode(tt.result)
			}))
			defer server.Close()

			result, err := NewClient(server.URL).handleRunSearch(context.Background(),
				callRequest("run_search", map[string]interface{}{"session_id": "s1", "trace": tt.trace}))
			if err != nil {
				t.Fatalf("runSearch failed: %v", err)
			}

			text := resultText(t, result)
			for _, want := range tt.expected {
				if !strings.Contains(text, want) {
					t.Errorf("Expected %q in result, got: %s", want, text)
				}
			}
		})
	}
}

func TestClient_describeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/s1/nodes/1/0" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"position":{"x":1,"y":0},"state":"path","node":{"position":{"x":1,"y":0},"g_cost":10,"h_cost":14,"f_cost":24,"closed":true,"predecessor":{"x":0,"y":0},"order":2}}`)
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleDescribeCell(context.Background(),
		callRequest("describe_cell", map[string]interface{}{"session_id": "s1", "x": float64(1), "y": float64(0)}))
	if err != nil {
		t.Fatalf("describeCell failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Character: *", "State: path", "g: 10", "h: 14", "f: 24", "Predecessor: (0,0)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_toolErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"session not found: nope"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()
	args := map[string]interface{}{"session_id": "nope"}

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"get_session":  client.handleGetSession,
		"get_grid":     client.handleGetGrid,
		"reset_grid":   client.handleResetGrid,
		"clear_result": client.handleClearResult,
		"run_search":   client.handleRunSearch,
	}

	for name, handler := range handlers {
		result, err := handler(ctx, callRequest(name, args))
		if err != nil {
			t.Errorf("%s: handlers report failures as tool errors, got %v", name, err)
			continue
		}
		if !result.IsError {
			t.Errorf("%s: expected a tool error", name)
		}
		if text := resultText(t, result); !strings.Contains(text, "session not found") {
			t.Errorf("%s: unexpected error text %s", name, text)
		}
	}
}

func TestFormatGrid(t *testing.T) {
	text := formatGrid(testGrid())

	expected := []string{
		"Grid: 3x2",
		"Source: (0,0)",
		"Target: (2,1)",
		"Path: 3 cells, cost 24",
		"    012",
		"  0 S*.",
		"  1 ..T",
	}
	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in formatted grid, got:\n%s", want, text)
		}
	}

	if formatGrid(nil) != "Grid: unavailable" {
		t.Error("Expected placeholder for nil grid")
	}

	blank := formatGrid(&engine.GridSnapshot{Width: 2, Height: 1, Rows: []string{".."}})
	if !strings.Contains(blank, "Source: not set") || !strings.Contains(blank, "Target: not set") {
		t.Errorf("Expected missing endpoints to be reported, got:\n%s", blank)
	}
}

func TestClient_handlePathfinderInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handlePathfinderInstructions(context.Background(),
		callRequest("pathfinder_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handlePathfinderInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"GRID LEGEND:",
		"MOVEMENT AND COST:",
		"Straight step costs 10, diagonal step costs 14",
		"TYPICAL WORKFLOW:",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
