package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/wricardo/gridpath/api"
	"github.com/wricardo/gridpath/grid/service"
	"github.com/wricardo/gridpath/transport/mcp"
	"github.com/wricardo/gridpath/transport/websocket"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Grid Pathfinder Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	pathfinderService, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	if pathfinderService == nil {
		t.Fatal("Expected pathfinder service to be initialized")
	}

	// The bundled classic template is solvable
	ctx := context.Background()
	sess, err := pathfinderService.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	result, err := pathfinderService.Run(ctx, sess.ID, service.RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Found {
		t.Errorf("Expected a path on the classic template: %s", result.Message)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "/non/existent/path"
	defer func() { *configDir = originalConfigDir }()

	_, err := initializeServices()
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}

	if *host == "" {
		t.Error("Host should have a default value")
	}

	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}

	if *sessionTTL <= 0 {
		t.Errorf("Invalid default session TTL: %v", *sessionTTL)
	}
}

func TestNgrokAuthToken(t *testing.T) {
	original := *ngrokAuth
	defer func() { *ngrokAuth = original }()

	*ngrokAuth = ""
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "underscore")
	if got := ngrokAuthToken(); got != "underscore" {
		t.Errorf("Expected underscore env token, got %q", got)
	}

	t.Setenv("NGROK_AUTHTOKEN", "plain")
	if got := ngrokAuthToken(); got != "plain" {
		t.Errorf("Expected NGROK_AUTHTOKEN to win, got %q", got)
	}

	*ngrokAuth = "flag"
	if got := ngrokAuthToken(); got != "flag" {
		t.Errorf("Expected flag token to win, got %q", got)
	}
}

func TestNewMux(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	pathfinderService, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	apiServer := api.NewServer(pathfinderService, websocket.NewHub())
	mux := newMux(apiServer, mcp.NewClient("http://127.0.0.1:1"))

	t.Run("API is mounted at root", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("MCP rejects GET", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", w.Code)
		}
	})

	t.Run("MCP lists tools", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		for _, tool := range []string{"run_search", "edit_cell", "describe_cell"} {
			if !strings.Contains(w.Body.String(), tool) {
				t.Errorf("Expected tool %s in response: %s", tool, w.Body.String())
			}
		}
	})
}
