package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Position is a grid coordinate. X is the column, Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is the search record of a discovered cell
type Node struct {
	GCost  int  `json:"g_cost"`
	HCost  int  `json:"h_cost"`
	FCost  int  `json:"f_cost"`
	Closed bool `json:"closed"`
}

// Cell represents a grid cell
type Cell struct {
	State string `json:"state"`
	Node  *Node  `json:"node,omitempty"`
}

// GridSnapshot is the grid as served by the pathfinder server
type GridSnapshot struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Cells    [][]Cell   `json:"cells"`
	Source   *Position  `json:"source,omitempty"`
	Target   *Position  `json:"target,omitempty"`
	Path     []Position `json:"path,omitempty"`
	PathCost int        `json:"path_cost,omitempty"`
}

// StepEvent is one expansion broadcast during a traced run
type StepEvent struct {
	Iteration int      `json:"iteration"`
	Position  Position `json:"position"`
	FCost     int      `json:"f_cost"`
	OpenCount int      `json:"open_count"`
}

// RunSummary is the search_complete payload and the relevant part of a run response
type RunSummary struct {
	Found    bool `json:"found"`
	Cost     int  `json:"cost"`
	Expanded int  `json:"expanded"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string          `json:"session_id"`
	Grid      *GridSnapshot   `json:"grid,omitempty"`
	Event     string          `json:"event,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID         string        `json:"id"`
	ConfigName string        `json:"config_name"`
	CreatedAt  string        `json:"created_at"`
	Grid       *GridSnapshot `json:"grid"`
}

// ConfigListItem represents a grid template
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// APIClient wraps the pathfinder REST API and WebSocket endpoint
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) call(method, path, payload string, out interface{}) error {
	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s (body: %s)", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(data))
	}
	return nil
}

// CreateSession starts a session from a template; an empty ID uses the server default
func (c *APIClient) CreateSession(configID string) (string, error) {
	payload := "{}"
	if configID != "" {
		data, _ := json.Marshal(map[string]string{"config_id": configID})
		payload = string(data)
	}

	var result SessionListItem
	if err := c.call(http.MethodPost, "/api/sessions", payload, &result); err != nil {
		return "", err
	}
	log.Printf("Created new session: %s (config: %s)", result.ID, result.ConfigName)
	return result.ID, nil
}

func (c *APIClient) ListSessions() ([]SessionListItem, error) {
	var resp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	err := c.call(http.MethodGet, "/api/sessions", "", &resp)
	return resp.Sessions, err
}

func (c *APIClient) ListConfigs() ([]ConfigListItem, error) {
	var configs []ConfigListItem
	err := c.call(http.MethodGet, "/api/configs", "", &configs)
	return configs, err
}

func (c *APIClient) GetGrid(sessionID string) (*GridSnapshot, error) {
	var grid GridSnapshot
	if err := c.call(http.MethodGet, "/api/sessions/"+sessionID+"/grid", "", &grid); err != nil {
		return nil, err
	}
	return &grid, nil
}

func (c *APIClient) EditCell(sessionID, action string, p Position) error {
	payload := fmt.Sprintf(`{"action":%q,"x":%d,"y":%d}`, action, p.X, p.Y)
	return c.call(http.MethodPost, "/api/sessions/"+sessionID+"/cells", payload, nil)
}

// Run starts a traced search; the steps arrive over the WebSocket
func (c *APIClient) Run(sessionID string) (*RunSummary, error) {
	var summary RunSummary
	if err := c.call(http.MethodPost, "/api/sessions/"+sessionID+"/run?trace=true", "", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *APIClient) Clear(sessionID string) error {
	return c.call(http.MethodPost, "/api/sessions/"+sessionID+"/clear", "", nil)
}

func (c *APIClient) Reset(sessionID string) error {
	return c.call(http.MethodPost, "/api/sessions/"+sessionID+"/reset", "", nil)
}

// Dial opens the session's WebSocket feed
func (c *APIClient) Dial(sessionID string) (*websocket.Conn, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}

	wsURL := url.URL{Scheme: "ws", Host: u.Host, Path: "/ws"}
	if u.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	q := wsURL.Query()
	q.Set("session", sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	return conn, err
}
