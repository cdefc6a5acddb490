package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/gridpath/grid/engine"
	"github.com/wricardo/gridpath/grid/service"
)

// Client talks to the pathfinder REST API on behalf of a single session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends a JSON request and decodes a 2xx response into out
func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) CreateSession(configID string) (*engine.GridSnapshot, error) {
	var reqBody interface{}
	if configID != "" {
		reqBody = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(http.MethodPost, "/api/sessions", reqBody, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.Grid, nil
}

func (c *Client) GetGrid() (*engine.GridSnapshot, error) {
	var grid engine.GridSnapshot
	if err := c.do(http.MethodGet, c.sessionPath("/grid"), nil, &grid); err != nil {
		return nil, fmt.Errorf("get grid: %w", err)
	}
	return &grid, nil
}

func (c *Client) EditCell(action string, p engine.Position) (*engine.GridSnapshot, error) {
	edit := service.CellEdit{Action: action, X: p.X, Y: p.Y}

	var grid engine.GridSnapshot
	if err := c.do(http.MethodPost, c.sessionPath("/cells"), edit, &grid); err != nil {
		return nil, fmt.Errorf("edit cell: %w", err)
	}
	return &grid, nil
}

func (c *Client) Run() (*service.RunResult, error) {
	var result service.RunResult
	if err := c.do(http.MethodPost, c.sessionPath("/run"), nil, &result); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return &result, nil
}

type ResetResponse struct {
	Message string               `json:"message"`
	Grid    *engine.GridSnapshot `json:"grid"`
}

func (c *Client) Reset() (*engine.GridSnapshot, error) {
	var resetResp ResetResponse
	if err := c.do(http.MethodPost, c.sessionPath("/reset"), nil, &resetResp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resetResp.Grid, nil
}

func (c *Client) sessionPath(suffix string) string {
	return fmt.Sprintf("/api/sessions/%s%s", c.sessionID, suffix)
}
