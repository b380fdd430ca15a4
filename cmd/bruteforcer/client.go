package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
)

// Client talks to one session on a running server
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessionID  string
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SessionID is the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

type createSessionRequest struct {
	LevelID   string `json:"level_id,omitempty"`
	Autopilot bool   `json:"autopilot"`
	Seed      int64  `json:"seed,omitempty"`
}

type advanceRequest struct {
	ElapsedMS int64 `json:"elapsed_ms"`
	Ticks     int   `json:"ticks"`
}

// CreateSession starts a turn-based round with the autopilot at the wheel
func (c *Client) CreateSession(ctx context.Context, levelID string, seed int64) (*engine.Snapshot, error) {
	var info service.SessionInfo
	req := createSessionRequest{LevelID: levelID, Autopilot: true, Seed: seed}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return info.Snapshot, nil
}

// Resume attaches to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, &info); err != nil {
		return nil, err
	}
	if !info.Options.Autopilot {
		return nil, fmt.Errorf("session %s was not created with the autopilot", info.ID)
	}
	c.sessionID = info.ID
	return info.Snapshot, nil
}

// Advance runs ticks ticks of elapsedMS each
func (c *Client) Advance(ctx context.Context, elapsedMS int64, ticks int) (*service.AdvanceResult, error) {
	var res service.AdvanceResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/advance"), advanceRequest{ElapsedMS: elapsedMS, Ticks: ticks}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Restart starts a fresh round in the same session
func (c *Client) Restart(ctx context.Context) (*engine.Snapshot, error) {
	var res struct {
		Snapshot *engine.Snapshot `json:"snapshot"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/restart"), nil, &res); err != nil {
		return nil, err
	}
	return res.Snapshot, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
