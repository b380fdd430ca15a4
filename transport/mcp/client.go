package mcp

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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
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
		baseURL: strings.TrimRight(baseURL, "/"),
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
		"Icebound Arena",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Icebound Arena - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Collect every fruit on the board before the clock runs out while avoiding
the adversaries. Sneeze to wall them off with a line of ice, kick to break
a line of ice apart.

AVAILABLE TOOLS:
- create_session: Create a new round (optionally on a named level)
- list_sessions / get_session: Inspect rounds
- snapshot: Current board, scores and clock
- command: Issue one command (move_up, act, pause, ...) - requires intent
- advance: Run the clock forward for turn-based play
- command_history: Past commands
- list_levels: Available levels
- game_instructions: Rules and board legend
- describe_cell: Everything occupying one cell

Rounds created without "realtime" only move when you call advance.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new round, optionally on a named level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play (optional, see list_levels)",
				},
				"realtime": map[string]interface{}{
					"type":        "boolean",
					"description": "Let the server clock drive the round",
				},
				"autopilot": map[string]interface{}{
					"type":        "boolean",
					"description": "Let the autopilot drive the primary actor",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for a reproducible round",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active rounds",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Round operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "snapshot",
		Description: "Get the current board, scores and remaining time",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSnapshot)

	commands := make([]string, 0, len(engine.Commands))
	for _, cmd := range engine.Commands {
		commands = append(commands, string(cmd))
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command",
		Description: "Issue one command to a round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"command": map[string]interface{}{
					"type":        "string",
					"enum":        commands,
					"description": "Command to apply",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this command (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "command"},
		},
	}, c.handleCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Run the round clock forward by a number of ticks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"elapsed_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Milliseconds per tick (e.g. 100)",
				},
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Number of ticks (default 1, max %d)", engine.MaxAdvanceTicks),
				},
			},
			Required: []string{"session_id", "elapsed_ms"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command_history",
		Description: "Get the command history for a round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCommandHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules and the board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "List everything occupying one cell of the board. Useful when several things overlap.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column, 0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row, 0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if levelID, _ := args["level_id"].(string); levelID != "" {
		body["level_id"] = levelID
	}
	if realtime, _ := args["realtime"].(bool); realtime {
		body["realtime"] = true
	}
	if autopilot, _ := args["autopilot"].(bool); autopilot {
		body["autopilot"] = true
	}
	if seed, ok := intArg(args, "seed"); ok {
		body["seed"] = seed
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		info.ID, info.LevelName, formatSnapshot(info.Snapshot))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.Snapshot != nil {
			status = roundStatus(s.Snapshot)
		}
		fmt.Fprintf(&result, "- %s (Level: %s, %s, Created: %s)\n",
			s.ID, s.LevelName, status, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/snapshot"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	command, _ := args["command"].(string)

	var resp service.CommandResponse
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/command"), map[string]string{"command": command}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCommandResponse(&resp)), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	elapsed, _ := intArg(args, "elapsed_ms")
	ticks, _ := intArg(args, "ticks")

	var result service.AdvanceResult
	body := map[string]interface{}{"elapsed_ms": elapsed, "ticks": ticks}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/advance"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatAdvanceResult(&result)), nil
}

func (c *Client) handleCommandHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []*service.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(levels) == 0 {
		return mcp.NewToolResultText("No level files found; new sessions use the built-in level."), nil
	}

	var result strings.Builder
	result.WriteString("Available Levels:\n\n")
	for _, l := range levels {
		fmt.Fprintf(&result, "• %s (%s)\n  %s\n  Grid: %dx%d, Mode: %s, Difficulty: %d, Time: %ds\n\n",
			l.Name, l.LevelID, l.Description, l.GridSize, l.GridSize, l.Mode, l.Difficulty, l.TimeLimitSeconds)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var cell engine.CellInfo
	path := sessionPath(sessionID, fmt.Sprintf("/cell?x=%d&y=%d", x, y))
	if err := c.apiCall(ctx, "GET", path, nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !cell.InBounds {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds", x, y)), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Cell at position (%d, %d):\n", x, y)
	if len(cell.Contents) == 0 {
		result.WriteString("Empty floor - passable\n")
	}
	for _, item := range cell.Contents {
		fmt.Fprintf(&result, "- %s\n", item)
	}
	return mcp.NewToolResultText(result.String()), nil
}

const instructions = `Icebound Arena - Complete Instructions

OBJECTIVE:
Collect every fruit on the board before the timer reaches zero. Once the
board is empty, queued waves release new fruit; clearing the last wave wins.

ACTORS:
• 1 - Primary actor (you)
• 2 - Secondary actor (coop or versus partner)
• x - A downed actor

ACTIONS:
• move_up / move_down / move_left / move_right - step one cell
• stop - cancel the current heading
• act - facing ice, kick: the whole run of ice ahead breaks (permanent ice
  survives). Facing open floor, sneeze: the open run ahead freezes into new
  ice, stopping at the first obstacle, adversary or actor.
• pause - toggle the clock
• restart - start a fresh round on the same level
Prefix p2_ to any actor command to drive the secondary actor.

ADVERSARIES:
• T - Troll: chases the nearest actor and cracks ice next to it
• P - Pot: wanders and turns at obstacles
• N - Narwhal: charges in a straight line when it sees an actor, smashing
  through breakable ice in the way
Touching an adversary downs an actor. When every actor is down the round
is lost.

COLLECTIBLES:
• b - Banana, g - Grape: plain fruit
• c - Cherry: hops to a neighbouring cell whenever an actor moves
• p - Pineapple: teleports somewhere else every few seconds
• s / S - Cactus: safe while soft (s), deadly while spiky (S); it cycles

TERRAIN:
• . - Open floor
• # - Ice block (kickable), % - ice breaking apart
• X - Permanent ice, W - Wall, I - Igloo (all impassable)
• ~ - Heat tile: ice cannot form here

TURN-BASED PLAY:
Rounds created without realtime stand still until you call advance. Each
tick moves adversaries, counts down the clock and ripens collectibles.

Good luck, and keep your feet cold!`

// Formatting helpers

func roundStatus(snap *engine.Snapshot) string {
	switch {
	case snap.Victory:
		return "victory"
	case snap.Defeat && snap.TimeUp:
		return "time up"
	case snap.Defeat:
		return "defeat"
	case snap.Paused:
		return "paused"
	}
	return "playing"
}

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nRealtime: %v\nCreated: %s\n\n%s",
		info.ID, info.LevelName, info.Options.Realtime,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(info.Snapshot))
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No snapshot available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Level: %s | Time: %s | Score: %d | Left: %d | Waves: %d\n",
		snap.LevelName, snap.Remaining, snap.TotalScore, snap.CollectiblesLeft, snap.WavesQueued)
	for _, a := range snap.Actors {
		state := "alive"
		if !a.Alive {
			state = "down"
		} else if a.Busy != "" {
			state = string(a.Busy)
		}
		fmt.Fprintf(&result, "Actor %s: (%d,%d) facing %s, %s\n", a.Slot, a.Pos.X, a.Pos.Y, a.Facing, state)
	}
	result.WriteString("\n")

	for _, row := range snap.Rows() {
		result.WriteString(row)
		result.WriteString("\n")
	}

	switch {
	case snap.Victory:
		result.WriteString("\n🎉 VICTORY!")
	case snap.Over:
		result.WriteString("\n💀 ROUND OVER")
	case snap.Paused:
		result.WriteString("\n⏸ PAUSED")
	}

	if snap.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", snap.Message)
	}
	return result.String()
}

func formatEvents(events []service.GameEvent) string {
	if len(events) == 0 {
		return ""
	}
	var result strings.Builder
	result.WriteString("Events:\n")
	for _, e := range events {
		fmt.Fprintf(&result, "  • %s: %s\n", e.Type, e.Message)
	}
	return result.String()
}

func formatCommandResponse(resp *service.CommandResponse) string {
	var result strings.Builder
	if resp.Result.Accepted {
		fmt.Fprintf(&result, "✓ %s accepted\n", resp.Result.Command)
	} else {
		fmt.Fprintf(&result, "✗ %s rejected\n", resp.Result.Command)
	}
	if len(resp.Result.Cells) > 0 {
		cells := make([]string, 0, len(resp.Result.Cells))
		for _, p := range resp.Result.Cells {
			cells = append(cells, fmt.Sprintf("(%d,%d)", p.X, p.Y))
		}
		fmt.Fprintf(&result, "Cells: %s\n", strings.Join(cells, " "))
	}
	result.WriteString(formatEvents(resp.Events))
	result.WriteString("\n")
	result.WriteString(formatSnapshot(resp.Snapshot))
	return result.String()
}

func formatAdvanceResult(r *service.AdvanceResult) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Ran %d/%d ticks of %dms", r.TicksRun, r.TicksRequested, r.ElapsedMS)
	if r.Truncated {
		fmt.Fprintf(&result, " (truncated to %d)", r.Limit)
	}
	if r.StoppedReason != "" {
		fmt.Fprintf(&result, ", stopped: %s", r.StoppedReason)
	}
	result.WriteString("\n")
	result.WriteString(formatEvents(r.Events))
	result.WriteString("\n")
	result.WriteString(formatSnapshot(r.Snapshot))
	return result.String()
}

func formatHistory(h *service.HistoryResponse) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Command History (page %d/%d, %d total):\n\n", h.Page, h.TotalPages, h.TotalCommands)
	for _, entry := range h.Commands {
		status := "✓"
		if !entry.Accepted {
			status = "✗"
		}
		fmt.Fprintf(&result, "#%d %s %s at %s\n", entry.Seq, status, entry.Command, engine.FormatRemaining(entry.ElapsedMS))
	}
	if h.HasNext {
		result.WriteString("\n(more on the next page)")
	}
	return result.String()
}
