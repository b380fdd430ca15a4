package service

import (
	"time"

	"github.com/wricardo/icebound/game/engine"
)

// SessionOptions configures how a round is driven
type SessionOptions struct {
	// Realtime sessions are advanced by the server clock
	Realtime bool `json:"realtime" msgpack:"realtime"`
	// Autopilot hands the primary actor to the decision layer
	Autopilot          bool  `json:"autopilot" msgpack:"autopilot"`
	AdversaryAutopilot bool  `json:"adversary_autopilot,omitempty" msgpack:"adversary_autopilot"`
	Seed               int64 `json:"seed,omitempty" msgpack:"seed"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	LevelID        string           `json:"level_id"`
	LevelName      string           `json:"level_name"`
	Options        SessionOptions   `json:"options"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
}

// CommandResponse contains the result of a single command
type CommandResponse struct {
	Result   engine.CommandResult `json:"result"`
	Snapshot *engine.Snapshot     `json:"snapshot"`
	Events   []GameEvent          `json:"events,omitempty"`
}

// AdvanceResult contains the result of advancing a round's clock
type AdvanceResult struct {
	TicksRequested int              `json:"ticks_requested"`
	TicksRun       int              `json:"ticks_run"`
	ElapsedMS      int64            `json:"elapsed_ms"`
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`
	StoppedReason  string           `json:"stopped_reason,omitempty"` // over|paused
	Snapshot       *engine.Snapshot `json:"snapshot"`
	Events         []GameEvent      `json:"events,omitempty"`
}

// GameEvent represents something notable that happened in a round
type GameEvent struct {
	Type      string           `json:"type"` // "collect", "actor_down", "wave", "victory", "defeat", "time_up", "paused", "resumed", "restart"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures command history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated command history
type HistoryResponse struct {
	Commands      []engine.CommandLogEntry `json:"commands"`
	TotalCommands int                      `json:"total_commands"`
	Page          int                      `json:"page"`
	PageSize      int                      `json:"page_size"`
	TotalPages    int                      `json:"total_pages"`
	HasNext       bool                     `json:"has_next"`
	HasPrevious   bool                     `json:"has_previous"`
}

// LevelInfo provides information about a level descriptor
type LevelInfo struct {
	Filename         string          `json:"filename"`
	LevelID          string          `json:"level_id"` // The identifier to use for session creation
	Number           int             `json:"number"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	GridSize         int             `json:"grid_size"`
	Mode             engine.GameMode `json:"mode"`
	Difficulty       int             `json:"difficulty"`
	TimeLimitSeconds int             `json:"time_limit_seconds"`
}
