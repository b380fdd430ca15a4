package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/icebound/game/engine"
)

// GameService defines all round-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string, opts SessionOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Round Operations
	Command(ctx context.Context, sessionID, command string) (*CommandResponse, error)
	Advance(ctx context.Context, sessionID string, elapsedMS int64, ticks int) (*AdvanceResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	TickLive(ctx context.Context, elapsedMS int64) ([]string, error)

	// Round State
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*engine.CellInfo, error)
	GetCommandHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error)
	SaveLevel(ctx context.Context, levelID string, level *engine.LevelConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, levelID string, level *engine.LevelConfig, opts SessionOptions) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles level descriptor loading
type LevelManager interface {
	LoadLevel(id string) (*engine.LevelConfig, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *engine.LevelConfig
	SaveLevel(id string, level *engine.LevelConfig) error
}

// Session is one live round. The embedded mutex guards Engine and the
// timestamps; the engine itself is single-threaded.
type Session struct {
	sync.Mutex

	ID             string
	LevelID        string
	Engine         *engine.GameEngine
	Level          *engine.LevelConfig
	Options        SessionOptions
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Touch records an access
func (s *Session) Touch() {
	s.Lock()
	s.LastAccessedAt = time.Now()
	s.Unlock()
}

// NewSessionEngine builds the engine for a level honouring the session options
func NewSessionEngine(level *engine.LevelConfig, opts SessionOptions) (*engine.GameEngine, error) {
	var engineOpts []engine.EngineOpt
	if opts.Seed != 0 {
		engineOpts = append(engineOpts, engine.WithSeed(opts.Seed))
	}
	if opts.Autopilot {
		engineOpts = append(engineOpts, engine.WithAutopilot(engine.SlotPrimary))
	}
	if opts.AdversaryAutopilot {
		engineOpts = append(engineOpts, engine.WithAdversaryAutopilot())
	}
	return engine.NewEngine(level, engineOpts...)
}
