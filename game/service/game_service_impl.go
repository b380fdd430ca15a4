package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/icebound/game/engine"
)

var (
	ErrInvalidCommand = errors.New("invalid command")
	ErrInvalidAdvance = errors.New("invalid advance")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	log      logrus.FieldLogger
}

// ServiceOpt customises the game service
type ServiceOpt func(*gameServiceImpl)

// WithLogger sets the logger used for persistence warnings
func WithLogger(l logrus.FieldLogger) ServiceOpt {
	return func(s *gameServiceImpl) {
		if l != nil {
			s.log = l
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager, opts ...ServiceOpt) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new round for a level. An empty levelID uses the
// default level.
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string, opts SessionOptions) (*SessionInfo, error) {
	var level *engine.LevelConfig
	if levelID != "" {
		var err error
		level, err = s.levels.LoadLevel(levelID)
		if err != nil {
			if strings.Contains(err.Error(), "level not found") {
				return nil, s.levelNotFound(levelID, err)
			}
			return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
		}
	} else {
		level = s.levels.GetDefault()
	}

	sess, err := s.sessions.Create("", strings.ToLower(levelID), level, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"session":  sess.ID,
		"level":    level.Name,
		"realtime": opts.Realtime,
	}).Info("session created")

	return s.sessionInfo(sess), nil
}

// levelNotFoundError keeps the level manager's error reachable through
// errors.Is while presenting a friendlier message
type levelNotFoundError struct {
	msg   string
	cause error
}

func (e *levelNotFoundError) Error() string { return e.msg }
func (e *levelNotFoundError) Unwrap() error { return e.cause }

// levelNotFound builds an error listing the levels that do exist
func (s *gameServiceImpl) levelNotFound(levelID string, cause error) error {
	available, err := s.levels.ListLevels()
	if err == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, l := range available {
			ids = append(ids, l.LevelID)
		}
		return &levelNotFoundError{
			msg:   fmt.Sprintf("level '%s' not found. Available levels: %v", levelID, ids),
			cause: cause,
		}
	}
	return &levelNotFoundError{
		msg:   fmt.Sprintf("level '%s' not found. Use /api/levels to list available levels", levelID),
		cause: cause,
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	s.log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// Command applies one command to a round
func (s *gameServiceImpl) Command(ctx context.Context, sessionID, command string) (*CommandResponse, error) {
	cmd, err := engine.ParseCommand(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	before := captureRound(sess.Engine)
	result := sess.Engine.Apply(cmd)
	after := captureRound(sess.Engine)
	snap := sess.Engine.Snapshot()
	sess.Unlock()

	events := roundEvents(before, after, snap)
	s.persist(sess.ID, "command")

	return &CommandResponse{
		Result:   result,
		Snapshot: snap,
		Events:   events,
	}, nil
}

// Advance runs up to ticks ticks of elapsedMS each. It stops early when the
// round ends or is paused.
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, elapsedMS int64, ticks int) (*AdvanceResult, error) {
	if elapsedMS <= 0 {
		return nil, fmt.Errorf("%w: elapsed_ms must be positive, got %d", ErrInvalidAdvance, elapsedMS)
	}
	if ticks <= 0 {
		ticks = 1
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &AdvanceResult{TicksRequested: ticks}
	if ticks > engine.MaxAdvanceTicks {
		result.Truncated = true
		result.Limit = engine.MaxAdvanceTicks
		ticks = engine.MaxAdvanceTicks
	}

	sess.Lock()
	before := captureRound(sess.Engine)
	for i := 0; i < ticks; i++ {
		if sess.Engine.IsOver() {
			result.StoppedReason = "over"
			break
		}
		if sess.Engine.IsPaused() {
			result.StoppedReason = "paused"
			break
		}
		if err := ctx.Err(); err != nil {
			sess.Unlock()
			return nil, err
		}
		sess.Engine.Tick(elapsedMS)
		result.TicksRun++
		result.ElapsedMS += elapsedMS
	}
	after := captureRound(sess.Engine)
	snap := sess.Engine.Snapshot()
	sess.Unlock()

	result.Snapshot = snap
	result.Events = roundEvents(before, after, snap)
	s.persist(sess.ID, "advance")
	return result, nil
}

// Restart rebuilds a round from its level
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	resp, err := s.Command(ctx, sessionID, string(engine.CmdRestart))
	if err != nil {
		return nil, err
	}
	return resp.Snapshot, nil
}

// TickLive advances every realtime round that is neither paused nor over and
// returns the IDs of the rounds that moved. Rounds are saved by the periodic
// sync, not here.
func (s *gameServiceImpl) TickLive(ctx context.Context, elapsedMS int64) ([]string, error) {
	if elapsedMS <= 0 {
		return nil, fmt.Errorf("%w: elapsed_ms must be positive, got %d", ErrInvalidAdvance, elapsedMS)
	}

	var updated []string
	for _, sess := range s.sessions.List() {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if !sess.Options.Realtime {
			continue
		}

		sess.Lock()
		live := !sess.Engine.IsOver() && !sess.Engine.IsPaused()
		if live {
			sess.Engine.Tick(elapsedMS)
		}
		sess.Unlock()

		if live {
			updated = append(updated, sess.ID)
		}
	}

	sort.Strings(updated)
	return updated, nil
}

// GetSnapshot retrieves the current round state
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.Snapshot(), nil
}

// DescribeCell reports what occupies one cell of a round
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*engine.CellInfo, error) {
	snap, err := s.GetSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	info := snap.CellAt(pos)
	return &info, nil
}

// GetCommandHistory returns paginated command history
func (s *gameServiceImpl) GetCommandHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	history := sess.Engine.History()
	sess.Unlock()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	commands := []engine.CommandLogEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				commands = append(commands, history[i])
			}
		} else {
			commands = append(commands, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Commands:      commands,
		TotalCommands: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}, nil
}

// ListLevels returns available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// LoadLevel loads a specific level descriptor
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error) {
	return s.levels.LoadLevel(levelID)
}

// SaveLevel saves a level descriptor
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID string, level *engine.LevelConfig) error {
	return s.levels.SaveLevel(levelID, level)
}

// session fetches a session and records the access
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		s.log.WithError(err).WithField("session", sess.ID).Debug("failed to update last access")
	}
	return sess, nil
}

// persist saves a session, logging rather than failing the call
func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"session": sessionID,
			"op":      op,
		}).Warn("failed to persist session")
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()

	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		LevelName:      sess.Level.Name,
		Options:        sess.Options,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       sess.Engine.Snapshot(),
	}
}

// roundState is the part of a round that events are derived from
type roundState struct {
	roundID string
	scores  [2]int
	down    [2]bool
	waves   int
	victory bool
	defeat  bool
	timeUp  bool
	paused  bool
}

func captureRound(e *engine.GameEngine) roundState {
	w := e.World()
	st := roundState{
		roundID: w.RoundID,
		scores:  w.Scores,
		waves:   len(w.Waves),
		victory: w.Victory,
		defeat:  w.Defeat,
		timeUp:  w.TimeUp,
		paused:  w.Paused,
	}
	for _, a := range w.Actors() {
		st.down[a.Slot] = a.Down()
	}
	return st
}

// roundEvents describes what changed between two captures
func roundEvents(before, after roundState, snap *engine.Snapshot) []GameEvent {
	now := time.Now()
	var events []GameEvent

	if before.roundID != after.roundID {
		return []GameEvent{{Type: "restart", Message: "Round restarted", Timestamp: now}}
	}

	for i := range after.scores {
		if gained := after.scores[i] - before.scores[i]; gained > 0 {
			slot := engine.Slot(i)
			ev := GameEvent{
				Type:      "collect",
				Message:   fmt.Sprintf("%s actor scored %d (total %d)", slot, gained, after.scores[i]),
				Timestamp: now,
			}
			if pos, ok := actorPos(snap, slot); ok {
				ev.Position = &pos
			}
			events = append(events, ev)
		}
		if after.down[i] && !before.down[i] {
			slot := engine.Slot(i)
			ev := GameEvent{Type: "actor_down", Message: fmt.Sprintf("%s actor was caught", slot), Timestamp: now}
			if pos, ok := actorPos(snap, slot); ok {
				ev.Position = &pos
			}
			events = append(events, ev)
		}
	}

	if after.waves < before.waves {
		events = append(events, GameEvent{
			Type:      "wave",
			Message:   fmt.Sprintf("New wave released, %d left", after.waves),
			Timestamp: now,
		})
	}

	switch {
	case after.victory && !before.victory:
		events = append(events, GameEvent{Type: "victory", Message: snap.Message, Timestamp: now})
	case after.timeUp && !before.timeUp:
		events = append(events, GameEvent{Type: "time_up", Message: snap.Message, Timestamp: now})
	case after.defeat && !before.defeat:
		events = append(events, GameEvent{Type: "defeat", Message: snap.Message, Timestamp: now})
	}

	if after.paused != before.paused {
		if after.paused {
			events = append(events, GameEvent{Type: "paused", Message: snap.Message, Timestamp: now})
		} else {
			events = append(events, GameEvent{Type: "resumed", Message: "Round resumed", Timestamp: now})
		}
	}

	return events
}

func actorPos(snap *engine.Snapshot, slot engine.Slot) (engine.Position, bool) {
	for _, a := range snap.Actors {
		if a.Slot == slot {
			return a.Pos, true
		}
	}
	return engine.Position{}, false
}
