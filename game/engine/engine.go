package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine provides the main interface for round operations
type Engine interface {
	// Input
	Apply(cmd Command) CommandResult
	Tick(elapsedMS int64)

	// State
	Snapshot() *Snapshot
	World() *World
	SetWorld(w *World) error
	Restart() *World

	// Scalars
	IsOver() bool
	IsVictory() bool
	IsPaused() bool
	Score(slot Slot) int
	RemainingMS() int64
	RemainingFormatted() string

	// Configuration and history
	Level() *LevelConfig
	History() []CommandLogEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialise access.
type GameEngine struct {
	level *LevelConfig
	world *World
	rng   *rand.Rand

	autopilotSlots     []Slot
	adversaryAutopilot bool
	pilots             []*Autopilot
	adversaryPilot     *AdversaryPilot

	history []CommandLogEntry
	seq     int
}

// EngineOpt customises a GameEngine
type EngineOpt func(*GameEngine)

// WithSeed makes every random decision reproducible
func WithSeed(seed int64) EngineOpt {
	return func(e *GameEngine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies the random source directly
func WithRand(r *rand.Rand) EngineOpt {
	return func(e *GameEngine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithAutopilot hands the given actor slots to the autonomous decision layer
func WithAutopilot(slots ...Slot) EngineOpt {
	return func(e *GameEngine) {
		e.autopilotSlots = append(e.autopilotSlots, slots...)
	}
}

// WithAdversaryAutopilot drives the player-controlled adversary autonomously
func WithAdversaryAutopilot() EngineOpt {
	return func(e *GameEngine) {
		e.adversaryAutopilot = true
	}
}

// NewEngine validates the level and builds a fresh round from it
func NewEngine(level *LevelConfig, opts ...EngineOpt) (*GameEngine, error) {
	if err := ValidateLevelConfig(level); err != nil {
		return nil, err
	}

	e := &GameEngine{
		level: level,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}

	world, err := BuildWorld(level)
	if err != nil {
		return nil, err
	}
	e.world = world
	e.resetPilots()
	return e, nil
}

// World returns the live world state
func (e *GameEngine) World() *World {
	return e.world
}

// SetWorld replaces the world state (used when loading a persisted round)
func (e *GameEngine) SetWorld(w *World) error {
	if w == nil {
		return fmt.Errorf("world cannot be nil")
	}
	if w.GridSize < MinGridSize || w.GridSize > MaxGridSize {
		return fmt.Errorf("world grid size %d out of range", w.GridSize)
	}
	if w.Primary == nil {
		return fmt.Errorf("world has no primary actor")
	}
	e.world = w
	e.resetPilots()
	return nil
}

// Restart discards the round and builds a fresh one from the level. The
// command history carries over.
func (e *GameEngine) Restart() *World {
	world, err := BuildWorld(e.level)
	if err != nil {
		// the level was validated at construction
		panic(fmt.Sprintf("engine: rebuilding validated level: %v", err))
	}
	e.world = world
	e.resetPilots()
	return e.world
}

// Level returns the level the round was built from
func (e *GameEngine) Level() *LevelConfig {
	return e.level
}

// RestoreHistory replaces the command log, keeping the newest entries
func (e *GameEngine) RestoreHistory(entries []CommandLogEntry) {
	if len(entries) > MaxCommandHistory {
		entries = entries[len(entries)-MaxCommandHistory:]
	}
	e.history = append([]CommandLogEntry(nil), entries...)
	e.seq = 0
	if n := len(e.history); n > 0 {
		e.seq = e.history[n-1].Seq
	}
}

// Tick advances the round by elapsedMS. A paused round ignores ticks.
func (e *GameEngine) Tick(elapsedMS int64) {
	w := e.world
	if w.Paused || elapsedMS < 0 {
		return
	}

	for _, a := range w.Actors() {
		a.advance(elapsedMS)
	}
	w.AdvanceClock(elapsedMS)

	if !w.Terminal() {
		e.releaseWave()
		e.runAutopilots(elapsedMS)
	}
	if !w.Terminal() {
		e.advanceAdversaries(elapsedMS)
		e.resolveCollisions()
		e.advanceCollectibles(elapsedMS)
	}

	e.purgeBrokenIce()
	e.evaluateTerminal()
}

func (e *GameEngine) evaluateTerminal() {
	w := e.world
	if w.Terminal() {
		return
	}
	if e.allActorsDown() {
		w.SetDefeat()
		return
	}
	if w.ElapsedMS > 0 && w.AvailableCollectibles() == 0 && len(w.Waves) == 0 {
		w.SetVictory()
		for _, a := range w.Actors() {
			a.startCelebrating()
		}
		return
	}
	if w.TimeUp {
		w.SetDefeat()
	}
}

func (e *GameEngine) spatial() Spatial {
	return Spatial{w: e.world}
}

// IsOver reports whether the round has ended
func (e *GameEngine) IsOver() bool {
	return e.world.Terminal()
}

// IsVictory reports whether the round was won
func (e *GameEngine) IsVictory() bool {
	return e.world.Victory
}

// IsPaused reports whether ticks are currently ignored
func (e *GameEngine) IsPaused() bool {
	return e.world.Paused
}

// Score returns the score of an actor slot
func (e *GameEngine) Score(slot Slot) int {
	return e.world.Score(slot)
}

// RemainingMS returns the countdown in milliseconds
func (e *GameEngine) RemainingMS() int64 {
	return e.world.RemainingMS
}

// RemainingFormatted returns the countdown as M:SS, rounding seconds up
func (e *GameEngine) RemainingFormatted() string {
	return FormatRemaining(e.world.RemainingMS)
}

// FormatRemaining renders milliseconds as M:SS, rounding seconds up
func FormatRemaining(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := (ms + 999) / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
