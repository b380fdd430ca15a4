// Package engine provides the core simulation for Icebound Arena.
//
// The engine package implements the game mechanics including:
//   - Square grid, World state and read-only spatial queries
//   - Actor movement, the sneeze/kick ice ray traces and busy states
//   - Adversaries that wander, chase, or charge along a line of sight
//   - Collectibles with timed and turn-coupled abilities, and waves
//   - The per-tick driver and the autonomous decision layer
//
// Core Types:
//
// The Engine interface defines the main contract for round operations,
// implemented by GameEngine. World is the single source of truth for one
// round; LevelConfig is the level descriptor it is built from.
//
// Usage:
//
//	level := engine.DefaultLevel()
//	eng, err := engine.NewEngine(level, engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.Apply(engine.CmdMoveUp)
//	eng.Tick(50)
//	snap := eng.Snapshot()
//
// Time:
//
// The engine never reads the wall clock. Every timer advances by the
// elapsed milliseconds passed to Tick, which keeps rounds replayable.
// Within a tick the order is fixed: actor timers, countdown, wave
// release, autopilots, adversaries, collisions, collectible abilities,
// ice break animation, terminal evaluation.
package engine
