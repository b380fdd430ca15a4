// Package config provides level descriptor management for Icebound.
//
// The config package handles:
//   - Loading level descriptors from JSON and YAML files
//   - Validation through engine.ValidateLevelConfig
//   - Default level management
//   - Level discovery and listing
//
// Level Format:
//
// Levels are stored as *.json, *.yaml or *.yml files in the levels directory.
// The file name without extension is the level identifier. Each descriptor
// defines:
//   - Board layout using a symbol legend (. empty, # ice, W wall, T troll, b banana, ...)
//   - Grid size, time limit, difficulty and game mode
//   - Collectible waves released once the board is cleared
//   - Messages for round events
//
// Usage:
//
//	manager := config.NewManager("levels")
//
//	// Load a specific level
//	level, err := manager.LoadLevel("glacier")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get the default level
//	level = manager.GetDefault()
//
//	// List available levels
//	levels, err := manager.ListLevels()
//
// When the directory has no "courtyard" descriptor the built-in
// engine.DefaultLevel is used as the default.
package config
