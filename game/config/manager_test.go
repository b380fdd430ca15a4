package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/icebound/game/engine"
)

func createValidLevel() *engine.LevelConfig {
	return &engine.LevelConfig{
		ID:               1,
		Name:             "Test Level",
		Description:      "Test level",
		GridSize:         5,
		TimeLimitSeconds: 60,
		Difficulty:       1,
		Mode:             engine.ModeSingle,
		Layout: []string{
			"b....",
			".1...",
			"..#..",
			".....",
			"T...g",
		},
		Messages: engine.LevelMessages{
			Welcome: "Welcome!",
			Victory: "Victory!",
			Defeat:  "Defeat!",
			TimeUp:  "Time's up!",
		},
	}
}

func writeLevelFile(t *testing.T, dir, filename string, level *engine.LevelConfig) {
	t.Helper()

	var data []byte
	var err error
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(level)
	default:
		data, err = json.MarshalIndent(level, "", "  ")
	}
	if err != nil {
		t.Fatalf("Failed to marshal level: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("bundled default", func(t *testing.T) {
		dir := t.TempDir()
		level := createValidLevel()
		level.Name = "Courtyard"
		writeLevelFile(t, dir, "courtyard.json", level)

		manager := NewManager(dir)
		testutil.AssertEqual(t, "default name", manager.GetDefault().Name, "Courtyard")
	})

	t.Run("missing directory falls back to built-in", func(t *testing.T) {
		manager := NewManager(filepath.Join(t.TempDir(), "missing"))
		testutil.AssertEqual(t, "default name", manager.GetDefault().Name, engine.DefaultLevel().Name)

		list, err := manager.ListLevels()
		if err != nil {
			t.Fatalf("Failed to list levels: %v", err)
		}
		testutil.AssertEqual(t, "no levels", len(list), 0)
	})
}

func TestManager_LoadLevel(t *testing.T) {
	dir := t.TempDir()

	easy := createValidLevel()
	easy.ID = 2
	easy.Name = "Easy"
	writeLevelFile(t, dir, "easy.json", easy)

	drift := createValidLevel()
	drift.ID = 3
	drift.Name = "Drift"
	drift.Difficulty = 4
	writeLevelFile(t, dir, "drift.yaml", drift)

	manager := NewManager(dir)

	t.Run("load json level", func(t *testing.T) {
		level, err := manager.LoadLevel("easy")
		if err != nil {
			t.Fatalf("Failed to load level: %v", err)
		}
		testutil.AssertEqual(t, "name", level.Name, "Easy")
	})

	t.Run("load yaml level", func(t *testing.T) {
		level, err := manager.LoadLevel("drift")
		if err != nil {
			t.Fatalf("Failed to load level: %v", err)
		}
		testutil.AssertEqual(t, "name", level.Name, "Drift")
		testutil.AssertEqual(t, "difficulty", level.Difficulty, 4)
		testutil.AssertEqual(t, "layout rows", len(level.Layout), 5)
	})

	t.Run("load with extension", func(t *testing.T) {
		level, err := manager.LoadLevel("easy.json")
		if err != nil {
			t.Fatalf("Failed to load level with extension: %v", err)
		}
		testutil.AssertEqual(t, "name", level.Name, "Easy")
	})

	t.Run("load by number", func(t *testing.T) {
		level, err := manager.LoadLevel("3")
		if err != nil {
			t.Fatalf("Failed to load level by number: %v", err)
		}
		testutil.AssertEqual(t, "name", level.Name, "Drift")
	})

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadLevel("easy")
		second, err := manager.LoadLevel("EASY")
		if err != nil {
			t.Fatalf("Failed to load level from cache: %v", err)
		}
		if first != second {
			t.Error("Expected level to be loaded from cache")
		}
	})

	t.Run("empty id is default", func(t *testing.T) {
		level, err := manager.LoadLevel("")
		if err != nil {
			t.Fatalf("Expected default level, got %v", err)
		}
		if level != manager.GetDefault() {
			t.Error("Expected the default level")
		}
	})

	t.Run("load non-existent level", func(t *testing.T) {
		_, err := manager.LoadLevel("non-existent")
		if !errors.Is(err, ErrLevelNotFound) {
			t.Errorf("Expected ErrLevelNotFound, got %v", err)
		}
	})

	t.Run("load invalid level", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644); err != nil {
			t.Fatalf("Failed to write invalid level: %v", err)
		}
		_, err := manager.LoadLevel("invalid")
		if !errors.Is(err, ErrInvalidLevel) {
			t.Fatalf("Expected ErrInvalidLevel, got %v", err)
		}
		testutil.AssertErrorContains(t, err, "name is required")
	})

	t.Run("load malformed yaml", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: [unclosed"), 0644); err != nil {
			t.Fatalf("Failed to write malformed level: %v", err)
		}
		_, err := manager.LoadLevel("broken")
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Expected ErrInvalidLevel for malformed YAML, got %v", err)
		}
	})
}

func TestManager_ListLevels(t *testing.T) {
	dir := t.TempDir()

	levels := []struct {
		filename string
		number   int
		name     string
	}{
		{"courtyard.json", 1, "Courtyard"},
		{"glacier.yaml", 3, "Glacier"},
		{"floe.yml", 2, "Floe"},
	}
	for _, l := range levels {
		level := createValidLevel()
		level.ID = l.number
		level.Name = l.name
		writeLevelFile(t, dir, l.filename, level)
	}

	// Ignored: not a level file, and an invalid descriptor
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0644)

	manager := NewManager(dir)
	list, err := manager.ListLevels()
	if err != nil {
		t.Fatalf("Failed to list levels: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 levels, got %d", len(list))
	}

	wantOrder := []string{"courtyard", "floe", "glacier"}
	for i, id := range wantOrder {
		testutil.AssertEqual(t, "level id", list[i].LevelID, id)
	}
	testutil.AssertEqual(t, "filename", list[2].Filename, "glacier.yaml")
	testutil.AssertEqual(t, "grid size", list[0].GridSize, 5)
	testutil.AssertEqual(t, "mode", list[0].Mode, engine.ModeSingle)
}

func TestManager_SaveLevel(t *testing.T) {
	dir := t.TempDir()
	manager := NewManager(dir)

	t.Run("save json", func(t *testing.T) {
		level := createValidLevel()
		level.Name = "Saved"
		if err := manager.SaveLevel("saved", level); err != nil {
			t.Fatalf("Failed to save level: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Fatalf("Expected saved.json on disk: %v", err)
		}

		loaded, err := LoadFile(filepath.Join(dir, "saved.json"))
		if err != nil {
			t.Fatalf("Failed to read saved level: %v", err)
		}
		testutil.AssertEqual(t, "name", loaded.Name, "Saved")
	})

	t.Run("save yaml", func(t *testing.T) {
		level := createValidLevel()
		level.Name = "Saved YAML"
		level.Waves = []engine.WaveConfig{{ID: 1, Items: []engine.WaveItem{{Kind: engine.CollectibleCherry, Random: 2}}}}
		if err := manager.SaveLevel("snowy.yaml", level); err != nil {
			t.Fatalf("Failed to save level: %v", err)
		}

		loaded, err := LoadFile(filepath.Join(dir, "snowy.yaml"))
		if err != nil {
			t.Fatalf("Failed to read saved level: %v", err)
		}
		testutil.AssertEqual(t, "name", loaded.Name, "Saved YAML")
		testutil.AssertEqual(t, "waves", len(loaded.Waves), 1)
		testutil.AssertEqual(t, "wave random", loaded.Waves[0].Items[0].Random, 2)
	})

	t.Run("reject invalid", func(t *testing.T) {
		level := createValidLevel()
		level.GridSize = 2
		err := manager.SaveLevel("tiny", level)
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Expected ErrInvalidLevel, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(dir, "tiny.json")); statErr == nil {
			t.Error("Invalid level must not be written")
		}
	})
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	level := createValidLevel()
	level.Name = "Arena"
	writeLevelFile(t, dir, "arena.json", level)

	manager := NewManager(dir)
	if err := manager.SetDefault("arena"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	testutil.AssertEqual(t, "default", manager.GetDefault().Name, "Arena")

	level.Name = "Arena Reloaded"
	writeLevelFile(t, dir, "arena.json", level)
	manager.RefreshCache()

	reloaded, err := manager.LoadLevel("arena")
	if err != nil {
		t.Fatalf("Failed to reload level: %v", err)
	}
	testutil.AssertEqual(t, "reloaded", reloaded.Name, "Arena Reloaded")

	if err := manager.SetDefault("missing"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("Expected ErrLevelNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "shared.json", createValidLevel())
	manager := NewManager(dir)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadLevel("shared"); err != nil {
				errs <- err
			}
			manager.GetDefault()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent load failed: %v", err)
	}
}
