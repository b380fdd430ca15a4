package engine

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestValidateLevelConfig(t *testing.T) {
	valid := func() *LevelConfig {
		return createTestLevel(ModeSingle,
			"b....",
			".1...",
			"..II.",
			"..II.",
			"T....",
		)
	}

	tests := []struct {
		name    string
		mutate  func(c *LevelConfig)
		wantErr string
	}{
		{"valid", func(c *LevelConfig) {}, ""},
		{"missing id", func(c *LevelConfig) { c.ID = 0 }, "id must be a positive integer"},
		{"missing name", func(c *LevelConfig) { c.Name = "" }, "name is required"},
		{"grid too small", func(c *LevelConfig) { c.GridSize = 4 }, "grid_size must be between"},
		{"time limit", func(c *LevelConfig) { c.TimeLimitSeconds = 5 }, "time_limit_seconds"},
		{"difficulty", func(c *LevelConfig) { c.Difficulty = 9 }, "difficulty must be between"},
		{"mode", func(c *LevelConfig) { c.Mode = "battle" }, "mode \"battle\""},
		{"short row", func(c *LevelConfig) { c.Layout[2] = "..II" }, "row 3 must have 5 characters"},
		{"unknown symbol", func(c *LevelConfig) { c.Layout[0] = "b...?" }, "unknown symbol '?'"},
		{"two primaries", func(c *LevelConfig) { c.Layout[0] = "b...1" }, "exactly one primary start, got 2"},
		{"coop needs secondary", func(c *LevelConfig) { c.Mode = ModeCoop }, "needs exactly one secondary start"},
		{"versus needs adversary", func(c *LevelConfig) {
			c.Mode = ModeVersus
			c.Layout[4] = "....."
		}, "at least one adversary"},
		{"igloo not rectangular", func(c *LevelConfig) { c.Layout[3] = "..I.." }, "filled rectangle"},
		{"no collectibles", func(c *LevelConfig) { c.Layout[0] = "....." }, "at least one collectible"},
		{"legend symbol length", func(c *LevelConfig) { c.Legend = map[string]string{"ab": "wall"} }, "single character"},
		{"legend value", func(c *LevelConfig) { c.Legend = map[string]string{"z": "lava"} }, "unknown tile kind"},
		{"wave kind", func(c *LevelConfig) {
			c.Waves = []WaveConfig{{ID: 1, Items: []WaveItem{{Kind: "kiwi", Random: 1}}}}
		}, "unknown collectible kind"},
		{"wave position", func(c *LevelConfig) {
			c.Waves = []WaveConfig{{ID: 1, Items: []WaveItem{{Kind: CollectibleGrape, Positions: []Position{{X: 9, Y: 0}}}}}}
		}, "off the board"},
		{"wave id", func(c *LevelConfig) {
			c.Waves = []WaveConfig{{Items: []WaveItem{{Kind: CollectibleGrape, Random: 1}}}}
		}, "id must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := ValidateLevelConfig(c)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected valid level, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			testutil.AssertErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWaveOnlyCollectiblesAreEnough(t *testing.T) {
	c := createTestLevel(ModeSingle,
		".....",
		".1...",
		".....",
		".....",
		".....",
	)
	c.Waves = []WaveConfig{{ID: 1, Items: []WaveItem{{Kind: CollectibleBanana, Random: 2}}}}
	if err := ValidateLevelConfig(c); err != nil {
		t.Errorf("Expected waves to count as collectibles, got %v", err)
	}
}

func TestBuildWorld(t *testing.T) {
	c := createTestLevel(ModeVersus,
		"b.#X.",
		".1..W",
		"..II.",
		"H.II.",
		"T.N.s",
	)
	c.Waves = []WaveConfig{
		{ID: 1, Items: []WaveItem{
			{Kind: CollectibleGrape, Positions: []Position{{X: 0, Y: 1}}},
			{Kind: CollectibleCherry, Random: 2},
		}},
	}
	w, err := BuildWorld(c)
	if err != nil {
		t.Fatalf("BuildWorld failed: %v", err)
	}

	testutil.AssertEqual(t, "grid", w.Size(), 5)
	testutil.AssertEqual(t, "mode", w.Mode, ModeVersus)
	testutil.AssertEqual(t, "remaining", w.RemainingMS, int64(60000))
	testutil.AssertEqual(t, "freeze blocks", len(w.FreezeBlocks), 2)
	testutil.AssertEqual(t, "walls", len(w.Walls), 1)
	testutil.AssertEqual(t, "heat tiles", len(w.HeatTiles), 1)
	testutil.AssertEqual(t, "adversaries", len(w.Adversaries), 2)
	testutil.AssertEqual(t, "collectibles", len(w.Collectibles), 2)
	testutil.AssertEqual(t, "waves", len(w.Waves), 1)
	testutil.AssertEqual(t, "wave size", len(w.Waves[0]), 3)

	if w.Igloo == nil || w.Igloo.Origin != (Position{X: 2, Y: 2}) || w.Igloo.Width != 2 || w.Igloo.Height != 2 {
		t.Errorf("Unexpected igloo %+v", w.Igloo)
	}
	if !w.Adversaries[0].Controlled || w.Adversaries[1].Controlled {
		t.Error("Expected only the first adversary to be controlled in versus mode")
	}
	if w.Adversaries[1].Behavior != BehaviorCharge {
		t.Errorf("Expected narwhal to charge, got %s", w.Adversaries[1].Behavior)
	}
	permanent := 0
	for _, b := range w.FreezeBlocks {
		if b.Permanent {
			permanent++
		}
	}
	testutil.AssertEqual(t, "permanent blocks", permanent, 1)
}

func TestCustomLegend(t *testing.T) {
	c := createTestLevel(ModeSingle,
		"b....",
		".1...",
		"..~..",
		".....",
		".....",
	)
	c.Legend = map[string]string{"~": "heat"}
	if err := ValidateLevelConfig(c); err != nil {
		t.Fatalf("Expected custom legend to validate, got %v", err)
	}
	w, err := BuildWorld(c)
	if err != nil {
		t.Fatalf("BuildWorld failed: %v", err)
	}
	if !NewSpatial(w).HeatTileAt(Position{X: 2, Y: 2}) {
		t.Error("Expected custom symbol to build a heat tile")
	}
}

func TestDefaultLevelIsValid(t *testing.T) {
	if err := ValidateLevelConfig(DefaultLevel()); err != nil {
		t.Fatalf("Default level is invalid: %v", err)
	}
}
