package engine

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestAdvanceClock(t *testing.T) {
	w := NewWorld(5, ModeSingle, 1, 1000)

	w.AdvanceClock(400)
	testutil.AssertEqual(t, "elapsed", w.ElapsedMS, int64(400))
	testutil.AssertEqual(t, "remaining", w.RemainingMS, int64(600))
	if w.TimeUp {
		t.Fatal("TimeUp set early")
	}

	w.AdvanceClock(900)
	testutil.AssertEqual(t, "remaining clamps", w.RemainingMS, int64(0))
	if !w.TimeUp {
		t.Fatal("Expected TimeUp")
	}

	w.AdvanceClock(500)
	testutil.AssertEqual(t, "remaining after time up", w.RemainingMS, int64(0))
	testutil.AssertEqual(t, "elapsed keeps growing", w.ElapsedMS, int64(1800))

	w.AdvanceClock(0)
	w.AdvanceClock(-10)
	testutil.AssertEqual(t, "elapsed ignores non-positive", w.ElapsedMS, int64(1800))
}

func TestAdvanceClockFrozenAfterVictory(t *testing.T) {
	w := NewWorld(5, ModeSingle, 1, 1000)
	w.SetVictory()
	w.AdvanceClock(2000)
	testutil.AssertEqual(t, "remaining", w.RemainingMS, int64(1000))
	if w.TimeUp {
		t.Error("TimeUp must not flip after the round ended")
	}
}

func TestTerminalFlags(t *testing.T) {
	tests := []struct {
		name        string
		apply       func(w *World)
		wantDefeat  bool
		wantVictory bool
	}{
		{"defeat twice", func(w *World) { w.SetDefeat(); w.SetDefeat() }, true, false},
		{"victory twice", func(w *World) { w.SetVictory(); w.SetVictory() }, false, true},
		{"defeat then victory", func(w *World) { w.SetDefeat(); w.SetVictory() }, true, false},
		{"victory then defeat", func(w *World) { w.SetVictory(); w.SetDefeat() }, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(5, ModeSingle, 1, 1000)
			tt.apply(w)
			if w.Defeat != tt.wantDefeat || w.Victory != tt.wantVictory {
				t.Errorf("Expected defeat=%v victory=%v, got defeat=%v victory=%v",
					tt.wantDefeat, tt.wantVictory, w.Defeat, w.Victory)
			}
			if !w.Terminal() {
				t.Error("Expected terminal world")
			}
		})
	}
}

func TestEntityIDs(t *testing.T) {
	w := NewWorld(5, ModeSingle, 1, 1000)
	a := w.AddAdversary(NewAdversary(AdversaryPot, Position{X: 1, Y: 1}))
	c := w.AddCollectible(NewCollectible(CollectibleBanana, Position{X: 2, Y: 2}))
	b := w.AddAdversary(NewAdversary(AdversaryTroll, Position{X: 3, Y: 3}))

	if a.ID == c.ID || a.ID == b.ID || b.ID == c.ID {
		t.Fatalf("Expected unique ids, got %d %d %d", a.ID, c.ID, b.ID)
	}
	if w.AdversaryByID(b.ID) != b {
		t.Error("AdversaryByID returned the wrong adversary")
	}

	if !w.RemoveAdversary(a.ID) {
		t.Error("Expected adversary removal")
	}
	if w.RemoveAdversary(a.ID) {
		t.Error("Removing twice must fail")
	}
	testutil.AssertEqual(t, "adversaries", len(w.Adversaries), 1)

	if !w.RemoveCollectible(c.ID) {
		t.Error("Expected collectible removal")
	}
	testutil.AssertEqual(t, "collectibles", len(w.Collectibles), 0)
}

func TestFreezeBlocks(t *testing.T) {
	w := NewWorld(5, ModeSingle, 1, 1000)
	w.AddFreezeBlock(Position{X: 1, Y: 1}, false)
	w.AddFreezeBlock(Position{X: 2, Y: 1}, true)

	if !w.RemoveFreezeBlock(Position{X: 1, Y: 1}) {
		t.Error("Expected block removal")
	}
	if w.RemoveFreezeBlock(Position{X: 4, Y: 4}) {
		t.Error("Removing a missing block must fail")
	}
	testutil.AssertEqual(t, "blocks", len(w.FreezeBlocks), 1)
}

func TestScores(t *testing.T) {
	w := NewWorld(5, ModeCoop, 1, 1000)
	w.AddScore(SlotPrimary, 50)
	w.AddScore(SlotSecondary, 100)
	w.AddScore(Slot(7), 1000)

	testutil.AssertEqual(t, "primary", w.Score(SlotPrimary), 50)
	testutil.AssertEqual(t, "secondary", w.Score(SlotSecondary), 100)
	testutil.AssertEqual(t, "total", w.TotalScore(), 150)
	testutil.AssertEqual(t, "unknown slot", w.Score(Slot(7)), 0)
}

func TestCentralObstacle(t *testing.T) {
	o := &CentralObstacle{Origin: Position{X: 2, Y: 3}, Width: 3, Height: 2}
	if !o.Contains(Position{X: 4, Y: 4}) {
		t.Error("Expected (4,4) inside")
	}
	if o.Contains(Position{X: 5, Y: 4}) || o.Contains(Position{X: 2, Y: 5}) {
		t.Error("Expected cells outside the footprint to be excluded")
	}
	testutil.AssertEqual(t, "cells", len(o.Cells()), 6)

	var none *CentralObstacle
	if none.Contains(Position{}) {
		t.Error("Nil obstacle contains nothing")
	}
}

func TestWorldJSONRoundTrip(t *testing.T) {
	e := newTestEngine(t, ModeCoop,
		"b..2.",
		".1#..",
		"..X.H",
		"T...W",
		"....s",
	)
	e.Apply(CmdMoveLeft)
	e.Tick(700)

	data, err := json.Marshal(e.World())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got World
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	w := e.World()
	if got.Scores != w.Scores || got.RemainingMS != w.RemainingMS || got.ElapsedMS != w.ElapsedMS {
		t.Error("Scores or clock lost in round trip")
	}
	if got.Defeat != w.Defeat || got.Victory != w.Victory || got.TimeUp != w.TimeUp {
		t.Error("Terminal flags lost in round trip")
	}
	if got.Primary.Pos != w.Primary.Pos || got.Secondary.Pos != w.Secondary.Pos {
		t.Error("Actor positions lost in round trip")
	}
	if got.Primary.Busy != w.Primary.Busy {
		t.Error("Busy state lost in round trip")
	}
	if len(got.Adversaries) != 1 || got.Adversaries[0].Pos != w.Adversaries[0].Pos {
		t.Error("Adversaries lost in round trip")
	}
	if len(got.FreezeBlocks) != len(w.FreezeBlocks) || len(got.HeatTiles) != 1 || len(got.Walls) != 1 {
		t.Error("Terrain lost in round trip")
	}
	testutil.AssertEqual(t, "next id", got.NextID, w.NextID)
}
