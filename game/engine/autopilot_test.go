package engine

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func path(points ...int) []Position {
	out := make([]Position, 0, len(points)/2)
	for i := 0; i+1 < len(points); i += 2 {
		out = append(out, Position{X: points[i], Y: points[i+1]})
	}
	return out
}

func TestLoopDetector(t *testing.T) {
	tests := []struct {
		name    string
		history []Position
		want    bool
	}{
		{"too short", path(0, 0, 1, 0, 0, 0, 1, 0, 0, 0), false},
		{"oscillating", path(0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0), true},
		{"straight line", path(0, 0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0, 7, 0), false},
		{"square walk", path(0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 1), true},
		{"two revisits", path(0, 0, 1, 0, 2, 0, 3, 0, 4, 0, 3, 0, 4, 0, 5, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Autopilot{History: tt.history}
			testutil.AssertEqual(t, "looping", p.Looping(), tt.want)
		})
	}
}

func TestRememberKeepsWindow(t *testing.T) {
	p := &Autopilot{}
	for i := 0; i < 20; i++ {
		p.remember(Position{X: i})
	}
	testutil.AssertEqual(t, "history size", len(p.History), LoopHistorySize)
	testutil.AssertEqual(t, "newest", p.History[LoopHistorySize-1].X, 19)
}

func TestAutopilotCollects(t *testing.T) {
	level := createTestLevel(ModeSingle,
		".......",
		".1..b..",
		".......",
		".......",
		".......",
		".......",
		".......",
	)
	e, err := NewEngine(level, WithSeed(5), WithAutopilot(SlotPrimary))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	for i := 0; i < 3; i++ {
		e.Tick(AutopilotMoveIntervalMS)
	}
	testutil.AssertEqual(t, "score", e.Score(SlotPrimary), 50)
	if !e.IsVictory() {
		t.Error("Expected the autopilot to clear the board")
	}
}

func TestAutonomousModePilotsSecondary(t *testing.T) {
	e := newTestEngine(t, ModeAutonomous,
		"b....",
		".1...",
		".....",
		"...2.",
		".....",
	)
	pilots := e.Autopilots()
	if len(pilots) != 1 || pilots[0].Slot != SlotSecondary {
		t.Fatalf("Expected one autopilot on the secondary slot, got %+v", pilots)
	}

	snap := e.Snapshot()
	for _, a := range snap.Actors {
		testutil.AssertEqual(t, "autopilot flag "+a.Slot.String(), a.Autopilot, a.Slot == SlotSecondary)
	}
}

func TestAutopilotRetreats(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"b......",
		".......",
		".......",
		"...1P..",
		".......",
		".......",
		".......",
	)
	a := e.World().Primary
	dir := e.chooseDirection(a)
	if dir == DirRight {
		t.Fatal("Autopilot walked into the threat")
	}
	next := a.Pos.Step(dir)
	if ManhattanDistance(next, Position{X: 4, Y: 3}) <= 1 {
		t.Errorf("Expected retreat to gain distance, moving %s", dir)
	}
}

func TestAutopilotKicksTowardTarget(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		".......",
		".......",
		".1#.b..",
		".......",
		".......",
		".......",
		".......",
	)
	a := e.World().Primary
	a.Facing = DirRight

	e.autoAct(a)
	if a.Busy.Kind != BusyKick {
		t.Fatalf("Expected kick, got %s", a.Busy.Kind)
	}
	if b := e.spatial().FreezeBlockAt(Position{X: 2, Y: 2}); b == nil || !b.Breaking {
		t.Error("Expected the block ahead to be breaking")
	}
}

func TestAutopilotIgnoresIceAwayFromTarget(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		".......",
		".......",
		"b#1....",
		".......",
		".......",
		".......",
		".......",
	)
	a := e.World().Primary
	a.Facing = DirLeft
	e.World().Collectibles[0].Pos = Position{X: 6, Y: 2}

	e.autoAct(a)
	if a.IsBusy() {
		t.Errorf("Expected no action, got %s", a.Busy.Kind)
	}
}

func TestAutopilotSneezesAtThreat(t *testing.T) {
	level := createTestLevel(ModeSingle,
		"b......",
		".......",
		".1...P.",
		".......",
		".......",
		".......",
		".......",
	)
	level.Difficulty = 2
	e, err := NewEngine(level, WithSeed(2))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	a := e.World().Primary
	a.Facing = DirRight

	e.autoAct(a)
	if a.Busy.Kind != BusySneeze {
		t.Fatalf("Expected sneeze, got %s", a.Busy.Kind)
	}
	testutil.AssertEqual(t, "blocks", len(e.World().FreezeBlocks), 3)
}

func TestAutopilotNoSneezeOnEasy(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"b......",
		".......",
		".1...P.",
		".......",
		".......",
		".......",
		".......",
	)
	a := e.World().Primary
	a.Facing = DirRight

	e.autoAct(a)
	if a.IsBusy() {
		t.Error("Difficulty 1 autopilot must not sneeze")
	}
}
