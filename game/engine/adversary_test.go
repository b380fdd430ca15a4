package engine

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestBehaviorFor(t *testing.T) {
	tests := []struct {
		kind     AdversaryKind
		behavior Behavior
		interval int64
		breaks   bool
	}{
		{AdversaryTroll, BehaviorChase, TrollIntervalMS, true},
		{AdversaryPot, BehaviorWander, PotIntervalMS, false},
		{AdversaryNarwhal, BehaviorCharge, NarwhalIntervalMS, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			a := NewAdversary(tt.kind, Position{})
			testutil.AssertEqual(t, "behavior", a.Behavior, tt.behavior)
			testutil.AssertEqual(t, "interval", a.Interval(), tt.interval)
			testutil.AssertEqual(t, "can break ice", a.CanBreakIce(), tt.breaks)
		})
	}

	n := NewAdversary(AdversaryNarwhal, Position{})
	n.Charging = true
	testutil.AssertEqual(t, "charging interval", n.Interval(), NarwhalChargeIntervalMS)
}

func TestAxisDirections(t *testing.T) {
	tests := []struct {
		name          string
		from, to      Position
		primary, secn Direction
	}{
		{"left only", Position{X: 4, Y: 1}, Position{X: 1, Y: 1}, DirLeft, DirNone},
		{"down only", Position{X: 1, Y: 1}, Position{X: 1, Y: 4}, DirDown, DirNone},
		{"horizontal dominant", Position{X: 0, Y: 0}, Position{X: 4, Y: 1}, DirRight, DirDown},
		{"vertical dominant", Position{X: 3, Y: 5}, Position{X: 2, Y: 0}, DirUp, DirLeft},
		{"tie favours horizontal", Position{X: 2, Y: 2}, Position{X: 0, Y: 0}, DirLeft, DirUp},
		{"same cell", Position{X: 2, Y: 2}, Position{X: 2, Y: 2}, DirNone, DirNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, s := axisDirections(tt.from, tt.to)
			if p != tt.primary || s != tt.secn {
				t.Errorf("Expected (%s,%s), got (%s,%s)", tt.primary, tt.secn, p, s)
			}
		})
	}
}

func TestChaseClosesDistance(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"b....",
		".1..T",
		".....",
		".....",
		".....",
	)
	e.Tick(TrollIntervalMS)
	troll := e.World().Adversaries[0]
	if troll.Pos != (Position{X: 3, Y: 1}) {
		t.Errorf("Expected troll at (3,1), got %v", troll.Pos)
	}
	testutil.AssertEqual(t, "stuck count", troll.StuckCount, 0)
}

func TestChaseTimerAccumulates(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"b....",
		".1..T",
		".....",
		".....",
		".....",
	)
	e.Tick(TrollIntervalMS - 100)
	troll := e.World().Adversaries[0]
	if troll.Pos != (Position{X: 4, Y: 1}) {
		t.Fatal("Troll moved before its interval elapsed")
	}
	e.Tick(100)
	if troll.Pos != (Position{X: 3, Y: 1}) {
		t.Errorf("Expected troll to move once its timer reached the interval, at %v", troll.Pos)
	}
}

func TestChaseBlockedRedirects(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"b....",
		".1.WT",
		".....",
		".....",
		".....",
	)
	e.Tick(TrollIntervalMS)
	troll := e.World().Adversaries[0]
	if troll.Pos == (Position{X: 4, Y: 1}) {
		t.Error("Blocked troll must pick a new direction instead of stalling")
	}
	testutil.AssertEqual(t, "stuck count", troll.StuckCount, 0)
	if !e.legalFor(troll, troll.Pos) {
		t.Errorf("Troll ended on an illegal cell %v", troll.Pos)
	}
}

func TestChargeThroughIce(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"......b",
		".......",
		".......",
		"N.#..1.",
		".......",
		".......",
		".......",
	)
	narwhal := e.World().Adversaries[0]

	e.Tick(NarwhalIntervalMS)
	if !narwhal.Charging || narwhal.ChargeDir != DirRight {
		t.Fatalf("Expected narwhal to charge right, charging=%v dir=%s", narwhal.Charging, narwhal.ChargeDir)
	}
	if narwhal.Pos != (Position{X: 1, Y: 3}) {
		t.Fatalf("Expected first charge step to (1,3), got %v", narwhal.Pos)
	}

	e.Tick(NarwhalChargeIntervalMS)
	if narwhal.Pos != (Position{X: 2, Y: 3}) {
		t.Errorf("Expected narwhal to smash into (2,3), got %v", narwhal.Pos)
	}
	if e.spatial().Blocked(Position{X: 2, Y: 3}) {
		t.Error("Expected charged ice to be destroyed")
	}
}

func TestChargeStopsAtPermanentIce(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"......b",
		".......",
		".......",
		"N.X..1.",
		".......",
		".......",
		".......",
	)
	narwhal := e.World().Adversaries[0]

	e.Tick(NarwhalIntervalMS)
	if !narwhal.Charging {
		t.Fatal("Ice must not block line of sight")
	}
	e.Tick(NarwhalChargeIntervalMS)
	if narwhal.Charging {
		t.Error("Expected the charge to end at permanent ice")
	}
	if narwhal.Pos != (Position{X: 1, Y: 3}) {
		t.Errorf("Expected narwhal to stay at (1,3), got %v", narwhal.Pos)
	}
	if !e.spatial().Blocked(Position{X: 2, Y: 3}) {
		t.Error("Permanent ice must survive a charge")
	}
}

func TestWallBlocksLineOfSight(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"......b",
		".......",
		".......",
		"N.W..1.",
		".......",
		".......",
		".......",
	)
	if _, ok := e.lineOfSight(Position{X: 0, Y: 3}); ok {
		t.Error("Wall must block line of sight")
	}

	e.Tick(NarwhalIntervalMS)
	if e.World().Adversaries[0].Charging {
		t.Error("Narwhal must not charge without line of sight")
	}
}

func TestIglooBlocksLineOfSight(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"......b",
		".......",
		".......",
		"N.I..1.",
		".......",
		".......",
		".......",
	)
	if _, ok := e.lineOfSight(Position{X: 0, Y: 3}); ok {
		t.Error("Igloo must block line of sight")
	}

	e.Tick(NarwhalIntervalMS)
	if e.World().Adversaries[0].Charging {
		t.Error("Narwhal must not charge through the igloo")
	}
}

func TestChargeEndsAtIgloo(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"1.....b",
		".......",
		".......",
		"N.I....",
		".......",
		".......",
		".......",
	)
	narwhal := e.World().Adversaries[0]
	narwhal.Charging = true
	narwhal.ChargeDir = DirRight

	e.chargeStep(narwhal)
	if narwhal.Pos != (Position{X: 1, Y: 3}) {
		t.Fatalf("Expected charge step to (1,3), got %v", narwhal.Pos)
	}
	e.chargeStep(narwhal)
	if narwhal.Charging {
		t.Error("Expected the charge to end at the igloo")
	}
	if narwhal.Pos != (Position{X: 1, Y: 3}) {
		t.Errorf("Expected narwhal to stop before the igloo, got %v", narwhal.Pos)
	}
}

func TestLineOfSightIgnoresDownedActors(t *testing.T) {
	e := newTestEngine(t, ModeCoop,
		"b...2",
		".....",
		".....",
		".....",
		"..1.N",
	)
	w := e.World()
	w.Primary.startDying()

	dir, ok := e.lineOfSight(Position{X: 4, Y: 4})
	if !ok {
		t.Fatal("Expected the living secondary to be visible")
	}
	testutil.AssertEqual(t, "charge direction", dir, DirUp)

	w.Secondary.startDying()
	if _, ok := e.lineOfSight(Position{X: 4, Y: 4}); ok {
		t.Error("Downed actors must not draw a charge")
	}
}

func TestWanderResetsStuckCount(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"b......",
		".1.....",
		".......",
		"...P...",
		".......",
		".......",
		".......",
	)
	pot := e.World().Adversaries[0]
	for i := 0; i < 200; i++ {
		before := pot.Pos
		e.wander(pot)
		if pot.Pos == before {
			t.Fatalf("Step %d: pot did not move on an open board", i)
		}
		testutil.AssertEqual(t, "stuck count", pot.StuckCount, 0)
	}
}

func TestStuckCountCountsConsecutiveFailures(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"b......",
		".1.....",
		"...W...",
		"..WPW..",
		"...W...",
		".......",
		".......",
	)
	w := e.World()
	pot := w.Adversaries[0]
	for i := 1; i <= 3; i++ {
		e.wander(pot)
		testutil.AssertEqual(t, "stuck count", pot.StuckCount, i)
	}
	if pot.Pos != (Position{X: 3, Y: 3}) {
		t.Fatalf("Boxed-in pot moved to %v", pot.Pos)
	}

	w.Walls = nil
	e.wander(pot)
	testutil.AssertEqual(t, "stuck count after moving", pot.StuckCount, 0)
}

func TestWanderStaysLegal(t *testing.T) {
	e := newTestEngine(t, ModeSingle,
		"b.......",
		".1......",
		"..#..W..",
		"...III..",
		"...III.P",
		"..X.....",
		"....H..P",
		".......P",
	)
	for i := 0; i < 200; i++ {
		e.Tick(100)
		for _, a := range e.World().Adversaries {
			sp := e.spatial()
			if !sp.InBounds(a.Pos) || sp.Blocked(a.Pos) || sp.WallAt(a.Pos) || sp.IglooAt(a.Pos) {
				t.Fatalf("Tick %d: pot %d on illegal cell %v", i, a.ID, a.Pos)
			}
			if sp.OtherAdversaryAt(a.Pos, a.ID) != nil {
				t.Fatalf("Tick %d: two adversaries share %v", i, a.Pos)
			}
		}
	}
}

func TestVersusControlledAdversary(t *testing.T) {
	e := newTestEngine(t, ModeVersus,
		"b....",
		".1...",
		".....",
		"..#T.",
		".....",
	)
	troll := e.World().Adversaries[0]
	if !troll.Controlled {
		t.Fatal("Expected the first adversary to be player controlled in versus mode")
	}

	e.Tick(TrollIntervalMS * 3)
	if troll.Pos != (Position{X: 3, Y: 3}) {
		t.Errorf("Controlled adversary must not move on its own, at %v", troll.Pos)
	}

	if !e.Apply(CmdP2MoveDown).Accepted {
		t.Fatal("Expected p2 move to steer the adversary")
	}
	if troll.Pos != (Position{X: 3, Y: 4}) {
		t.Errorf("Expected troll at (3,4), got %v", troll.Pos)
	}
	if e.World().Primary.Pos != (Position{X: 1, Y: 1}) {
		t.Error("p2 commands must not move the primary actor")
	}

	e.Apply(CmdP2MoveUp)
	res := e.Apply(CmdP2Act)
	if !res.Accepted || len(res.Cells) != 1 || res.Cells[0] != (Position{X: 2, Y: 3}) {
		t.Fatalf("Expected p2_act to crack (2,3), got %+v", res)
	}
	if b := e.spatial().FreezeBlockAt(Position{X: 2, Y: 3}); b == nil || !b.Breaking {
		t.Error("Expected adjacent ice to be breaking")
	}
}

func TestVersusPotCannotBreakIce(t *testing.T) {
	e := newTestEngine(t, ModeVersus,
		"b....",
		".1...",
		".....",
		"..#P.",
		".....",
	)
	if e.Apply(CmdP2Act).Accepted {
		t.Error("A pot cannot break ice")
	}
}

func TestAdversaryAutopilot(t *testing.T) {
	level := createTestLevel(ModeVersus,
		"b....",
		".1...",
		".....",
		".....",
		"....T",
	)
	level.Difficulty = 3
	e, err := NewEngine(level, WithSeed(7), WithAdversaryAutopilot())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	troll := e.World().Adversaries[0]
	start := ManhattanDistance(troll.Pos, e.World().Primary.Pos)

	e.Tick(TrollIntervalMS)
	if got := ManhattanDistance(troll.Pos, e.World().Primary.Pos); got != start-1 {
		t.Errorf("Expected autonomous adversary to chase at difficulty 3, distance %d -> %d", start, got)
	}
}
