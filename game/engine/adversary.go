package engine

import "fmt"

// AdversaryKind identifies an adversary species
type AdversaryKind string

const (
	AdversaryTroll   AdversaryKind = "troll"
	AdversaryPot     AdversaryKind = "pot"
	AdversaryNarwhal AdversaryKind = "narwhal"
)

// Valid reports whether k is a known adversary kind
func (k AdversaryKind) Valid() bool {
	switch k {
	case AdversaryTroll, AdversaryPot, AdversaryNarwhal:
		return true
	}
	return false
}

// Behavior tags the movement strategy of an adversary
type Behavior string

const (
	BehaviorWander Behavior = "wander"
	BehaviorChase  Behavior = "chase"
	BehaviorCharge Behavior = "charge"
)

// BehaviorFor returns the strategy a kind is built with
func BehaviorFor(k AdversaryKind) Behavior {
	switch k {
	case AdversaryTroll:
		return BehaviorChase
	case AdversaryNarwhal:
		return BehaviorCharge
	}
	return BehaviorWander
}

// Adversary is a hostile entity. Touching an active adversary kills an actor.
type Adversary struct {
	ID            int           `json:"id" msgpack:"id"`
	Kind          AdversaryKind `json:"kind" msgpack:"kind"`
	Behavior      Behavior      `json:"behavior" msgpack:"behavior"`
	Pos           Position      `json:"pos" msgpack:"pos"`
	Dir           Direction     `json:"dir" msgpack:"dir"`
	MoveTimerMS   int64         `json:"move_timer_ms" msgpack:"move_timer_ms"`
	ActionTimerMS int64         `json:"action_timer_ms" msgpack:"action_timer_ms"`
	Controlled    bool          `json:"controlled" msgpack:"controlled"`
	StuckCount    int           `json:"stuck_count" msgpack:"stuck_count"`
	Charging      bool          `json:"charging" msgpack:"charging"`
	ChargeDir     Direction     `json:"charge_dir" msgpack:"charge_dir"`
	Active        bool          `json:"active" msgpack:"active"`
}

// NewAdversary creates an active adversary with the behaviour of its kind
func NewAdversary(kind AdversaryKind, pos Position) *Adversary {
	return &Adversary{
		Kind:     kind,
		Behavior: BehaviorFor(kind),
		Pos:      pos,
		Active:   true,
	}
}

// Interval returns the movement cadence in milliseconds
func (a *Adversary) Interval() int64 {
	switch a.Kind {
	case AdversaryTroll:
		return TrollIntervalMS
	case AdversaryNarwhal:
		if a.Charging {
			return NarwhalChargeIntervalMS
		}
		return NarwhalIntervalMS
	}
	return PotIntervalMS
}

// CanBreakIce reports whether the kind may crack adjacent freeze-blocks
func (a *Adversary) CanBreakIce() bool {
	return a.Kind == AdversaryTroll || a.Kind == AdversaryNarwhal
}

// controlledAdversary returns the adversary steered by the secondary player
func (e *GameEngine) controlledAdversary() *Adversary {
	for _, a := range e.world.Adversaries {
		if a.Controlled && a.Active {
			return a
		}
	}
	return nil
}

func (e *GameEngine) advanceAdversaries(ms int64) {
	for _, a := range e.world.Adversaries {
		if !a.Active || a.Controlled {
			continue
		}
		a.MoveTimerMS += ms
		if a.MoveTimerMS < a.Interval() {
			continue
		}
		a.MoveTimerMS = 0
		e.stepAdversary(a)
	}
}

func (e *GameEngine) stepAdversary(a *Adversary) {
	switch a.Behavior {
	case BehaviorWander:
		e.wander(a)
	case BehaviorChase:
		e.chase(a)
	case BehaviorCharge:
		e.charge(a)
	default:
		panic(fmt.Sprintf("engine: adversary %d has unknown behavior %q", a.ID, a.Behavior))
	}
}

// legalFor reports whether the adversary may enter p
func (e *GameEngine) legalFor(a *Adversary, p Position) bool {
	sp := e.spatial()
	return sp.InBounds(p) && !sp.Blocked(p) && !sp.WallAt(p) && !sp.IglooAt(p) &&
		sp.OtherAdversaryAt(p, a.ID) == nil
}

func (e *GameEngine) tryStep(a *Adversary, dir Direction) bool {
	if dir == DirNone {
		return false
	}
	next := a.Pos.Step(dir)
	if !e.legalFor(a, next) {
		return false
	}
	a.Pos = next
	return true
}

// redirect turns a blocked adversary toward a new random open direction
// and takes that step. It reports whether the adversary moved.
func (e *GameEngine) redirect(a *Adversary) bool {
	blocked := a.Dir
	for _, d := range e.shuffledDirections() {
		if d == blocked {
			continue
		}
		if e.tryStep(a, d) {
			a.Dir = d
			return true
		}
	}
	a.Dir = e.randomDirection()
	return false
}

// settle records the outcome of one move attempt. StuckCount only counts
// consecutive attempts that left the adversary in place.
func (a *Adversary) settle(moved bool) {
	if moved {
		a.StuckCount = 0
		return
	}
	a.StuckCount++
}

func (e *GameEngine) wander(a *Adversary) {
	if a.Dir == DirNone {
		a.Dir = e.randomDirection()
	}
	a.settle(e.tryStep(a, a.Dir) || e.redirect(a))
}

func (e *GameEngine) chase(a *Adversary) {
	target := e.nearestLivingActor(a.Pos)
	if target == nil {
		e.wander(a)
		return
	}
	primary, secondary := axisDirections(a.Pos, target.Pos)
	if primary == DirNone {
		return
	}

	dir := primary
	switch {
	case a.StuckCount >= StuckThreshold:
		// alternate axis priority on every failed attempt
		if a.StuckCount%2 == 0 {
			dir = secondary
			if dir == DirNone {
				dir = e.randomPerpendicular(primary)
			}
		}
	case ManhattanDistance(a.Pos, target.Pos) <= ChaseNearRadius && secondary != DirNone:
		if e.rng.Intn(100) >= ChasePrimaryAxisPercent {
			dir = secondary
		}
	}

	if e.tryStep(a, dir) {
		a.Dir = dir
		a.settle(true)
		return
	}
	a.Dir = dir
	a.settle(e.redirect(a))
}

func (e *GameEngine) charge(a *Adversary) {
	if !a.Charging {
		dir, ok := e.lineOfSight(a.Pos)
		if !ok {
			e.wander(a)
			return
		}
		a.Charging = true
		a.ChargeDir = dir
		a.Dir = dir
	}
	e.chargeStep(a)
}

// chargeStep moves one cell along the locked direction, shattering
// breakable ice in the way.
func (e *GameEngine) chargeStep(a *Adversary) {
	sp := e.spatial()
	next := a.Pos.Step(a.ChargeDir)
	if !sp.InBounds(next) || sp.WallAt(next) || sp.IglooAt(next) || sp.OtherAdversaryAt(next, a.ID) != nil {
		e.endCharge(a)
		return
	}
	if b := sp.FreezeBlockAt(next); b != nil {
		if b.Permanent {
			e.endCharge(a)
			return
		}
		e.world.RemoveFreezeBlock(next)
	}
	a.Pos = next
}

func (e *GameEngine) endCharge(a *Adversary) {
	a.Charging = false
	a.ChargeDir = DirNone
	a.Dir = e.randomDirection()
	a.MoveTimerMS = 0
}

// lineOfSight scans the four axis rays from p for the nearest living actor.
// Walls, the igloo and the board edge block vision; ice does not.
func (e *GameEngine) lineOfSight(p Position) (Direction, bool) {
	sp := e.spatial()
	best, bestDist := DirNone, UnreachableDistance
	for _, d := range Directions {
		dist := 0
		traceRay(p.Step(d), d, func(c Position) bool {
			return sp.InBounds(c) && !sp.WallAt(c) && !sp.IglooAt(c)
		}, func(c Position) bool {
			dist++
			if target := sp.ActorAt(c); target == nil || target.Down() {
				return true
			}
			if dist < bestDist {
				best, bestDist = d, dist
			}
			return false
		})
	}
	return best, best != DirNone
}

func (e *GameEngine) nearestLivingActor(p Position) *Actor {
	var nearest *Actor
	bestDist := UnreachableDistance
	for _, a := range e.world.Actors() {
		if a.Down() {
			continue
		}
		if d := ManhattanDistance(p, a.Pos); d < bestDist {
			nearest, bestDist = a, d
		}
	}
	return nearest
}

// breakAdjacentIce marks breakable blocks around the adversary as breaking
func (e *GameEngine) breakAdjacentIce(a *Adversary) []Position {
	if !a.CanBreakIce() {
		return nil
	}
	sp := e.spatial()
	var cells []Position
	for _, d := range Directions {
		b := sp.FreezeBlockAt(a.Pos.Step(d))
		if b == nil || b.Permanent || b.Breaking {
			continue
		}
		b.Breaking = true
		b.BreakStartMS = e.world.ElapsedMS
		cells = append(cells, b.Pos)
	}
	return cells
}

// moveControlledAdversary steps the player-steered adversary
func (e *GameEngine) moveControlledAdversary(dir Direction) bool {
	w := e.world
	a := e.controlledAdversary()
	if a == nil || w.Terminal() || w.Paused || dir == DirNone {
		return false
	}
	a.Dir = dir
	if !e.tryStep(a, dir) {
		return false
	}
	e.resolveAdversaryContacts()
	return true
}

// axisDirections returns the dominant and the secondary axis direction
// from one position toward another. Ties favour the horizontal axis.
func axisDirections(from, to Position) (primary, secondary Direction) {
	dx, dy := to.X-from.X, to.Y-from.Y
	var h, v Direction
	switch {
	case dx > 0:
		h = DirRight
	case dx < 0:
		h = DirLeft
	}
	switch {
	case dy > 0:
		v = DirDown
	case dy < 0:
		v = DirUp
	}
	if abs(dx) >= abs(dy) {
		if h == DirNone {
			return v, DirNone
		}
		return h, v
	}
	return v, h
}
