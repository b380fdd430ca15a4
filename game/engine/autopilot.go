package engine

// Autopilot drives an actor in place of a human player
type Autopilot struct {
	Slot          Slot       `json:"slot"`
	MoveTimerMS   int64      `json:"move_timer_ms"`
	ActionTimerMS int64      `json:"action_timer_ms"`
	History       []Position `json:"history"`
	NoopMoves     int        `json:"noop_moves"`
}

// AdversaryPilot drives the player-steered adversary when nobody is steering it.
// Its cadence lives on the adversary's own timers.
type AdversaryPilot struct {
	AdversaryID int `json:"adversary_id"`
}

func (e *GameEngine) resetPilots() {
	e.pilots = nil
	slots := append([]Slot(nil), e.autopilotSlots...)
	if e.world.Mode == ModeAutonomous {
		slots = append(slots, SlotSecondary)
	}

	seen := map[Slot]bool{}
	for _, s := range slots {
		if seen[s] || e.world.Actor(s) == nil {
			continue
		}
		seen[s] = true
		e.pilots = append(e.pilots, &Autopilot{Slot: s})
	}

	e.adversaryPilot = nil
	if a := e.controlledAdversary(); e.adversaryAutopilot && a != nil {
		e.adversaryPilot = &AdversaryPilot{AdversaryID: a.ID}
	}
}

// Autopilots returns the autopilots currently driving actors
func (e *GameEngine) Autopilots() []*Autopilot {
	return e.pilots
}

func (e *GameEngine) runAutopilots(ms int64) {
	for _, p := range e.pilots {
		e.drive(p, ms)
	}
	if e.adversaryPilot != nil {
		e.driveAdversary(e.adversaryPilot, ms)
	}
}

func (e *GameEngine) drive(p *Autopilot, ms int64) {
	a := e.world.Actor(p.Slot)
	if a == nil || a.Down() {
		return
	}
	p.MoveTimerMS += ms
	p.ActionTimerMS += ms

	if p.MoveTimerMS >= AutopilotMoveIntervalMS {
		p.MoveTimerMS = 0
		e.autoMove(p, a)
	}
	if p.ActionTimerMS >= AutopilotActionIntervalMS {
		p.ActionTimerMS = 0
		e.autoAct(a)
	}
}

func (e *GameEngine) autoMove(p *Autopilot, a *Actor) {
	if !a.Ready() {
		return
	}
	if p.Looping() || p.NoopMoves >= MaxNoopMoves {
		e.pilotStep(p, a, e.randomDirection())
		p.History = p.History[:0]
		p.NoopMoves = 0
		return
	}
	dir := e.chooseDirection(a)
	if dir == DirNone {
		p.NoopMoves++
		return
	}
	e.pilotStep(p, a, dir)
}

func (e *GameEngine) pilotStep(p *Autopilot, a *Actor, dir Direction) {
	before := a.Pos
	e.moveActor(a.Slot, dir)
	if a.Pos == before {
		p.NoopMoves++
	} else {
		p.NoopMoves = 0
	}
	p.remember(a.Pos)
}

func (p *Autopilot) remember(pos Position) {
	p.History = append(p.History, pos)
	if len(p.History) > LoopHistorySize {
		p.History = p.History[len(p.History)-LoopHistorySize:]
	}
}

// Looping reports whether the actor keeps revisiting the same few cells:
// at least LoopThreshold of the earlier LoopEarlyWindow positions recur
// among the most recent ones.
func (p *Autopilot) Looping() bool {
	n := len(p.History)
	if n < LoopHistorySize {
		return false
	}
	window := p.History[n-LoopHistorySize:]
	earlier := window[:LoopEarlyWindow]
	recent := window[LoopEarlyWindow:]

	count := 0
	for _, pos := range earlier {
		if containsPosition(recent, pos) {
			count++
		}
	}
	return count >= LoopThreshold
}

func (e *GameEngine) chooseDirection(a *Actor) Direction {
	if threat, dist := e.nearestThreat(a.Pos); threat != nil && dist <= DangerRadiusBase+e.world.Difficulty {
		return e.retreat(a, threat.Pos)
	}
	target, ok := e.autopilotTarget(a.Pos)
	if !ok {
		return DirNone
	}
	return e.approach(a, target)
}

// steppable reports whether an autopilot would walk onto p
func (e *GameEngine) steppable(p Position) bool {
	sp := e.spatial()
	if sp.Impassable(p) || sp.AdversaryAt(p) != nil {
		return false
	}
	if c := sp.CollectibleAt(p); c != nil && c.Lethal() {
		return false
	}
	return true
}

func (e *GameEngine) retreat(a *Actor, from Position) Direction {
	best, bestDist := DirNone, -1
	for _, d := range e.shuffledDirections() {
		next := a.Pos.Step(d)
		if !e.steppable(next) {
			continue
		}
		if dist := ManhattanDistance(next, from); dist > bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

func (e *GameEngine) approach(a *Actor, target Position) Direction {
	primary, secondary := axisDirections(a.Pos, target)
	for _, d := range []Direction{primary, secondary} {
		if d != DirNone && e.steppable(a.Pos.Step(d)) {
			return d
		}
	}
	for _, d := range e.shuffledDirections() {
		if e.steppable(a.Pos.Step(d)) {
			return d
		}
	}
	return DirNone
}

func (e *GameEngine) autoAct(a *Actor) {
	if !a.Ready() || a.Facing == DirNone {
		return
	}
	sp := e.spatial()
	ahead := a.Pos.Step(a.Facing)

	if b := sp.FreezeBlockAt(ahead); b != nil {
		if target, ok := e.autopilotTarget(a.Pos); ok && !b.Permanent && !b.Breaking &&
			ManhattanDistance(ahead, target) < ManhattanDistance(a.Pos, target) {
			e.act(a.Slot)
		}
		return
	}

	if e.world.Difficulty < SneezeDifficulty {
		return
	}
	threat, dist := e.nearestThreat(a.Pos)
	if threat == nil || dist < SneezeThreatMin || dist > SneezeThreatMax {
		return
	}
	if primary, secondary := axisDirections(a.Pos, threat.Pos); primary == a.Facing && secondary == DirNone {
		e.act(a.Slot)
	}
}

func (e *GameEngine) nearestThreat(p Position) (*Adversary, int) {
	var nearest *Adversary
	bestDist := UnreachableDistance
	for _, adv := range e.world.Adversaries {
		if !adv.Active {
			continue
		}
		if d := ManhattanDistance(p, adv.Pos); d < bestDist {
			nearest, bestDist = adv, d
		}
	}
	return nearest, bestDist
}

// autopilotTarget returns the nearest collectible that is safe to pick up
func (e *GameEngine) autopilotTarget(p Position) (Position, bool) {
	var best Position
	bestDist := UnreachableDistance
	for _, c := range e.world.Collectibles {
		if !c.Available() || c.Lethal() {
			continue
		}
		if d := ManhattanDistance(p, c.Pos); d < bestDist {
			best, bestDist = c.Pos, d
		}
	}
	return best, bestDist != UnreachableDistance
}

func (e *GameEngine) driveAdversary(p *AdversaryPilot, ms int64) {
	a := e.world.AdversaryByID(p.AdversaryID)
	if a == nil || !a.Active {
		return
	}
	a.MoveTimerMS += ms
	a.ActionTimerMS += ms

	if a.MoveTimerMS >= a.Interval() {
		a.MoveTimerMS = 0
		if e.world.Difficulty >= AutoChaseDifficulty || e.rng.Intn(100) < AutoChasePercent {
			e.chase(a)
		} else {
			e.wander(a)
		}
		e.resolveAdversaryContacts()
	}
	if a.ActionTimerMS >= AdversaryBreakIntervalMS {
		a.ActionTimerMS = 0
		e.breakAdjacentIce(a)
	}
}
