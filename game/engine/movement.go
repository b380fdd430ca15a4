package engine

// moveActor steps the actor in slot one cell toward dir. The attempt is
// accepted whenever the actor is free to act, even if the target cell turns
// out to be impassable and the step is rolled back.
func (e *GameEngine) moveActor(slot Slot, dir Direction) bool {
	w := e.world
	a := w.Actor(slot)
	if a == nil || !a.Ready() || w.Terminal() || w.Paused || dir == DirNone {
		return false
	}

	a.Facing = dir
	a.Moving = dir
	prev := a.Pos
	a.Pos = a.Pos.Step(dir)
	if e.spatial().Impassable(a.Pos) {
		a.Pos = prev
		a.Moving = DirNone
	}

	e.collideWithCollectible(a)
	e.collideWithAdversary(a)

	w.Turn++
	e.relocateTurnCoupled()
	return true
}

// stopActor clears the movement direction of the actor in slot
func (e *GameEngine) stopActor(slot Slot) bool {
	a := e.world.Actor(slot)
	if a == nil || !a.Alive {
		return false
	}
	a.Moving = DirNone
	return true
}

// CanMove reports whether the actor in slot could step toward dir right now
func (e *GameEngine) CanMove(slot Slot, dir Direction) bool {
	w := e.world
	a := w.Actor(slot)
	if a == nil || !a.Ready() || w.Terminal() || w.Paused || dir == DirNone {
		return false
	}
	return !e.spatial().Impassable(a.Pos.Step(dir))
}

// PossibleMoves lists the directions the actor in slot can step toward
func (e *GameEngine) PossibleMoves(slot Slot) []Direction {
	moves := []Direction{}
	for _, d := range Directions {
		if e.CanMove(slot, d) {
			moves = append(moves, d)
		}
	}
	return moves
}
