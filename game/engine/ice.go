package engine

// act performs the ice action for the actor in slot: a kick when ice sits
// directly ahead, a sneeze otherwise. It returns the affected cells in ray
// order.
func (e *GameEngine) act(slot Slot) ([]Position, bool) {
	w := e.world
	a := w.Actor(slot)
	if a == nil || !a.Ready() || w.Terminal() || w.Paused {
		return nil, false
	}

	dir := a.Facing
	if dir == DirNone {
		dir = DirDown
	}
	ahead := a.Pos.Step(dir)

	if e.spatial().Blocked(ahead) {
		cells := e.kick(ahead, dir)
		a.setBusy(BusyKick, KickDurationMS)
		return cells, true
	}
	cells := e.sneeze(ahead, dir)
	a.setBusy(BusySneeze, SneezeDurationMS)
	return cells, true
}

// kick marks every breakable block in the contiguous run starting at start.
// Permanent blocks are passed over untouched.
func (e *GameEngine) kick(start Position, dir Direction) []Position {
	sp := e.spatial()
	cells := []Position{}
	traceRay(start, dir, sp.Blocked, func(p Position) bool {
		b := sp.FreezeBlockAt(p)
		if b.Permanent || b.Breaking {
			return true
		}
		b.Breaking = true
		b.BreakStartMS = e.world.ElapsedMS
		cells = append(cells, p)
		return true
	})
	return cells
}

// sneeze lays ice along the open run starting at start. Heat tiles are
// crossed but never frozen.
func (e *GameEngine) sneeze(start Position, dir Direction) []Position {
	sp := e.spatial()
	cells := []Position{}
	open := func(p Position) bool {
		return sp.InBounds(p) && sp.AdversaryAt(p) == nil && !sp.Blocked(p) &&
			!sp.IglooAt(p) && !sp.WallAt(p) && sp.ActorAt(p) == nil
	}
	traceRay(start, dir, open, func(p Position) bool {
		if sp.HeatTileAt(p) {
			return true
		}
		e.world.AddFreezeBlock(p, false)
		cells = append(cells, p)
		return true
	})
	return cells
}

// purgeBrokenIce removes blocks whose break animation has finished
func (e *GameEngine) purgeBrokenIce() {
	w := e.world
	kept := w.FreezeBlocks[:0]
	for _, b := range w.FreezeBlocks {
		if b.Breaking && w.ElapsedMS-b.BreakStartMS >= BreakDurationMS {
			continue
		}
		kept = append(kept, b)
	}
	w.FreezeBlocks = kept
}
