package engine

// Spatial answers read-only occupancy questions about a World
type Spatial struct {
	w *World
}

// NewSpatial wraps w in a query view
func NewSpatial(w *World) Spatial {
	return Spatial{w: w}
}

// InBounds reports whether p lies on the board
func (s Spatial) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.w.GridSize && p.Y < s.w.GridSize
}

// AdversaryAt returns the active adversary occupying p
func (s Spatial) AdversaryAt(p Position) *Adversary {
	return s.OtherAdversaryAt(p, 0)
}

// OtherAdversaryAt returns an active adversary at p other than the one with
// the given ID
func (s Spatial) OtherAdversaryAt(p Position, excludeID int) *Adversary {
	for _, a := range s.w.Adversaries {
		if a.Active && a.Pos == p && a.ID != excludeID {
			return a
		}
	}
	return nil
}

// FreezeBlockAt returns the freeze-block at p
func (s Spatial) FreezeBlockAt(p Position) *FreezeBlock {
	for _, b := range s.w.FreezeBlocks {
		if b.Pos == p {
			return b
		}
	}
	return nil
}

// CollectibleAt returns the collectible at p that can still be picked up
func (s Spatial) CollectibleAt(p Position) *Collectible {
	for _, c := range s.w.Collectibles {
		if c.Available() && c.Pos == p {
			return c
		}
	}
	return nil
}

// IglooAt reports whether p lies inside the igloo
func (s Spatial) IglooAt(p Position) bool {
	return s.w.Igloo.Contains(p)
}

// WallAt reports whether a wall occupies p
func (s Spatial) WallAt(p Position) bool {
	return containsPosition(s.w.Walls, p)
}

// HeatTileAt reports whether p is a heat tile
func (s Spatial) HeatTileAt(p Position) bool {
	return containsPosition(s.w.HeatTiles, p)
}

// Blocked reports whether a freeze-block sits at p
func (s Spatial) Blocked(p Position) bool {
	return s.FreezeBlockAt(p) != nil
}

// Impassable reports whether an actor may not enter p
func (s Spatial) Impassable(p Position) bool {
	return !s.InBounds(p) || s.Blocked(p) || s.WallAt(p) || s.IglooAt(p)
}

// ActorAt returns a living actor standing on p
func (s Spatial) ActorAt(p Position) *Actor {
	for _, a := range s.w.Actors() {
		if a.Alive && a.Pos == p {
			return a
		}
	}
	return nil
}

// FreeCell reports whether p is empty of every entity and obstacle
func (s Spatial) FreeCell(p Position) bool {
	if s.Impassable(p) {
		return false
	}
	if s.AdversaryAt(p) != nil || s.CollectibleAt(p) != nil || s.ActorAt(p) != nil {
		return false
	}
	return true
}

func containsPosition(list []Position, p Position) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}
