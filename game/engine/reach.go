package engine

// ReachFromStart flood-fills the layout from the primary start. Ordinary ice
// counts as open because it can be kicked away; walls, the igloo and
// permanent ice never open.
func (c *LevelConfig) ReachFromStart() map[Position]bool {
	legend := c.EffectiveLegend()

	start, found := Position{}, false
	for y, row := range c.Layout {
		for x := 0; x < len(row); x++ {
			if legend[string(row[x])] == string(TilePrimaryStart) {
				start, found = Position{X: x, Y: y}, true
			}
		}
	}
	reached := make(map[Position]bool)
	if !found {
		return reached
	}

	open := func(p Position) bool {
		switch TileKind(c.TileAt(legend, p)) {
		case "", TileWall, TileIgloo, TilePermanentIce:
			return false
		}
		return true
	}

	queue := []Position{start}
	reached[start] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			next := cur.Step(d)
			if reached[next] || !open(next) {
				continue
			}
			reached[next] = true
			queue = append(queue, next)
		}
	}
	return reached
}

// UnreachableCollectibles lists starting collectibles the primary actor can
// never walk to
func (c *LevelConfig) UnreachableCollectibles() []Position {
	legend := c.EffectiveLegend()
	reached := c.ReachFromStart()

	var out []Position
	for y, row := range c.Layout {
		for x := 0; x < len(row); x++ {
			p := Position{X: x, Y: y}
			if CollectibleKind(legend[string(row[x])]).Valid() && !reached[p] {
				out = append(out, p)
			}
		}
	}
	return out
}
