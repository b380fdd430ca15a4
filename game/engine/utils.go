package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// traceRay walks from start in dir while cont holds, calling visit on every
// cell. visit returns false to stop early.
func traceRay(start Position, dir Direction, cont func(Position) bool, visit func(Position) bool) {
	if dir == DirNone {
		return
	}
	for p := start; cont(p); p = p.Step(dir) {
		if !visit(p) {
			return
		}
	}
}

func (e *GameEngine) randomDirection() Direction {
	return Directions[e.rng.Intn(len(Directions))]
}

func (e *GameEngine) shuffledDirections() []Direction {
	dirs := Directions[:]
	out := make([]Direction, len(dirs))
	copy(out, dirs)
	e.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (e *GameEngine) randomPerpendicular(d Direction) Direction {
	var pair [2]Direction
	if d.Horizontal() {
		pair = [2]Direction{DirUp, DirDown}
	} else {
		pair = [2]Direction{DirLeft, DirRight}
	}
	return pair[e.rng.Intn(2)]
}

// randomFreeCell picks a uniformly random empty cell on the board
func (e *GameEngine) randomFreeCell() (Position, bool) {
	sp := e.spatial()
	var free []Position
	for y := 0; y < e.world.GridSize; y++ {
		for x := 0; x < e.world.GridSize; x++ {
			if p := (Position{X: x, Y: y}); sp.FreeCell(p) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return Position{}, false
	}
	return free[e.rng.Intn(len(free))], true
}

// CountAvailable returns how many collectibles are on the board and how many
// more are queued in waves.
func CountAvailable(w *World) (onBoard, queued int) {
	onBoard = w.AvailableCollectibles()
	for _, wave := range w.Waves {
		queued += len(wave)
	}
	return onBoard, queued
}
