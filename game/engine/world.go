package engine

import (
	"github.com/google/uuid"
)

// FreezeBlock is a single ice tile on the board
type FreezeBlock struct {
	Pos          Position `json:"pos" msgpack:"pos"`
	Permanent    bool     `json:"permanent" msgpack:"permanent"`
	Breaking     bool     `json:"breaking" msgpack:"breaking"`
	BreakStartMS int64    `json:"break_start_ms" msgpack:"break_start_ms"`
}

// CentralObstacle is the fixed rectangular igloo in the middle of the board
type CentralObstacle struct {
	Origin Position `json:"origin" msgpack:"origin"`
	Width  int      `json:"width" msgpack:"width"`
	Height int      `json:"height" msgpack:"height"`
}

// Contains reports whether p lies within the obstacle footprint
func (o *CentralObstacle) Contains(p Position) bool {
	if o == nil {
		return false
	}
	return p.X >= o.Origin.X && p.X < o.Origin.X+o.Width &&
		p.Y >= o.Origin.Y && p.Y < o.Origin.Y+o.Height
}

// Cells returns every cell covered by the obstacle, row by row
func (o *CentralObstacle) Cells() []Position {
	if o == nil {
		return nil
	}
	cells := make([]Position, 0, o.Width*o.Height)
	for y := o.Origin.Y; y < o.Origin.Y+o.Height; y++ {
		for x := o.Origin.X; x < o.Origin.X+o.Width; x++ {
			cells = append(cells, Position{X: x, Y: y})
		}
	}
	return cells
}

// WaveSpawn is one queued collectible of a future wave. Random spawns pick a
// free cell at release time and ignore Pos.
type WaveSpawn struct {
	Kind   CollectibleKind `json:"kind" msgpack:"kind"`
	Pos    Position        `json:"pos" msgpack:"pos"`
	Random bool            `json:"random,omitempty" msgpack:"random"`
}

// World is the complete mutable state of one round
type World struct {
	RoundID    string   `json:"round_id" msgpack:"round_id"`
	LevelID    int      `json:"level_id" msgpack:"level_id"`
	LevelName  string   `json:"level_name" msgpack:"level_name"`
	GridSize   int      `json:"grid_size" msgpack:"grid_size"`
	Mode       GameMode `json:"mode" msgpack:"mode"`
	Difficulty int      `json:"difficulty" msgpack:"difficulty"`

	Primary      *Actor           `json:"primary" msgpack:"primary"`
	Secondary    *Actor           `json:"secondary,omitempty" msgpack:"secondary"`
	Adversaries  []*Adversary     `json:"adversaries" msgpack:"adversaries"`
	Collectibles []*Collectible   `json:"collectibles" msgpack:"collectibles"`
	Waves        [][]WaveSpawn    `json:"waves,omitempty" msgpack:"waves"`
	FreezeBlocks []*FreezeBlock   `json:"freeze_blocks" msgpack:"freeze_blocks"`
	HeatTiles    []Position       `json:"heat_tiles,omitempty" msgpack:"heat_tiles"`
	Igloo        *CentralObstacle `json:"igloo,omitempty" msgpack:"igloo"`
	Walls        []Position       `json:"walls,omitempty" msgpack:"walls"`

	ElapsedMS   int64  `json:"elapsed_ms" msgpack:"elapsed_ms"`
	RemainingMS int64  `json:"remaining_ms" msgpack:"remaining_ms"`
	TimeUp      bool   `json:"time_up" msgpack:"time_up"`
	Scores      [2]int `json:"scores" msgpack:"scores"`
	Defeat      bool   `json:"defeat" msgpack:"defeat"`
	Victory     bool   `json:"victory" msgpack:"victory"`
	Paused      bool   `json:"paused" msgpack:"paused"`
	Turn        int    `json:"turn" msgpack:"turn"`
	NextID      int    `json:"next_id" msgpack:"next_id"`
}

// NewWorld creates an empty world for a round
func NewWorld(gridSize int, mode GameMode, difficulty int, timeLimitMS int64) *World {
	return &World{
		RoundID:      uuid.NewString(),
		GridSize:     gridSize,
		Mode:         mode,
		Difficulty:   difficulty,
		Adversaries:  []*Adversary{},
		Collectibles: []*Collectible{},
		FreezeBlocks: []*FreezeBlock{},
		RemainingMS:  timeLimitMS,
		NextID:       1,
	}
}

func (w *World) allocID() int {
	if w.NextID < 1 {
		w.NextID = 1
	}
	id := w.NextID
	w.NextID++
	return id
}

// Size returns the side length of the square board
func (w *World) Size() int {
	return w.GridSize
}

// AddAdversary registers an adversary and assigns its ID
func (w *World) AddAdversary(a *Adversary) *Adversary {
	a.ID = w.allocID()
	w.Adversaries = append(w.Adversaries, a)
	return a
}

// RemoveAdversary drops the adversary with the given ID
func (w *World) RemoveAdversary(id int) bool {
	for i, a := range w.Adversaries {
		if a.ID == id {
			w.Adversaries = append(w.Adversaries[:i], w.Adversaries[i+1:]...)
			return true
		}
	}
	return false
}

// AdversaryByID looks up an adversary
func (w *World) AdversaryByID(id int) *Adversary {
	for _, a := range w.Adversaries {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// AddCollectible registers a collectible and assigns its ID
func (w *World) AddCollectible(c *Collectible) *Collectible {
	c.ID = w.allocID()
	w.Collectibles = append(w.Collectibles, c)
	return c
}

// RemoveCollectible drops the collectible with the given ID
func (w *World) RemoveCollectible(id int) bool {
	for i, c := range w.Collectibles {
		if c.ID == id {
			w.Collectibles = append(w.Collectibles[:i], w.Collectibles[i+1:]...)
			return true
		}
	}
	return false
}

// AddFreezeBlock places a block at pos
func (w *World) AddFreezeBlock(pos Position, permanent bool) *FreezeBlock {
	b := &FreezeBlock{Pos: pos, Permanent: permanent}
	w.FreezeBlocks = append(w.FreezeBlocks, b)
	return b
}

// RemoveFreezeBlock removes the block at pos
func (w *World) RemoveFreezeBlock(pos Position) bool {
	for i, b := range w.FreezeBlocks {
		if b.Pos == pos {
			w.FreezeBlocks = append(w.FreezeBlocks[:i], w.FreezeBlocks[i+1:]...)
			return true
		}
	}
	return false
}

// AddHeatTile marks pos as a heat tile
func (w *World) AddHeatTile(pos Position) {
	w.HeatTiles = append(w.HeatTiles, pos)
}

// AddWall places a permanent wall block at pos
func (w *World) AddWall(pos Position) {
	w.Walls = append(w.Walls, pos)
}

// SetIgloo installs the central obstacle
func (w *World) SetIgloo(o *CentralObstacle) {
	w.Igloo = o
}

// Actor returns the actor in the given slot, or nil
func (w *World) Actor(slot Slot) *Actor {
	if slot == SlotSecondary {
		return w.Secondary
	}
	return w.Primary
}

// Actors returns every actor taking part in the round
func (w *World) Actors() []*Actor {
	actors := make([]*Actor, 0, 2)
	if w.Primary != nil {
		actors = append(actors, w.Primary)
	}
	if w.Secondary != nil {
		actors = append(actors, w.Secondary)
	}
	return actors
}

// AddScore credits points to the actor slot
func (w *World) AddScore(slot Slot, points int) {
	if slot != SlotPrimary && slot != SlotSecondary {
		return
	}
	w.Scores[slot] += points
}

// Score returns the score of the actor slot
func (w *World) Score(slot Slot) int {
	if slot != SlotPrimary && slot != SlotSecondary {
		return 0
	}
	return w.Scores[slot]
}

// TotalScore sums both slots
func (w *World) TotalScore() int {
	return w.Scores[0] + w.Scores[1]
}

// AdvanceClock moves elapsed time forward and the countdown down. The
// countdown stops at zero, flips TimeUp once and is frozen once the round
// has ended.
func (w *World) AdvanceClock(ms int64) {
	if ms <= 0 {
		return
	}
	w.ElapsedMS += ms
	if w.TimeUp || w.Terminal() {
		return
	}
	w.RemainingMS -= ms
	if w.RemainingMS <= 0 {
		w.RemainingMS = 0
		w.TimeUp = true
	}
}

// SetDefeat ends the round in defeat unless it was already won
func (w *World) SetDefeat() {
	if w.Victory {
		return
	}
	w.Defeat = true
}

// SetVictory ends the round in victory unless it was already lost
func (w *World) SetVictory() {
	if w.Defeat {
		return
	}
	w.Victory = true
}

// Terminal reports whether the round has ended
func (w *World) Terminal() bool {
	return w.Defeat || w.Victory
}

// AvailableCollectibles counts collectibles that can still be picked up
func (w *World) AvailableCollectibles() int {
	n := 0
	for _, c := range w.Collectibles {
		if c.Available() {
			n++
		}
	}
	return n
}
