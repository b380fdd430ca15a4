package engine

// CollectibleKind identifies a fruit
type CollectibleKind string

const (
	CollectibleBanana    CollectibleKind = "banana"
	CollectibleGrape     CollectibleKind = "grape"
	CollectibleCherry    CollectibleKind = "cherry"
	CollectiblePineapple CollectibleKind = "pineapple"
	CollectibleCactus    CollectibleKind = "cactus"
)

// Valid reports whether k is a known collectible kind
func (k CollectibleKind) Valid() bool {
	return k.Points() > 0
}

// Points returns the score awarded for picking the kind up
func (k CollectibleKind) Points() int {
	switch k {
	case CollectibleBanana:
		return 50
	case CollectibleGrape:
		return 100
	case CollectibleCherry:
		return 150
	case CollectiblePineapple:
		return 200
	case CollectibleCactus:
		return 250
	}
	return 0
}

// TurnCoupled reports whether the kind moves whenever an actor moves
func (k CollectibleKind) TurnCoupled() bool {
	return k == CollectibleCherry
}

// CollectibleState is the lifecycle phase of a collectible
type CollectibleState string

const (
	StateSpawning    CollectibleState = "spawning"
	StateIdle        CollectibleState = "idle"
	StateTeleporting CollectibleState = "teleporting"
	StateSpiky       CollectibleState = "spiky"
	StateCollected   CollectibleState = "collected"
)

// Collectible is an item actors pick up for points
type Collectible struct {
	ID        int              `json:"id" msgpack:"id"`
	Kind      CollectibleKind  `json:"kind" msgpack:"kind"`
	Pos       Position         `json:"pos" msgpack:"pos"`
	State     CollectibleState `json:"state" msgpack:"state"`
	StateMS   int64            `json:"state_ms" msgpack:"state_ms"`
	Active    bool             `json:"active" msgpack:"active"`
	Collected bool             `json:"collected" msgpack:"collected"`
}

// NewCollectible creates an active collectible in its spawning phase
func NewCollectible(kind CollectibleKind, pos Position) *Collectible {
	return &Collectible{
		Kind:   kind,
		Pos:    pos,
		State:  StateSpawning,
		Active: true,
	}
}

// Available reports whether the collectible is still on the board
func (c *Collectible) Available() bool {
	return c.Active && !c.Collected
}

// Lethal reports whether touching the collectible kills an actor
func (c *Collectible) Lethal() bool {
	return c.State == StateSpiky
}

// Points returns the score the collectible is worth
func (c *Collectible) Points() int {
	return c.Kind.Points()
}

func (c *Collectible) collect() {
	c.State = StateCollected
	c.StateMS = 0
	c.Collected = true
	c.Active = false
}

func (c *Collectible) enter(state CollectibleState) {
	c.State = state
	c.StateMS = 0
}

// advanceCollectibles runs the timed abilities of every collectible
func (e *GameEngine) advanceCollectibles(ms int64) {
	for _, c := range e.world.Collectibles {
		if !c.Available() {
			continue
		}
		c.StateMS += ms
		switch c.State {
		case StateSpawning:
			if c.StateMS >= SpawnDurationMS {
				c.enter(StateIdle)
			}
		case StateIdle:
			switch {
			case c.Kind == CollectiblePineapple && c.StateMS >= TeleportIntervalMS:
				c.enter(StateTeleporting)
			case c.Kind == CollectibleCactus && c.StateMS >= CactusSafeMS:
				c.enter(StateSpiky)
			}
		case StateTeleporting:
			if c.StateMS >= TeleportDurationMS {
				if p, ok := e.randomFreeCell(); ok {
					c.Pos = p
				}
				c.enter(StateIdle)
			}
		case StateSpiky:
			if c.StateMS >= CactusSpikyMS {
				c.enter(StateIdle)
			}
		}
	}
}

// relocateTurnCoupled hops every available cherry to a random free
// neighbouring cell.
func (e *GameEngine) relocateTurnCoupled() {
	sp := e.spatial()
	for _, c := range e.world.Collectibles {
		if !c.Available() || !c.Kind.TurnCoupled() {
			continue
		}
		for _, d := range e.shuffledDirections() {
			if next := c.Pos.Step(d); sp.FreeCell(next) {
				c.Pos = next
				break
			}
		}
	}
}

// releaseWave spawns the next queued wave once the board has been cleared
func (e *GameEngine) releaseWave() {
	w := e.world
	if len(w.Waves) == 0 || w.AvailableCollectibles() > 0 {
		return
	}

	kept := w.Collectibles[:0]
	for _, c := range w.Collectibles {
		if c.Available() {
			kept = append(kept, c)
		}
	}
	w.Collectibles = kept

	wave := w.Waves[0]
	w.Waves = w.Waves[1:]
	sp := e.spatial()
	for _, spawn := range wave {
		pos := spawn.Pos
		if spawn.Random || sp.Impassable(pos) {
			p, ok := e.randomFreeCell()
			if !ok {
				continue
			}
			pos = p
		}
		w.AddCollectible(NewCollectible(spawn.Kind, pos))
	}
}
