package engine

// resolveCollisions checks every actor against collectibles and adversaries
func (e *GameEngine) resolveCollisions() {
	for _, a := range e.world.Actors() {
		e.collideWithCollectible(a)
		e.collideWithAdversary(a)
	}
}

// resolveAdversaryContacts only checks actor/adversary overlap
func (e *GameEngine) resolveAdversaryContacts() {
	for _, a := range e.world.Actors() {
		e.collideWithAdversary(a)
	}
}

func (e *GameEngine) collideWithAdversary(a *Actor) {
	if a.Down() {
		return
	}
	if e.spatial().AdversaryAt(a.Pos) == nil {
		return
	}
	e.kill(a)
}

func (e *GameEngine) collideWithCollectible(a *Actor) {
	if a.Down() {
		return
	}
	c := e.spatial().CollectibleAt(a.Pos)
	if c == nil {
		return
	}
	if c.Lethal() {
		e.kill(a)
		return
	}
	c.collect()
	e.world.AddScore(a.Slot, c.Points())
}

func (e *GameEngine) kill(a *Actor) {
	a.startDying()
	if e.allActorsDown() {
		e.world.SetDefeat()
	}
}

func (e *GameEngine) allActorsDown() bool {
	for _, a := range e.world.Actors() {
		if !a.Down() {
			return false
		}
	}
	return true
}
