package engine

// BusyKind names the single busy state an actor can hold
type BusyKind string

const (
	BusyIdle        BusyKind = "idle"
	BusySneeze      BusyKind = "sneeze"
	BusyKick        BusyKind = "kick"
	BusyDying       BusyKind = "dying"
	BusyCelebrating BusyKind = "celebrating"
)

// BusyState is a busy kind with its countdown
type BusyState struct {
	Kind        BusyKind `json:"kind" msgpack:"kind"`
	RemainingMS int64    `json:"remaining_ms" msgpack:"remaining_ms"`
}

// Idle reports whether no busy state is active
func (b BusyState) Idle() bool {
	return b.Kind == BusyIdle || b.Kind == ""
}

// Actor is a character controlled by a player or an autopilot
type Actor struct {
	Slot   Slot      `json:"slot" msgpack:"slot"`
	Pos    Position  `json:"pos" msgpack:"pos"`
	Facing Direction `json:"facing" msgpack:"facing"`
	Moving Direction `json:"moving" msgpack:"moving"`
	Alive  bool      `json:"alive" msgpack:"alive"`
	Busy   BusyState `json:"busy" msgpack:"busy"`
}

// NewActor creates a living, idle actor facing down
func NewActor(slot Slot, pos Position) *Actor {
	return &Actor{
		Slot:   slot,
		Pos:    pos,
		Facing: DirDown,
		Alive:  true,
		Busy:   BusyState{Kind: BusyIdle},
	}
}

// IsBusy reports whether the actor is locked out of moves and actions
func (a *Actor) IsBusy() bool {
	return !a.Busy.Idle()
}

// Down reports whether the actor is dead or dying
func (a *Actor) Down() bool {
	return !a.Alive || a.Busy.Kind == BusyDying
}

// Ready reports whether the actor can accept a move or action
func (a *Actor) Ready() bool {
	return a.Alive && !a.IsBusy()
}

func (a *Actor) setBusy(kind BusyKind, ms int64) {
	a.Busy = BusyState{Kind: kind, RemainingMS: ms}
}

func (a *Actor) startDying() {
	if a.Down() {
		return
	}
	a.Moving = DirNone
	a.setBusy(BusyDying, DyingDurationMS)
}

func (a *Actor) startCelebrating() {
	if a.Down() {
		return
	}
	a.Moving = DirNone
	a.setBusy(BusyCelebrating, CelebrateDurationMS)
}

// advance counts the busy state down. A finished dying state leaves the actor dead.
func (a *Actor) advance(ms int64) {
	if a.Busy.Idle() {
		return
	}
	a.Busy.RemainingMS -= ms
	if a.Busy.RemainingMS > 0 {
		return
	}
	dying := a.Busy.Kind == BusyDying
	a.Busy = BusyState{Kind: BusyIdle}
	if dying {
		a.Alive = false
	}
}
