package engine

// ActorView is the read-only view of an actor
type ActorView struct {
	Slot            Slot      `json:"slot"`
	Pos             Position  `json:"pos"`
	Facing          Direction `json:"facing"`
	Moving          Direction `json:"moving"`
	Alive           bool      `json:"alive"`
	Busy            BusyKind  `json:"busy"`
	BusyRemainingMS int64     `json:"busy_remaining_ms,omitempty"`
	Autopilot       bool      `json:"autopilot"`
}

// AdversaryView is the read-only view of an adversary
type AdversaryView struct {
	ID         int           `json:"id"`
	Kind       AdversaryKind `json:"kind"`
	Behavior   Behavior      `json:"behavior"`
	Pos        Position      `json:"pos"`
	Dir        Direction     `json:"dir"`
	Charging   bool          `json:"charging"`
	Controlled bool          `json:"controlled"`
}

// CollectibleView is the read-only view of an uncollected collectible
type CollectibleView struct {
	ID     int              `json:"id"`
	Kind   CollectibleKind  `json:"kind"`
	Pos    Position         `json:"pos"`
	State  CollectibleState `json:"state"`
	Points int              `json:"points"`
	Lethal bool             `json:"lethal"`
}

// FreezeBlockView is the read-only view of a freeze-block
type FreezeBlockView struct {
	Pos       Position `json:"pos"`
	Permanent bool     `json:"permanent"`
	Breaking  bool     `json:"breaking"`
}

// Snapshot is a detached copy of the round state for presentation layers
type Snapshot struct {
	RoundID    string   `json:"round_id"`
	LevelID    int      `json:"level_id"`
	LevelName  string   `json:"level_name"`
	GridSize   int      `json:"grid_size"`
	Mode       GameMode `json:"mode"`
	Difficulty int      `json:"difficulty"`

	Actors       []ActorView       `json:"actors"`
	Adversaries  []AdversaryView   `json:"adversaries"`
	Collectibles []CollectibleView `json:"collectibles"`
	FreezeBlocks []FreezeBlockView `json:"freeze_blocks"`
	HeatTiles    []Position        `json:"heat_tiles,omitempty"`
	Walls        []Position        `json:"walls,omitempty"`
	Igloo        *CentralObstacle  `json:"igloo,omitempty"`

	Scores           [2]int `json:"scores"`
	TotalScore       int    `json:"total_score"`
	ElapsedMS        int64  `json:"elapsed_ms"`
	RemainingMS      int64  `json:"remaining_ms"`
	Remaining        string `json:"remaining"`
	TimeUp           bool   `json:"time_up"`
	Paused           bool   `json:"paused"`
	Over             bool   `json:"over"`
	Victory          bool   `json:"victory"`
	Defeat           bool   `json:"defeat"`
	Turn             int    `json:"turn"`
	CollectiblesLeft int    `json:"collectibles_left"`
	WavesQueued      int    `json:"waves_queued"`
	Message          string `json:"message"`
}

// Snapshot copies the current round state
func (e *GameEngine) Snapshot() *Snapshot {
	w := e.world
	s := &Snapshot{
		RoundID:          w.RoundID,
		LevelID:          w.LevelID,
		LevelName:        w.LevelName,
		GridSize:         w.GridSize,
		Mode:             w.Mode,
		Difficulty:       w.Difficulty,
		Actors:           []ActorView{},
		Adversaries:      []AdversaryView{},
		Collectibles:     []CollectibleView{},
		FreezeBlocks:     make([]FreezeBlockView, 0, len(w.FreezeBlocks)),
		HeatTiles:        append([]Position(nil), w.HeatTiles...),
		Walls:            append([]Position(nil), w.Walls...),
		Scores:           w.Scores,
		TotalScore:       w.TotalScore(),
		ElapsedMS:        w.ElapsedMS,
		RemainingMS:      w.RemainingMS,
		Remaining:        FormatRemaining(w.RemainingMS),
		TimeUp:           w.TimeUp,
		Paused:           w.Paused,
		Over:             w.Terminal(),
		Victory:          w.Victory,
		Defeat:           w.Defeat,
		Turn:             w.Turn,
		CollectiblesLeft: w.AvailableCollectibles(),
		WavesQueued:      len(w.Waves),
		Message:          e.message(),
	}
	if w.Igloo != nil {
		igloo := *w.Igloo
		s.Igloo = &igloo
	}

	piloted := map[Slot]bool{}
	for _, p := range e.pilots {
		piloted[p.Slot] = true
	}
	for _, a := range w.Actors() {
		s.Actors = append(s.Actors, ActorView{
			Slot:            a.Slot,
			Pos:             a.Pos,
			Facing:          a.Facing,
			Moving:          a.Moving,
			Alive:           a.Alive,
			Busy:            a.Busy.Kind,
			BusyRemainingMS: a.Busy.RemainingMS,
			Autopilot:       piloted[a.Slot],
		})
	}
	for _, a := range w.Adversaries {
		if !a.Active {
			continue
		}
		s.Adversaries = append(s.Adversaries, AdversaryView{
			ID:         a.ID,
			Kind:       a.Kind,
			Behavior:   a.Behavior,
			Pos:        a.Pos,
			Dir:        a.Dir,
			Charging:   a.Charging,
			Controlled: a.Controlled,
		})
	}
	for _, c := range w.Collectibles {
		if !c.Available() {
			continue
		}
		s.Collectibles = append(s.Collectibles, CollectibleView{
			ID:     c.ID,
			Kind:   c.Kind,
			Pos:    c.Pos,
			State:  c.State,
			Points: c.Points(),
			Lethal: c.Lethal(),
		})
	}
	for _, b := range w.FreezeBlocks {
		s.FreezeBlocks = append(s.FreezeBlocks, FreezeBlockView{Pos: b.Pos, Permanent: b.Permanent, Breaking: b.Breaking})
	}
	return s
}

func (e *GameEngine) message() string {
	w := e.world
	if e.level == nil {
		return ""
	}
	m := e.level.Messages
	switch {
	case w.Victory:
		return m.Victory
	case w.Defeat && w.TimeUp:
		return m.TimeUp
	case w.Defeat:
		return m.Defeat
	case w.Paused:
		if m.Paused != "" {
			return m.Paused
		}
		return "Paused"
	}
	return m.Welcome
}

// Glyphs used by Rows
const (
	GlyphEmpty        = '.'
	GlyphIce          = '#'
	GlyphPermanentIce = 'X'
	GlyphBreaking     = '%'
	GlyphWall         = 'W'
	GlyphHeat         = '~'
	GlyphIgloo        = 'I'
	GlyphDeadActor    = 'x'
	GlyphSpikyCactus  = 'S'
)

var adversaryGlyphs = map[AdversaryKind]byte{
	AdversaryTroll:   'T',
	AdversaryPot:     'P',
	AdversaryNarwhal: 'N',
}

var collectibleGlyphs = map[CollectibleKind]byte{
	CollectibleBanana:    'b',
	CollectibleGrape:     'g',
	CollectibleCherry:    'c',
	CollectiblePineapple: 'p',
	CollectibleCactus:    's',
}

// Rows renders the board as one string per row. Actors draw over
// adversaries, which draw over collectibles and terrain.
func (s *Snapshot) Rows() []string {
	grid := make([][]byte, s.GridSize)
	for y := range grid {
		grid[y] = make([]byte, s.GridSize)
		for x := range grid[y] {
			grid[y][x] = GlyphEmpty
		}
	}
	set := func(p Position, g byte) {
		if p.Y >= 0 && p.Y < s.GridSize && p.X >= 0 && p.X < s.GridSize {
			grid[p.Y][p.X] = g
		}
	}

	for _, p := range s.HeatTiles {
		set(p, GlyphHeat)
	}
	for _, p := range s.Walls {
		set(p, GlyphWall)
	}
	if s.Igloo != nil {
		for _, p := range s.Igloo.Cells() {
			set(p, GlyphIgloo)
		}
	}
	for _, b := range s.FreezeBlocks {
		switch {
		case b.Permanent:
			set(b.Pos, GlyphPermanentIce)
		case b.Breaking:
			set(b.Pos, GlyphBreaking)
		default:
			set(b.Pos, GlyphIce)
		}
	}
	for _, c := range s.Collectibles {
		g := collectibleGlyphs[c.Kind]
		if c.Lethal {
			g = GlyphSpikyCactus
		}
		set(c.Pos, g)
	}
	for _, a := range s.Adversaries {
		set(a.Pos, adversaryGlyphs[a.Kind])
	}
	for _, a := range s.Actors {
		g := byte('1' + int(a.Slot))
		if !a.Alive {
			g = GlyphDeadActor
		}
		set(a.Pos, g)
	}

	rows := make([]string, s.GridSize)
	for y := range grid {
		rows[y] = string(grid[y])
	}
	return rows
}

// CellInfo describes everything occupying one cell
type CellInfo struct {
	Pos      Position `json:"pos"`
	InBounds bool     `json:"in_bounds"`
	Contents []string `json:"contents"`
}

// CellAt lists the occupants of p, topmost first
func (s *Snapshot) CellAt(p Position) CellInfo {
	info := CellInfo{Pos: p, Contents: []string{}}
	if p.X < 0 || p.Y < 0 || p.X >= s.GridSize || p.Y >= s.GridSize {
		return info
	}
	info.InBounds = true
	for _, a := range s.Actors {
		if a.Pos == p {
			info.Contents = append(info.Contents, a.Slot.String()+" actor ("+string(a.Busy)+")")
		}
	}
	for _, a := range s.Adversaries {
		if a.Pos == p {
			info.Contents = append(info.Contents, string(a.Kind))
		}
	}
	for _, c := range s.Collectibles {
		if c.Pos == p {
			info.Contents = append(info.Contents, string(c.Kind)+" ("+string(c.State)+")")
		}
	}
	for _, b := range s.FreezeBlocks {
		if b.Pos != p {
			continue
		}
		switch {
		case b.Permanent:
			info.Contents = append(info.Contents, "permanent ice")
		case b.Breaking:
			info.Contents = append(info.Contents, "breaking ice")
		default:
			info.Contents = append(info.Contents, "ice")
		}
	}
	if s.Igloo.Contains(p) {
		info.Contents = append(info.Contents, "igloo")
	}
	if containsPosition(s.Walls, p) {
		info.Contents = append(info.Contents, "wall")
	}
	if containsPosition(s.HeatTiles, p) {
		info.Contents = append(info.Contents, "heat tile")
	}
	if len(info.Contents) == 0 {
		info.Contents = append(info.Contents, "empty")
	}
	return info
}
