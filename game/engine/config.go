package engine

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// TileKind is what a layout symbol stands for
type TileKind string

const (
	TileEmpty          TileKind = "empty"
	TileIce            TileKind = "ice"
	TilePermanentIce   TileKind = "permanent_ice"
	TileWall           TileKind = "wall"
	TileHeat           TileKind = "heat"
	TileIgloo          TileKind = "igloo"
	TilePrimaryStart   TileKind = "primary_start"
	TileSecondaryStart TileKind = "secondary_start"
)

// DefaultLegend maps the standard layout symbols to tile kinds. Adversary
// and collectible kinds are valid legend values too.
var DefaultLegend = map[string]string{
	".": string(TileEmpty),
	"#": string(TileIce),
	"X": string(TilePermanentIce),
	"W": string(TileWall),
	"H": string(TileHeat),
	"I": string(TileIgloo),
	"1": string(TilePrimaryStart),
	"2": string(TileSecondaryStart),
	"T": string(AdversaryTroll),
	"P": string(AdversaryPot),
	"N": string(AdversaryNarwhal),
	"b": string(CollectibleBanana),
	"g": string(CollectibleGrape),
	"c": string(CollectibleCherry),
	"p": string(CollectiblePineapple),
	"s": string(CollectibleCactus),
}

func knownLegendValue(v string) bool {
	switch TileKind(v) {
	case TileEmpty, TileIce, TilePermanentIce, TileWall, TileHeat, TileIgloo, TilePrimaryStart, TileSecondaryStart:
		return true
	}
	return AdversaryKind(v).Valid() || CollectibleKind(v).Valid()
}

// WaveItem places collectibles of one kind in a wave
type WaveItem struct {
	Kind      CollectibleKind `json:"kind" yaml:"kind"`
	Positions []Position      `json:"positions,omitempty" yaml:"positions,omitempty"`
	Random    int             `json:"random,omitempty" yaml:"random,omitempty"`
}

// WaveConfig is a batch of collectibles released after the board is cleared
type WaveConfig struct {
	ID    int        `json:"id" yaml:"id"`
	Items []WaveItem `json:"items" yaml:"items"`
}

// LevelMessages are the texts shown for round events
type LevelMessages struct {
	Welcome string `json:"welcome" yaml:"welcome"`
	Victory string `json:"victory" yaml:"victory"`
	Defeat  string `json:"defeat" yaml:"defeat"`
	TimeUp  string `json:"time_up" yaml:"time_up"`
	Paused  string `json:"paused,omitempty" yaml:"paused,omitempty"`
}

// LevelConfig is a level descriptor used once at round setup
type LevelConfig struct {
	ID               int               `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	Description      string            `json:"description" yaml:"description"`
	GridSize         int               `json:"grid_size" yaml:"grid_size"`
	TimeLimitSeconds int               `json:"time_limit_seconds" yaml:"time_limit_seconds"`
	Difficulty       int               `json:"difficulty" yaml:"difficulty"`
	Mode             GameMode          `json:"mode" yaml:"mode"`
	Layout           []string          `json:"layout" yaml:"layout"`
	Legend           map[string]string `json:"legend,omitempty" yaml:"legend,omitempty"`
	Waves            []WaveConfig      `json:"waves,omitempty" yaml:"waves,omitempty"`
	Messages         LevelMessages     `json:"messages" yaml:"messages"`
}

// EffectiveLegend returns the default legend overlaid with the level's own entries
func (c *LevelConfig) EffectiveLegend() map[string]string {
	legend := make(map[string]string, len(DefaultLegend)+len(c.Legend))
	for k, v := range DefaultLegend {
		legend[k] = v
	}
	for k, v := range c.Legend {
		legend[k] = v
	}
	return legend
}

// TileAt returns the legend value of the layout cell at p
func (c *LevelConfig) TileAt(legend map[string]string, p Position) string {
	if p.Y < 0 || p.Y >= len(c.Layout) || p.X < 0 || p.X >= len(c.Layout[p.Y]) {
		return ""
	}
	return legend[string(c.Layout[p.Y][p.X])]
}

// ValidateLevelConfig reports every problem with a level descriptor at once
func ValidateLevelConfig(c *LevelConfig) error {
	if c == nil {
		return fmt.Errorf("level config cannot be nil")
	}
	el := errors.NewErrorList()

	if c.ID <= 0 {
		el.Add(fmt.Errorf("id must be a positive integer"))
	}
	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if c.GridSize < MinGridSize || c.GridSize > MaxGridSize {
		el.Add(fmt.Errorf("grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, c.GridSize))
	}
	if c.TimeLimitSeconds < MinTimeLimitSeconds || c.TimeLimitSeconds > MaxTimeLimitSeconds {
		el.Add(fmt.Errorf("time_limit_seconds must be between %d and %d, got %d",
			MinTimeLimitSeconds, MaxTimeLimitSeconds, c.TimeLimitSeconds))
	}
	if c.Difficulty < MinDifficulty || c.Difficulty > MaxDifficulty {
		el.Add(fmt.Errorf("difficulty must be between %d and %d, got %d", MinDifficulty, MaxDifficulty, c.Difficulty))
	}
	if !c.Mode.Valid() {
		el.Add(fmt.Errorf("mode %q is not one of single, coop, autonomous, versus", c.Mode))
	}

	for sym, v := range c.Legend {
		if len(sym) != 1 {
			el.Add(fmt.Errorf("legend symbol %q must be a single character", sym))
		}
		if !knownLegendValue(v) {
			el.Add(fmt.Errorf("legend[%q] has unknown tile kind %q", sym, v))
		}
	}

	for _, err := range validateLayout(c) {
		el.Add(err)
	}
	for _, err := range validateWaves(c) {
		el.Add(err)
	}

	return el.Err()
}

func validateLayout(c *LevelConfig) []error {
	if len(c.Layout) != c.GridSize {
		return []error{fmt.Errorf("layout must have %d rows to match grid_size, got %d", c.GridSize, len(c.Layout))}
	}
	var errs []error

	legend := c.EffectiveLegend()
	var primaries, secondaries, adversaries, collectibles int
	var igloo []Position
	for y, row := range c.Layout {
		if len(row) != c.GridSize {
			errs = append(errs, fmt.Errorf("row %d must have %d characters to match grid_size, got %d", y+1, c.GridSize, len(row)))
			continue
		}
		for x := 0; x < len(row); x++ {
			v, ok := legend[string(row[x])]
			if !ok {
				errs = append(errs, fmt.Errorf("unknown symbol '%c' at row %d, col %d", row[x], y+1, x+1))
				continue
			}
			switch {
			case v == string(TilePrimaryStart):
				primaries++
			case v == string(TileSecondaryStart):
				secondaries++
			case v == string(TileIgloo):
				igloo = append(igloo, Position{X: x, Y: y})
			case AdversaryKind(v).Valid():
				adversaries++
			case CollectibleKind(v).Valid():
				collectibles++
			}
		}
	}

	if primaries != 1 {
		errs = append(errs, fmt.Errorf("layout must contain exactly one primary start, got %d", primaries))
	}
	if c.Mode.TwoActors() && secondaries != 1 {
		errs = append(errs, fmt.Errorf("mode %s needs exactly one secondary start, got %d", c.Mode, secondaries))
	}
	if c.Mode == ModeVersus && adversaries == 0 {
		errs = append(errs, fmt.Errorf("mode versus needs at least one adversary"))
	}
	if _, err := iglooFootprint(igloo); err != nil {
		errs = append(errs, err)
	}

	for _, w := range c.Waves {
		for _, item := range w.Items {
			collectibles += len(item.Positions) + item.Random
		}
	}
	if collectibles == 0 {
		errs = append(errs, fmt.Errorf("level must contain at least one collectible"))
	}
	return errs
}

func validateWaves(c *LevelConfig) []error {
	var errs []error
	for i, w := range c.Waves {
		if w.ID <= 0 {
			errs = append(errs, fmt.Errorf("wave %d: id must be a positive integer", i+1))
		}
		for _, item := range w.Items {
			if !item.Kind.Valid() {
				errs = append(errs, fmt.Errorf("wave %d: unknown collectible kind %q", i+1, item.Kind))
			}
			if item.Random < 0 {
				errs = append(errs, fmt.Errorf("wave %d: random count must not be negative", i+1))
			}
			for _, p := range item.Positions {
				if p.X < 0 || p.Y < 0 || p.X >= c.GridSize || p.Y >= c.GridSize {
					errs = append(errs, fmt.Errorf("wave %d: position %s is off the board", i+1, p))
				}
			}
		}
	}
	return errs
}

// iglooFootprint checks that igloo cells form one filled rectangle
func iglooFootprint(cells []Position) (*CentralObstacle, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	minX, minY, maxX, maxY := cells[0].X, cells[0].Y, cells[0].X, cells[0].Y
	for _, p := range cells {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	o := &CentralObstacle{
		Origin: Position{X: minX, Y: minY},
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}
	if o.Width*o.Height != len(cells) {
		return nil, fmt.Errorf("igloo cells must form a single filled rectangle")
	}
	return o, nil
}

// BuildWorld populates a fresh World from a validated level descriptor
func BuildWorld(c *LevelConfig) (*World, error) {
	if c == nil {
		return nil, fmt.Errorf("level config cannot be nil")
	}
	w := NewWorld(c.GridSize, c.Mode, c.Difficulty, int64(c.TimeLimitSeconds)*1000)
	w.LevelID = c.ID
	w.LevelName = c.Name

	legend := c.EffectiveLegend()
	var igloo []Position
	var adversaries []*Adversary
	var collectibles []*Collectible

	for y, row := range c.Layout {
		for x := 0; x < len(row); x++ {
			p := Position{X: x, Y: y}
			v := legend[string(row[x])]
			switch TileKind(v) {
			case TileEmpty:
			case TileIce:
				w.AddFreezeBlock(p, false)
			case TilePermanentIce:
				w.AddFreezeBlock(p, true)
			case TileWall:
				w.AddWall(p)
			case TileHeat:
				w.AddHeatTile(p)
			case TileIgloo:
				igloo = append(igloo, p)
			case TilePrimaryStart:
				w.Primary = NewActor(SlotPrimary, p)
			case TileSecondaryStart:
				if c.Mode.TwoActors() {
					w.Secondary = NewActor(SlotSecondary, p)
				}
			default:
				switch {
				case AdversaryKind(v).Valid():
					adversaries = append(adversaries, NewAdversary(AdversaryKind(v), p))
				case CollectibleKind(v).Valid():
					collectibles = append(collectibles, NewCollectible(CollectibleKind(v), p))
				default:
					return nil, fmt.Errorf("unknown symbol '%c' at row %d, col %d", row[x], y+1, x+1)
				}
			}
		}
	}

	obstacle, err := iglooFootprint(igloo)
	if err != nil {
		return nil, err
	}
	w.SetIgloo(obstacle)

	if w.Primary == nil {
		return nil, fmt.Errorf("layout has no primary start")
	}

	for _, a := range adversaries {
		w.AddAdversary(a)
	}
	if c.Mode == ModeVersus && len(w.Adversaries) > 0 {
		w.Adversaries[0].Controlled = true
	}
	for _, col := range collectibles {
		w.AddCollectible(col)
	}

	for _, wc := range c.Waves {
		var wave []WaveSpawn
		for _, item := range wc.Items {
			for _, p := range item.Positions {
				wave = append(wave, WaveSpawn{Kind: item.Kind, Pos: p})
			}
			for i := 0; i < item.Random; i++ {
				wave = append(wave, WaveSpawn{Kind: item.Kind, Random: true})
			}
		}
		w.Waves = append(w.Waves, wave)
	}

	return w, nil
}

// DefaultLevel returns the built-in level used when no level directory is available
func DefaultLevel() *LevelConfig {
	return &LevelConfig{
		ID:               1,
		Name:             "Frozen Courtyard",
		Description:      "A small courtyard with a troll, a pot and a single igloo.",
		GridSize:         11,
		TimeLimitSeconds: 120,
		Difficulty:       1,
		Mode:             ModeSingle,
		Layout: []string{
			"...........",
			".b.......g.",
			"..#.....#..",
			"...........",
			"....III..T.",
			"..H.III....",
			"....III....",
			"...........",
			"..#..1..#..",
			".g...P...b.",
			"...........",
		},
		Waves: []WaveConfig{
			{ID: 1, Items: []WaveItem{{Kind: CollectibleCherry, Random: 2}}},
		},
		Messages: LevelMessages{
			Welcome: "Collect every fruit before the clock runs out!",
			Victory: "All fruit collected!",
			Defeat:  "You were caught!",
			TimeUp:  "Time's up!",
		},
	}
}
