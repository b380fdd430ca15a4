// Command analyze prints quick, human-readable heuristics about level
// descriptors: dimensions and timing, entity counts by kind, the points on the
// board and in each wave, and which collectibles can be reached from the
// primary start.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/icebound/game/config"
	"github.com/wricardo/icebound/game/engine"
)

// WaveSummary totals one wave's items
type WaveSummary struct {
	ID     int
	Items  int
	Random int
	Points int
}

// Analysis is what analyze reports for one level
type Analysis struct {
	Name         string
	GridSize     int
	TimeLimit    int
	Difficulty   int
	Mode         engine.GameMode
	Adversaries  map[engine.AdversaryKind]int
	Collectibles map[engine.CollectibleKind]int
	BoardPoints  int
	Waves        []WaveSummary
	OpenCells    int
	Reachable    int
	Unreachable  []engine.Position
}

// analyzeLevel gathers the analysis for a validated level
func analyzeLevel(level *engine.LevelConfig) Analysis {
	a := Analysis{
		Name:         level.Name,
		GridSize:     level.GridSize,
		TimeLimit:    level.TimeLimitSeconds,
		Difficulty:   level.Difficulty,
		Mode:         level.Mode,
		Adversaries:  make(map[engine.AdversaryKind]int),
		Collectibles: make(map[engine.CollectibleKind]int),
	}

	legend := level.EffectiveLegend()
	for _, row := range level.Layout {
		for i := 0; i < len(row); i++ {
			v := legend[string(row[i])]
			switch engine.TileKind(v) {
			case engine.TileWall, engine.TileIgloo, engine.TilePermanentIce:
				continue
			}
			a.OpenCells++
			switch {
			case engine.AdversaryKind(v).Valid():
				a.Adversaries[engine.AdversaryKind(v)]++
			case engine.CollectibleKind(v).Valid():
				kind := engine.CollectibleKind(v)
				a.Collectibles[kind]++
				a.BoardPoints += kind.Points()
			}
		}
	}

	for _, w := range level.Waves {
		s := WaveSummary{ID: w.ID}
		for _, item := range w.Items {
			n := len(item.Positions) + item.Random
			s.Items += n
			s.Random += item.Random
			s.Points += n * item.Kind.Points()
		}
		a.Waves = append(a.Waves, s)
	}

	a.Reachable = len(level.ReachFromStart())
	a.Unreachable = level.UnreachableCollectibles()
	return a
}

// TotalPoints is the score available from the board and every wave
func (a Analysis) TotalPoints() int {
	total := a.BoardPoints
	for _, w := range a.Waves {
		total += w.Points
	}
	return total
}

func printAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.GridSize, a.GridSize)
	fmt.Fprintf(w, "Time Limit: %ds\n", a.TimeLimit)
	fmt.Fprintf(w, "Difficulty: %d, Mode: %s\n", a.Difficulty, a.Mode)

	adversaries := make([]string, 0, len(a.Adversaries))
	for kind := range a.Adversaries {
		adversaries = append(adversaries, string(kind))
	}
	sort.Strings(adversaries)
	for _, kind := range adversaries {
		fmt.Fprintf(w, "Adversary %s: %d\n", kind, a.Adversaries[engine.AdversaryKind(kind)])
	}

	collectibles := make([]string, 0, len(a.Collectibles))
	for kind := range a.Collectibles {
		collectibles = append(collectibles, string(kind))
	}
	sort.Strings(collectibles)
	for _, kind := range collectibles {
		k := engine.CollectibleKind(kind)
		fmt.Fprintf(w, "Collectible %s: %d (%d pts each)\n", kind, a.Collectibles[k], k.Points())
	}
	fmt.Fprintf(w, "Board Points: %d\n", a.BoardPoints)

	for _, wave := range a.Waves {
		fmt.Fprintf(w, "Wave %d: %d items (%d random), %d pts\n", wave.ID, wave.Items, wave.Random, wave.Points)
	}
	fmt.Fprintf(w, "Total Points: %d\n", a.TotalPoints())
	fmt.Fprintf(w, "Reachable Cells: %d/%d\n", a.Reachable, a.OpenCells)

	if len(a.Unreachable) == 0 {
		fmt.Fprintln(w, "✅ All collectibles are reachable from the start")
		return
	}
	fmt.Fprintf(w, "⚠️  WARNING: %d collectibles are unreachable from the start!\n", len(a.Unreachable))
	for i, p := range a.Unreachable {
		if i == 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(a.Unreachable)-5)
			break
		}
		fmt.Fprintf(w, "   Unreachable: %s\n", p)
	}
}

func analyzeFile(w io.Writer, path string) error {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(path))
	level, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return err
	}
	printAnalysis(w, analyzeLevel(level))
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "print heuristics about level descriptors",
		ArgsUsage: "[files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "levels",
				Usage:   "directory containing level descriptors",
				Sources: cli.EnvVars("LEVEL_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				for _, ext := range config.Extensions {
					matches, err := filepath.Glob(filepath.Join(cmd.String("dir"), "*"+ext))
					if err != nil {
						return err
					}
					files = append(files, matches...)
				}
				sort.Strings(files)
			}
			if len(files) == 0 {
				return fmt.Errorf("no level files found in %s", cmd.String("dir"))
			}

			failed := 0
			for _, file := range files {
				if err := analyzeFile(cmd.Root().Writer, file); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d levels could not be analyzed", failed, len(files))
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
