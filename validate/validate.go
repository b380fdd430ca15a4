// Command validate checks every level descriptor in a directory. It runs the
// same rules the server applies at load time:
//   - JSON or YAML structure and required fields
//   - grid size, time limit, difficulty and mode ranges
//   - row widths and known layout symbols
//   - exactly one primary start and a rectangular igloo
//   - at least one collectible on the board or in a wave
//
// and also reports collectibles the primary actor can never walk to.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/icebound/game/config"
	"github.com/wricardo/icebound/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// validateLevel loads and validates one descriptor file
func validateLevel(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	level, err := config.LoadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	connectivity := validateConnectivity(level)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)
	result.Info = append(result.Info, connectivity.Info...)

	if result.Valid {
		adversaries, collectibles := countEntities(level)
		result.Info = append(result.Info,
			fmt.Sprintf("✓ Name: %s (id %d)", level.Name, level.ID),
			fmt.Sprintf("✓ Grid: %dx%d, %ds, difficulty %d, mode %s",
				level.GridSize, level.GridSize, level.TimeLimitSeconds, level.Difficulty, level.Mode),
			fmt.Sprintf("✓ Adversaries: %d", adversaries),
			fmt.Sprintf("✓ Collectibles: %d on board, %d waves", collectibles, len(level.Waves)),
		)
	}
	return result
}

// validateConnectivity ensures every starting collectible is reachable from
// the primary start over cells an actor can enter or clear
func validateConnectivity(level *engine.LevelConfig) ValidationResult {
	result := ValidationResult{Valid: true}

	unreachable := level.UnreachableCollectibles()
	if len(unreachable) == 0 {
		result.Info = append(result.Info, "✓ Connectivity: every collectible is reachable from the start")
		return result
	}

	result.Valid = false
	result.Errors = append(result.Errors,
		fmt.Sprintf("Connectivity failure: %d collectibles unreachable from the primary start", len(unreachable)))
	for _, p := range unreachable {
		result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: collectible at %s", p))
	}
	return result
}

func countEntities(level *engine.LevelConfig) (adversaries, collectibles int) {
	legend := level.EffectiveLegend()
	for _, row := range level.Layout {
		for i := 0; i < len(row); i++ {
			v := legend[string(row[i])]
			switch {
			case engine.AdversaryKind(v).Valid():
				adversaries++
			case engine.CollectibleKind(v).Valid():
				collectibles++
			}
		}
	}
	return adversaries, collectibles
}

// levelFiles lists the descriptor files in dir in name order
func levelFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range config.Extensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// report prints one block per file and returns whether all were valid
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}
		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All levels are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some levels have errors")
	}
	return allValid
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check every level descriptor in a directory",
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
				var err error
				files, err = levelFiles(cmd.String("dir"))
				if err != nil {
					return fmt.Errorf("finding level files: %w", err)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no level files found in %s", cmd.String("dir"))
			}

			results := make([]ValidationResult, 0, len(files))
			for _, file := range files {
				results = append(results, validateLevel(file))
			}
			if !report(cmd.Root().Writer, results) {
				return fmt.Errorf("%d of %d levels are invalid", countInvalid(results), len(results))
			}
			return nil
		},
	}
}

func countInvalid(results []ValidationResult) int {
	n := 0
	for _, r := range results {
		if !r.Valid {
			n++
		}
	}
	return n
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
