// Command icewatch plays a round in the terminal against a local engine.
//
// Arrows move the primary actor and space acts. W, A, S, D and F drive the
// secondary actor, or the controlled adversary in versus levels. P pauses,
// R restarts, and Q or Esc quits.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/icebound/game/config"
	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
)

// loadLevel resolves the level to play: a descriptor file when path is set,
// otherwise id from the level directory
func loadLevel(path, dir, id string) (*engine.LevelConfig, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.NewManager(dir).LoadLevel(id)
}

// newLogger keeps the terminal clean: output goes to logPath or nowhere
func newLogger(logPath string, debug bool) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if logPath == "" {
		return log, func() {}, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { f.Close() }, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "icewatch",
		Usage:     "play a round in the terminal",
		ArgsUsage: "[level file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "levels", Usage: "level directory", Sources: cli.EnvVars("LEVEL_DIR")},
			&cli.StringFlag{Name: "level", Usage: "level id within --dir (default level when empty)"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed (0 picks one)"},
			&cli.BoolFlag{Name: "autopilot", Usage: "let the autopilot drive the primary actor"},
			&cli.BoolFlag{Name: "adversary-autopilot", Usage: "let the autopilot drive a controlled adversary"},
			&cli.DurationFlag{Name: "tick", Value: 50 * time.Millisecond, Usage: "frame length"},
			&cli.StringFlag{Name: "log", Usage: "write logs to this file"},
			&cli.BoolFlag{Name: "debug", Usage: "debug logging"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level, err := loadLevel(cmd.Args().First(), cmd.String("dir"), cmd.String("level"))
			if err != nil {
				return err
			}

			seed := cmd.Int64("seed")
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			eng, err := service.NewSessionEngine(level, service.SessionOptions{
				Autopilot:          cmd.Bool("autopilot"),
				AdversaryAutopilot: cmd.Bool("adversary-autopilot"),
				Seed:               seed,
			})
			if err != nil {
				return err
			}

			log, closeLog, err := newLogger(cmd.String("log"), cmd.Bool("debug"))
			if err != nil {
				return err
			}
			defer closeLog()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initialising screen: %w", err)
			}
			defer screen.Fini()

			log.WithFields(logrus.Fields{"level": level.Name, "seed": seed}).Info("round started")
			return NewApp(screen, eng, cmd.Duration("tick"), log).Run(ctx)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil && err != context.Canceled {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
