// Command bruteforcer replays a level against a running server until the
// autopilot wins it. Each attempt restarts the round and advances the clock in
// batches; the best attempt is reported at the end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/icebound/game/engine"
)

// sessionFile remembers the session between runs
const sessionFile = ".session"

// Attempt is the outcome of one round
type Attempt struct {
	Number  int
	Score   int
	Left    int
	Victory bool
	Reason  string
	Elapsed time.Duration
}

// Settings controls how rounds are played
type Settings struct {
	MaxAttempts int
	TickMS      int64
	Batch       int
	Delay       time.Duration
}

// Player runs attempts through a Client
type Player struct {
	client   *Client
	settings Settings
	log      logrus.FieldLogger
}

// NewPlayer creates a player. Zero settings fall back to sensible values.
func NewPlayer(client *Client, settings Settings, log logrus.FieldLogger) *Player {
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 10
	}
	if settings.TickMS <= 0 {
		settings.TickMS = 50
	}
	if settings.Batch <= 0 || settings.Batch > engine.MaxAdvanceTicks {
		settings.Batch = 100
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Player{client: client, settings: settings, log: log}
}

// playRound advances the current round until it ends
func (p *Player) playRound(ctx context.Context, number int) (Attempt, error) {
	a := Attempt{Number: number}
	for {
		res, err := p.client.Advance(ctx, p.settings.TickMS, p.settings.Batch)
		if err != nil {
			return a, err
		}
		snap := res.Snapshot
		a.Score, a.Left = snap.TotalScore, snap.CollectiblesLeft
		a.Elapsed = time.Duration(snap.ElapsedMS) * time.Millisecond

		switch {
		case snap.Victory:
			a.Victory, a.Reason = true, "victory"
			return a, nil
		case snap.Over:
			a.Reason = "defeat"
			if snap.TimeUp {
				a.Reason = "time up"
			}
			return a, nil
		case res.StoppedReason == "paused":
			return a, fmt.Errorf("round %d is paused", number)
		}

		if p.settings.Delay > 0 {
			select {
			case <-ctx.Done():
				return a, ctx.Err()
			case <-time.After(p.settings.Delay):
			}
		}
	}
}

// Play runs attempts until one wins or the attempt budget is spent. It
// returns every attempt in order.
func (p *Player) Play(ctx context.Context) ([]Attempt, error) {
	var attempts []Attempt
	for n := 1; n <= p.settings.MaxAttempts; n++ {
		if _, err := p.client.Restart(ctx); err != nil {
			return attempts, fmt.Errorf("failed to restart round: %w", err)
		}

		a, err := p.playRound(ctx, n)
		if err != nil {
			return attempts, err
		}
		attempts = append(attempts, a)

		p.log.WithFields(logrus.Fields{
			"attempt": a.Number,
			"score":   a.Score,
			"left":    a.Left,
			"elapsed": a.Elapsed,
		}).Infof("attempt ended: %s", a.Reason)

		if a.Victory {
			break
		}
	}
	return attempts, nil
}

// Best picks the winning attempt, or the highest score
func Best(attempts []Attempt) (Attempt, bool) {
	if len(attempts) == 0 {
		return Attempt{}, false
	}
	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.Victory && !best.Victory || a.Victory == best.Victory && a.Score > best.Score {
			best = a
		}
	}
	return best, true
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "replay a level with the autopilot until it wins",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "level", Usage: "level id (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "resume an existing session by ID"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for the new session"},
			&cli.IntFlag{Name: "max-attempts", Value: 10, Usage: "attempts before giving up"},
			&cli.IntFlag{Name: "batch", Value: 100, Usage: "ticks per advance call"},
			&cli.Int64Flag{Name: "tick", Value: 50, Usage: "milliseconds per tick"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between advance calls"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logrus.New()
			if cmd.Bool("v") {
				log.SetLevel(logrus.DebugLevel)
			}

			client := NewClient(cmd.String("url"))
			log.WithField("url", cmd.String("url")).Info("connecting to game server")

			sessionID := cmd.String("continue")
			if sessionID == "" {
				if data, err := os.ReadFile(sessionFile); err == nil {
					sessionID = strings.TrimSpace(string(data))
				}
			}

			var snap *engine.Snapshot
			var err error
			if sessionID != "" {
				snap, err = client.Resume(ctx, sessionID)
				if err != nil {
					log.WithError(err).Warn("failed to resume session, creating a new one")
				}
			}
			if snap == nil {
				snap, err = client.CreateSession(ctx, cmd.String("level"), cmd.Int64("seed"))
				if err != nil {
					return fmt.Errorf("failed to create session: %w", err)
				}
				if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
					log.WithError(err).Warn("failed to save session id")
				}
			}
			log.WithFields(logrus.Fields{
				"session": client.SessionID(),
				"level":   snap.LevelName,
				"grid":    snap.GridSize,
				"left":    snap.CollectiblesLeft,
			}).Info("playing")

			player := NewPlayer(client, Settings{
				MaxAttempts: int(cmd.Int("max-attempts")),
				TickMS:      cmd.Int64("tick"),
				Batch:       int(cmd.Int("batch")),
				Delay:       cmd.Duration("delay"),
			}, log)

			attempts, err := player.Play(ctx)
			if err != nil {
				return err
			}
			best, _ := Best(attempts)
			if !best.Victory {
				return fmt.Errorf("no victory in %d attempts, best score %d", len(attempts), best.Score)
			}
			log.WithFields(logrus.Fields{
				"attempt": best.Number,
				"score":   best.Score,
			}).Info("level cleared")
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
