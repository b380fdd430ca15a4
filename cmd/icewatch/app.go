package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/icebound/game/engine"
)

// Board cells are drawn two columns wide so the grid looks square
const (
	cellWidth = 2
	boardTop  = 2
)

var (
	styleDefault   = tcell.StyleDefault
	styleHeader    = tcell.StyleDefault.Bold(true)
	styleIce       = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	stylePermanent = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleBreaking  = tcell.StyleDefault.Foreground(tcell.ColorTeal).Dim(true)
	styleWall      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHeat      = tcell.StyleDefault.Foreground(tcell.ColorOrangeRed)
	styleIgloo     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleActor     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDead      = tcell.StyleDefault.Foreground(tcell.ColorDarkRed)
	styleAdversary = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleFruit     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCactus    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
)

// glyphStyle picks the colour for one board glyph
func glyphStyle(g byte) tcell.Style {
	switch g {
	case engine.GlyphIce:
		return styleIce
	case engine.GlyphPermanentIce:
		return stylePermanent
	case engine.GlyphBreaking:
		return styleBreaking
	case engine.GlyphWall:
		return styleWall
	case engine.GlyphHeat:
		return styleHeat
	case engine.GlyphIgloo:
		return styleIgloo
	case engine.GlyphDeadActor:
		return styleDead
	case engine.GlyphSpikyCactus:
		return styleCactus
	case 'T', 'P', 'N':
		return styleAdversary
	case 'b', 'g', 'c', 'p', 's':
		return styleFruit
	case '1', '2':
		return styleActor
	}
	return styleDefault
}

// App runs one local round in the terminal
type App struct {
	screen tcell.Screen
	engine *engine.GameEngine
	tick   time.Duration
	log    logrus.FieldLogger
}

// NewApp wires a screen to an engine. The screen must already be initialised.
func NewApp(screen tcell.Screen, eng *engine.GameEngine, tick time.Duration, log logrus.FieldLogger) *App {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &App{
		screen: screen,
		engine: eng,
		tick:   tick,
		log:    log,
	}
}

// keyCommand maps a key press to an engine command. quit is true for the
// keys that leave the program.
func keyCommand(key tcell.Key, r rune) (cmd engine.Command, quit bool) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return "", true
	case tcell.KeyUp:
		return engine.CmdMoveUp, false
	case tcell.KeyDown:
		return engine.CmdMoveDown, false
	case tcell.KeyLeft:
		return engine.CmdMoveLeft, false
	case tcell.KeyRight:
		return engine.CmdMoveRight, false
	case tcell.KeyRune:
	default:
		return "", false
	}

	switch r {
	case ' ':
		return engine.CmdAct, false
	case 'w', 'W':
		return engine.CmdP2MoveUp, false
	case 's', 'S':
		return engine.CmdP2MoveDown, false
	case 'a', 'A':
		return engine.CmdP2MoveLeft, false
	case 'd', 'D':
		return engine.CmdP2MoveRight, false
	case 'f', 'F':
		return engine.CmdP2Act, false
	case 'p', 'P':
		return engine.CmdPause, false
	case 'r', 'R':
		return engine.CmdRestart, false
	case 'q', 'Q':
		return "", true
	}
	return "", false
}

// handleEvent applies one terminal event and reports whether to keep running
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		cmd, quit := keyCommand(ev.Key(), ev.Rune())
		if quit {
			return false
		}
		if cmd != "" {
			res := a.engine.Apply(cmd)
			a.log.WithFields(logrus.Fields{
				"command":  cmd,
				"accepted": res.Accepted,
			}).Debug("command applied")
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) putString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// draw renders the current snapshot
func (a *App) draw() {
	snap := a.engine.Snapshot()
	a.screen.Clear()

	header := fmt.Sprintf("%s  %s  Score %d  Left %d", snap.LevelName, snap.Remaining, snap.TotalScore, snap.CollectiblesLeft)
	if snap.WavesQueued > 0 {
		header += fmt.Sprintf("  Waves %d", snap.WavesQueued)
	}
	a.putString(0, 0, header, styleHeader)

	for y, row := range snap.Rows() {
		for x := 0; x < len(row); x++ {
			a.screen.SetContent(x*cellWidth, boardTop+y, rune(row[x]), nil, glyphStyle(row[x]))
		}
	}

	line := boardTop + snap.GridSize + 1
	switch {
	case snap.Victory:
		a.putString(0, line, "VICTORY! "+snap.Message, styleActor)
	case snap.Over:
		a.putString(0, line, "ROUND OVER. "+snap.Message, styleAdversary)
	case snap.Paused:
		a.putString(0, line, "PAUSED", styleHeader)
	case snap.Message != "":
		a.putString(0, line, snap.Message, styleDefault)
	}
	a.putString(0, line+1, "arrows/space: P1  wasd/f: P2  p: pause  r: restart  q: quit", styleWall)

	a.screen.Show()
}

// step advances the round by one frame
func (a *App) step(elapsed time.Duration) {
	a.engine.Tick(elapsed.Milliseconds())
}

// Run drives the round until the player quits or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()
	last := time.Now()

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if !a.handleEvent(ev) {
				return nil
			}
			a.draw()

		case now := <-ticker.C:
			a.step(now.Sub(last))
			last = now
			a.draw()
		}
	}
}
