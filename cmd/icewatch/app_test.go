package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/go-testutil"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/wricardo/icebound/game/engine"
)

func newTestApp(t *testing.T) (*App, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	eng, err := engine.NewEngine(engine.DefaultLevel(), engine.WithSeed(1))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	log, _ := test.NewNullLogger()
	return NewApp(screen, eng, 50*time.Millisecond, log), screen
}

// rowText reads one screen row back as a string
func rowText(s tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestKeyCommand(t *testing.T) {
	tests := []struct {
		name     string
		key      tcell.Key
		r        rune
		wantCmd  engine.Command
		wantQuit bool
	}{
		{"up", tcell.KeyUp, 0, engine.CmdMoveUp, false},
		{"down", tcell.KeyDown, 0, engine.CmdMoveDown, false},
		{"left", tcell.KeyLeft, 0, engine.CmdMoveLeft, false},
		{"right", tcell.KeyRight, 0, engine.CmdMoveRight, false},
		{"space", tcell.KeyRune, ' ', engine.CmdAct, false},
		{"w", tcell.KeyRune, 'w', engine.CmdP2MoveUp, false},
		{"A", tcell.KeyRune, 'A', engine.CmdP2MoveLeft, false},
		{"s", tcell.KeyRune, 's', engine.CmdP2MoveDown, false},
		{"d", tcell.KeyRune, 'd', engine.CmdP2MoveRight, false},
		{"f", tcell.KeyRune, 'f', engine.CmdP2Act, false},
		{"pause", tcell.KeyRune, 'p', engine.CmdPause, false},
		{"restart", tcell.KeyRune, 'r', engine.CmdRestart, false},
		{"q", tcell.KeyRune, 'q', "", true},
		{"escape", tcell.KeyEscape, 0, "", true},
		{"ctrl-c", tcell.KeyCtrlC, 0, "", true},
		{"unbound rune", tcell.KeyRune, 'z', "", false},
		{"unbound key", tcell.KeyF1, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, quit := keyCommand(tt.key, tt.r)
			testutil.AssertEqual(t, "command", cmd, tt.wantCmd)
			testutil.AssertEqual(t, "quit", quit, tt.wantQuit)
		})
	}
}

func TestHandleEvent(t *testing.T) {
	app, _ := newTestApp(t)

	if !app.handleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone)) {
		t.Fatal("Move should keep the app running")
	}
	snap := app.engine.Snapshot()
	testutil.AssertEqual(t, "x", snap.Actors[0].Pos.X, 4)

	app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	testutil.AssertEqual(t, "paused", app.engine.IsPaused(), true)

	if app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q should stop the app")
	}
}

func TestDraw(t *testing.T) {
	app, screen := newTestApp(t)
	app.draw()

	header := rowText(screen, 0, 80)
	if !strings.HasPrefix(header, "Frozen Courtyard  2:00  Score 0  Left 4") {
		t.Errorf("Unexpected header %q", header)
	}

	// Row 8 of the board holds the primary start between two ice blocks
	r, _, _, _ := screen.GetContent(5*cellWidth, boardTop+8)
	testutil.AssertEqual(t, "actor glyph", r, '1')
	r, _, style, _ := screen.GetContent(2*cellWidth, boardTop+8)
	testutil.AssertEqual(t, "ice glyph", r, '#')
	if style != styleIce {
		t.Errorf("Expected ice style on the ice cell")
	}

	help := rowText(screen, boardTop+11+2, 80)
	if !strings.Contains(help, "q: quit") {
		t.Errorf("Expected help line, got %q", help)
	}
}

func TestDrawPaused(t *testing.T) {
	app, screen := newTestApp(t)
	app.engine.Apply(engine.CmdPause)
	app.draw()

	testutil.AssertEqual(t, "status", rowText(screen, boardTop+11+1, 80), "PAUSED")
}

func TestStep(t *testing.T) {
	app, _ := newTestApp(t)
	app.step(500 * time.Millisecond)
	testutil.AssertEqual(t, "elapsed", app.engine.Snapshot().ElapsedMS, int64(500))
}

func TestRunStopsOnQuit(t *testing.T) {
	app, screen := newTestApp(t)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Expected clean exit, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	app, _ := newTestApp(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := app.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Expected deadline error, got %v", err)
	}
	if app.engine.Snapshot().ElapsedMS == 0 {
		t.Error("Expected the clock to advance while running")
	}
}

func TestLoadLevel(t *testing.T) {
	level, err := loadLevel("", t.TempDir(), "")
	if err != nil {
		t.Fatalf("Expected default level, got %v", err)
	}
	testutil.AssertEqual(t, "default", level.Name, "Frozen Courtyard")

	path := filepath.Join(t.TempDir(), "tiny.json")
	data := `{"id": 2, "name": "Tiny", "grid_size": 5, "time_limit_seconds": 30, "difficulty": 1, "mode": "single",
		"layout": ["b....", ".1...", ".....", ".....", "....g"]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	level, err = loadLevel(path, "", "")
	if err != nil {
		t.Fatalf("Failed to load file: %v", err)
	}
	testutil.AssertEqual(t, "file", level.Name, "Tiny")

	_, err = loadLevel("", t.TempDir(), "missing")
	testutil.AssertErrorContains(t, err, "level not found")
}
