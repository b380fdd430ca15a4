package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
)

func createTestLevel() *engine.LevelConfig {
	return &engine.LevelConfig{
		ID:               7,
		Name:             "Session Test Level",
		GridSize:         5,
		TimeLimitSeconds: 30,
		Difficulty:       1,
		Mode:             engine.ModeSingle,
		Layout: []string{
			"b....",
			".1...",
			"..#..",
			".....",
			"....g",
		},
		Messages: engine.LevelMessages{
			Welcome: "Welcome!",
			Victory: "Victory!",
			Defeat:  "Defeat!",
			TimeUp:  "Time's up!",
		},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	t.Run("generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", level, service.SessionOptions{})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %q", session.ID)
		}
		testutil.AssertEqual(t, "level id", session.LevelID, "test")
		if session.Engine == nil {
			t.Fatal("Expected engine to be created")
		}
		testutil.AssertEqual(t, "grid", session.Engine.World().Size(), 5)
	})

	t.Run("explicit ID is lowercased", func(t *testing.T) {
		session, err := manager.Create("ABCD", "test", level, service.SessionOptions{})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		testutil.AssertEqual(t, "id", session.ID, "abcd")
	})

	t.Run("duplicate ID", func(t *testing.T) {
		_, err := manager.Create("abcd", "test", level, service.SessionOptions{})
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("../etc", "test", level, service.SessionOptions{})
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		bad := createTestLevel()
		bad.GridSize = 3
		if _, err := manager.Create("", "bad", bad, service.SessionOptions{}); err == nil {
			t.Error("Expected error for invalid level")
		}
	})

	t.Run("autopilot option", func(t *testing.T) {
		session, err := manager.Create("", "test", level, service.SessionOptions{Autopilot: true})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		pilots := session.Engine.Autopilots()
		if len(pilots) != 1 || pilots[0].Slot != engine.SlotPrimary {
			t.Errorf("Expected primary autopilot, got %+v", pilots)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("game", "test", createTestLevel(), service.SessionOptions{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	for _, id := range []string{"game", "GAME", "GaMe"} {
		got, err := manager.Get(id)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", id, err)
		}
		if got != created {
			t.Errorf("Get(%q) returned a different session", id)
		}
	}

	if _, err := manager.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("del1", "test", createTestLevel(), service.SessionOptions{})

	if err := manager.Delete("DEL1"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Session should be gone after delete")
	}
	if err := manager.Delete("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if err := manager.DeleteFromMemory("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 3; i++ {
		if _, err := manager.Create("", "test", createTestLevel(), service.SessionOptions{}); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}
	testutil.AssertEqual(t, "list", len(manager.List()), 3)
	testutil.AssertEqual(t, "count", manager.Count(), 3)
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	old, _ := manager.Create("old1", "test", createTestLevel(), service.SessionOptions{})
	manager.Create("new1", "test", createTestLevel(), service.SessionOptions{})

	old.Lock()
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	old.Unlock()

	removed := manager.CleanupExpiredSessions(time.Hour)
	testutil.AssertEqual(t, "removed", removed, 1)
	if manager.Exists("old1") {
		t.Error("Expired session should be removed")
	}
	if !manager.Exists("new1") {
		t.Error("Fresh session should remain")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("acc1", "test", createTestLevel(), service.SessionOptions{})
	before := session.LastAccessedAt

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("acc1"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected LastAccessedAt to advance")
	}
	if err := manager.UpdateLastAccessed("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager()
	manager.Create("mem1", "test", createTestLevel(), service.SessionOptions{})
	if err := manager.Save("mem1"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
	if err := manager.SaveAllSessions(); err != nil {
		t.Errorf("SaveAllSessions without persistence should be a no-op, got %v", err)
	}
	testutil.AssertEqual(t, "pruned", manager.PruneMissing(), 0)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", "test", level, service.SessionOptions{})
			if err != nil {
				t.Errorf("Concurrent create failed: %v", err)
				return
			}
			session.Lock()
			session.Engine.Apply(engine.CmdMoveRight)
			session.Unlock()
			ids <- session.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate session ID %s", id)
		}
		seen[id] = true
	}
	testutil.AssertEqual(t, "count", manager.Count(), 50)
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	a, _ := manager.Create("iso1", "test", createTestLevel(), service.SessionOptions{})
	b, _ := manager.Create("iso2", "test", createTestLevel(), service.SessionOptions{})

	a.Engine.Apply(engine.CmdMoveRight)

	if a.Engine.World().Primary.Pos == b.Engine.World().Primary.Pos {
		t.Error("Moving in one session must not affect another")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 20; i++ {
		session, err := manager.Create("", "test", createTestLevel(), service.SessionOptions{})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if strings.Trim(session.ID, "0123456789abcdef") != "" {
			t.Errorf("Expected hex ID, got %q", session.ID)
		}
	}
}
