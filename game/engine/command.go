package engine

import (
	"fmt"
	"strings"
)

// Command is an input issued by a player, an autopilot or a remote client
type Command string

const (
	CmdMoveUp    Command = "move_up"
	CmdMoveDown  Command = "move_down"
	CmdMoveLeft  Command = "move_left"
	CmdMoveRight Command = "move_right"
	CmdStop      Command = "stop"
	CmdAct       Command = "act"

	CmdP2MoveUp    Command = "p2_move_up"
	CmdP2MoveDown  Command = "p2_move_down"
	CmdP2MoveLeft  Command = "p2_move_left"
	CmdP2MoveRight Command = "p2_move_right"
	CmdP2Stop      Command = "p2_stop"
	CmdP2Act       Command = "p2_act"

	CmdPause   Command = "pause"
	CmdRestart Command = "restart"
)

// Commands lists every command the engine understands
var Commands = []Command{
	CmdMoveUp, CmdMoveDown, CmdMoveLeft, CmdMoveRight, CmdStop, CmdAct,
	CmdP2MoveUp, CmdP2MoveDown, CmdP2MoveLeft, CmdP2MoveRight, CmdP2Stop, CmdP2Act,
	CmdPause, CmdRestart,
}

// ParseCommand normalises s into a Command. Bare directions ("up") are
// accepted as shorthand for the matching primary move.
func ParseCommand(s string) (Command, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if d, ok := ParseDirection(norm); ok {
		return MoveCommand(SlotPrimary, d), nil
	}
	for _, c := range Commands {
		if string(c) == norm {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q", s)
}

// MoveCommand builds the move command for a slot and direction
func MoveCommand(slot Slot, d Direction) Command {
	if d == DirNone {
		return ""
	}
	c := Command("move_" + string(d))
	if slot == SlotSecondary {
		c = "p2_" + c
	}
	return c
}

// Slot returns the actor slot the command addresses
func (c Command) Slot() Slot {
	if strings.HasPrefix(string(c), "p2_") {
		return SlotSecondary
	}
	return SlotPrimary
}

// Direction returns the direction of a move command, or DirNone
func (c Command) Direction() Direction {
	name := strings.TrimPrefix(string(c), "p2_")
	if !strings.HasPrefix(name, "move_") {
		return DirNone
	}
	d, _ := ParseDirection(strings.TrimPrefix(name, "move_"))
	return d
}

// Valid reports whether c is a known command
func (c Command) Valid() bool {
	for _, known := range Commands {
		if c == known {
			return true
		}
	}
	return false
}

// CommandResult reports the outcome of Apply
type CommandResult struct {
	Command  Command    `json:"command"`
	Accepted bool       `json:"accepted"`
	Cells    []Position `json:"cells,omitempty"`
}

// CommandLogEntry records one applied command
type CommandLogEntry struct {
	Seq       int     `json:"seq" msgpack:"seq"`
	Command   Command `json:"command" msgpack:"command"`
	Accepted  bool    `json:"accepted" msgpack:"accepted"`
	ElapsedMS int64   `json:"elapsed_ms" msgpack:"elapsed_ms"`
}

// Apply dispatches a command against the current round
func (e *GameEngine) Apply(cmd Command) CommandResult {
	res := CommandResult{Command: cmd}
	slot := cmd.Slot()
	versusP2 := slot == SlotSecondary && e.world.Mode == ModeVersus

	switch cmd {
	case CmdMoveUp, CmdMoveDown, CmdMoveLeft, CmdMoveRight,
		CmdP2MoveUp, CmdP2MoveDown, CmdP2MoveLeft, CmdP2MoveRight:
		if versusP2 {
			res.Accepted = e.moveControlledAdversary(cmd.Direction())
		} else {
			res.Accepted = e.moveActor(slot, cmd.Direction())
		}
	case CmdStop, CmdP2Stop:
		if versusP2 {
			if a := e.controlledAdversary(); a != nil {
				a.Dir = DirNone
				res.Accepted = true
			}
		} else {
			res.Accepted = e.stopActor(slot)
		}
	case CmdAct, CmdP2Act:
		if versusP2 {
			res.Cells, res.Accepted = e.adversaryAct()
		} else {
			res.Cells, res.Accepted = e.act(slot)
		}
	case CmdPause:
		if !e.world.Terminal() {
			e.world.Paused = !e.world.Paused
			res.Accepted = true
		}
	case CmdRestart:
		e.Restart()
		res.Accepted = true
	}

	e.record(res)
	return res
}

func (e *GameEngine) adversaryAct() ([]Position, bool) {
	w := e.world
	a := e.controlledAdversary()
	if a == nil || !a.CanBreakIce() || w.Terminal() || w.Paused {
		return nil, false
	}
	return e.breakAdjacentIce(a), true
}

func (e *GameEngine) record(res CommandResult) {
	e.seq++
	e.history = append(e.history, CommandLogEntry{
		Seq:       e.seq,
		Command:   res.Command,
		Accepted:  res.Accepted,
		ElapsedMS: e.world.ElapsedMS,
	})
	if len(e.history) > MaxCommandHistory {
		e.history = e.history[len(e.history)-MaxCommandHistory:]
	}
}

// History returns a copy of the bounded command log, oldest first
func (e *GameEngine) History() []CommandLogEntry {
	out := make([]CommandLogEntry, len(e.history))
	copy(out, e.history)
	return out
}
