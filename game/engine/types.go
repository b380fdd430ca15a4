package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four grid axes, or DirNone
type Direction string

const (
	DirNone  Direction = ""
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Directions lists the four axis directions in a fixed order
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// ParseDirection converts a direction name (case-insensitive) into a Direction
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirUp:
		return DirUp, true
	case DirDown:
		return DirDown, true
	case DirLeft:
		return DirLeft, true
	case DirRight:
		return DirRight, true
	}
	return DirNone, false
}

// Delta returns the unit step for the direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

// Horizontal reports whether the direction lies on the X axis
func (d Direction) Horizontal() bool {
	return d == DirLeft || d == DirRight
}

func (d Direction) String() string {
	if d == DirNone {
		return "none"
	}
	return string(d)
}

// Position represents x,y coordinates on the board
type Position struct {
	X int `json:"x" yaml:"x" msgpack:"x"`
	Y int `json:"y" yaml:"y" msgpack:"y"`
}

// Step returns the neighbouring position in the given direction
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// GameMode selects how many actors take part and who controls them
type GameMode string

const (
	ModeSingle     GameMode = "single"
	ModeCoop       GameMode = "coop"
	ModeAutonomous GameMode = "autonomous"
	ModeVersus     GameMode = "versus"
)

// Valid reports whether m is a known mode
func (m GameMode) Valid() bool {
	switch m {
	case ModeSingle, ModeCoop, ModeAutonomous, ModeVersus:
		return true
	}
	return false
}

// TwoActors reports whether the mode fields a secondary actor
func (m GameMode) TwoActors() bool {
	return m == ModeCoop || m == ModeAutonomous
}

// Slot identifies the primary or secondary actor
type Slot int

const (
	SlotPrimary   Slot = 0
	SlotSecondary Slot = 1
)

func (s Slot) String() string {
	if s == SlotSecondary {
		return "secondary"
	}
	return "primary"
}

const (
	// Validation constants
	MinGridSize         = 5
	MaxGridSize         = 40
	MinTimeLimitSeconds = 10
	MaxTimeLimitSeconds = 3600
	MinDifficulty       = 1
	MaxDifficulty       = 5
	MaxAdvanceTicks     = 600
	MaxCommandHistory   = 500
	UnreachableDistance = 999999
	WebSocketBufferSize = 256
)
