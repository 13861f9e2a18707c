package layout

import (
	"fmt"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

// Default wall allowances per player
const (
	DefaultTwoPlayerWalls  = 10
	DefaultFourPlayerWalls = 5
)

// LayoutConfig holds the per-match seating configuration
type LayoutConfig struct {
	Mode           core.Mode
	WallsPerPlayer int
}

// DefaultLayoutConfig returns the standard wall allowance for the mode
func DefaultLayoutConfig(mode core.Mode) LayoutConfig {
	walls := DefaultTwoPlayerWalls
	if mode == core.FourPlayer {
		walls = DefaultFourPlayerWalls
	}
	return LayoutConfig{Mode: mode, WallsPerPlayer: walls}
}

// Seat describes where a slot starts and what it races toward
type Seat struct {
	Slot  core.PlayerSlot
	Spawn core.Position
	Goal  core.Goal
	Walls int
}

// Spawn returns the start cell for a slot. Each pawn starts on the edge
// opposite its goal line, centred.
func Spawn(slot core.PlayerSlot) core.Position {
	mid := core.BoardSize / 2
	last := core.BoardSize - 1
	switch slot {
	case core.Player1:
		return core.Position{Row: last, Col: mid}
	case core.Player2:
		return core.Position{Row: 0, Col: mid}
	case core.Player3:
		return core.Position{Row: mid, Col: 0}
	case core.Player4:
		return core.Position{Row: mid, Col: last}
	default:
		return core.Position{Row: -1, Col: -1}
	}
}

// GoalFor returns the goal line of a slot. The goals do not depend on the
// mode; player3 and player4 only exist in the 4-player variant.
func GoalFor(slot core.PlayerSlot) core.Goal {
	last := core.BoardSize - 1
	switch slot {
	case core.Player1:
		return core.RowGoal(0)
	case core.Player2:
		return core.RowGoal(last)
	case core.Player3:
		return core.ColumnGoal(last)
	default:
		return core.ColumnGoal(0)
	}
}

// Seats builds the seat list for the configured mode, in turn order
func (c LayoutConfig) Seats() ([]Seat, error) {
	if c.WallsPerPlayer < 0 {
		return nil, fmt.Errorf("walls per player %d: %w", c.WallsPerPlayer, core.ErrInvalidState)
	}
	if c.Mode != core.TwoPlayer && c.Mode != core.FourPlayer {
		return nil, fmt.Errorf("mode %s: %w", c.Mode, core.ErrInvalidState)
	}

	slots := c.Mode.Seats()
	seats := make([]Seat, 0, len(slots))
	for _, slot := range slots {
		seats = append(seats, Seat{
			Slot:  slot,
			Spawn: Spawn(slot),
			Goal:  GoalFor(slot),
			Walls: c.WallsPerPlayer,
		})
	}
	return seats, nil
}
