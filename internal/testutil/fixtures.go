package testutil

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

// Pos is shorthand for a board cell
func Pos(row, col int) core.Position {
	return core.Position{Row: row, Col: col}
}

// H is shorthand for a horizontal wall anchored at (row, col)
func H(row, col int) core.Wall {
	return core.NewWall(row, col, core.Horizontal)
}

// V is shorthand for a vertical wall anchored at (row, col)
func V(row, col int) core.Wall {
	return core.NewWall(row, col, core.Vertical)
}

// SealedGoalRow returns walls that fence row 8 off from the rest of the
// board except for a corridor down column 8, and the wall that closes the
// corridor. Every wall in open is legal in order on an empty board; closing
// then strands both 2-player spawns.
func SealedGoalRow() (open []core.Wall, closing core.Wall) {
	return []core.Wall{H(7, 0), H(7, 2), H(7, 4), H(7, 6), V(6, 7)}, H(5, 7)
}
