package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/pathing"
)

// ValidateStep reports whether to is an in-bounds neighbour of from with no
// wall on the edge between them. Occupancy is not considered.
func ValidateStep(from, to core.Position, walls []core.Wall) bool {
	grid := pathing.NewGrid(walls)
	return validateStep(&grid, from, to)
}

func validateStep(grid *pathing.Grid, from, to core.Position) bool {
	return from.IsAdjacentTo(to) && !grid.Blocked(from, to)
}

// ValidateJump reports whether to is a straight two-cell jump from from over
// an occupied midpoint, with both crossed edges free of walls.
func ValidateJump(from, to core.Position, occupied map[core.Position]bool, walls []core.Wall) bool {
	grid := pathing.NewGrid(walls)
	return validateJump(&grid, from, to, occupied)
}

func validateJump(grid *pathing.Grid, from, to core.Position, occupied map[core.Position]bool) bool {
	mid, ok := Midpoint(from, to)
	if !ok || !to.InBounds() || !occupied[mid] {
		return false
	}
	return !grid.Blocked(from, mid) && !grid.Blocked(mid, to)
}

// Midpoint is re-exported for callers that only import rules
func Midpoint(a, b core.Position) (core.Position, bool) {
	return core.Midpoint(a, b)
}

// Overlaps reports whether two walls conflict. Walls anchored at the same
// intersection always conflict, whatever their orientation. Parallel walls on
// the same line conflict when their anchors are less than two units apart.
func Overlaps(a, b core.Wall) bool {
	if a.Row == b.Row && a.Col == b.Col {
		return true
	}
	if a.Orientation != b.Orientation {
		return false
	}
	if a.Orientation == core.Horizontal {
		return a.Row == b.Row && abs(a.Col-b.Col) <= 1
	}
	return a.Col == b.Col && abs(a.Row-b.Row) <= 1
}

// ValidateWallPlacement checks wall against the slot grid, the placed walls
// and the path of every active pawn. It returns nil when the wall is legal,
// otherwise an error wrapping ErrOutOfBounds, ErrWallOverlap or ErrPathBlocked.
func ValidateWallPlacement(wall core.Wall, walls []core.Wall, pawns []Pawn) error {
	grid := pathing.NewGrid(walls)
	return validateWall(grid, wall, walls, pawns)
}

func validateWall(grid pathing.Grid, wall core.Wall, walls []core.Wall, pawns []Pawn) error {
	if !wall.InBounds() {
		return core.ErrOutOfBounds
	}
	for _, existing := range walls {
		if Overlaps(wall, existing) {
			return fmt.Errorf("conflicts with %s: %w", existing, core.ErrWallOverlap)
		}
	}

	grid.Place(wall)
	for _, p := range pawns {
		if !p.Active {
			continue
		}
		if !grid.HasPath(p.Position, p.Goal) {
			return fmt.Errorf("%s cut off from %s: %w", p.Slot, p.Goal, core.ErrPathBlocked)
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
