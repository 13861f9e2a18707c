package rules

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/pathing"
)

// LegalMoveCalculator enumerates the legal pawn moves and wall placements
// of a snapshot. It holds no state and never mutates its input.
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// LegalSteps returns every cell the player's pawn may move to: single steps
// first, then jumps, each in the scan order up, down, left, right. Cells held
// by another active pawn are never targets.
func (lmc *LegalMoveCalculator) LegalSteps(s Snapshot, player core.PlayerSlot) []core.Position {
	targets := make([]core.Position, 0, 2*len(core.Directions))
	pawn, ok := s.Pawn(player)
	if !ok || !pawn.Active {
		return targets
	}

	grid := pathing.NewGrid(s.Walls)
	occupied := s.Occupied()
	from := pawn.Position

	for _, d := range core.Directions {
		to := from.Move(d)
		if validateStep(&grid, from, to) && !occupied[to] {
			targets = append(targets, to)
		}
	}
	for _, d := range core.Directions {
		to := from.Jump(d)
		if validateJump(&grid, from, to, occupied) && !occupied[to] {
			targets = append(targets, to)
		}
	}
	return targets
}

// IsLegalStep reports whether to is one of LegalSteps for the player
func (lmc *LegalMoveCalculator) IsLegalStep(s Snapshot, player core.PlayerSlot, to core.Position) bool {
	for _, target := range lmc.LegalSteps(s, player) {
		if target == to {
			return true
		}
	}
	return false
}

// LegalWalls returns every wall the player could place now, anchors in
// row-major order with the horizontal wall before the vertical one.
// A player without walls left, or not in the match, gets an empty list.
func (lmc *LegalMoveCalculator) LegalWalls(s Snapshot, player core.PlayerSlot) []core.Wall {
	walls := make([]core.Wall, 0)
	pawn, ok := s.Pawn(player)
	if !ok || !pawn.Active || pawn.WallsRemaining <= 0 {
		return walls
	}

	grid := pathing.NewGrid(s.Walls)
	pawns := s.ActivePawns()
	for row := 0; row < core.WallGridSize; row++ {
		for col := 0; col < core.WallGridSize; col++ {
			for _, o := range []core.Orientation{core.Horizontal, core.Vertical} {
				w := core.NewWall(row, col, o)
				if validateWall(grid, w, s.Walls, pawns) == nil {
					walls = append(walls, w)
				}
			}
		}
	}
	return walls
}
