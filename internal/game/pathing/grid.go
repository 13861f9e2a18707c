// Package pathing answers reachability and shortest-path questions over the
// board with walls treated as blocked cell edges. Pawns never block a path.
package pathing

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

const cellCount = core.BoardSize * core.BoardSize

// edge bits are indexed by core.Direction
const (
	northEdge uint8 = 1 << core.Up
	southEdge uint8 = 1 << core.Down
	westEdge  uint8 = 1 << core.Left
	eastEdge  uint8 = 1 << core.Right
)

// Grid stores, for every cell, which of its four edges are blocked.
// The zero value is an open board. Grid is a plain value; copying it
// yields an independent grid.
type Grid struct {
	blocked [cellCount]uint8
}

// NewGrid builds a grid with every wall applied. Walls outside the slot grid are ignored.
func NewGrid(walls []core.Wall) Grid {
	var g Grid
	for _, w := range walls {
		g.Place(w)
	}
	return g
}

// Place blocks the two unit edges covered by w
func (g *Grid) Place(w core.Wall) {
	if !w.InBounds() {
		return
	}
	r, c := w.Row, w.Col
	switch w.Orientation {
	case core.Horizontal:
		// rows r and r+1 are separated at columns c and c+1
		g.set(r, c, southEdge)
		g.set(r, c+1, southEdge)
		g.set(r+1, c, northEdge)
		g.set(r+1, c+1, northEdge)
	case core.Vertical:
		// columns c and c+1 are separated at rows r and r+1
		g.set(r, c, eastEdge)
		g.set(r+1, c, eastEdge)
		g.set(r, c+1, westEdge)
		g.set(r+1, c+1, westEdge)
	}
}

// With returns a copy of the grid with w placed
func (g Grid) With(w core.Wall) Grid {
	g.Place(w)
	return g
}

func (g *Grid) set(row, col int, edge uint8) {
	g.blocked[row*core.BoardSize+col] |= edge
}

// Blocked reports whether moving between a and b is impossible: either the
// cells are not orthogonal neighbours on the board or a wall lies between them.
func (g *Grid) Blocked(a, b core.Position) bool {
	if !a.InBounds() || !b.InBounds() || !a.IsAdjacentTo(b) {
		return true
	}
	d := a.DirectionTo(b)
	return g.blocked[a.ToIndex()]&(1<<d) != 0
}

// Neighbors returns the cells reachable from p in one unblocked step, in scan order
func (g *Grid) Neighbors(p core.Position) []core.Position {
	out := make([]core.Position, 0, len(core.Directions))
	for _, d := range core.Directions {
		next := p.Move(d)
		if !g.Blocked(p, next) {
			out = append(out, next)
		}
	}
	return out
}
