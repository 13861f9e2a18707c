package core

import "fmt"

const (
	// BoardSize is the number of cells along each side of the board
	BoardSize = 9
	// WallGridSize is the number of wall anchors along each side of the slot grid
	WallGridSize = BoardSize - 1
)

// Orientation of a wall segment
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation converts "horizontal"/"vertical" (or "h"/"v") to an Orientation
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "horizontal", "h", "H":
		return Horizontal, nil
	case "vertical", "v", "V":
		return Vertical, nil
	default:
		return 0, fmt.Errorf("unknown orientation %q: %w", s, ErrInvalidState)
	}
}

// Wall is anchored at a slot intersection and spans two unit edges.
// A horizontal wall at (r,c) separates rows r and r+1 for columns c and c+1;
// a vertical wall at (r,c) separates columns c and c+1 for rows r and r+1.
type Wall struct {
	Row         int
	Col         int
	Orientation Orientation
}

// NewWall creates a wall anchored at (row, col)
func NewWall(row, col int, o Orientation) Wall {
	return Wall{Row: row, Col: col, Orientation: o}
}

// InBounds checks the anchor lies in the (N-1)x(N-1) slot grid
func (w Wall) InBounds() bool {
	if w.Orientation != Horizontal && w.Orientation != Vertical {
		return false
	}
	return w.Row >= 0 && w.Row < WallGridSize && w.Col >= 0 && w.Col < WallGridSize
}

// Anchor returns the top-left cell of the 2x2 block the wall sits in
func (w Wall) Anchor() Position {
	return Position{Row: w.Row, Col: w.Col}
}

func (w Wall) String() string {
	tag := "H"
	if w.Orientation == Vertical {
		tag = "V"
	}
	return fmt.Sprintf("%s(%d,%d)", tag, w.Row, w.Col)
}

// InBounds checks if a position lies on the board
func InBounds(p Position) bool {
	return p.InBounds()
}

// AreAdjacent reports whether two positions are one orthogonal step apart
func AreAdjacent(a, b Position) bool {
	return a.IsAdjacentTo(b)
}

// GoalKind selects which line a goal refers to
type GoalKind int

const (
	GoalRow GoalKind = iota
	GoalColumn
)

// Goal is the line a player has to reach to win
type Goal struct {
	Kind GoalKind
	Line int
}

// RowGoal returns a goal satisfied by any cell in the given row
func RowGoal(row int) Goal { return Goal{Kind: GoalRow, Line: row} }

// ColumnGoal returns a goal satisfied by any cell in the given column
func ColumnGoal(col int) Goal { return Goal{Kind: GoalColumn, Line: col} }

// Reached reports whether p satisfies the goal
func (g Goal) Reached(p Position) bool {
	if !p.InBounds() {
		return false
	}
	if g.Kind == GoalColumn {
		return p.Col == g.Line
	}
	return p.Row == g.Line
}

// Cells lists every goal cell
func (g Goal) Cells() []Position {
	cells := make([]Position, 0, BoardSize)
	for i := 0; i < BoardSize; i++ {
		if g.Kind == GoalColumn {
			cells = append(cells, Position{Row: i, Col: g.Line})
		} else {
			cells = append(cells, Position{Row: g.Line, Col: i})
		}
	}
	return cells
}

func (g Goal) String() string {
	if g.Kind == GoalColumn {
		return fmt.Sprintf("column %d", g.Line)
	}
	return fmt.Sprintf("row %d", g.Line)
}
