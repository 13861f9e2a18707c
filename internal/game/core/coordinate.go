package core

import "fmt"

// Position identifies a cell on the board by row and column
type Position struct {
	Row, Col int
}

// NewPosition creates a new position with the given row and column
func NewPosition(row, col int) Position {
	return Position{Row: row, Col: col}
}

// FromIndex creates a position from a board array index using row-major ordering
func FromIndex(idx int) Position {
	return Position{
		Row: idx / BoardSize,
		Col: idx % BoardSize,
	}
}

// InBounds checks if the position lies on the board
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// ToIndex converts the position to a board array index using row-major ordering
func (p Position) ToIndex() int {
	return p.Row*BoardSize + p.Col
}

// DistanceTo calculates the Manhattan distance to another position
func (p Position) DistanceTo(other Position) int {
	return abs(p.Row-other.Row) + abs(p.Col-other.Col)
}

// IsAdjacentTo checks if this position is orthogonally adjacent to another
func (p Position) IsAdjacentTo(other Position) bool {
	return p.DistanceTo(other) == 1
}

// Add returns the sum of this position and an offset
func (p Position) Add(offset Position) Position {
	return Position{Row: p.Row + offset.Row, Col: p.Col + offset.Col}
}

// Equal checks if two positions are equal
func (p Position) Equal(other Position) bool {
	return p.Row == other.Row && p.Col == other.Col
}

// String returns a string representation of the position
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction represents a cardinal direction. The declaration order is the
// scan order used for move generation: up, down, left, right.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in scan order
var Directions = [4]Direction{Up, Down, Left, Right}

// DirectionVectors provides row/col offsets for each direction
var DirectionVectors = [4]Position{
	Up:    {Row: -1, Col: 0},
	Down:  {Row: 1, Col: 0},
	Left:  {Row: 0, Col: -1},
	Right: {Row: 0, Col: 1},
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Move returns the position one step away in the given direction
func (p Position) Move(d Direction) Position {
	if d < Up || d > Right {
		return p
	}
	return p.Add(DirectionVectors[d])
}

// Jump returns the position two steps away in the given direction
func (p Position) Jump(d Direction) Position {
	return p.Move(d).Move(d)
}

// DirectionTo returns the direction from this position to an adjacent one.
// Returns -1 if the positions are not adjacent.
func (p Position) DirectionTo(other Position) Direction {
	if !p.IsAdjacentTo(other) {
		return -1
	}

	switch {
	case other.Row < p.Row:
		return Up
	case other.Row > p.Row:
		return Down
	case other.Col < p.Col:
		return Left
	default:
		return Right
	}
}

// Midpoint returns the cell halfway between two positions that lie exactly
// two cells apart along one axis. ok is false for any other pair.
func Midpoint(a, b Position) (mid Position, ok bool) {
	dr, dc := b.Row-a.Row, b.Col-a.Col
	switch {
	case dc == 0 && (dr == 2 || dr == -2):
		return Position{Row: a.Row + dr/2, Col: a.Col}, true
	case dr == 0 && (dc == 2 || dc == -2):
		return Position{Row: a.Row, Col: a.Col + dc/2}, true
	default:
		return Position{}, false
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
