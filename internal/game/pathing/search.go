package pathing

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

// Unreachable is the distance reported when no path exists
const Unreachable = -1

// HasPath reports whether any goal cell can be reached from start
func (g *Grid) HasPath(start core.Position, goal core.Goal) bool {
	return g.Distance(start, goal) != Unreachable
}

// Distance returns the length of the shortest unblocked path from start to any
// goal cell, 0 when start is already on the goal and Unreachable otherwise.
func (g *Grid) Distance(start core.Position, goal core.Goal) int {
	if !start.InBounds() {
		return Unreachable
	}
	if goal.Reached(start) {
		return 0
	}

	var dist [cellCount]int
	for i := range dist {
		dist[i] = Unreachable
	}
	queue := make([]core.Position, 0, cellCount)
	queue = append(queue, start)
	dist[start.ToIndex()] = 0

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, d := range core.Directions {
			next := cur.Move(d)
			if g.Blocked(cur, next) || dist[next.ToIndex()] != Unreachable {
				continue
			}
			dist[next.ToIndex()] = dist[cur.ToIndex()] + 1
			if goal.Reached(next) {
				return dist[next.ToIndex()]
			}
			queue = append(queue, next)
		}
	}
	return Unreachable
}

// DistanceMap holds the goal distance of every cell, indexed by Position.ToIndex
type DistanceMap [cellCount]int

// At returns the distance stored for p, Unreachable for off-board cells
func (m *DistanceMap) At(p core.Position) int {
	if !p.InBounds() {
		return Unreachable
	}
	return m[p.ToIndex()]
}

// DistancesTo runs one breadth-first search outward from every goal cell.
// Edges are symmetric, so the result is each cell's distance to the goal.
func (g *Grid) DistancesTo(goal core.Goal) DistanceMap {
	var dist DistanceMap
	for i := range dist {
		dist[i] = Unreachable
	}

	queue := make([]core.Position, 0, cellCount)
	for _, cell := range goal.Cells() {
		dist[cell.ToIndex()] = 0
		queue = append(queue, cell)
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, next := range g.Neighbors(cur) {
			if dist[next.ToIndex()] != Unreachable {
				continue
			}
			dist[next.ToIndex()] = dist[cur.ToIndex()] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// HasPath is a convenience wrapper building a grid from walls
func HasPath(walls []core.Wall, start core.Position, goal core.Goal) bool {
	g := NewGrid(walls)
	return g.HasPath(start, goal)
}

// Distance is a convenience wrapper building a grid from walls
func Distance(walls []core.Wall, start core.Position, goal core.Goal) int {
	g := NewGrid(walls)
	return g.Distance(start, goal)
}
