package rules

import "github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"

// Pawn is the rules-level view of one seat. Keeping it here instead of
// importing the game package avoids an import cycle.
type Pawn struct {
	Slot           core.PlayerSlot
	Position       core.Position
	Goal           core.Goal
	Active         bool
	WallsRemaining int
}

// Snapshot is everything legality depends on: the placed walls and the pawns
type Snapshot struct {
	Walls []core.Wall
	Pawns []Pawn
}

// Pawn looks up the pawn seated at slot
func (s Snapshot) Pawn(slot core.PlayerSlot) (Pawn, bool) {
	for _, p := range s.Pawns {
		if p.Slot == slot {
			return p, true
		}
	}
	return Pawn{}, false
}

// Occupied returns the cells held by active pawns
func (s Snapshot) Occupied() map[core.Position]bool {
	occupied := make(map[core.Position]bool, len(s.Pawns))
	for _, p := range s.Pawns {
		if p.Active {
			occupied[p.Position] = true
		}
	}
	return occupied
}

// ActivePawns filters the snapshot down to pawns still in the match
func (s Snapshot) ActivePawns() []Pawn {
	active := make([]Pawn, 0, len(s.Pawns))
	for _, p := range s.Pawns {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}
