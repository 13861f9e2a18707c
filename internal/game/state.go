package game

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/rules"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/states"
)

// PlayerData is the per-seat state. Seats outside the match mode stay zero.
type PlayerData struct {
	Slot           core.PlayerSlot
	Position       core.Position
	Spawn          core.Position
	Goal           core.Goal
	WallsRemaining int
	InitialWalls   int
	Active         bool
	Bot            bool
	Claimed        bool   // taken through AddPlayer or AddBot
	Difficulty     string // bot level, empty for humans
}

// RecordKind tags a history entry
type RecordKind int

const (
	RecordMove RecordKind = iota
	RecordWall
)

func (k RecordKind) String() string {
	if k == RecordWall {
		return "wall"
	}
	return "move"
}

// Record is one accepted action. Move records use From and To, wall records use Wall.
type Record struct {
	Kind   RecordKind
	Player core.PlayerSlot
	From   core.Position
	To     core.Position
	Wall   core.Wall
}

// MatchState is the complete state of one match
type MatchState struct {
	ID           string
	Mode         core.Mode
	Status       states.Status
	Winner       core.PlayerSlot // NoPlayer until Finished
	Players      [core.MaxPlayers]PlayerData
	Order        []core.PlayerSlot // seats in turn order
	CurrentIndex int               // index into Order
	Walls        []core.Wall
	History      []Record
}

// Clone returns a deep copy. Slices are always non-nil in the copy.
func (s MatchState) Clone() MatchState {
	out := s
	out.Order = append(make([]core.PlayerSlot, 0, len(s.Order)), s.Order...)
	out.Walls = append(make([]core.Wall, 0, len(s.Walls)), s.Walls...)
	out.History = append(make([]Record, 0, len(s.History)), s.History...)
	return out
}

// Player returns the data for slot. ok is false for slots not seated in this mode.
func (s *MatchState) Player(slot core.PlayerSlot) (*PlayerData, bool) {
	if !slot.Valid() || s.seatIndex(slot) < 0 {
		return nil, false
	}
	return &s.Players[slot.Index()], true
}

// CurrentPlayer returns the slot whose turn it is, NoPlayer outside InProgress
func (s MatchState) CurrentPlayer() core.PlayerSlot {
	if s.Status != states.StatusInProgress || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Order) {
		return core.NoPlayer
	}
	return s.Order[s.CurrentIndex]
}

// ActivePlayers lists active seats in turn order
func (s MatchState) ActivePlayers() []core.PlayerSlot {
	active := make([]core.PlayerSlot, 0, len(s.Order))
	for _, slot := range s.Order {
		if s.Players[slot.Index()].Active {
			active = append(active, slot)
		}
	}
	return active
}

// Ply is the number of accepted actions since the last reset
func (s MatchState) Ply() int {
	return len(s.History)
}

// WallRecords counts the wall placements in the history
func (s MatchState) WallRecords() int {
	n := 0
	for _, r := range s.History {
		if r.Kind == RecordWall {
			n++
		}
	}
	return n
}

// Snapshot projects the state onto what the legality rules need
func (s MatchState) Snapshot() rules.Snapshot {
	pawns := make([]rules.Pawn, 0, len(s.Order))
	for _, slot := range s.Order {
		p := s.Players[slot.Index()]
		pawns = append(pawns, rules.Pawn{
			Slot:           slot,
			Position:       p.Position,
			Goal:           p.Goal,
			Active:         p.Active,
			WallsRemaining: p.WallsRemaining,
		})
	}
	return rules.Snapshot{Walls: s.Walls, Pawns: pawns}
}

func (s *MatchState) seatIndex(slot core.PlayerSlot) int {
	for i, seat := range s.Order {
		if seat == slot {
			return i
		}
	}
	return -1
}

// nextActiveIndex returns the seat index of the first active seat after
// from, wrapping around. The active set is read at call time.
func (s *MatchState) nextActiveIndex(from int) int {
	n := len(s.Order)
	for step := 1; step <= n; step++ {
		idx := (from + step) % n
		if s.Players[s.Order[idx].Index()].Active {
			return idx
		}
	}
	return from
}
