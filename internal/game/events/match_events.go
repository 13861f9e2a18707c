package events

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

// Event type constants
const (
	TypeMatchCreated     = "match.created"
	TypeMatchStarted     = "match.started"
	TypeMatchFinished    = "match.finished"
	TypeMatchReset       = "match.reset"
	TypeStatusChanged    = "status.changed"
	TypePawnMoved        = "pawn.moved"
	TypeWallPlaced       = "wall.placed"
	TypeActionRejected   = "action.rejected"
	TypeActionUndone     = "action.undone"
	TypePlayerJoined     = "player.joined"
	TypePlayerEliminated = "player.eliminated"
	TypeTurnForfeited    = "turn.forfeited"
)

// MatchCreatedEvent is published when an engine is built for a new match
type MatchCreatedEvent struct {
	BaseEvent
	Mode  core.Mode
	Seats int
}

func NewMatchCreatedEvent(matchID string, mode core.Mode, seats int) *MatchCreatedEvent {
	return &MatchCreatedEvent{BaseEvent: newBase(TypeMatchCreated, matchID, 0), Mode: mode, Seats: seats}
}

// MatchStartedEvent is published when the match leaves Waiting
type MatchStartedEvent struct {
	BaseEvent
	Players []core.PlayerSlot
	First   core.PlayerSlot
}

func NewMatchStartedEvent(matchID string, players []core.PlayerSlot, first core.PlayerSlot) *MatchStartedEvent {
	return &MatchStartedEvent{BaseEvent: newBase(TypeMatchStarted, matchID, 0), Players: players, First: first}
}

// MatchFinishedEvent is published when a win condition fires
type MatchFinishedEvent struct {
	BaseEvent
	Winner core.PlayerSlot
	Reason string
}

func NewMatchFinishedEvent(matchID string, ply int, winner core.PlayerSlot, reason string) *MatchFinishedEvent {
	return &MatchFinishedEvent{BaseEvent: newBase(TypeMatchFinished, matchID, ply), Winner: winner, Reason: reason}
}

// MatchResetEvent is published when the match is recreated in Waiting
type MatchResetEvent struct {
	BaseEvent
	DiscardedPlies int
}

func NewMatchResetEvent(matchID string, discarded int) *MatchResetEvent {
	return &MatchResetEvent{BaseEvent: newBase(TypeMatchReset, matchID, 0), DiscardedPlies: discarded}
}

// StatusChangedEvent is published on every lifecycle transition
type StatusChangedEvent struct {
	BaseEvent
	From   string
	To     string
	Reason string
}

func NewStatusChangedEvent(matchID string, from, to, reason string) *StatusChangedEvent {
	return &StatusChangedEvent{BaseEvent: newBase(TypeStatusChanged, matchID, 0), From: from, To: to, Reason: reason}
}

// PawnMovedEvent is published after an accepted pawn move
type PawnMovedEvent struct {
	BaseEvent
	Player core.PlayerSlot
	From   core.Position
	To     core.Position
	Jump   bool
	Next   core.PlayerSlot
}

func NewPawnMovedEvent(matchID string, ply int, player core.PlayerSlot, from, to core.Position, next core.PlayerSlot) *PawnMovedEvent {
	return &PawnMovedEvent{
		BaseEvent: newBase(TypePawnMoved, matchID, ply),
		Player:    player,
		From:      from,
		To:        to,
		Jump:      from.DistanceTo(to) == 2,
		Next:      next,
	}
}

// WallPlacedEvent is published after an accepted wall placement
type WallPlacedEvent struct {
	BaseEvent
	Player         core.PlayerSlot
	Wall           core.Wall
	WallsRemaining int
	Next           core.PlayerSlot
}

func NewWallPlacedEvent(matchID string, ply int, player core.PlayerSlot, wall core.Wall, remaining int, next core.PlayerSlot) *WallPlacedEvent {
	return &WallPlacedEvent{
		BaseEvent:      newBase(TypeWallPlaced, matchID, ply),
		Player:         player,
		Wall:           wall,
		WallsRemaining: remaining,
		Next:           next,
	}
}

// ActionRejectedEvent is published when a submitted action fails validation
type ActionRejectedEvent struct {
	BaseEvent
	Player core.PlayerSlot
	Action core.Action
	Reason string
}

func NewActionRejectedEvent(matchID string, ply int, action core.Action, err error) *ActionRejectedEvent {
	e := &ActionRejectedEvent{BaseEvent: newBase(TypeActionRejected, matchID, ply), Action: action}
	if action != nil {
		e.Player = action.GetPlayer()
	}
	if err != nil {
		e.Reason = err.Error()
	}
	return e
}

// ActionUndoneEvent is published when undo pops a history record
type ActionUndoneEvent struct {
	BaseEvent
	Player core.PlayerSlot
	Kind   string
}

func NewActionUndoneEvent(matchID string, ply int, player core.PlayerSlot, kind string) *ActionUndoneEvent {
	return &ActionUndoneEvent{BaseEvent: newBase(TypeActionUndone, matchID, ply), Player: player, Kind: kind}
}

// PlayerJoinedEvent is published when a seat is filled by a human or a bot
type PlayerJoinedEvent struct {
	BaseEvent
	Player     core.PlayerSlot
	Bot        bool
	Difficulty string
}

func NewPlayerJoinedEvent(matchID string, player core.PlayerSlot, bot bool, difficulty string) *PlayerJoinedEvent {
	return &PlayerJoinedEvent{BaseEvent: newBase(TypePlayerJoined, matchID, 0), Player: player, Bot: bot, Difficulty: difficulty}
}

// PlayerEliminatedEvent is published when a player leaves the match
type PlayerEliminatedEvent struct {
	BaseEvent
	Player    core.PlayerSlot
	Remaining int
}

func NewPlayerEliminatedEvent(matchID string, ply int, player core.PlayerSlot, remaining int) *PlayerEliminatedEvent {
	return &PlayerEliminatedEvent{BaseEvent: newBase(TypePlayerEliminated, matchID, ply), Player: player, Remaining: remaining}
}

// TurnForfeitedEvent is published when a player's turn is skipped
type TurnForfeitedEvent struct {
	BaseEvent
	Player core.PlayerSlot
	Next   core.PlayerSlot
}

func NewTurnForfeitedEvent(matchID string, ply int, player, next core.PlayerSlot) *TurnForfeitedEvent {
	return &TurnForfeitedEvent{BaseEvent: newBase(TypeTurnForfeited, matchID, ply), Player: player, Next: next}
}
