package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/bot"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/events"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/rules"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/states"
	"github.com/rs/zerolog"
)

// Engine runs one match. It is not safe for concurrent use; callers that
// share an engine between goroutines serialize access themselves.
type Engine struct {
	state         *MatchState
	rng           *rand.Rand
	logger        zerolog.Logger
	eventBus      *events.EventBus
	stateMachine  *states.StateMachine
	winCondition  *rules.WinConditionChecker
	legalMoves    *rules.LegalMoveCalculator
	turnProcessor *TurnProcessor
	wallsPerSeat  int
}

// NewEngine creates an engine for a new match in Waiting
func NewEngine(ctx context.Context, cfg MatchConfig) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// RestoreEngine creates an engine that continues from state
func RestoreEngine(cfg MatchConfig, state MatchState) (*Engine, error) {
	return NewEngineInitializer(cfg).Restore(state)
}

func (e *Engine) ID() string {
	return e.state.ID
}

// State returns a deep copy of the match state
func (e *Engine) State() MatchState {
	return e.state.Clone()
}

func (e *Engine) Status() states.Status {
	return e.state.Status
}

func (e *Engine) IsFinished() bool {
	return e.state.Status == states.StatusFinished
}

func (e *Engine) Winner() core.PlayerSlot {
	return e.state.Winner
}

// CurrentPlayer returns the player to move, NoPlayer outside InProgress
func (e *Engine) CurrentPlayer() core.PlayerSlot {
	return e.state.CurrentPlayer()
}

// EventBus returns the bus the engine publishes match events on
func (e *Engine) EventBus() *events.EventBus {
	return e.eventBus
}

// StatusHistory returns the status transitions since creation or the last reset
func (e *Engine) StatusHistory() []states.Transition {
	return e.stateMachine.GetHistory()
}

// Start moves the match from Waiting to InProgress. At least two seats must be active.
func (e *Engine) Start() error {
	s := e.state
	if s.Status != states.StatusWaiting {
		return core.WrapStateError(s.Ply(), "start", fmt.Errorf("status %s: %w", s.Status, core.ErrInvalidState))
	}
	active := s.ActivePlayers()
	if len(active) < 2 {
		return core.WrapStateError(s.Ply(), "start", fmt.Errorf("%d active players: %w", len(active), core.ErrInvalidState))
	}

	if err := e.stateMachine.TransitionTo(states.StatusInProgress, "match started"); err != nil {
		return core.WrapStateError(s.Ply(), "start", err)
	}
	s.Status = states.StatusInProgress
	s.CurrentIndex = s.seatIndex(active[0])

	e.eventBus.Publish(events.NewMatchStartedEvent(s.ID, active, active[0]))
	e.logger.Info().
		Int("active_players", len(active)).
		Str("first", active[0].String()).
		Msg("Match started")
	return nil
}

// LegalSteps lists the cells player may move to, jumps included. It reads
// the board only, so it answers for any status.
func (e *Engine) LegalSteps(player core.PlayerSlot) []core.Position {
	return e.legalMoves.LegalSteps(e.state.Snapshot(), player)
}

// LegalWalls lists every wall player may place right now
func (e *Engine) LegalWalls(player core.PlayerSlot) []core.Wall {
	return e.legalMoves.LegalWalls(e.state.Snapshot(), player)
}

// Apply dispatches a move or wall action
func (e *Engine) Apply(action core.Action) error {
	if action == nil {
		return core.WrapStateError(e.state.Ply(), "apply", core.ErrInvalidState)
	}
	return e.turnProcessor.ProcessAction(action)
}

// ApplyMove moves player's pawn to to, a step or a straight jump
func (e *Engine) ApplyMove(player core.PlayerSlot, to core.Position) error {
	return e.turnProcessor.ProcessAction(&core.MoveAction{Player: player, To: to})
}

// ApplyWall places wall for player
func (e *Engine) ApplyWall(player core.PlayerSlot, wall core.Wall) error {
	return e.turnProcessor.ProcessAction(&core.WallAction{Player: player, Wall: wall})
}

// Undo reverts the last accepted action and hands the turn back to the
// player who made it. A match finished by that action is reopened.
func (e *Engine) Undo() error {
	s := e.state
	if len(s.History) == 0 {
		return core.WrapStateError(s.Ply(), "undo", fmt.Errorf("empty history: %w", core.ErrInvalidState))
	}

	last := s.History[len(s.History)-1]
	p := &s.Players[last.Player.Index()]
	if !p.Active {
		return core.WrapStateError(s.Ply(), "undo", fmt.Errorf("%s was eliminated: %w", last.Player, core.ErrInvalidState))
	}
	reopen := false
	if s.Status == states.StatusFinished {
		if last.Kind != RecordMove || s.Winner != last.Player || !p.Goal.Reached(p.Position) {
			return core.WrapStateError(s.Ply(), "undo", fmt.Errorf("match was not finished by the last action: %w", core.ErrInvalidState))
		}
		reopen = true
	}
	if reopen {
		if err := e.stateMachine.TransitionTo(states.StatusInProgress, "winning move undone"); err != nil {
			return core.WrapStateError(s.Ply(), "undo", err)
		}
		s.Status = states.StatusInProgress
		s.Winner = core.NoPlayer
	}

	switch last.Kind {
	case RecordMove:
		p.Position = last.From
	case RecordWall:
		s.Walls = s.Walls[:len(s.Walls)-1]
		p.WallsRemaining++
	}
	s.History = s.History[:len(s.History)-1]
	s.CurrentIndex = s.seatIndex(last.Player)

	e.eventBus.Publish(events.NewActionUndoneEvent(s.ID, s.Ply(), last.Player, last.Kind.String()))
	e.logger.Debug().
		Str("player", last.Player.String()).
		Str("kind", last.Kind.String()).
		Int("ply", s.Ply()).
		Msg("Action undone")
	return nil
}

// AddPlayer seats slot as a human or a bot at the default level. Only
// allowed while Waiting.
func (e *Engine) AddPlayer(slot core.PlayerSlot, isBot bool) error {
	s := e.state
	if !s.Status.CanAddPlayers() {
		return core.WrapPlayerError(slot, "add", fmt.Errorf("status %s: %w", s.Status, core.ErrInvalidState))
	}
	p, ok := s.Player(slot)
	if !ok {
		return core.WrapPlayerError(slot, "add", fmt.Errorf("no such seat in %s: %w", s.Mode, core.ErrInvalidState))
	}

	level := ""
	if isBot {
		d, err := bot.DifficultyFor("")
		if err != nil {
			return core.WrapPlayerError(slot, "add", err)
		}
		level = d.Level
	}
	e.seat(p, isBot, level)
	return nil
}

// AddBot seats a bot at level, an empty level meaning the configured
// default. The first inactive seat is used, else the highest unclaimed
// seat other than player1. Seats claimed through AddPlayer or AddBot are
// never taken over; with none left the call fails with ErrInvalidState.
func (e *Engine) AddBot(level string) (core.PlayerSlot, error) {
	s := e.state
	if !s.Status.CanAddPlayers() {
		return core.NoPlayer, core.WrapStateError(s.Ply(), "add bot", fmt.Errorf("status %s: %w", s.Status, core.ErrInvalidState))
	}
	d, err := bot.DifficultyFor(level)
	if err != nil {
		return core.NoPlayer, core.WrapStateError(s.Ply(), "add bot", err)
	}

	slot := core.NoPlayer
	for _, seat := range s.Order {
		if !s.Players[seat.Index()].Active {
			slot = seat
			break
		}
	}
	if slot == core.NoPlayer {
		for i := len(s.Order) - 1; i >= 0; i-- {
			seat := s.Order[i]
			p := s.Players[seat.Index()]
			if seat != core.Player1 && !p.Bot && !p.Claimed {
				slot = seat
				break
			}
		}
	}
	if slot == core.NoPlayer {
		return core.NoPlayer, core.WrapStateError(s.Ply(), "add bot", fmt.Errorf("no free seat: %w", core.ErrInvalidState))
	}

	e.seat(&s.Players[slot.Index()], true, d.Level)
	return slot, nil
}

func (e *Engine) seat(p *PlayerData, isBot bool, level string) {
	p.Active = true
	p.Claimed = true
	p.Bot = isBot
	p.Difficulty = level
	p.Position = p.Spawn

	e.eventBus.Publish(events.NewPlayerJoinedEvent(e.state.ID, p.Slot, isBot, level))
	e.logger.Info().
		Str("player", p.Slot.String()).
		Bool("bot", isBot).
		Str("difficulty", level).
		Msg("Player seated")
}

// Eliminate removes player from the match. While Waiting the seat is just
// vacated. In progress, the last remaining player wins; otherwise the
// turn moves on if it was the eliminated player's.
func (e *Engine) Eliminate(player core.PlayerSlot) error {
	s := e.state
	if s.Status.IsTerminal() {
		return core.WrapPlayerError(player, "eliminate", fmt.Errorf("status %s: %w", s.Status, core.ErrInvalidState))
	}
	p, ok := s.Player(player)
	if !ok || !p.Active {
		return core.WrapPlayerError(player, "eliminate", fmt.Errorf("not an active seat: %w", core.ErrInvalidState))
	}

	wasCurrent := s.CurrentPlayer() == player
	p.Active = false
	remaining := s.ActivePlayers()

	e.eventBus.Publish(events.NewPlayerEliminatedEvent(s.ID, s.Ply(), player, len(remaining)))
	e.logger.Info().
		Str("player", player.String()).
		Int("remaining", len(remaining)).
		Msg("Player eliminated")

	if s.Status != states.StatusInProgress {
		return nil
	}
	if over, winner := e.winCondition.CheckGameOver(s.Snapshot().Pawns); over {
		e.turnProcessor.finish(winner, "last player standing")
		return nil
	}
	if wasCurrent {
		s.CurrentIndex = s.nextActiveIndex(s.CurrentIndex)
	}
	return nil
}

// ForfeitTurn passes the turn of player, who must be the current player,
// without recording an action
func (e *Engine) ForfeitTurn(player core.PlayerSlot) error {
	if err := e.turnProcessor.checkTurn(player); err != nil {
		return core.WrapPlayerError(player, "forfeit turn", err)
	}

	s := e.state
	s.CurrentIndex = s.nextActiveIndex(s.CurrentIndex)
	next := s.CurrentPlayer()

	e.eventBus.Publish(events.NewTurnForfeitedEvent(s.ID, s.Ply(), player, next))
	e.logger.Debug().
		Str("player", player.String()).
		Str("next", next.String()).
		Msg("Turn forfeited")
	return nil
}

// BotTurn lets the bot in the current seat act. A bot with no legal action
// forfeits its turn, in which case the returned action is nil.
func (e *Engine) BotTurn() (core.Action, error) {
	s := e.state
	if !s.Status.CanReceiveActions() {
		return nil, core.WrapStateError(s.Ply(), "bot turn", fmt.Errorf("status %s: %w", s.Status, core.ErrInvalidState))
	}
	current := s.CurrentPlayer()
	p := &s.Players[current.Index()]
	if !p.Bot {
		return nil, core.WrapPlayerError(current, "bot turn", fmt.Errorf("seat is not a bot: %w", core.ErrInvalidState))
	}

	d, err := bot.DifficultyFor(p.Difficulty)
	if err != nil {
		return nil, core.WrapPlayerError(current, "bot turn", err)
	}

	action, err := bot.ChooseAction(s.Snapshot(), current, d, e.rng)
	if errors.Is(err, bot.ErrNoLegalAction) {
		e.logger.Info().Str("player", current.String()).Msg("Bot has no legal action")
		return nil, e.ForfeitTurn(current)
	}
	if err != nil {
		return nil, err
	}

	if err := e.turnProcessor.ProcessAction(action); err != nil {
		return nil, err
	}
	return action, nil
}

// Reset discards the match progress and returns to Waiting. Seating,
// bots and the match id are kept.
func (e *Engine) Reset() {
	old := e.state
	fresh, err := newMatchState(old.ID, old.Mode, e.wallsPerSeat)
	if err != nil {
		// the allowance was accepted when the engine was built
		e.logger.Error().Err(err).Msg("Failed to rebuild match state")
		return
	}
	for _, slot := range fresh.Order {
		prev := old.Players[slot.Index()]
		p := &fresh.Players[slot.Index()]
		p.Active = prev.Active
		p.Bot = prev.Bot
		p.Claimed = prev.Claimed
		p.Difficulty = prev.Difficulty
	}

	discarded := old.Ply()
	e.state = fresh
	e.stateMachine.Reset()

	e.eventBus.Publish(events.NewMatchResetEvent(fresh.ID, discarded))
	e.logger.Info().Int("discarded_plies", discarded).Msg("Match reset")
}
