package game

import (
	"fmt"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/events"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/rules"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/states"
	"github.com/rs/zerolog"
)

// TurnProcessor validates and applies the actions of the player to move.
// A rejected action leaves the state untouched.
type TurnProcessor struct {
	engine *Engine
	logger zerolog.Logger
}

// NewTurnProcessor creates a new turn processor
func NewTurnProcessor(engine *Engine) *TurnProcessor {
	return &TurnProcessor{
		engine: engine,
		logger: engine.logger,
	}
}

// ProcessAction validates action against the current state and applies it
func (tp *TurnProcessor) ProcessAction(action core.Action) error {
	s := tp.engine.state
	turnLogger := tp.logger.With().Int("ply", s.Ply()).Str("player", action.GetPlayer().String()).Logger()

	var err error
	switch a := action.(type) {
	case *core.MoveAction:
		err = tp.processMove(a, turnLogger)
	case *core.WallAction:
		err = tp.processWall(a, turnLogger)
	default:
		err = fmt.Errorf("unsupported action %T: %w", action, core.ErrInvalidState)
	}

	if err != nil {
		turnLogger.Debug().Err(err).Str("action", core.DescribeAction(action)).Msg("Action rejected")
		tp.engine.eventBus.Publish(events.NewActionRejectedEvent(s.ID, s.Ply(), action, err))
		return core.WrapActionError(action, err)
	}
	return nil
}

// checkTurn rejects actions outside InProgress and from anyone but the current player
func (tp *TurnProcessor) checkTurn(player core.PlayerSlot) error {
	s := tp.engine.state
	if !s.Status.CanReceiveActions() {
		return fmt.Errorf("status %s: %w", s.Status, core.ErrInvalidState)
	}
	if player != s.CurrentPlayer() {
		return core.ErrNotYourTurn
	}
	return nil
}

func (tp *TurnProcessor) processMove(a *core.MoveAction, turnLogger zerolog.Logger) error {
	if err := tp.checkTurn(a.Player); err != nil {
		return err
	}
	if !a.To.InBounds() {
		return core.ErrOutOfBounds
	}

	s := tp.engine.state
	if !tp.engine.legalMoves.IsLegalStep(s.Snapshot(), a.Player, a.To) {
		return core.ErrIllegalStep
	}

	p := &s.Players[a.Player.Index()]
	from := p.Position
	p.Position = a.To
	s.History = append(s.History, Record{Kind: RecordMove, Player: a.Player, From: from, To: a.To})

	next := tp.endTurn(turnLogger)
	tp.engine.eventBus.Publish(events.NewPawnMovedEvent(s.ID, s.Ply(), a.Player, from, a.To, next))

	turnLogger.Debug().
		Str("from", from.String()).
		Str("to", a.To.String()).
		Str("next", next.String()).
		Msg("Pawn moved")
	return nil
}

func (tp *TurnProcessor) processWall(a *core.WallAction, turnLogger zerolog.Logger) error {
	if err := tp.checkTurn(a.Player); err != nil {
		return err
	}

	s := tp.engine.state
	p := &s.Players[a.Player.Index()]
	if p.WallsRemaining <= 0 {
		return core.ErrNoWallsRemaining
	}
	if err := rules.ValidateWallPlacement(a.Wall, s.Walls, s.Snapshot().Pawns); err != nil {
		return err
	}

	p.WallsRemaining--
	s.Walls = append(s.Walls, a.Wall)
	s.History = append(s.History, Record{Kind: RecordWall, Player: a.Player, Wall: a.Wall})

	next := tp.endTurn(turnLogger)
	tp.engine.eventBus.Publish(events.NewWallPlacedEvent(s.ID, s.Ply(), a.Player, a.Wall, p.WallsRemaining, next))

	turnLogger.Debug().
		Str("wall", a.Wall.String()).
		Int("walls_remaining", p.WallsRemaining).
		Str("next", next.String()).
		Msg("Wall placed")
	return nil
}

// endTurn finishes the match if a win condition fired, otherwise hands the
// turn to the next active seat. It returns the player to move next, or
// NoPlayer once the match is over.
func (tp *TurnProcessor) endTurn(turnLogger zerolog.Logger) core.PlayerSlot {
	s := tp.engine.state
	if over, winner := tp.engine.winCondition.CheckGameOver(s.Snapshot().Pawns); over {
		tp.finish(winner, "goal reached")
		return core.NoPlayer
	}
	s.CurrentIndex = s.nextActiveIndex(s.CurrentIndex)
	turnLogger.Debug().Str("current", s.CurrentPlayer().String()).Msg("Turn advanced")
	return s.CurrentPlayer()
}

// finish moves the match to Finished with winner. The turn pointer stays put.
func (tp *TurnProcessor) finish(winner core.PlayerSlot, reason string) {
	s := tp.engine.state
	if err := tp.engine.stateMachine.TransitionTo(states.StatusFinished, reason); err != nil {
		tp.logger.Error().Err(err).Msg("Failed to finish match")
		return
	}
	s.Status = states.StatusFinished
	s.Winner = winner

	tp.engine.eventBus.Publish(events.NewMatchFinishedEvent(s.ID, s.Ply(), winner, reason))
	tp.logger.Info().
		Str("winner", winner.String()).
		Str("reason", reason).
		Int("ply", s.Ply()).
		Msg("Match finished")
}
