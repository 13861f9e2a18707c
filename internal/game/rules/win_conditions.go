package rules

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/rs/zerolog"
)

// WinConditionChecker handles match over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// GoalReached reports whether an active pawn stands on its goal line
func (wc *WinConditionChecker) GoalReached(p Pawn) bool {
	return p.Active && p.Goal.Reached(p.Position)
}

// CheckGameOver returns the winner when an active pawn is on its goal or
// when exactly one pawn is left in the match. Returns (isGameOver, winner).
func (wc *WinConditionChecker) CheckGameOver(pawns []Pawn) (bool, core.PlayerSlot) {
	activeCount := 0
	lastActive := core.NoPlayer

	for _, p := range pawns {
		if !p.Active {
			continue
		}
		if wc.GoalReached(p) {
			wc.logger.Info().Str("winner", p.Slot.String()).Str("goal", p.Goal.String()).Msg("Goal reached")
			return true, p.Slot
		}
		activeCount++
		lastActive = p.Slot
	}

	if activeCount == 1 {
		wc.logger.Info().Str("winner", lastActive.String()).Msg("Last player standing")
		return true, lastActive
	}

	wc.logger.Debug().Int("active_player_count", activeCount).Msg("Game over check complete")
	return false, core.NoPlayer
}
