// Package bot picks actions for computer-controlled seats with a greedy,
// lookahead-free heuristic: walk the shortest path, drop a wall when walking
// gains nothing, and occasionally blunder on purpose.
package bot

import (
	"errors"
	"math/rand"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/pathing"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/rules"
)

// ErrNoLegalAction is returned when the player can neither move nor place a wall
var ErrNoLegalAction = errors.New("no legal action")

var legalMoves = rules.NewLegalMoveCalculator()

// ChooseAction returns the action the bot would submit for player.
// It never mutates the snapshot and all randomness comes from rng.
func ChooseAction(s rules.Snapshot, player core.PlayerSlot, d Difficulty, rng *rand.Rand) (core.Action, error) {
	pawn, ok := s.Pawn(player)
	if !ok || !pawn.Active {
		return nil, core.WrapPlayerError(player, "choose action", core.ErrInvalidState)
	}

	steps := legalMoves.LegalSteps(s, player)

	if rng.Float64() < d.MistakeChance {
		return randomAction(s, player, steps, rng)
	}

	grid := pathing.NewGrid(s.Walls)
	dist := grid.DistancesTo(pawn.Goal)
	current := dist.At(pawn.Position)

	best, bestDist := -1, pathing.Unreachable
	for i, to := range steps {
		d := dist.At(to)
		if d == pathing.Unreachable {
			continue
		}
		// strict comparison keeps the first candidate in scan order on ties
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}

	if best >= 0 && (bestDist < current || pawn.WallsRemaining == 0) {
		return &core.MoveAction{Player: player, To: steps[best]}, nil
	}

	if walls := legalMoves.LegalWalls(s, player); len(walls) > 0 {
		return &core.WallAction{Player: player, Wall: walls[rng.Intn(len(walls))]}, nil
	}
	if best >= 0 {
		return &core.MoveAction{Player: player, To: steps[best]}, nil
	}
	if len(steps) > 0 {
		return &core.MoveAction{Player: player, To: steps[0]}, nil
	}
	return nil, ErrNoLegalAction
}

// randomAction is a deliberate mistake: any legal step or jump, or a wall
// when the pawn cannot move at all
func randomAction(s rules.Snapshot, player core.PlayerSlot, steps []core.Position, rng *rand.Rand) (core.Action, error) {
	if len(steps) > 0 {
		return &core.MoveAction{Player: player, To: steps[rng.Intn(len(steps))]}, nil
	}
	if walls := legalMoves.LegalWalls(s, player); len(walls) > 0 {
		return &core.WallAction{Player: player, Wall: walls[rng.Intn(len(walls))]}, nil
	}
	return nil, ErrNoLegalAction
}
