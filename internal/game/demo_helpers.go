package game

import (
	"context"
	"fmt"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/bot"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/rs/zerolog/log"
)

// PlayBots runs bot turns until the match ends, maxPlies actions have been
// taken or a human seat is to move. With think set, each bot waits out its
// difficulty's thinking time first. It returns the number of bot turns played.
func PlayBots(ctx context.Context, e *Engine, maxPlies int, think bool) (int, error) {
	turns := 0
	for turns < maxPlies && e.Status().CanReceiveActions() {
		current := e.CurrentPlayer()
		p := e.state.Players[current.Index()]
		if !p.Bot {
			return turns, nil
		}

		if think {
			d, err := bot.DifficultyFor(p.Difficulty)
			if err != nil {
				return turns, err
			}
			if err := bot.Think(ctx, d); err != nil {
				return turns, err
			}
		} else if err := ctx.Err(); err != nil {
			return turns, err
		}

		action, err := e.BotTurn()
		if err != nil {
			return turns, fmt.Errorf("bot turn for %s: %w", current, err)
		}
		turns++

		ev := log.Debug().Str("match_id", e.ID()).Str("player", current.String()).Int("turn", turns)
		if action != nil {
			ev = ev.Str("action", core.DescribeAction(action))
		}
		ev.Msg("Bot acted")
	}
	return turns, nil
}
