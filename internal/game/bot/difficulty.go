package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/config"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

// Difficulty levels
const (
	LevelEasy   = "easy"
	LevelMedium = "medium"
	LevelHard   = "hard"
	LevelExpert = "expert"
)

// Levels lists the difficulty levels from weakest to strongest
var Levels = []string{LevelEasy, LevelMedium, LevelHard, LevelExpert}

// Difficulty parameterizes the policy. ThinkingTime is a presentation delay
// for callers; ChooseAction itself never waits.
type Difficulty struct {
	Level         string
	ThinkingTime  time.Duration
	MistakeChance float64
}

// DifficultyFor loads the profile for level from configuration. An empty
// level selects the configured default.
func DifficultyFor(level string) (Difficulty, error) {
	c := config.Get()
	if level == "" {
		level = c.Game.Bots.DefaultLevel
	}
	level = strings.ToLower(level)

	p, ok := c.BotProfile(level)
	if !ok {
		return Difficulty{}, fmt.Errorf("bot difficulty %q: %w", level, core.ErrInvalidState)
	}
	return Difficulty{
		Level:         level,
		ThinkingTime:  p.ThinkingTime(),
		MistakeChance: p.MistakeChance,
	}, nil
}

// Think blocks for the difficulty's thinking time or until ctx is done
func Think(ctx context.Context, d Difficulty) error {
	if d.ThinkingTime <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d.ThinkingTime)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
