package game

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/config"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

// WallsPerPlayer returns the configured wall allowance for a mode
func WallsPerPlayer(mode core.Mode) int {
	if mode == core.FourPlayer {
		return config.Get().Game.Walls.FourPlayer
	}
	return config.Get().Game.Walls.TwoPlayer
}

// DefaultBotLevel returns the configured level for bots added without one
func DefaultBotLevel() string {
	return config.Get().Game.Bots.DefaultLevel
}
