package game

import (
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/pathing"
)

// PlayerStats summarizes one seat for displays and logs
type PlayerStats struct {
	Slot           core.PlayerSlot
	Position       core.Position
	Active         bool
	Bot            bool
	WallsRemaining int
	WallsPlaced    int
	Moves          int
	// PathLength is the shortest distance to the goal ignoring pawns,
	// pathing.Unreachable for inactive seats
	PathLength int
}

// Stats returns per-seat statistics in turn order
func (e *Engine) Stats() []PlayerStats {
	s := e.state
	grid := pathing.NewGrid(s.Walls)

	stats := make([]PlayerStats, 0, len(s.Order))
	for _, slot := range s.Order {
		p := s.Players[slot.Index()]
		st := PlayerStats{
			Slot:           slot,
			Position:       p.Position,
			Active:         p.Active,
			Bot:            p.Bot,
			WallsRemaining: p.WallsRemaining,
			PathLength:     pathing.Unreachable,
		}
		if p.Active {
			st.PathLength = grid.Distance(p.Position, p.Goal)
		}
		stats = append(stats, st)
	}

	for _, r := range s.History {
		for i := range stats {
			if stats[i].Slot != r.Player {
				continue
			}
			if r.Kind == RecordWall {
				stats[i].WallsPlaced++
			} else {
				stats[i].Moves++
			}
		}
	}

	e.logger.Debug().Int("ply", s.Ply()).Msg("Computed player stats")
	return stats
}
