package matchserver

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

// Server implements MatchServiceServer on top of a MatchManager
type Server struct {
	manager *MatchManager
	logger  zerolog.Logger
}

var _ MatchServiceServer = (*Server)(nil)

// NewServer creates a match server backed by manager
func NewServer(manager *MatchManager) *Server {
	return &Server{
		manager: manager,
		logger:  manager.cfg.Logger.With().Str("component", "MatchServer").Logger(),
	}
}

// Manager returns the underlying match manager
func (s *Server) Manager() *MatchManager {
	return s.manager
}

// matchResponse describes the match after a call. Extra fields are merged in.
func matchResponse(m *matchInstance, extra map[string]*structpb.Value) (*structpb.Struct, error) {
	e := m.engine
	state, err := game.EncodeState(e.State())
	if err != nil {
		return nil, err
	}

	fields := map[string]*structpb.Value{
		"match_id":       structpb.NewStringValue(m.id),
		"status":         structpb.NewStringValue(e.Status().String()),
		"current_player": structpb.NewNumberValue(float64(e.CurrentPlayer())),
		"winner":         structpb.NewNumberValue(float64(e.Winner())),
		"state":          structpb.NewStructValue(state),
	}
	for k, v := range extra {
		fields[k] = v
	}
	return &structpb.Struct{Fields: fields}, nil
}

func positionValue(p core.Position) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"row": structpb.NewNumberValue(float64(p.Row)),
		"col": structpb.NewNumberValue(float64(p.Col)),
	}})
}

func wallValue(w core.Wall) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"row":         structpb.NewNumberValue(float64(w.Row)),
		"col":         structpb.NewNumberValue(float64(w.Col)),
		"orientation": structpb.NewStringValue(w.Orientation.String()),
	}})
}

func actionValue(action core.Action) *structpb.Value {
	fields := map[string]*structpb.Value{
		"kind":   structpb.NewStringValue(action.GetType().String()),
		"player": structpb.NewNumberValue(float64(action.GetPlayer())),
	}
	switch a := action.(type) {
	case *core.MoveAction:
		fields["to"] = positionValue(a.To)
	case *core.WallAction:
		fields["wall"] = wallValue(a.Wall)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

// withMatch runs fn on the locked match named by the request and converts
// the outcome into a response or a status error
func (s *Server) withMatch(req request, fn func(m *matchInstance) (*structpb.Struct, error)) (*structpb.Struct, error) {
	id, err := req.matchID()
	if err != nil {
		return nil, toStatus(err)
	}
	var resp *structpb.Struct
	err = s.manager.WithMatch(id, func(m *matchInstance) error {
		var ferr error
		resp, ferr = fn(m)
		return ferr
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("match_id", id).Msg("Request rejected")
		return nil, toStatus(err)
	}
	return resp, nil
}

// CreateMatch creates a match in Waiting. Optional fields: mode, walls_per_player.
func (s *Server) CreateMatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	mode, err := req.mode()
	if err != nil {
		return nil, toStatus(err)
	}
	walls, err := req.optInteger("walls_per_player", 0)
	if err != nil {
		return nil, toStatus(err)
	}
	if walls < 0 {
		return nil, toStatus(badRequest("walls_per_player %d is negative", walls))
	}

	m, err := s.manager.CreateMatch(ctx, mode, walls)
	if err != nil {
		return nil, toStatus(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	resp, err := matchResponse(m, nil)
	return resp, toStatus(err)
}

// GetMatch returns the match with per-seat statistics
func (s *Server) GetMatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.withMatch(newRequest(in), func(m *matchInstance) (*structpb.Struct, error) {
		stats := m.engine.Stats()
		list := make([]*structpb.Value, 0, len(stats))
		for _, st := range stats {
			list = append(list, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"player":          structpb.NewNumberValue(float64(st.Slot)),
				"position":        positionValue(st.Position),
				"active":          structpb.NewBoolValue(st.Active),
				"bot":             structpb.NewBoolValue(st.Bot),
				"walls_remaining": structpb.NewNumberValue(float64(st.WallsRemaining)),
				"walls_placed":    structpb.NewNumberValue(float64(st.WallsPlaced)),
				"moves":           structpb.NewNumberValue(float64(st.Moves)),
				"path_length":     structpb.NewNumberValue(float64(st.PathLength)),
			}}))
		}
		return matchResponse(m, map[string]*structpb.Value{
			"stats": structpb.NewListValue(&structpb.ListValue{Values: list}),
		})
	})
}

// StartMatch moves a Waiting match into play
func (s *Server) StartMatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.withMatch(newRequest(in), func(m *matchInstance) (*structpb.Struct, error) {
		if err := m.engine.Start(); err != nil {
			return nil, err
		}
		s.logger.Info().Str("match_id", m.id).Msg("Match started")
		return matchResponse(m, nil)
	})
}

// ResetMatch returns the match to Waiting, keeping its seating
func (s *Server) ResetMatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.withMatch(newRequest(in), func(m *matchInstance) (*structpb.Struct, error) {
		m.engine.Reset()
		m.idempotency.Clear()
		return matchResponse(m, nil)
	})
}

// AddBot seats a bot. Optional field: level.
func (s *Server) AddBot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	level, err := req.optStr("level", "")
	if err != nil {
		return nil, toStatus(err)
	}
	return s.withMatch(req, func(m *matchInstance) (*structpb.Struct, error) {
		slot, err := m.engine.AddBot(level)
		if err != nil {
			return nil, err
		}
		return matchResponse(m, map[string]*structpb.Value{
			"player": structpb.NewNumberValue(float64(slot)),
		})
	})
}

// idempotent replays the stored response for a repeated idempotency_key.
// Requests without a key always run.
func (s *Server) idempotent(req request, player core.PlayerSlot, m *matchInstance, run func() (*structpb.Struct, error)) (*structpb.Struct, error) {
	key, err := req.optStr("idempotency_key", "")
	if err != nil {
		return nil, err
	}
	if key != "" {
		if cached := m.idempotency.Check(player, key); cached != nil {
			s.logger.Debug().
				Str("match_id", m.id).
				Str("player", player.String()).
				Str("idempotency_key", key).
				Msg("Replaying cached response")
			return cached, nil
		}
	}

	resp, err := run()
	if err != nil {
		return nil, err
	}
	if key != "" {
		m.idempotency.Store(player, key, resp)
	}
	return resp, nil
}

// Move moves player's pawn to (row, col)
func (s *Server) Move(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	player, err := req.player()
	if err != nil {
		return nil, toStatus(err)
	}
	to, err := req.position()
	if err != nil {
		return nil, toStatus(err)
	}
	return s.withMatch(req, func(m *matchInstance) (*structpb.Struct, error) {
		return s.idempotent(req, player, m, func() (*structpb.Struct, error) {
			if err := m.engine.ApplyMove(player, to); err != nil {
				return nil, err
			}
			return matchResponse(m, nil)
		})
	})
}

// PlaceWall places a wall anchored at (row, col) with the given orientation
func (s *Server) PlaceWall(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	player, err := req.player()
	if err != nil {
		return nil, toStatus(err)
	}
	wall, err := req.wall()
	if err != nil {
		return nil, toStatus(err)
	}
	return s.withMatch(req, func(m *matchInstance) (*structpb.Struct, error) {
		return s.idempotent(req, player, m, func() (*structpb.Struct, error) {
			if err := m.engine.ApplyWall(player, wall); err != nil {
				return nil, err
			}
			return matchResponse(m, nil)
		})
	})
}

// Undo takes back the last move or wall
func (s *Server) Undo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.withMatch(newRequest(in), func(m *matchInstance) (*structpb.Struct, error) {
		if err := m.engine.Undo(); err != nil {
			return nil, err
		}
		m.idempotency.Clear()
		return matchResponse(m, nil)
	})
}

// BotTurn lets the bot in the current seat act. The response's action is
// null when the bot forfeited.
func (s *Server) BotTurn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.withMatch(newRequest(in), func(m *matchInstance) (*structpb.Struct, error) {
		action, err := m.engine.BotTurn()
		if err != nil {
			return nil, err
		}
		played := structpb.NewNullValue()
		if action != nil {
			played = actionValue(action)
		}
		return matchResponse(m, map[string]*structpb.Value{"action": played})
	})
}

// Eliminate removes player from the match
func (s *Server) Eliminate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	player, err := req.player()
	if err != nil {
		return nil, toStatus(err)
	}
	return s.withMatch(req, func(m *matchInstance) (*structpb.Struct, error) {
		if err := m.engine.Eliminate(player); err != nil {
			return nil, err
		}
		return matchResponse(m, nil)
	})
}

// ForfeitTurn passes player's turn
func (s *Server) ForfeitTurn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	player, err := req.player()
	if err != nil {
		return nil, toStatus(err)
	}
	return s.withMatch(req, func(m *matchInstance) (*structpb.Struct, error) {
		if err := m.engine.ForfeitTurn(player); err != nil {
			return nil, err
		}
		return matchResponse(m, nil)
	})
}

// LegalActions lists player's legal steps and walls
func (s *Server) LegalActions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	player, err := req.player()
	if err != nil {
		return nil, toStatus(err)
	}
	return s.withMatch(req, func(m *matchInstance) (*structpb.Struct, error) {
		steps := m.engine.LegalSteps(player)
		walls := m.engine.LegalWalls(player)

		stepList := make([]*structpb.Value, 0, len(steps))
		for _, p := range steps {
			stepList = append(stepList, positionValue(p))
		}
		wallList := make([]*structpb.Value, 0, len(walls))
		for _, w := range walls {
			wallList = append(wallList, wallValue(w))
		}
		return &structpb.Struct{Fields: map[string]*structpb.Value{
			"match_id": structpb.NewStringValue(m.id),
			"player":   structpb.NewNumberValue(float64(player)),
			"steps":    structpb.NewListValue(&structpb.ListValue{Values: stepList}),
			"walls":    structpb.NewListValue(&structpb.ListValue{Values: wallList}),
		}}, nil
	})
}
