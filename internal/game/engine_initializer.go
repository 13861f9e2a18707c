package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/events"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/layout"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/rules"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/states"
	"github.com/rs/zerolog"
)

// MatchConfig configures a new engine
type MatchConfig struct {
	Mode           core.Mode
	MatchID        string // a uuid is generated when empty
	WallsPerPlayer int    // zero selects the configured allowance for the mode
	Logger         zerolog.Logger
	Rng            *rand.Rand
	EventBus       *events.EventBus // a private bus is created when nil
}

// EngineInitializer builds an engine from a MatchConfig
type EngineInitializer struct {
	config MatchConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg MatchConfig) *EngineInitializer {
	logger := cfg.Logger.With().Str("component", "GameEngine").Logger()
	return &EngineInitializer{
		config: cfg,
		logger: logger,
	}
}

// Initialize creates an engine for a fresh match in Waiting
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled before setup")
		return nil, ctx.Err()
	default:
	}

	ei.setupDefaults()

	state, err := newMatchState(ei.config.MatchID, ei.config.Mode, ei.config.WallsPerPlayer)
	if err != nil {
		return nil, fmt.Errorf("seating failed: %w", err)
	}

	engine := ei.createEngine(state)

	engine.eventBus.Publish(events.NewMatchCreatedEvent(state.ID, state.Mode, len(state.Order)))

	engine.logger.Info().
		Str("mode", state.Mode.String()).
		Int("seats", len(state.Order)).
		Int("walls_per_player", ei.config.WallsPerPlayer).
		Msg("Engine created successfully")

	return engine, nil
}

// Restore creates an engine around a previously encoded state. The state
// is validated first and the engine takes a private copy.
func (ei *EngineInitializer) Restore(state MatchState) (*Engine, error) {
	if err := ValidateState(state); err != nil {
		return nil, err
	}
	ei.config.MatchID = state.ID
	ei.config.Mode = state.Mode
	ei.setupDefaults()
	ei.config.WallsPerPlayer = state.Players[state.Order[0].Index()].InitialWalls

	restored := state.Clone()
	engine := ei.createEngine(&restored)
	engine.stateMachine.Restore(restored.Status)

	engine.logger.Info().
		Str("status", restored.Status.String()).
		Int("ply", restored.Ply()).
		Msg("Engine restored")

	return engine, nil
}

// setupDefaults fills in missing configuration
func (ei *EngineInitializer) setupDefaults() {
	if ei.config.Rng == nil {
		ei.logger.Debug().Msg("No RNG provided, creating new seeded RNG")
		ei.config.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if ei.config.MatchID == "" {
		ei.config.MatchID = uuid.NewString()
	}

	if ei.config.WallsPerPlayer == 0 {
		ei.config.WallsPerPlayer = WallsPerPlayer(ei.config.Mode)
	}

	if ei.config.EventBus == nil {
		ei.config.EventBus = events.NewEventBusWithLogger(ei.logger)
	}

	ei.logger = ei.logger.With().Str("match_id", ei.config.MatchID).Logger()
}

// createEngine wires the engine components around state
func (ei *EngineInitializer) createEngine(state *MatchState) *Engine {
	engine := &Engine{
		state:        state,
		rng:          ei.config.Rng,
		logger:       ei.logger,
		eventBus:     ei.config.EventBus,
		stateMachine: states.NewStateMachine(state.ID, ei.logger, ei.config.EventBus),
		winCondition: rules.NewWinConditionChecker(ei.logger),
		legalMoves:   rules.NewLegalMoveCalculator(),
		wallsPerSeat: ei.config.WallsPerPlayer,
	}
	engine.turnProcessor = NewTurnProcessor(engine)
	return engine
}

// newMatchState seats every slot of the mode at its spawn with a full
// wall allowance. All seats start active and human.
func newMatchState(id string, mode core.Mode, walls int) (*MatchState, error) {
	seats, err := layout.LayoutConfig{Mode: mode, WallsPerPlayer: walls}.Seats()
	if err != nil {
		return nil, err
	}

	state := &MatchState{
		ID:      id,
		Mode:    mode,
		Status:  states.StatusWaiting,
		Winner:  core.NoPlayer,
		Order:   make([]core.PlayerSlot, 0, len(seats)),
		Walls:   make([]core.Wall, 0, walls*len(seats)),
		History: make([]Record, 0, 64),
	}
	for _, seat := range seats {
		state.Order = append(state.Order, seat.Slot)
		state.Players[seat.Slot.Index()] = PlayerData{
			Slot:           seat.Slot,
			Position:       seat.Spawn,
			Spawn:          seat.Spawn,
			Goal:           seat.Goal,
			WallsRemaining: seat.Walls,
			InitialWalls:   seat.Walls,
			Active:         true,
		}
	}
	return state, nil
}
