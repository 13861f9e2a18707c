package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("match_id", event.MatchID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	logEvent := eventLogger.WithLevel(ls.level(event))

	switch e := event.(type) {
	case *events.MatchCreatedEvent:
		logEvent.
			Str("mode", e.Mode.String()).
			Int("seats", e.Seats)

	case *events.MatchStartedEvent:
		logEvent.
			Int("players", len(e.Players)).
			Str("first", e.First.String())

	case *events.MatchFinishedEvent:
		logEvent.
			Int("ply", e.Ply).
			Str("winner", e.Winner.String()).
			Str("reason", e.Reason)

	case *events.MatchResetEvent:
		logEvent.Int("discarded_plies", e.DiscardedPlies)

	case *events.StatusChangedEvent:
		logEvent.
			Str("from", e.From).
			Str("to", e.To).
			Str("reason", e.Reason)

	case *events.PawnMovedEvent:
		logEvent.
			Int("ply", e.Ply).
			Str("player", e.Player.String()).
			Str("from", e.From.String()).
			Str("to", e.To.String()).
			Bool("jump", e.Jump).
			Str("next", e.Next.String())

	case *events.WallPlacedEvent:
		logEvent.
			Int("ply", e.Ply).
			Str("player", e.Player.String()).
			Str("wall", e.Wall.String()).
			Int("walls_remaining", e.WallsRemaining).
			Str("next", e.Next.String())

	case *events.ActionRejectedEvent:
		logEvent.
			Str("player", e.Player.String()).
			Str("action", core.DescribeAction(e.Action)).
			Str("reason", e.Reason)

	case *events.ActionUndoneEvent:
		logEvent.
			Int("ply", e.Ply).
			Str("player", e.Player.String()).
			Str("kind", e.Kind)

	case *events.PlayerJoinedEvent:
		logEvent.
			Str("player", e.Player.String()).
			Bool("bot", e.Bot).
			Str("difficulty", e.Difficulty)

	case *events.PlayerEliminatedEvent:
		logEvent.
			Str("player", e.Player.String()).
			Int("remaining", e.Remaining)

	case *events.TurnForfeitedEvent:
		logEvent.
			Str("player", e.Player.String()).
			Str("next", e.Next.String())
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Match event")
}

// level returns the configured level, raised to warn for rejected actions
func (ls *LoggerSubscriber) level(event events.Event) zerolog.Level {
	if event.Type() == events.TypeActionRejected && ls.logLevel < zerolog.WarnLevel {
		return zerolog.WarnLevel
	}
	return ls.logLevel
}
