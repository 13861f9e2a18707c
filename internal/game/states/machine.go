package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/events"
	"github.com/rs/zerolog"
)

// Transition represents a status transition in the history
type Transition struct {
	From      Status
	To        Status
	Timestamp time.Time
	Reason    string
}

// StateMachine guards a match's lifecycle: it rejects transitions the
// status graph does not allow, keeps a bounded transition history and
// publishes a status event for every accepted transition.
type StateMachine struct {
	mu             sync.RWMutex
	matchID        string
	current        Status
	history        []Transition
	maxHistorySize int
	eventBus       events.Publisher
	logger         zerolog.Logger
}

// NewStateMachine creates a state machine in StatusWaiting. eventBus may be nil.
func NewStateMachine(matchID string, logger zerolog.Logger, eventBus events.Publisher) *StateMachine {
	return &StateMachine{
		matchID:        matchID,
		current:        StatusWaiting,
		history:        make([]Transition, 0, 8),
		maxHistorySize: 256,
		eventBus:       eventBus,
		logger:         logger.With().Str("component", "state_machine").Str("match_id", matchID).Logger(),
	}
}

// Current returns the current status
func (sm *StateMachine) Current() Status {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.current
}

// TransitionTo moves to target if the status graph allows it
func (sm *StateMachine) TransitionTo(target Status, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.current.CanTransitionTo(target) {
		return fmt.Errorf("transition from %s to %s: %w", sm.current, target, core.ErrInvalidState)
	}

	previous := sm.current
	sm.current = target
	sm.addToHistory(Transition{
		From:      previous,
		To:        target,
		Timestamp: time.Now(),
		Reason:    reason,
	})

	if sm.eventBus != nil {
		sm.eventBus.Publish(events.NewStatusChangedEvent(sm.matchID, previous.String(), target.String(), reason))
	}

	sm.logger.Info().
		Str("from_status", previous.String()).
		Str("to_status", target.String()).
		Str("reason", reason).
		Msg("Status transition completed")

	return nil
}

// Restore forces the status without a transition check, for matches rebuilt
// from a decoded record. The history is cleared.
func (sm *StateMachine) Restore(status Status) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.current = status
	sm.history = sm.history[:0]
}

// Reset clears the history and returns to StatusWaiting
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	previous := sm.current
	sm.current = StatusWaiting
	sm.history = sm.history[:0]
	sm.mu.Unlock()

	sm.logger.Info().Str("from_status", previous.String()).Msg("State machine reset")
}

// addToHistory adds a transition to the history, maintaining max size
func (sm *StateMachine) addToHistory(transition Transition) {
	sm.history = append(sm.history, transition)

	if len(sm.history) > sm.maxHistorySize {
		sm.history = sm.history[len(sm.history)-sm.maxHistorySize:]
	}
}

// GetHistory returns a copy of the transition history
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// CanTransitionTo checks if a transition to the target status is allowed
func (sm *StateMachine) CanTransitionTo(target Status) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.current.CanTransitionTo(target)
}
