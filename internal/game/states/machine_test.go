package states

import (
	"testing"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusWaiting, "waiting"},
		{StatusInProgress, "in_progress"},
		{StatusFinished, "finished"},
		{Status(999), "Unknown(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestStatus_Properties(t *testing.T) {
	t.Run("IsTerminal", func(t *testing.T) {
		assert.True(t, StatusFinished.IsTerminal())
		assert.False(t, StatusInProgress.IsTerminal())
		assert.False(t, StatusWaiting.IsTerminal())
	})

	t.Run("CanReceiveActions", func(t *testing.T) {
		assert.True(t, StatusInProgress.CanReceiveActions())
		assert.False(t, StatusWaiting.CanReceiveActions())
		assert.False(t, StatusFinished.CanReceiveActions())
	})

	t.Run("CanAddPlayers", func(t *testing.T) {
		assert.True(t, StatusWaiting.CanAddPlayers())
		assert.False(t, StatusInProgress.CanAddPlayers())
	})

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, StatusFinished.Valid())
		assert.False(t, Status(-1).Valid())
		assert.False(t, Status(3).Valid())
	})
}

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    Status
		allowed []Status
	}{
		{StatusWaiting, []Status{StatusInProgress}},
		{StatusInProgress, []Status{StatusFinished}},
		{StatusFinished, []Status{StatusInProgress}},
		{Status(7), []Status{}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())
			for _, target := range tt.allowed {
				assert.True(t, tt.from.CanTransitionTo(target))
			}
		})
	}

	assert.False(t, StatusWaiting.CanTransitionTo(StatusFinished))
	assert.False(t, StatusInProgress.CanTransitionTo(StatusWaiting))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusWaiting, StatusInProgress, StatusFinished} {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStatus("paused")
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestStateMachine_Lifecycle(t *testing.T) {
	bus := events.NewEventBusWithLogger(zerolog.Nop())
	var published []*events.StatusChangedEvent
	bus.SubscribeFunc(events.TypeStatusChanged, func(e events.Event) {
		published = append(published, e.(*events.StatusChangedEvent))
	})

	sm := NewStateMachine("match-1", zerolog.Nop(), bus)
	assert.Equal(t, StatusWaiting, sm.Current())

	require.NoError(t, sm.TransitionTo(StatusInProgress, "start"))
	require.NoError(t, sm.TransitionTo(StatusFinished, "goal"))
	require.NoError(t, sm.TransitionTo(StatusInProgress, "undo"))

	history := sm.GetHistory()
	require.Len(t, history, 3)
	assert.Equal(t, StatusWaiting, history[0].From)
	assert.Equal(t, StatusInProgress, history[2].To)
	assert.Equal(t, "undo", history[2].Reason)

	require.Len(t, published, 3)
	assert.Equal(t, "finished", published[1].To)
	assert.Equal(t, "match-1", published[1].MatchID())
}

func TestStateMachine_RejectsInvalidTransition(t *testing.T) {
	sm := NewStateMachine("match-2", zerolog.Nop(), nil)

	err := sm.TransitionTo(StatusFinished, "skip ahead")
	assert.ErrorIs(t, err, core.ErrInvalidState)
	assert.Equal(t, StatusWaiting, sm.Current())
	assert.Empty(t, sm.GetHistory())
	assert.False(t, sm.CanTransitionTo(StatusFinished))
	assert.True(t, sm.CanTransitionTo(StatusInProgress))
}

func TestStateMachine_ResetAndRestore(t *testing.T) {
	sm := NewStateMachine("match-3", zerolog.Nop(), nil)
	require.NoError(t, sm.TransitionTo(StatusInProgress, "start"))

	sm.Reset()
	assert.Equal(t, StatusWaiting, sm.Current())
	assert.Empty(t, sm.GetHistory())

	sm.Restore(StatusFinished)
	assert.Equal(t, StatusFinished, sm.Current())
	assert.True(t, sm.CanTransitionTo(StatusInProgress))
}

func TestStateMachine_HistoryIsBounded(t *testing.T) {
	sm := NewStateMachine("match-4", zerolog.Nop(), nil)
	sm.maxHistorySize = 4
	require.NoError(t, sm.TransitionTo(StatusInProgress, "start"))
	for i := 0; i < 5; i++ {
		require.NoError(t, sm.TransitionTo(StatusFinished, "goal"))
		require.NoError(t, sm.TransitionTo(StatusInProgress, "undo"))
	}
	history := sm.GetHistory()
	assert.Len(t, history, 4)
	assert.Equal(t, "undo", history[3].Reason)
}
