package states

import (
	"fmt"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

// Status is the lifecycle position of a match
type Status int

const (
	// StatusWaiting - seats are being filled, no moves yet
	StatusWaiting Status = iota

	// StatusInProgress - moves, walls and turn advance happen only here
	StatusInProgress

	// StatusFinished - a win condition fired
	StatusFinished
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusInProgress:
		return "in_progress"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Valid reports whether s is one of the declared statuses
func (s Status) Valid() bool {
	return s >= StatusWaiting && s <= StatusFinished
}

// IsTerminal returns true once the match has a winner
func (s Status) IsTerminal() bool {
	return s == StatusFinished
}

// CanReceiveActions returns true if moves and walls are accepted in this status
func (s Status) CanReceiveActions() bool {
	return s == StatusInProgress
}

// CanAddPlayers returns true if seats may still change
func (s Status) CanAddPlayers() bool {
	return s == StatusWaiting
}

// AllowedTransitions returns the statuses this status can move to.
// Finished may reopen to InProgress when the winning move is undone.
func (s Status) AllowedTransitions() []Status {
	switch s {
	case StatusWaiting:
		return []Status{StatusInProgress}
	case StatusInProgress:
		return []Status{StatusFinished}
	case StatusFinished:
		return []Status{StatusInProgress}
	default:
		return []Status{}
	}
}

// CanTransitionTo checks if a transition from this status to the target is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range s.AllowedTransitions() {
		if allowed == target {
			return true
		}
	}
	return false
}

// ParseStatus converts a string to a Status. Unknown names are an error
// wrapping core.ErrInvalidState.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "waiting":
		return StatusWaiting, nil
	case "in_progress":
		return StatusInProgress, nil
	case "finished":
		return StatusFinished, nil
	default:
		return 0, fmt.Errorf("unknown status %q: %w", s, core.ErrInvalidState)
	}
}
