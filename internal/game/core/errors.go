package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrOutOfBounds      = errors.New("out of bounds")
	ErrIllegalStep      = errors.New("illegal step")
	ErrNoWallsRemaining = errors.New("no walls remaining")
	ErrWallOverlap      = errors.New("wall overlaps an existing wall")
	ErrPathBlocked      = errors.New("wall would block a player's last path")
	ErrInvalidState     = errors.New("invalid match state")
)

// WrapActionError adds the acting player and the action to err.
// A nil err stays nil.
func WrapActionError(action Action, err error) error {
	if err == nil {
		return nil
	}
	switch a := action.(type) {
	case *MoveAction:
		return fmt.Errorf("player %d: move to %s: %w", int(a.Player), a.To, err)
	case *WallAction:
		return fmt.Errorf("player %d: wall %s: %w", int(a.Player), a.Wall, err)
	default:
		return fmt.Errorf("player action: %w", err)
	}
}

// WrapStateError adds the history length (ply) and the operation to err
func WrapStateError(ply int, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("match ply %d [%s]: %w", ply, operation, err)
}

// WrapPlayerError adds the player slot and operation to err
func WrapPlayerError(player PlayerSlot, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("player %d %s: %w", int(player), operation, err)
}

// MatchError carries structured context for a rejected operation
type MatchError struct {
	Ply       int
	Player    PlayerSlot
	Operation string
	Err       error
}

// NewMatchError creates a MatchError
func NewMatchError(ply int, player PlayerSlot, operation string, err error) *MatchError {
	return &MatchError{Ply: ply, Player: player, Operation: operation, Err: err}
}

func (e *MatchError) Error() string {
	if e.Player.Valid() {
		return fmt.Sprintf("ply %d: player %d %s: %v", e.Ply, int(e.Player), e.Operation, e.Err)
	}
	return fmt.Sprintf("ply %d: %s: %v", e.Ply, e.Operation, e.Err)
}

func (e *MatchError) Unwrap() error { return e.Err }

// Kind returns the sentinel error err wraps, or nil when it wraps none of them
func Kind(err error) error {
	for _, sentinel := range []error{
		ErrNotYourTurn,
		ErrOutOfBounds,
		ErrIllegalStep,
		ErrNoWallsRemaining,
		ErrWallOverlap,
		ErrPathBlocked,
		ErrInvalidState,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}
