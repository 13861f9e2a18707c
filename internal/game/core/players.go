package core

import "fmt"

// PlayerSlot is one of the fixed seats 1..MaxPlayers. Zero means "no player".
type PlayerSlot uint8

const (
	NoPlayer PlayerSlot = 0
	Player1  PlayerSlot = 1
	Player2  PlayerSlot = 2
	Player3  PlayerSlot = 3
	Player4  PlayerSlot = 4

	MaxPlayers = 4
)

// Valid reports whether the slot names a real seat
func (s PlayerSlot) Valid() bool {
	return s >= Player1 && s <= Player4
}

// Index returns the zero-based array index for the slot
func (s PlayerSlot) Index() int {
	return int(s) - 1
}

func (s PlayerSlot) String() string {
	if !s.Valid() {
		return "none"
	}
	return fmt.Sprintf("player%d", int(s))
}

// Mode selects the 2- or 4-player variant
type Mode int

const (
	TwoPlayer Mode = iota
	FourPlayer
)

func (m Mode) String() string {
	switch m {
	case TwoPlayer:
		return "two_player"
	case FourPlayer:
		return "four_player"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Seats returns the slots taking part in the mode, in turn order
func (m Mode) Seats() []PlayerSlot {
	if m == FourPlayer {
		return []PlayerSlot{Player1, Player2, Player3, Player4}
	}
	return []PlayerSlot{Player1, Player2}
}

// ParseMode converts a mode name to a Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "two_player", "2-player", "2":
		return TwoPlayer, nil
	case "four_player", "4-player", "4":
		return FourPlayer, nil
	default:
		return 0, fmt.Errorf("unknown mode %q: %w", s, ErrInvalidState)
	}
}
