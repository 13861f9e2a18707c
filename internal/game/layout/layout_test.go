package layout

import (
	"testing"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayoutConfig(t *testing.T) {
	assert.Equal(t, 10, DefaultLayoutConfig(core.TwoPlayer).WallsPerPlayer)
	assert.Equal(t, 5, DefaultLayoutConfig(core.FourPlayer).WallsPerPlayer)
}

func TestSeats_TwoPlayer(t *testing.T) {
	seats, err := DefaultLayoutConfig(core.TwoPlayer).Seats()
	require.NoError(t, err)
	require.Len(t, seats, 2)

	assert.Equal(t, Seat{Slot: core.Player1, Spawn: core.Position{Row: 8, Col: 4}, Goal: core.RowGoal(0), Walls: 10}, seats[0])
	assert.Equal(t, Seat{Slot: core.Player2, Spawn: core.Position{Row: 0, Col: 4}, Goal: core.RowGoal(8), Walls: 10}, seats[1])
}

func TestSeats_FourPlayer(t *testing.T) {
	seats, err := DefaultLayoutConfig(core.FourPlayer).Seats()
	require.NoError(t, err)
	require.Len(t, seats, 4)

	expectedGoals := []core.Goal{core.RowGoal(0), core.RowGoal(8), core.ColumnGoal(8), core.ColumnGoal(0)}
	occupied := make(map[core.Position]bool)
	for i, seat := range seats {
		assert.Equal(t, core.PlayerSlot(i+1), seat.Slot)
		assert.Equal(t, expectedGoals[i], seat.Goal)
		assert.Equal(t, 5, seat.Walls)
		assert.True(t, seat.Spawn.InBounds())
		assert.False(t, seat.Goal.Reached(seat.Spawn), "%s must not spawn on its goal", seat.Slot)
		assert.False(t, occupied[seat.Spawn], "spawns must be distinct")
		occupied[seat.Spawn] = true
	}
}

func TestSeats_InvalidConfig(t *testing.T) {
	_, err := LayoutConfig{Mode: core.TwoPlayer, WallsPerPlayer: -1}.Seats()
	assert.ErrorIs(t, err, core.ErrInvalidState)

	_, err = LayoutConfig{Mode: core.Mode(3), WallsPerPlayer: 4}.Seats()
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestSpawn_UnknownSlot(t *testing.T) {
	assert.False(t, Spawn(core.NoPlayer).InBounds())
}
