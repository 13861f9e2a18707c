package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActions_Accessors(t *testing.T) {
	move := &MoveAction{Player: Player2, To: Position{Row: 1, Col: 4}}
	assert.Equal(t, Player2, move.GetPlayer())
	assert.Equal(t, ActionMove, move.GetType())

	wall := &WallAction{Player: Player1, Wall: NewWall(3, 3, Vertical)}
	assert.Equal(t, Player1, wall.GetPlayer())
	assert.Equal(t, ActionWall, wall.GetType())
}

func TestDescribeAction(t *testing.T) {
	assert.Equal(t, "player1 move (7,4)", DescribeAction(&MoveAction{Player: Player1, To: Position{7, 4}}))
	assert.Equal(t, "player2 wall V(3,3)", DescribeAction(&WallAction{Player: Player2, Wall: NewWall(3, 3, Vertical)}))
	assert.Equal(t, "nil", DescribeAction(nil))
	assert.Equal(t, "wall", GetActionType(&WallAction{}))
}
