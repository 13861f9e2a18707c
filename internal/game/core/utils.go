package core

import "fmt"

// GetActionType returns a short label for logging
func GetActionType(action Action) string {
	if action == nil {
		return "nil"
	}
	return action.GetType().String()
}

// DescribeAction renders an action as "player1 move (7,4)" for logs and CLI output
func DescribeAction(action Action) string {
	switch a := action.(type) {
	case *MoveAction:
		return fmt.Sprintf("%s move %s", a.Player, a.To)
	case *WallAction:
		return fmt.Sprintf("%s wall %s", a.Player, a.Wall)
	default:
		return GetActionType(action)
	}
}
