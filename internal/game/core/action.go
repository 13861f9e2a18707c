package core

// ActionType represents the type of action
type ActionType int

const (
	ActionMove ActionType = iota
	ActionWall
)

func (t ActionType) String() string {
	switch t {
	case ActionMove:
		return "move"
	case ActionWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Action represents a player action submitted to the engine
type Action interface {
	GetPlayer() PlayerSlot
	GetType() ActionType
}

// MoveAction moves the player's pawn to To, either by a step or a jump
type MoveAction struct {
	Player PlayerSlot
	To     Position
}

func (m *MoveAction) GetPlayer() PlayerSlot { return m.Player }
func (m *MoveAction) GetType() ActionType   { return ActionMove }

// WallAction places a wall
type WallAction struct {
	Player PlayerSlot
	Wall   Wall
}

func (w *WallAction) GetPlayer() PlayerSlot { return w.Player }
func (w *WallAction) GetType() ActionType   { return ActionWall }
