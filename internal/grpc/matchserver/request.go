package matchserver

import (
	"fmt"
	"math"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"google.golang.org/protobuf/types/known/structpb"
)

// request reads typed fields out of a request struct
type request struct {
	fields map[string]*structpb.Value
}

func newRequest(in *structpb.Struct) request {
	return request{fields: in.GetFields()}
}

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errBadRequest)
}

func (r request) has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

func (r request) str(name string) (string, error) {
	v, ok := r.fields[name]
	if !ok {
		return "", badRequest("missing field %q", name)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", badRequest("field %q must be a string", name)
	}
	return s.StringValue, nil
}

// optStr returns def when the field is absent
func (r request) optStr(name, def string) (string, error) {
	if !r.has(name) {
		return def, nil
	}
	return r.str(name)
}

func integerOf(name string, v *structpb.Value) (int, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, badRequest("field %q must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, badRequest("field %q must be an integer", name)
	}
	return int(n.NumberValue), nil
}

func (r request) integer(name string) (int, error) {
	v, ok := r.fields[name]
	if !ok {
		return 0, badRequest("missing field %q", name)
	}
	return integerOf(name, v)
}

func (r request) optInteger(name string, def int) (int, error) {
	if !r.has(name) {
		return def, nil
	}
	return r.integer(name)
}

func (r request) matchID() (string, error) {
	id, err := r.str("match_id")
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", badRequest("match_id is empty")
	}
	return id, nil
}

func (r request) player() (core.PlayerSlot, error) {
	n, err := r.integer("player")
	if err != nil {
		return core.NoPlayer, err
	}
	if n < int(core.Player1) || n > core.MaxPlayers {
		return core.NoPlayer, badRequest("player %d is not a seat", n)
	}
	return core.PlayerSlot(n), nil
}

func (r request) position() (core.Position, error) {
	row, err := r.integer("row")
	if err != nil {
		return core.Position{}, err
	}
	col, err := r.integer("col")
	if err != nil {
		return core.Position{}, err
	}
	return core.NewPosition(row, col), nil
}

func (r request) wall() (core.Wall, error) {
	pos, err := r.position()
	if err != nil {
		return core.Wall{}, err
	}
	name, err := r.str("orientation")
	if err != nil {
		return core.Wall{}, err
	}
	o, err := core.ParseOrientation(name)
	if err != nil {
		return core.Wall{}, badRequest("orientation %q", name)
	}
	return core.NewWall(pos.Row, pos.Col, o), nil
}

func (r request) mode() (core.Mode, error) {
	name, err := r.optStr("mode", core.TwoPlayer.String())
	if err != nil {
		return 0, err
	}
	m, err := core.ParseMode(name)
	if err != nil {
		return 0, badRequest("mode %q", name)
	}
	return m, nil
}
