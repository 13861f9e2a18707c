package game

import (
	"fmt"
	"math"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/layout"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/pathing"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/rules"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/states"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeState converts s into a structured record. Only the seats of the
// mode are written; spawns and goals follow from the mode.
func EncodeState(s MatchState) (*structpb.Struct, error) {
	players := make([]interface{}, 0, len(s.Order))
	for _, slot := range s.Order {
		p := s.Players[slot.Index()]
		players = append(players, map[string]interface{}{
			"slot":            int(slot),
			"position":        encodePosition(p.Position),
			"walls_remaining": p.WallsRemaining,
			"initial_walls":   p.InitialWalls,
			"active":          p.Active,
			"bot":             p.Bot,
			"claimed":         p.Claimed,
			"difficulty":      p.Difficulty,
		})
	}

	walls := make([]interface{}, 0, len(s.Walls))
	for _, w := range s.Walls {
		walls = append(walls, encodeWall(w))
	}

	history := make([]interface{}, 0, len(s.History))
	for _, r := range s.History {
		rec := map[string]interface{}{
			"kind":   r.Kind.String(),
			"player": int(r.Player),
		}
		if r.Kind == RecordWall {
			rec["wall"] = encodeWall(r.Wall)
		} else {
			rec["from"] = encodePosition(r.From)
			rec["to"] = encodePosition(r.To)
		}
		history = append(history, rec)
	}

	st, err := structpb.NewStruct(map[string]interface{}{
		"id":                   s.ID,
		"mode":                 s.Mode.String(),
		"status":               s.Status.String(),
		"winner":               int(s.Winner),
		"current_player_index": s.CurrentIndex,
		"players":              players,
		"walls":                walls,
		"history":              history,
	})
	if err != nil {
		return nil, fmt.Errorf("encode match %s: %w", s.ID, err)
	}
	return st, nil
}

func encodePosition(p core.Position) map[string]interface{} {
	return map[string]interface{}{"row": p.Row, "col": p.Col}
}

func encodeWall(w core.Wall) map[string]interface{} {
	return map[string]interface{}{"row": w.Row, "col": w.Col, "orientation": w.Orientation.String()}
}

// MarshalState encodes s as protojson
func MarshalState(s MatchState) ([]byte, error) {
	st, err := EncodeState(s)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(st)
}

// UnmarshalState decodes protojson produced by MarshalState
func UnmarshalState(data []byte) (MatchState, error) {
	var st structpb.Struct
	if err := protojson.Unmarshal(data, &st); err != nil {
		return MatchState{}, fmt.Errorf("decode match: %v: %w", err, core.ErrInvalidState)
	}
	return DecodeState(&st)
}

// DecodeState rebuilds a MatchState from a record. Missing fields, values
// of the wrong type and states that break a match invariant all fail with
// ErrInvalidState; nothing is coerced.
func DecodeState(st *structpb.Struct) (MatchState, error) {
	if st == nil {
		return MatchState{}, fmt.Errorf("decode match: nil record: %w", core.ErrInvalidState)
	}
	r := recordReader{fields: st.GetFields(), path: "match"}

	id := r.str("id")
	modeName := r.str("mode")
	statusName := r.str("status")
	winner := r.integer("winner")
	current := r.integer("current_player_index")
	playerList := r.list("players")
	wallList := r.list("walls")
	historyList := r.list("history")
	if r.err != nil {
		return MatchState{}, r.err
	}

	mode, err := core.ParseMode(modeName)
	if err != nil {
		return MatchState{}, fmt.Errorf("decode match: %w", err)
	}
	status, err := states.ParseStatus(statusName)
	if err != nil {
		return MatchState{}, fmt.Errorf("decode match: %w", err)
	}

	s := MatchState{
		ID:           id,
		Mode:         mode,
		Status:       status,
		Winner:       core.PlayerSlot(winner),
		Order:        mode.Seats(),
		CurrentIndex: current,
		Walls:        make([]core.Wall, 0, len(wallList)),
		History:      make([]Record, 0, len(historyList)),
	}
	if winner < 0 || winner > core.MaxPlayers {
		return MatchState{}, fmt.Errorf("decode match: winner %d: %w", winner, core.ErrInvalidState)
	}

	if len(playerList) != len(s.Order) {
		return MatchState{}, fmt.Errorf("decode match: %d players for %s: %w", len(playerList), mode, core.ErrInvalidState)
	}
	for i, v := range playerList {
		pr := r.child(v, fmt.Sprintf("players[%d]", i))
		slot := core.PlayerSlot(pr.integer("slot"))
		pos := pr.position("position")
		p := PlayerData{
			Slot:           slot,
			Position:       pos,
			Spawn:          layout.Spawn(slot),
			Goal:           layout.GoalFor(slot),
			WallsRemaining: pr.integer("walls_remaining"),
			InitialWalls:   pr.integer("initial_walls"),
			Active:         pr.boolean("active"),
			Bot:            pr.boolean("bot"),
			Claimed:        pr.boolean("claimed"),
			Difficulty:     pr.str("difficulty"),
		}
		if pr.err != nil {
			return MatchState{}, pr.err
		}
		if slot != s.Order[i] {
			return MatchState{}, fmt.Errorf("decode match: players[%d] is %s, want %s: %w", i, slot, s.Order[i], core.ErrInvalidState)
		}
		s.Players[slot.Index()] = p
	}

	for i, v := range wallList {
		wr := r.child(v, fmt.Sprintf("walls[%d]", i))
		w := wr.wallValue()
		if wr.err != nil {
			return MatchState{}, wr.err
		}
		s.Walls = append(s.Walls, w)
	}

	for i, v := range historyList {
		hr := r.child(v, fmt.Sprintf("history[%d]", i))
		rec := Record{Player: core.PlayerSlot(hr.integer("player"))}
		switch kind := hr.str("kind"); kind {
		case "move":
			rec.Kind = RecordMove
			rec.From = hr.position("from")
			rec.To = hr.position("to")
		case "wall":
			rec.Kind = RecordWall
			wall := hr.child(hr.value("wall"), "wall")
			rec.Wall = wall.wallValue()
			hr.err = firstErr(hr.err, wall.err)
		default:
			hr.fail("kind %q", kind)
		}
		if hr.err != nil {
			return MatchState{}, hr.err
		}
		s.History = append(s.History, rec)
	}

	if err := ValidateState(s); err != nil {
		return MatchState{}, err
	}
	return s, nil
}

// ValidateState checks that s is a state the engine could have reached:
// seats and counters are consistent with the mode, walls are legal and
// match the history, every move chain starts at the spawn and every
// active pawn can still reach its goal.
func ValidateState(s MatchState) error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("invalid match state: %s: %w", fmt.Sprintf(format, args...), core.ErrInvalidState)
	}

	if s.Mode != core.TwoPlayer && s.Mode != core.FourPlayer {
		return invalid("mode %s", s.Mode)
	}
	if !s.Status.Valid() {
		return invalid("status %s", s.Status)
	}
	seats := s.Mode.Seats()
	if len(s.Order) != len(seats) {
		return invalid("%d seats for %s", len(s.Order), s.Mode)
	}
	for i, slot := range seats {
		if s.Order[i] != slot {
			return invalid("seat %d is %s", i, s.Order[i])
		}
	}

	initial := s.Players[s.Order[0].Index()].InitialWalls
	occupied := make(map[core.Position]core.PlayerSlot, len(s.Order))
	for _, slot := range s.Order {
		p := s.Players[slot.Index()]
		switch {
		case p.Slot != slot:
			return invalid("%s stored under %s", p.Slot, slot)
		case !p.Position.InBounds():
			return invalid("%s at %s", slot, p.Position)
		case p.Spawn != layout.Spawn(slot) || p.Goal != layout.GoalFor(slot):
			return invalid("%s seating", slot)
		case p.InitialWalls != initial || p.InitialWalls < 0:
			return invalid("%s initial walls %d", slot, p.InitialWalls)
		case p.WallsRemaining < 0 || p.WallsRemaining > p.InitialWalls:
			return invalid("%s walls remaining %d", slot, p.WallsRemaining)
		case p.Bot && p.Difficulty == "":
			return invalid("%s is a bot without a difficulty", slot)
		case p.Bot && !p.Claimed:
			return invalid("%s is an unclaimed bot", slot)
		}
		if !p.Active {
			continue
		}
		if other, taken := occupied[p.Position]; taken {
			return invalid("%s and %s share %s", other, slot, p.Position)
		}
		occupied[p.Position] = slot
	}

	switch s.Status {
	case states.StatusWaiting:
		if len(s.History) > 0 || s.Winner != core.NoPlayer {
			return invalid("waiting match with progress")
		}
	case states.StatusInProgress:
		if s.Winner != core.NoPlayer {
			return invalid("winner %s while in progress", s.Winner)
		}
		if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Order) || !s.Players[s.Order[s.CurrentIndex].Index()].Active {
			return invalid("current player index %d", s.CurrentIndex)
		}
		if len(s.ActivePlayers()) < 2 {
			return invalid("fewer than two active players in progress")
		}
		for _, slot := range s.ActivePlayers() {
			if p := s.Players[slot.Index()]; p.Goal.Reached(p.Position) {
				return invalid("%s stands on its goal while in progress", slot)
			}
		}
	case states.StatusFinished:
		w, ok := s.Player(s.Winner)
		if !ok || !w.Active {
			return invalid("winner %s", s.Winner)
		}
		if !w.Goal.Reached(w.Position) && len(s.ActivePlayers()) != 1 {
			return invalid("winner %s neither reached its goal nor is the last player", s.Winner)
		}
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Order) {
		return invalid("current player index %d", s.CurrentIndex)
	}

	grid := pathing.NewGrid(nil)
	for i, w := range s.Walls {
		if !w.InBounds() {
			return invalid("wall %s out of bounds", w)
		}
		for _, prev := range s.Walls[:i] {
			if rules.Overlaps(w, prev) {
				return invalid("wall %s overlaps %s", w, prev)
			}
		}
		grid.Place(w)
	}

	// history replay: wall records are the wall list in order and were legal
	// when placed; move records chain from each spawn through legal steps or
	// jumps, and only the last record may land a pawn on its goal
	positions := make(map[core.PlayerSlot]core.Position, len(s.Order))
	placed := make(map[core.PlayerSlot]int, len(s.Order))
	for _, slot := range s.Order {
		positions[slot] = s.Players[slot.Index()].Spawn
	}
	wallIdx := 0
	for i, r := range s.History {
		if _, ok := s.Player(r.Player); !ok {
			return invalid("history[%d] player %d", i, int(r.Player))
		}
		switch r.Kind {
		case RecordMove:
			if r.From != positions[r.Player] || !r.To.InBounds() {
				return invalid("history[%d] move %s->%s", i, r.From, r.To)
			}
			if !replayMoveLegal(s, positions, r, s.Walls[:wallIdx]) {
				return invalid("history[%d] illegal move %s->%s", i, r.From, r.To)
			}
			positions[r.Player] = r.To
			if s.Players[r.Player.Index()].Goal.Reached(r.To) {
				last := i == len(s.History)-1
				if !last || s.Status != states.StatusFinished || s.Winner != r.Player {
					return invalid("history[%d] %s reached its goal without winning", i, r.Player)
				}
			}
		case RecordWall:
			if wallIdx >= len(s.Walls) || s.Walls[wallIdx] != r.Wall {
				return invalid("history[%d] wall %s not in wall list", i, r.Wall)
			}
			if err := rules.ValidateWallPlacement(r.Wall, s.Walls[:wallIdx], replayPawns(s, positions)); err != nil {
				return invalid("history[%d] wall %s: %v", i, r.Wall, err)
			}
			wallIdx++
			placed[r.Player]++
		default:
			return invalid("history[%d] kind %d", i, int(r.Kind))
		}
	}
	if wallIdx != len(s.Walls) {
		return invalid("%d walls without a placement record", len(s.Walls)-wallIdx)
	}
	for _, slot := range s.Order {
		p := s.Players[slot.Index()]
		if positions[slot] != p.Position {
			return invalid("%s at %s but history ends at %s", slot, p.Position, positions[slot])
		}
		if p.InitialWalls-p.WallsRemaining != placed[slot] {
			return invalid("%s spent %d walls but placed %d", slot, p.InitialWalls-p.WallsRemaining, placed[slot])
		}
		if p.Active && !grid.HasPath(p.Position, p.Goal) {
			return invalid("%s has no path to %s", slot, p.Goal)
		}
	}
	return nil
}

// replayMoveLegal checks a move record against the walls placed before it
// and the pawn positions at that point of the replay. Seats still active at
// the end were active throughout play and block the target; any seat's
// pawn may have been the one jumped over.
func replayMoveLegal(s MatchState, positions map[core.PlayerSlot]core.Position, r Record, walls []core.Wall) bool {
	blocked := make(map[core.Position]bool, len(positions))
	pawns := make(map[core.Position]bool, len(positions))
	for slot, pos := range positions {
		if slot == r.Player {
			continue
		}
		pawns[pos] = true
		if s.Players[slot.Index()].Active {
			blocked[pos] = true
		}
	}
	if blocked[r.To] {
		return false
	}
	return rules.ValidateStep(r.From, r.To, walls) || rules.ValidateJump(r.From, r.To, pawns, walls)
}

// replayPawns returns the pawns of the seats active at the end, placed at
// their replay positions
func replayPawns(s MatchState, positions map[core.PlayerSlot]core.Position) []rules.Pawn {
	pawns := make([]rules.Pawn, 0, len(s.Order))
	for _, slot := range s.Order {
		p := s.Players[slot.Index()]
		if !p.Active {
			continue
		}
		pawns = append(pawns, rules.Pawn{Slot: slot, Position: positions[slot], Goal: p.Goal, Active: true})
	}
	return pawns
}

// recordReader pulls typed fields out of a struct record and keeps the
// first failure
type recordReader struct {
	fields map[string]*structpb.Value
	path   string
	err    error
}

func (r *recordReader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("decode %s: %s: %w", r.path, fmt.Sprintf(format, args...), core.ErrInvalidState)
	}
}

func (r *recordReader) value(name string) *structpb.Value {
	v, ok := r.fields[name]
	if !ok || v == nil {
		r.fail("missing field %q", name)
		return nil
	}
	return v
}

func (r *recordReader) str(name string) string {
	v := r.value(name)
	if v == nil {
		return ""
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		r.fail("field %q is not a string", name)
		return ""
	}
	return s.StringValue
}

func (r *recordReader) boolean(name string) bool {
	v := r.value(name)
	if v == nil {
		return false
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		r.fail("field %q is not a bool", name)
		return false
	}
	return b.BoolValue
}

func (r *recordReader) integer(name string) int {
	v := r.value(name)
	if v == nil {
		return 0
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		r.fail("field %q is not a number", name)
		return 0
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > 1<<31 {
		r.fail("field %q is not an integer", name)
		return 0
	}
	return int(f)
}

func (r *recordReader) list(name string) []*structpb.Value {
	v := r.value(name)
	if v == nil {
		return nil
	}
	l, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		r.fail("field %q is not a list", name)
		return nil
	}
	return l.ListValue.GetValues()
}

func (r *recordReader) child(v *structpb.Value, path string) *recordReader {
	c := &recordReader{path: r.path + "." + path}
	if v == nil {
		c.fail("missing")
		return c
	}
	s, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		c.fail("not an object")
		return c
	}
	c.fields = s.StructValue.GetFields()
	return c
}

func (r *recordReader) position(name string) core.Position {
	c := r.child(r.value(name), name)
	p := core.Position{Row: c.integer("row"), Col: c.integer("col")}
	r.err = firstErr(r.err, c.err)
	return p
}

func (r *recordReader) wallValue() core.Wall {
	row, col := r.integer("row"), r.integer("col")
	o, err := core.ParseOrientation(r.str("orientation"))
	if err != nil && r.err == nil {
		r.fail("%v", err)
	}
	return core.Wall{Row: row, Col: col, Orientation: o}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
