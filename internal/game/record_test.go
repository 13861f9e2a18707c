package game

import (
	"testing"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/states"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

// playedEngine returns a 2-player match a few plies in, with a bot seat
func playedEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t, core.TwoPlayer)
	_, err := e.AddBot("hard")
	require.NoError(t, err)
	require.NoError(t, e.Start())
	mustMove(t, e, core.Player1, 7, 4)
	mustWall(t, e, core.Player2, h(6, 3))
	mustWall(t, e, core.Player1, v(1, 4))
	mustMove(t, e, core.Player2, 1, 4)
	return e
}

func TestStateRecord_RoundTrip(t *testing.T) {
	e := playedEngine(t)
	s := e.State()

	data, err := MarshalState(s)
	require.NoError(t, err)

	decoded, err := UnmarshalState(data)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestStateRecord_Fields(t *testing.T) {
	st, err := EncodeState(playedEngine(t).State())
	require.NoError(t, err)

	fields := st.GetFields()
	assert.Equal(t, "two_player", fields["mode"].GetStringValue())
	assert.Equal(t, "in_progress", fields["status"].GetStringValue())
	assert.Equal(t, float64(0), fields["current_player_index"].GetNumberValue())
	assert.Len(t, fields["players"].GetListValue().GetValues(), 2)
	assert.Len(t, fields["walls"].GetListValue().GetValues(), 2)

	history := fields["history"].GetListValue().GetValues()
	require.Len(t, history, 4)
	wall := history[1].GetStructValue().GetFields()
	assert.Equal(t, "wall", wall["kind"].GetStringValue())
	assert.Equal(t, "horizontal", wall["wall"].GetStructValue().GetFields()["orientation"].GetStringValue())
}

func TestRestoreEngine_ContinuesIdentically(t *testing.T) {
	original := playedEngine(t)
	data, err := MarshalState(original.State())
	require.NoError(t, err)
	decoded, err := UnmarshalState(data)
	require.NoError(t, err)

	restored, err := RestoreEngine(MatchConfig{Logger: testutil.NopLogger(), Rng: newTestRNG()}, decoded)
	require.NoError(t, err)

	assert.Equal(t, original.ID(), restored.ID())
	assert.Equal(t, states.StatusInProgress, restored.Status())
	for _, slot := range []core.PlayerSlot{core.Player1, core.Player2} {
		assert.Equal(t, original.LegalSteps(slot), restored.LegalSteps(slot))
		assert.Equal(t, original.LegalWalls(slot), restored.LegalWalls(slot))
	}

	// undo walks back through the decoded history
	for i := 0; i < 4; i++ {
		require.NoError(t, restored.Undo())
	}
	s := restored.State()
	assert.Empty(t, s.Walls)
	assert.Equal(t, 10, s.Players[core.Player1.Index()].WallsRemaining)
	assert.Equal(t, core.Player1, restored.CurrentPlayer())

	restored.Reset()
	assert.Equal(t, 10, restored.State().Players[core.Player2.Index()].InitialWalls)
}

func TestUnmarshalState_RejectsMalformedRecords(t *testing.T) {
	good, err := EncodeState(playedEngine(t).State())
	require.NoError(t, err)

	mutate := func(fn func(m map[string]interface{})) []byte {
		m := good.AsMap()
		fn(m)
		st, err := structpb.NewStruct(m)
		require.NoError(t, err)
		data, err := st.MarshalJSON()
		require.NoError(t, err)
		return data
	}
	players := func(m map[string]interface{}) []interface{} { return m["players"].([]interface{}) }
	player := func(m map[string]interface{}, i int) map[string]interface{} {
		return players(m)[i].(map[string]interface{})
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("{")},
		{"missing status", mutate(func(m map[string]interface{}) { delete(m, "status") })},
		{"unknown mode", mutate(func(m map[string]interface{}) { m["mode"] = "three_player" })},
		{"unknown status", mutate(func(m map[string]interface{}) { m["status"] = "paused" })},
		{"winner as string", mutate(func(m map[string]interface{}) { m["winner"] = "1" })},
		{"fractional index", mutate(func(m map[string]interface{}) { m["current_player_index"] = 0.5 })},
		{"index out of range", mutate(func(m map[string]interface{}) { m["current_player_index"] = 5 })},
		{"winner while in progress", mutate(func(m map[string]interface{}) { m["winner"] = 1 })},
		{"missing player", mutate(func(m map[string]interface{}) { m["players"] = players(m)[:1] })},
		{"seats swapped", mutate(func(m map[string]interface{}) {
			ps := players(m)
			ps[0], ps[1] = ps[1], ps[0]
		})},
		{"pawn off board", mutate(func(m map[string]interface{}) {
			player(m, 0)["position"] = map[string]interface{}{"row": 9, "col": 4}
		})},
		{"wall refund", mutate(func(m map[string]interface{}) { player(m, 0)["walls_remaining"] = 10 })},
		{"shared cell", mutate(func(m map[string]interface{}) {
			player(m, 0)["position"] = map[string]interface{}{"row": 1, "col": 4}
		})},
		{"unknown orientation", mutate(func(m map[string]interface{}) {
			m["walls"].([]interface{})[0].(map[string]interface{})["orientation"] = "diagonal"
		})},
		{"wall without record", mutate(func(m map[string]interface{}) {
			m["walls"] = append(m["walls"].([]interface{}), map[string]interface{}{"row": 0, "col": 0, "orientation": "horizontal"})
		})},
		{"unknown record kind", mutate(func(m map[string]interface{}) {
			m["history"].([]interface{})[0].(map[string]interface{})["kind"] = "jump"
		})},
		{"broken move chain", mutate(func(m map[string]interface{}) {
			m["history"].([]interface{})[0].(map[string]interface{})["from"] = map[string]interface{}{"row": 8, "col": 3}
		})},
		{"bot without level", mutate(func(m map[string]interface{}) { player(m, 1)["difficulty"] = "" })},
		{"unclaimed bot", mutate(func(m map[string]interface{}) { player(m, 1)["claimed"] = false })},
		{"move record teleports", mutate(func(m map[string]interface{}) {
			far := map[string]interface{}{"row": 5, "col": 4}
			m["history"].([]interface{})[0].(map[string]interface{})["to"] = far
			player(m, 0)["position"] = far
		})},
		{"finished without a winning move", mutate(func(m map[string]interface{}) {
			m["status"] = "finished"
			m["winner"] = 1
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalState(tt.data)
			assert.ErrorIs(t, err, core.ErrInvalidState)
		})
	}
}

func TestValidateState_RejectsStrandedPawn(t *testing.T) {
	e := startedEngine(t, core.TwoPlayer)
	open, closing := testutil.SealedGoalRow()
	player := core.Player1
	for _, w := range open {
		mustWall(t, e, player, w)
		player = e.CurrentPlayer()
	}

	s := e.State()
	s.Walls = append(s.Walls, closing)
	s.History = append(s.History, Record{Kind: RecordWall, Player: player, Wall: closing})
	s.Players[player.Index()].WallsRemaining--

	assert.ErrorIs(t, ValidateState(s), core.ErrInvalidState)
	_, err := RestoreEngine(MatchConfig{Logger: testutil.NopLogger()}, s)
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestDecodeState_Nil(t *testing.T) {
	_, err := DecodeState(nil)
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestValidateState_ReplaysMoveLegality(t *testing.T) {
	base := func(t *testing.T) MatchState {
		return startedEngine(t, core.TwoPlayer).State()
	}

	tests := []struct {
		name  string
		build func(s *MatchState)
	}{
		{"pawn placed on its goal", func(s *MatchState) {
			s.History = []Record{{Kind: RecordMove, Player: core.Player1, From: pos(8, 4), To: pos(0, 3)}}
			s.Players[core.Player1.Index()].Position = pos(0, 3)
			s.CurrentIndex = 1
		}},
		{"step through a wall", func(s *MatchState) {
			s.Walls = []core.Wall{h(7, 4)}
			s.History = []Record{
				{Kind: RecordWall, Player: core.Player1, Wall: h(7, 4)},
				{Kind: RecordMove, Player: core.Player2, From: pos(0, 4), To: pos(1, 4)},
				{Kind: RecordMove, Player: core.Player1, From: pos(8, 4), To: pos(7, 4)},
			}
			s.Players[core.Player1.Index()].WallsRemaining--
			s.Players[core.Player1.Index()].Position = pos(7, 4)
			s.Players[core.Player2.Index()].Position = pos(1, 4)
			s.CurrentIndex = 1
		}},
		{"jump over an empty cell", func(s *MatchState) {
			s.History = []Record{{Kind: RecordMove, Player: core.Player1, From: pos(8, 4), To: pos(6, 4)}}
			s.Players[core.Player1.Index()].Position = pos(6, 4)
			s.CurrentIndex = 1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base(t)
			tt.build(&s)
			assert.ErrorIs(t, ValidateState(s), core.ErrInvalidState)
			_, err := RestoreEngine(MatchConfig{Logger: testutil.NopLogger()}, s)
			assert.ErrorIs(t, err, core.ErrInvalidState)
		})
	}
}

func TestValidateState_AcceptsWinningMove(t *testing.T) {
	e := startedEngine(t, core.TwoPlayer)
	walkPlayer1Home(t, e)
	require.True(t, e.IsFinished())

	s := e.State()
	require.NoError(t, ValidateState(s))

	// the winning move may only be the last record
	s.Status = states.StatusInProgress
	s.Winner = core.NoPlayer
	s.CurrentIndex = 1
	assert.ErrorIs(t, ValidateState(s), core.ErrInvalidState, "pawn on its goal while in progress")

	s.History = append(s.History, Record{Kind: RecordMove, Player: core.Player2, From: pos(0, 3), To: pos(1, 3)})
	s.Players[core.Player2.Index()].Position = pos(1, 3)
	s.CurrentIndex = 0
	assert.ErrorIs(t, ValidateState(s), core.ErrInvalidState, "play continued after a win")

	s = e.State()
	s.Players[core.Player1.Index()].Position = pos(1, 4)
	s.History = s.History[:len(s.History)-1]
	assert.ErrorIs(t, ValidateState(s), core.ErrInvalidState, "winner off its goal with an opponent left")
}
