package matchserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/testutil"
)

const bufSize = 1024 * 1024

func newTestManager(maxMatches int) *MatchManager {
	return NewMatchManager(ManagerConfig{
		MaxMatches: maxMatches,
		Logger:     testutil.NopLogger(),
	})
}

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T) (*MatchServiceClient, *MatchManager) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	manager := newTestManager(10)
	s := grpc.NewServer()
	RegisterMatchServiceServer(s, NewServer(manager))

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		lis.Close()
		manager.Close()
	})
	return NewMatchServiceClient(conn), manager
}

func number(st *structpb.Struct, name string) int {
	return int(st.GetFields()[name].GetNumberValue())
}

func text(st *structpb.Struct, name string) string {
	return st.GetFields()[name].GetStringValue()
}

func createStartedMatch(t *testing.T, client *MatchServiceClient, mode string) string {
	t.Helper()
	ctx := context.Background()
	resp, err := client.Call(ctx, MethodCreateMatch, map[string]interface{}{"mode": mode})
	require.NoError(t, err)
	id := text(resp, "match_id")
	require.NotEmpty(t, id)

	resp, err = client.Call(ctx, MethodStartMatch, map[string]interface{}{"match_id": id})
	require.NoError(t, err)
	require.Equal(t, "in_progress", text(resp, "status"))
	return id
}

func TestCreateMatch(t *testing.T) {
	client, manager := setupTestServer(t)
	ctx := context.Background()

	resp, err := client.Call(ctx, MethodCreateMatch, map[string]interface{}{
		"mode":             "four_player",
		"walls_per_player": 3,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, text(resp, "match_id"))
	assert.Equal(t, "waiting", text(resp, "status"))
	assert.Equal(t, 0, number(resp, "current_player"))
	assert.Equal(t, 0, number(resp, "winner"))

	state := resp.GetFields()["state"].GetStructValue()
	require.NotNil(t, state)
	assert.Equal(t, "four_player", text(state, "mode"))
	players := state.GetFields()["players"].GetListValue().GetValues()
	require.Len(t, players, 4)
	for _, p := range players {
		assert.Equal(t, 3, number(p.GetStructValue(), "walls_remaining"))
	}
	assert.Equal(t, 1, manager.ActiveMatches())
}

func TestCreateMatch_BadRequest(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  map[string]interface{}
	}{
		{"unknown mode", map[string]interface{}{"mode": "three_player"}},
		{"mode not a string", map[string]interface{}{"mode": 2}},
		{"fractional walls", map[string]interface{}{"walls_per_player": 2.5}},
		{"negative walls", map[string]interface{}{"walls_per_player": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Call(ctx, MethodCreateMatch, tt.req)
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
			assert.Equal(t, KindBadRequest, ErrorKind(err))
		})
	}
}

func TestGetMatch_NotFound(t *testing.T) {
	client, _ := setupTestServer(t)

	_, err := client.Call(context.Background(), MethodGetMatch, map[string]interface{}{"match_id": "nope"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, KindNotFound, ErrorKind(err))
}

func TestGetMatch_Stats(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createStartedMatch(t, client, "two_player")

	_, err := client.Call(ctx, MethodMove, map[string]interface{}{"match_id": id, "player": 1, "row": 7, "col": 4})
	require.NoError(t, err)

	resp, err := client.Call(ctx, MethodGetMatch, map[string]interface{}{"match_id": id})
	require.NoError(t, err)
	stats := resp.GetFields()["stats"].GetListValue().GetValues()
	require.Len(t, stats, 2)

	p1 := stats[0].GetStructValue()
	assert.Equal(t, 1, number(p1, "player"))
	assert.Equal(t, 1, number(p1, "moves"))
	assert.Equal(t, 7, number(p1, "path_length"))
	assert.Equal(t, 2, number(resp, "current_player"))
}

func TestMoveAndWallFlow(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createStartedMatch(t, client, "two_player")

	resp, err := client.Call(ctx, MethodMove, map[string]interface{}{"match_id": id, "player": 1, "row": 7, "col": 4})
	require.NoError(t, err)
	assert.Equal(t, 2, number(resp, "current_player"))

	resp, err = client.Call(ctx, MethodPlaceWall, map[string]interface{}{
		"match_id": id, "player": 2, "row": 3, "col": 3, "orientation": "horizontal",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, number(resp, "current_player"))

	walls := resp.GetFields()["state"].GetStructValue().GetFields()["walls"].GetListValue().GetValues()
	require.Len(t, walls, 1)
	assert.Equal(t, "horizontal", text(walls[0].GetStructValue(), "orientation"))
}

func TestRejectedActions(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createStartedMatch(t, client, "two_player")

	_, err := client.Call(ctx, MethodPlaceWall, map[string]interface{}{
		"match_id": id, "player": 1, "row": 3, "col": 3, "orientation": "h",
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  map[string]interface{}
		code codes.Code
		kind string
		call string
	}{
		{"wrong player", map[string]interface{}{"player": 1, "row": 7, "col": 4}, codes.FailedPrecondition, KindNotYourTurn, MethodMove},
		{"off board", map[string]interface{}{"player": 2, "row": -1, "col": 4}, codes.InvalidArgument, KindOutOfBounds, MethodMove},
		{"two squares", map[string]interface{}{"player": 2, "row": 2, "col": 4}, codes.FailedPrecondition, KindIllegalStep, MethodMove},
		{"overlapping wall", map[string]interface{}{"player": 2, "row": 3, "col": 4, "orientation": "h"}, codes.FailedPrecondition, KindWallOverlap, MethodPlaceWall},
		{"crossing wall", map[string]interface{}{"player": 2, "row": 3, "col": 3, "orientation": "v"}, codes.FailedPrecondition, KindWallOverlap, MethodPlaceWall},
		{"no such seat", map[string]interface{}{"player": 5, "row": 1, "col": 4}, codes.InvalidArgument, KindBadRequest, MethodMove},
		{"missing col", map[string]interface{}{"player": 2, "row": 1}, codes.InvalidArgument, KindBadRequest, MethodMove},
		{"bad orientation", map[string]interface{}{"player": 2, "row": 1, "col": 1, "orientation": "diagonal"}, codes.InvalidArgument, KindBadRequest, MethodPlaceWall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req["match_id"] = id
			_, err := client.Call(ctx, tt.call, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
			assert.Equal(t, tt.kind, ErrorKind(err))
		})
	}

	resp, err := client.Call(ctx, MethodGetMatch, map[string]interface{}{"match_id": id})
	require.NoError(t, err)
	assert.Equal(t, 2, number(resp, "current_player"), "rejected actions must not pass the turn")
}

func TestMove_Idempotency(t *testing.T) {
	client, manager := setupTestServer(t)
	ctx := context.Background()
	id := createStartedMatch(t, client, "two_player")

	req := map[string]interface{}{
		"match_id": id, "player": 1, "row": 7, "col": 4, "idempotency_key": "move-1",
	}
	first, err := client.Call(ctx, MethodMove, req)
	require.NoError(t, err)

	// applying the move again would be rejected as out of turn
	second, err := client.Call(ctx, MethodMove, req)
	require.NoError(t, err)
	assert.Equal(t, number(first, "current_player"), number(second, "current_player"))

	match, ok := manager.GetMatch(id)
	require.True(t, ok)
	assert.Equal(t, 1, match.engine.State().Ply(), "a retried move is applied once")

	req["idempotency_key"] = "move-2"
	_, err = client.Call(ctx, MethodMove, req)
	require.Error(t, err)
	assert.Equal(t, KindNotYourTurn, ErrorKind(err))
}

func TestUndo(t *testing.T) {
	client, manager := setupTestServer(t)
	ctx := context.Background()
	id := createStartedMatch(t, client, "two_player")

	_, err := client.Call(ctx, MethodUndo, map[string]interface{}{"match_id": id})
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, ErrorKind(err))

	_, err = client.Call(ctx, MethodMove, map[string]interface{}{
		"match_id": id, "player": 1, "row": 7, "col": 4, "idempotency_key": "k",
	})
	require.NoError(t, err)

	resp, err := client.Call(ctx, MethodUndo, map[string]interface{}{"match_id": id})
	require.NoError(t, err)
	assert.Equal(t, 1, number(resp, "current_player"))

	match, _ := manager.GetMatch(id)
	assert.Zero(t, match.idempotency.Len(), "undo invalidates cached responses")
}

func TestAddBotAndBotTurn(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	resp, err := client.Call(ctx, MethodCreateMatch, map[string]interface{}{})
	require.NoError(t, err)
	id := text(resp, "match_id")

	resp, err = client.Call(ctx, MethodAddBot, map[string]interface{}{"match_id": id, "level": "easy"})
	require.NoError(t, err)
	assert.Equal(t, 2, number(resp, "player"))

	_, err = client.Call(ctx, MethodAddBot, map[string]interface{}{"match_id": id, "level": "grandmaster"})
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, ErrorKind(err))

	_, err = client.Call(ctx, MethodAddBot, map[string]interface{}{"match_id": id, "level": "easy"})
	require.Error(t, err, "the bot seat is claimed and player1 is kept")
	assert.Equal(t, KindInvalidState, ErrorKind(err))

	_, err = client.Call(ctx, MethodStartMatch, map[string]interface{}{"match_id": id})
	require.NoError(t, err)

	_, err = client.Call(ctx, MethodBotTurn, map[string]interface{}{"match_id": id})
	require.Error(t, err, "player1 is human")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.Call(ctx, MethodMove, map[string]interface{}{"match_id": id, "player": 1, "row": 7, "col": 4})
	require.NoError(t, err)

	resp, err = client.Call(ctx, MethodBotTurn, map[string]interface{}{"match_id": id})
	require.NoError(t, err)
	action := resp.GetFields()["action"].GetStructValue()
	require.NotNil(t, action)
	assert.Equal(t, 2, number(action, "player"))
	assert.Contains(t, []string{"move", "wall"}, text(action, "kind"))
	assert.Equal(t, 1, number(resp, "current_player"))
}

func TestEliminateFinishesMatch(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createStartedMatch(t, client, "two_player")

	resp, err := client.Call(ctx, MethodEliminate, map[string]interface{}{"match_id": id, "player": 2})
	require.NoError(t, err)
	assert.Equal(t, "finished", text(resp, "status"))
	assert.Equal(t, 1, number(resp, "winner"))

	_, err = client.Call(ctx, MethodMove, map[string]interface{}{"match_id": id, "player": 1, "row": 7, "col": 4})
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, ErrorKind(err))
}

func TestForfeitTurnAndReset(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createStartedMatch(t, client, "four_player")

	resp, err := client.Call(ctx, MethodForfeitTurn, map[string]interface{}{"match_id": id, "player": 1})
	require.NoError(t, err)
	next := number(resp, "current_player")
	assert.NotEqual(t, 1, next)

	_, err = client.Call(ctx, MethodForfeitTurn, map[string]interface{}{"match_id": id, "player": 1})
	require.Error(t, err)
	assert.Equal(t, KindNotYourTurn, ErrorKind(err))

	resp, err = client.Call(ctx, MethodResetMatch, map[string]interface{}{"match_id": id})
	require.NoError(t, err)
	assert.Equal(t, "waiting", text(resp, "status"))
	assert.Equal(t, id, text(resp, "match_id"))
}

func TestLegalActions(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createStartedMatch(t, client, "two_player")

	resp, err := client.Call(ctx, MethodLegalActions, map[string]interface{}{"match_id": id, "player": 1})
	require.NoError(t, err)

	steps := resp.GetFields()["steps"].GetListValue().GetValues()
	got := make([][2]int, 0, len(steps))
	for _, s := range steps {
		got = append(got, [2]int{number(s.GetStructValue(), "row"), number(s.GetStructValue(), "col")})
	}
	assert.ElementsMatch(t, [][2]int{{7, 4}, {8, 3}, {8, 5}}, got)

	// 64 anchors in each orientation on an empty board
	walls := resp.GetFields()["walls"].GetListValue().GetValues()
	assert.Len(t, walls, 128)
}
