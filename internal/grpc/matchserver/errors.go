package matchserver

import (
	"context"
	"errors"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Error kinds carried in the status details
const (
	KindNotYourTurn      = "not_your_turn"
	KindOutOfBounds      = "out_of_bounds"
	KindIllegalStep      = "illegal_step"
	KindNoWallsRemaining = "no_walls_remaining"
	KindWallOverlap      = "wall_overlap"
	KindPathBlocked      = "path_blocked"
	KindInvalidState     = "invalid_state"
	KindCapacity         = "capacity"
	KindNotFound         = "not_found"
	KindBadRequest       = "bad_request"
	KindInternal         = "internal"
)

var sentinelKinds = map[error]struct {
	kind string
	code codes.Code
}{
	core.ErrNotYourTurn:      {KindNotYourTurn, codes.FailedPrecondition},
	core.ErrOutOfBounds:      {KindOutOfBounds, codes.InvalidArgument},
	core.ErrIllegalStep:      {KindIllegalStep, codes.FailedPrecondition},
	core.ErrNoWallsRemaining: {KindNoWallsRemaining, codes.FailedPrecondition},
	core.ErrWallOverlap:      {KindWallOverlap, codes.FailedPrecondition},
	core.ErrPathBlocked:      {KindPathBlocked, codes.FailedPrecondition},
	core.ErrInvalidState:     {KindInvalidState, codes.FailedPrecondition},
}

// errBadRequest marks malformed request fields
var errBadRequest = errors.New("bad request")

// toStatus converts an engine or manager error into a gRPC status error
// whose details name the error kind
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	kind, code := KindInternal, codes.Internal
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, ErrMatchNotFound):
		kind, code = KindNotFound, codes.NotFound
	case errors.Is(err, ErrCapacity):
		kind, code = KindCapacity, codes.ResourceExhausted
	case errors.Is(err, errBadRequest):
		kind, code = KindBadRequest, codes.InvalidArgument
	default:
		if sentinel := core.Kind(err); sentinel != nil {
			k := sentinelKinds[sentinel]
			kind, code = k.kind, k.code
		}
	}

	st := status.New(code, err.Error())
	detail := &structpb.Struct{Fields: map[string]*structpb.Value{"kind": structpb.NewStringValue(kind)}}
	if detailed, derr := st.WithDetails(detail); derr == nil {
		st = detailed
	}
	return st.Err()
}

// ErrorKind returns the kind carried by a status error from the match
// service, or "" when there is none
func ErrorKind(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			return s.GetFields()["kind"].GetStringValue()
		}
	}
	return ""
}
