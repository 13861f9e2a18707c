package matchserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatchServiceName is the fully qualified gRPC service name
const MatchServiceName = "quoridor.v1.MatchService"

// Method names of the match service
const (
	MethodCreateMatch  = "CreateMatch"
	MethodGetMatch     = "GetMatch"
	MethodStartMatch   = "StartMatch"
	MethodResetMatch   = "ResetMatch"
	MethodAddBot       = "AddBot"
	MethodMove         = "Move"
	MethodPlaceWall    = "PlaceWall"
	MethodUndo         = "Undo"
	MethodBotTurn      = "BotTurn"
	MethodEliminate    = "Eliminate"
	MethodForfeitTurn  = "ForfeitTurn"
	MethodLegalActions = "LegalActions"
)

// MatchServiceServer is the server API for the match service. Every call
// takes and returns a google.protobuf.Struct.
type MatchServiceServer interface {
	CreateMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddBot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Move(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlaceWall(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Undo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BotTurn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Eliminate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ForfeitTurn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LegalActions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(MatchServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MatchServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + MatchServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(MatchServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// MatchServiceDesc describes the match service for grpc.Server registration
var MatchServiceDesc = grpc.ServiceDesc{
	ServiceName: MatchServiceName,
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodCreateMatch, MatchServiceServer.CreateMatch),
		unaryHandler(MethodGetMatch, MatchServiceServer.GetMatch),
		unaryHandler(MethodStartMatch, MatchServiceServer.StartMatch),
		unaryHandler(MethodResetMatch, MatchServiceServer.ResetMatch),
		unaryHandler(MethodAddBot, MatchServiceServer.AddBot),
		unaryHandler(MethodMove, MatchServiceServer.Move),
		unaryHandler(MethodPlaceWall, MatchServiceServer.PlaceWall),
		unaryHandler(MethodUndo, MatchServiceServer.Undo),
		unaryHandler(MethodBotTurn, MatchServiceServer.BotTurn),
		unaryHandler(MethodEliminate, MatchServiceServer.Eliminate),
		unaryHandler(MethodForfeitTurn, MatchServiceServer.ForfeitTurn),
		unaryHandler(MethodLegalActions, MatchServiceServer.LegalActions),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterMatchServiceServer registers srv on s
func RegisterMatchServiceServer(s grpc.ServiceRegistrar, srv MatchServiceServer) {
	s.RegisterService(&MatchServiceDesc, srv)
}

// MatchServiceClient calls the match service over a client connection
type MatchServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMatchServiceClient creates a client on cc
func NewMatchServiceClient(cc grpc.ClientConnInterface) *MatchServiceClient {
	return &MatchServiceClient{cc: cc}
}

// Call invokes method with the request fields in req
func (c *MatchServiceClient) Call(ctx context.Context, method string, req map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+MatchServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
