// Package dicev1 defines the swingdice.v1.DiceService gRPC contract.
//
// Requests and responses are google.protobuf.Struct messages, so the service
// needs no generated message types. The field layout of each payload is
// documented on the corresponding method.
package dicev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "swingdice.v1.DiceService"

const (
	DiceService_Roll_FullMethodName        = "/swingdice.v1.DiceService/Roll"
	DiceService_Simulate_FullMethodName    = "/swingdice.v1.DiceService/Simulate"
	DiceService_ListPresets_FullMethodName = "/swingdice.v1.DiceService/ListPresets"
)

// DiceServiceClient is the client API for DiceService.
type DiceServiceClient interface {
	// Roll rolls one pool.
	//
	// Request:  {groups:[{count,sides}] | expression | preset, swing?, script_set?}
	// Response: {roll_id, sum, average, narrative, luck_tier, rank, emphasized,
	//            effect, min_sum, max_sum, mean, pool, swing}
	Roll(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Simulate rolls one pool many times and returns aggregate statistics.
	//
	// Request:  {groups | expression | preset, swing?, trials}
	// Response: {pool, swing, trials, mean_average, std_dev, min_average,
	//            max_average, spread, p50, p90, p99, tiers:{tier:count}}
	Simulate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// ListPresets returns {presets:[{id,name,description,pool,swing?}]}.
	ListPresets(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type diceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDiceServiceClient wraps cc in a DiceServiceClient.
func NewDiceServiceClient(cc grpc.ClientConnInterface) DiceServiceClient {
	return &diceServiceClient{cc}
}

func (c *diceServiceClient) Roll(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DiceService_Roll_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diceServiceClient) Simulate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DiceService_Simulate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diceServiceClient) ListPresets(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DiceService_ListPresets_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DiceServiceServer is the server API for DiceService.
// Implementations must embed UnimplementedDiceServiceServer.
type DiceServiceServer interface {
	Roll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPresets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedDiceServiceServer()
}

// UnimplementedDiceServiceServer answers every method with codes.Unimplemented.
type UnimplementedDiceServiceServer struct{}

func (UnimplementedDiceServiceServer) Roll(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Roll not implemented")
}
func (UnimplementedDiceServiceServer) Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Simulate not implemented")
}
func (UnimplementedDiceServiceServer) ListPresets(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListPresets not implemented")
}
func (UnimplementedDiceServiceServer) mustEmbedUnimplementedDiceServiceServer() {}

// RegisterDiceServiceServer registers srv on s.
func RegisterDiceServiceServer(s grpc.ServiceRegistrar, srv DiceServiceServer) {
	s.RegisterService(&DiceService_ServiceDesc, srv)
}

func unaryHandler(method string, call func(DiceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DiceServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DiceServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DiceService_ServiceDesc is the grpc.ServiceDesc for DiceService.
var DiceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Roll",
			Handler:    unaryHandler(DiceService_Roll_FullMethodName, DiceServiceServer.Roll),
		},
		{
			MethodName: "Simulate",
			Handler:    unaryHandler(DiceService_Simulate_FullMethodName, DiceServiceServer.Simulate),
		},
		{
			MethodName: "ListPresets",
			Handler:    unaryHandler(DiceService_ListPresets_FullMethodName, DiceServiceServer.ListPresets),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "swingdice/v1/dice.proto",
}
