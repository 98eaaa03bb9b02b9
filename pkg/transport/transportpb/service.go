// Package transportpb hand-authors the gRPC service descriptor that
// protoc-gen-go-grpc would otherwise generate from a .proto file. There is
// no .proto source and no protobuf wire format here: messages are the
// plain JSON-tagged structs in pkg/types, carried over gRPC's
// content-subtype codec mechanism (see pkg/transport's json codec) instead
// of protobuf's binary encoding. The ServiceDesc, method handlers, and
// client stub below are shaped exactly like generated code so the rest of
// the stack (grpc.Server, grpc.ClientConn, interceptors) works unmodified.
package transportpb

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nimbusdb/core/pkg/types"
)

// DurabilityServer is implemented by whatever answers inbound consensus
// RPCs (pkg/consensus.Driver, via a thin adapter).
type DurabilityServer interface {
	Heartbeat(ctx context.Context, req *types.HeartbeatRequest) (*types.HeartbeatReply, error)
	StartElection(ctx context.Context, req *types.ElectionRequest) (*types.ElectionReply, error)
}

// DurabilityClient is the stub callers use to invoke those RPCs on a peer.
type DurabilityClient interface {
	Heartbeat(ctx context.Context, req *types.HeartbeatRequest, opts ...grpc.CallOption) (*types.HeartbeatReply, error)
	StartElection(ctx context.Context, req *types.ElectionRequest, opts ...grpc.CallOption) (*types.ElectionReply, error)
}

type durabilityClient struct {
	cc grpc.ClientConnInterface
}

// NewDurabilityClient wraps any grpc.ClientConnInterface (a *grpc.ClientConn
// in production, a fake in tests) as a DurabilityClient.
func NewDurabilityClient(cc grpc.ClientConnInterface) DurabilityClient {
	return &durabilityClient{cc: cc}
}

func (c *durabilityClient) Heartbeat(ctx context.Context, req *types.HeartbeatRequest, opts ...grpc.CallOption) (*types.HeartbeatReply, error) {
	out := new(types.HeartbeatReply)
	if err := c.cc.Invoke(ctx, heartbeatMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *durabilityClient) StartElection(ctx context.Context, req *types.ElectionRequest, opts ...grpc.CallOption) (*types.ElectionReply, error) {
	out := new(types.ElectionReply)
	if err := c.cc.Invoke(ctx, startElectionMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

const (
	serviceName         = "nimbusdb.durability.v1.Durability"
	heartbeatMethod     = "/" + serviceName + "/Heartbeat"
	startElectionMethod = "/" + serviceName + "/StartElection"
)

func _Durability_Heartbeat_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(types.HeartbeatRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DurabilityServer).Heartbeat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: heartbeatMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DurabilityServer).Heartbeat(ctx, req.(*types.HeartbeatRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Durability_StartElection_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(types.ElectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DurabilityServer).StartElection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: startElectionMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DurabilityServer).StartElection(ctx, req.(*types.ElectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc a protoc-gen-go-grpc run would emit
// for a two-RPC Durability service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DurabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Heartbeat", Handler: _Durability_Heartbeat_Handler},
		{MethodName: "StartElection", Handler: _Durability_StartElection_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "durability.proto",
}
