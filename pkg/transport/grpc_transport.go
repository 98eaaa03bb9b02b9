package transport

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nimbusdb/core/pkg/log"
	"github.com/nimbusdb/core/pkg/transport/transportpb"
	"github.com/nimbusdb/core/pkg/types"
)

// GRPCTransport is the production Transport, dialing one cached
// *grpc.ClientConn per peer address and issuing RPCs through the
// hand-authored transportpb.DurabilityClient stub. Every call runs on its
// own goroutine so handler is always invoked off the caller's goroutine,
// never the one that called SendHeartbeat or StartElection.
type GRPCTransport struct {
	dialOpts []grpc.DialOption

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// NewGRPCTransport creates a GRPCTransport. With no dialOpts, connections
// are insecure (plaintext), matching the teacher's worker-to-manager
// fallback dial path for environments without mTLS configured.
func NewGRPCTransport(dialOpts ...grpc.DialOption) *GRPCTransport {
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	return &GRPCTransport{
		dialOpts: dialOpts,
		conns:    make(map[string]*grpc.ClientConn),
	}
}

func (t *GRPCTransport) clientFor(peer types.Node) (transportpb.DurabilityClient, error) {
	addr := peer.Addr()

	t.mu.Lock()
	conn, ok := t.conns[addr]
	t.mu.Unlock()
	if ok {
		return transportpb.NewDurabilityClient(conn), nil
	}

	conn, err := grpc.NewClient(addr, t.dialOpts...)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if existing, ok := t.conns[addr]; ok {
		t.mu.Unlock()
		conn.Close()
		return transportpb.NewDurabilityClient(existing), nil
	}
	t.conns[addr] = conn
	t.mu.Unlock()

	return transportpb.NewDurabilityClient(conn), nil
}

// SendHeartbeat implements Transport.
func (t *GRPCTransport) SendHeartbeat(ctx context.Context, peer types.Node, req types.HeartbeatRequest, handler HeartbeatHandler) {
	go func() {
		client, err := t.clientFor(peer)
		if err != nil {
			handler(types.HeartbeatReply{}, err)
			return
		}
		reply, err := client.Heartbeat(ctx, &req, grpc.CallContentSubtype(jsonCodecName))
		if err != nil {
			handler(types.HeartbeatReply{}, err)
			return
		}
		handler(*reply, nil)
	}()
}

// StartElection implements Transport.
func (t *GRPCTransport) StartElection(ctx context.Context, peer types.Node, req types.ElectionRequest, handler ElectionHandler) {
	go func() {
		client, err := t.clientFor(peer)
		if err != nil {
			handler(types.ElectionReply{}, err)
			return
		}
		reply, err := client.StartElection(ctx, &req, grpc.CallContentSubtype(jsonCodecName))
		if err != nil {
			handler(types.ElectionReply{}, err)
			return
		}
		handler(*reply, nil)
	}()
}

// Close closes every cached peer connection.
func (t *GRPCTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for addr, conn := range t.conns {
		if err := conn.Close(); err != nil {
			log.WithComponent("transport").Warn().Err(err).Str("addr", addr).Msg("error closing peer connection")
		}
	}
	t.conns = make(map[string]*grpc.ClientConn)
}

// serverAdapter adapts a Receiver (the consensus driver) to the
// transportpb.DurabilityServer interface the hand-authored ServiceDesc
// expects.
type serverAdapter struct {
	receiver Receiver
}

func (a serverAdapter) Heartbeat(ctx context.Context, req *types.HeartbeatRequest) (*types.HeartbeatReply, error) {
	reply, err := a.receiver.Heartbeat(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (a serverAdapter) StartElection(ctx context.Context, req *types.ElectionRequest) (*types.ElectionReply, error) {
	reply, err := a.receiver.StartElection(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// RegisterReceiver registers receiver on s as the Durability gRPC service.
func RegisterReceiver(s *grpc.Server, receiver Receiver) {
	s.RegisterService(&transportpb.ServiceDesc, serverAdapter{receiver: receiver})
}
