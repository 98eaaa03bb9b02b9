// Package transport implements the transport collaborator: an asynchronous
// RPC client per peer exposing SendHeartbeat and StartElection, whose
// handlers are invoked on transport-owned goroutines rather than the
// caller's. GRPCTransport wires this over real google.golang.org/grpc
// connections; Fake wires it entirely in-memory for tests that need
// deterministic, network-free delivery.
package transport

import (
	"context"

	"github.com/nimbusdb/core/pkg/types"
)

// HeartbeatHandler receives the result of one SendHeartbeat call.
type HeartbeatHandler func(reply types.HeartbeatReply, err error)

// ElectionHandler receives the result of one StartElection call.
type ElectionHandler func(reply types.ElectionReply, err error)

// Transport sends RPCs to cluster peers without blocking the caller:
// SendHeartbeat and StartElection both dispatch asynchronously and report
// their result to handler on a transport-owned goroutine.
type Transport interface {
	SendHeartbeat(ctx context.Context, peer types.Node, req types.HeartbeatRequest, handler HeartbeatHandler)
	StartElection(ctx context.Context, peer types.Node, req types.ElectionRequest, handler ElectionHandler)
}

// Receiver is implemented by the Consensus-Driver to answer inbound RPCs,
// whatever transport carries them in.
type Receiver interface {
	Heartbeat(ctx context.Context, req types.HeartbeatRequest) (types.HeartbeatReply, error)
	StartElection(ctx context.Context, req types.ElectionRequest) (types.ElectionReply, error)
}
