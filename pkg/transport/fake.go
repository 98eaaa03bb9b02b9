package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/nimbusdb/core/pkg/types"
)

// ErrUnreachable is returned by Fake when the target peer has not been
// registered, or has been explicitly marked unreachable.
var ErrUnreachable = errors.New("transport: peer unreachable")

// Fake is an in-memory Transport for tests: it dispatches directly to a
// registered Receiver instead of going over a network, while still
// invoking handler on a goroutine of its own, matching the "transport-owned
// thread" contract real network transports have.
type Fake struct {
	mu          sync.Mutex
	receivers   map[string]Receiver
	unreachable map[string]bool
}

// NewFake creates an empty Fake with no registered peers.
func NewFake() *Fake {
	return &Fake{
		receivers:   make(map[string]Receiver),
		unreachable: make(map[string]bool),
	}
}

// Register makes addr resolve to receiver for subsequent SendHeartbeat and
// StartElection calls.
func (f *Fake) Register(addr string, receiver Receiver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receivers[addr] = receiver
}

// SetUnreachable marks addr as reachable or unreachable; unreachable peers
// fail every call with ErrUnreachable, letting tests model a partitioned
// peer (or several) inside a larger cluster.
func (f *Fake) SetUnreachable(addr string, unreachable bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreachable[addr] = unreachable
}

func (f *Fake) lookup(addr string) (Receiver, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unreachable[addr] {
		return nil, false
	}
	r, ok := f.receivers[addr]
	return r, ok
}

// SendHeartbeat implements Transport.
func (f *Fake) SendHeartbeat(ctx context.Context, peer types.Node, req types.HeartbeatRequest, handler HeartbeatHandler) {
	go func() {
		receiver, ok := f.lookup(peer.Addr())
		if !ok {
			handler(types.HeartbeatReply{}, ErrUnreachable)
			return
		}
		reply, err := receiver.Heartbeat(ctx, req)
		handler(reply, err)
	}()
}

// StartElection implements Transport.
func (f *Fake) StartElection(ctx context.Context, peer types.Node, req types.ElectionRequest, handler ElectionHandler) {
	go func() {
		receiver, ok := f.lookup(peer.Addr())
		if !ok {
			handler(types.ElectionReply{}, ErrUnreachable)
			return
		}
		reply, err := receiver.StartElection(ctx, req)
		handler(reply, err)
	}()
}
