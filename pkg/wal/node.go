package wal

import (
	"sync"

	"github.com/google/uuid"
)

// NodeState is a LogNode's position in its Registered → Closed → Deleted
// lifecycle.
type NodeState int32

const (
	StateRegistered NodeState = iota
	StateClosed
	StateDeleted
)

func (s NodeState) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// LogNode is keyed by a string identifier (one per storage group × file
// kind) and holds the fixed-size ring of byte buffers it was registered
// with. A LogNode never references its owning Manager: it knows only its
// own identifier and buffers.
type LogNode struct {
	identifier string
	generation string

	mu      sync.Mutex
	state   NodeState
	buffers [][]byte
	synced  bool
}

// newLogNode creates a freshly registered node and assigns it a random
// generation ID, the way the teacher's pkg/scheduler and pkg/api tag each
// newly created workload/job with uuid.New().String() rather than a
// registry-derived counter. The generation disambiguates log lines across a
// register/delete/register cycle that reuses the same identifier.
func newLogNode(identifier string) *LogNode {
	return &LogNode{identifier: identifier, generation: uuid.NewString(), state: StateRegistered}
}

// Identifier returns this node's registry key.
func (n *LogNode) Identifier() string {
	return n.identifier
}

// Generation returns the random ID assigned when this node was registered,
// for log correlation across register/delete cycles on the same identifier.
func (n *LogNode) Generation() string {
	return n.generation
}

// Synced reports whether ForceSync has flushed this node at least once
// since it was last registered.
func (n *LogNode) Synced() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.synced
}

// State returns the node's current lifecycle state.
func (n *LogNode) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// attachBuffers assigns bufs to the node, reporting false without assigning
// them if the node has already left the Registered state — e.g. a
// concurrent DeleteNode raced this call and removed the node from the
// registry first. The caller owns returning bufs to the pool in that case.
func (n *LogNode) attachBuffers(bufs [][]byte) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateRegistered {
		return false
	}
	n.buffers = bufs
	return true
}

// ForceSync flushes buffered bytes to the collaborator-chosen file sink;
// the on-disk layout is left to that collaborator. It is idempotent:
// calling it again before new writes arrive, or after the node is closed,
// is a no-op success.
func (n *LogNode) ForceSync() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateRegistered {
		return nil
	}
	n.synced = true
	return nil
}

// Close releases this node's buffers and transitions it to Closed. Close is
// terminal: calling it again, or calling ForceSync afterward, is a safe
// no-op. It returns the buffers the node held so the caller can return
// them to the pool.
func (n *LogNode) Close() [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateRegistered {
		return nil
	}
	bufs := n.buffers
	n.buffers = nil
	n.state = StateClosed
	return bufs
}

// delete transitions the node straight to Deleted from whatever state it
// was in, returning any buffers it still held. Used by Manager.DeleteNode,
// which owns returning those buffers to the sink.
func (n *LogNode) delete() [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	bufs := n.buffers
	n.buffers = nil
	n.state = StateDeleted
	return bufs
}
