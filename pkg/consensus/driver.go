// Package consensus implements the consensus driver: a node-local control
// loop that drives the local node's role between {Leader, Follower,
// Elector}, broadcasting heartbeats as Leader, watching for heartbeat
// staleness as Follower, and running randomized-timeout elections gated
// on quorum as Elector.
package consensus

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nimbusdb/core/pkg/clockutil"
	"github.com/nimbusdb/core/pkg/config"
	"github.com/nimbusdb/core/pkg/log"
	"github.com/nimbusdb/core/pkg/transport"
	"github.com/nimbusdb/core/pkg/types"
)

// LogManager is the read-only subset of pkg/logmanager.Manager the driver
// consults when comparing log positions during elections and heartbeats.
type LogManager interface {
	LastLogIndex() int64
	LastLogTerm() int64
	CommitLogIndex() int64
}

// Driver is one node's Consensus-Driver instance.
type Driver struct {
	cfg       config.Config
	clock     clockutil.Clock
	transport transport.Transport
	logMgr    LogManager

	self types.Node

	// mu is the term lock: every read-then-write of term, role, leader, or
	// votedTerm is serialized under it.
	mu        sync.Mutex
	term      int64
	role      types.Role
	leader    *types.Node
	votedTerm int64
	election  *electionRound

	hbMu                      sync.Mutex
	lastHeartbeatReceivedTime time.Time

	peerMu     sync.Mutex
	peers      []types.Node
	peerStates map[string]*PeerState

	// rnd generates election backoff jitter. It belongs to the Elector
	// loop only, which runs on a single goroutine per Driver, so it needs
	// no lock of its own (matching pkg/dns/resolver.go's per-instance
	// *rand.Rand, which makes the same assumption).
	rnd *rand.Rand

	// Cumulative counts metrics.Collector polls; see PeerCount and the
	// ElectionsStarted/ElectionsWon/HeartbeatsSent/HeartbeatsFailed
	// getters below.
	electionsStarted  atomic.Uint64
	electionsWon      atomic.Uint64
	heartbeatsSent    atomic.Uint64
	heartbeatsFailed  atomic.Uint64
}

// New creates a Driver starting in the Elector role.
func New(self types.Node, peers []types.Node, cfg config.Config, clock clockutil.Clock, tp transport.Transport, logMgr LogManager) *Driver {
	d := &Driver{
		cfg:        cfg,
		clock:      clock,
		transport:  tp,
		logMgr:     logMgr,
		self:       self,
		role:       types.RoleElector,
		peers:      append([]types.Node(nil), peers...),
		peerStates: make(map[string]*PeerState, len(peers)),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	d.lastHeartbeatReceivedTime = clock.Now()
	return d
}

// Role returns the node's current role.
func (d *Driver) Role() types.Role {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.role
}

// Term returns the node's current term.
func (d *Driver) Term() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.term
}

// Leader returns the node currently believed to be leader, or nil if none
// is known.
func (d *Driver) Leader() *types.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.leader == nil {
		return nil
	}
	l := *d.leader
	return &l
}

// Self returns this node's own identity.
func (d *Driver) Self() types.Node {
	return d.self
}

// PeerCount returns the number of peers currently known, for metrics
// collection.
func (d *Driver) PeerCount() int {
	d.peerMu.Lock()
	defer d.peerMu.Unlock()
	return len(d.peers)
}

// ElectionsStarted returns the cumulative number of election rounds this
// node has started.
func (d *Driver) ElectionsStarted() uint64 { return d.electionsStarted.Load() }

// ElectionsWon returns the cumulative number of election rounds this node
// has won.
func (d *Driver) ElectionsWon() uint64 { return d.electionsWon.Load() }

// HeartbeatsSent returns the cumulative number of heartbeats sent while
// this node has been Leader.
func (d *Driver) HeartbeatsSent() uint64 { return d.heartbeatsSent.Load() }

// HeartbeatsFailed returns the cumulative number of heartbeat sends that
// returned an error.
func (d *Driver) HeartbeatsFailed() uint64 { return d.heartbeatsFailed.Load() }

// Run drives the node's role loop until ctx is cancelled. Each runX
// function loops internally while its role still matches, returning
// control here only once the role has changed (or ctx ended), so Run's
// switch always re-reads the fresh role.
func (d *Driver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch d.Role() {
		case types.RoleLeader:
			d.runLeader(ctx)
		case types.RoleFollower:
			d.runFollower(ctx)
		default:
			d.runElector(ctx)
		}
	}
}

// runLeader runs the Leader role's loop: broadcast a heartbeat every
// HeartbeatInterval until the role changes.
func (d *Driver) runLeader(ctx context.Context) {
	for d.Role() == types.RoleLeader {
		d.broadcastHeartbeat(ctx)
		if !d.clock.Sleep(ctx, d.cfg.HeartbeatInterval()) {
			return
		}
	}
}

// broadcastHeartbeat sends one heartbeat sweep. Per-target ordering is
// sequential; if the role changes mid-sweep the remaining sends are
// aborted, and per-target send failures are logged without aborting the
// sweep.
func (d *Driver) broadcastHeartbeat(ctx context.Context) {
	term := d.Term()
	commitIdx := d.logMgr.CommitLogIndex()
	self := d.Self()

	d.peerMu.Lock()
	peersSnapshot := append([]types.Node(nil), d.peers...)
	allKnown := allIdentifiersKnown(self, peersSnapshot)
	d.peerMu.Unlock()

	for i := range peersSnapshot {
		if d.Role() != types.RoleLeader {
			return
		}

		peer := peersSnapshot[i]
		req := types.HeartbeatRequest{Term: term, CommitLogIndex: commitIdx, Leader: self}
		if !peer.HasIdentifier() {
			req.RequireIdentifier = true
		}
		if d.peerState(peer.Addr()).IdentifierConflict.Load() {
			req.RegenerateIdentifier = true
		}
		if peer.Blind && allKnown {
			req.NodeSet = append([]types.Node(nil), peersSnapshot...)
			d.clearBlind(peer.Addr())
		}

		logger := log.WithPeer(peer.Addr())
		d.heartbeatsSent.Add(1)
		d.transport.SendHeartbeat(ctx, peer, req, func(reply types.HeartbeatReply, err error) {
			if err != nil {
				d.heartbeatsFailed.Add(1)
				logger.Warn().Err(err).Msg("heartbeat send failed")
				return
			}
			if reply.Term > d.Term() {
				d.stepDownTo(reply.Term)
			}
		})
	}
}

// runFollower runs the Follower role's loop: sleep for ConnectionTimeout,
// then transition to Elector if no heartbeat arrived within that window.
func (d *Driver) runFollower(ctx context.Context) {
	for d.Role() == types.RoleFollower {
		if !d.clock.Sleep(ctx, d.cfg.ConnectionTimeout()) {
			return
		}

		d.hbMu.Lock()
		since := d.clock.Now().Sub(d.lastHeartbeatReceivedTime)
		d.hbMu.Unlock()

		if since >= d.cfg.ConnectionTimeout() {
			d.mu.Lock()
			if d.role == types.RoleFollower {
				d.role = types.RoleElector
				d.leader = nil
			}
			d.mu.Unlock()
		}
	}
}

// Heartbeat implements transport.Receiver: it is invoked when this node,
// as Follower or Elector, receives a heartbeat from a Leader.
func (d *Driver) Heartbeat(ctx context.Context, req types.HeartbeatRequest) (types.HeartbeatReply, error) {
	d.mu.Lock()
	if req.Term < d.term {
		term := d.term
		d.mu.Unlock()
		return types.HeartbeatReply{Term: term, Success: false}, nil
	}

	if req.Term > d.term {
		d.term = req.Term
	}
	d.role = types.RoleFollower
	leader := req.Leader
	d.leader = &leader
	term := d.term
	d.mu.Unlock()

	d.recordHeartbeatReceived()

	if len(req.NodeSet) > 0 {
		d.adoptMembership(req.NodeSet)
	}

	return types.HeartbeatReply{Term: term, Success: true}, nil
}

func (d *Driver) recordHeartbeatReceived() {
	d.hbMu.Lock()
	defer d.hbMu.Unlock()
	d.lastHeartbeatReceivedTime = d.clock.Now()
}

// adoptMembership replaces the known peer list with nodeSet (minus self)
// and clears this node's own blind flag, in response to a heartbeat that
// attached the full membership list.
func (d *Driver) adoptMembership(nodeSet []types.Node) {
	filtered := make([]types.Node, 0, len(nodeSet))
	for _, n := range nodeSet {
		if n.Addr() == d.self.Addr() {
			continue
		}
		filtered = append(filtered, n)
	}

	d.peerMu.Lock()
	d.peers = filtered
	d.peerMu.Unlock()

	d.self.Blind = false
}

// stepDownTo forces the node to Follower with no known leader, advancing
// term to at least newTerm. Called whenever a higher term is observed in
// any reply, per the vote-handler contract.
func (d *Driver) stepDownTo(newTerm int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if newTerm > d.term {
		d.term = newTerm
	}
	d.role = types.RoleFollower
	d.leader = nil
}

func (d *Driver) peerState(addr string) *PeerState {
	d.peerMu.Lock()
	defer d.peerMu.Unlock()
	ps, ok := d.peerStates[addr]
	if !ok {
		ps = &PeerState{}
		d.peerStates[addr] = ps
	}
	return ps
}

// MarkIdentifierConflict records that addr's assigned identifier collided
// with another node's, so the next heartbeat to it sets RegenerateIdentifier.
// Populating the identifier-conflict set is an external collaborator
// concern (identifier assignment is out of this specification's scope);
// this method only exposes the aux flag the Leader loop reads.
func (d *Driver) MarkIdentifierConflict(addr string) {
	d.peerState(addr).IdentifierConflict.Store(true)
}

func (d *Driver) clearBlind(addr string) {
	d.peerMu.Lock()
	defer d.peerMu.Unlock()
	for i := range d.peers {
		if d.peers[i].Addr() == addr {
			d.peers[i].Blind = false
			return
		}
	}
}

func allIdentifiersKnown(self types.Node, peers []types.Node) bool {
	if !self.HasIdentifier() {
		return false
	}
	for _, p := range peers {
		if !p.HasIdentifier() {
			return false
		}
	}
	return true
}

