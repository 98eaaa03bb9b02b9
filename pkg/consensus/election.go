package consensus

import (
	"context"
	"sync"
	"time"

	"github.com/nimbusdb/core/pkg/log"
	"github.com/nimbusdb/core/pkg/types"
)

// electionRound holds the shared mutable state one election round needs:
// the remaining quorum count, and a latch on whether the round has
// terminated (by quorum or timeout) and whether it was won. wonCh is the
// channel a waiting goroutine blocks on to learn the round was won, in
// place of a condition variable.
type electionRound struct {
	term int64

	mu         sync.Mutex
	quorumLeft int
	terminated bool
	valid      bool

	wonCh chan struct{}
}

// runElector runs the Elector role's loop: run one election round, then
// sleep for ElectionLeast + random([0, ElectionRandom)) before
// the next attempt, until the role is no longer Elector. On exit it resets
// lastHeartbeatReceivedTime to prevent an immediate re-election flap.
func (d *Driver) runElector(ctx context.Context) {
	for d.Role() == types.RoleElector {
		select {
		case <-ctx.Done():
			return
		default:
		}

		d.runElectionRound(ctx)

		if d.Role() != types.RoleElector {
			break
		}

		least, randRange := d.cfg.ElectionBackoffRange()
		backoff := least
		if randRange > 0 {
			backoff += time.Duration(d.rnd.Int63n(int64(randRange)))
		}
		if !d.clock.Sleep(ctx, backoff) {
			return
		}
	}

	d.recordHeartbeatReceived()
}

// runElectionRound runs one election round: increment term, compute the
// quorum threshold, send a vote request to every peer, and wait up to
// ConnectionTimeout for quorum or timeout.
//
// The quorum threshold is N/2 (integer division), not N/2+1: the
// candidate's own implicit vote counts as already cast, so only N/2
// further affirmative votes are required to reach it.
func (d *Driver) runElectionRound(ctx context.Context) {
	d.electionsStarted.Add(1)

	d.mu.Lock()
	d.term++
	term := d.term
	clusterSize := len(d.peers) + 1
	quorum := clusterSize / 2
	round := &electionRound{term: term, quorumLeft: quorum, wonCh: make(chan struct{}, 1)}
	d.election = round
	d.mu.Unlock()

	logger := log.WithTerm(term)
	logger.Info().Int("quorum", quorum).Msg("starting election round")

	if quorum <= 0 {
		// Single-node cluster: the sole node becomes Leader immediately
		// upon entering Elector, no votes needed.
		round.mu.Lock()
		round.terminated = true
		round.valid = true
		round.mu.Unlock()
		d.finishElectionRound(term, round)
		return
	}

	lastIdx := d.logMgr.LastLogIndex()
	lastTerm := d.logMgr.LastLogTerm()
	req := types.ElectionRequest{Term: term, LastLogTerm: lastTerm, LastLogIndex: lastIdx}

	d.peerMu.Lock()
	peersSnapshot := append([]types.Node(nil), d.peers...)
	d.peerMu.Unlock()

	for _, peer := range peersSnapshot {
		peer := peer
		d.transport.StartElection(ctx, peer, req, func(reply types.ElectionReply, err error) {
			d.handleVoteReply(round, reply, err)
		})
	}

	timer := d.clock.NewTimer(d.cfg.ConnectionTimeout())
	select {
	case <-round.wonCh:
		timer.Stop()
	case <-timer.C():
	case <-ctx.Done():
		timer.Stop()
		return
	}

	round.mu.Lock()
	round.terminated = true
	won := round.valid
	round.mu.Unlock()

	if won {
		d.finishElectionRound(term, round)
	}
}

func (d *Driver) finishElectionRound(term int64, round *electionRound) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.election != round || d.term != term {
		return // superseded by a newer round or a higher observed term
	}
	d.role = types.RoleLeader
	self := d.self
	d.leader = &self
	d.electionsWon.Add(1)
	log.WithTerm(term).Info().Msg("won election, becoming leader")
}

// handleVoteReply implements the vote-handler contract: on an affirmative
// reply while the round has not terminated, decrement the
// quorum counter, declaring victory at zero. On observing a higher term in
// any reply, step down to Follower regardless of round state. Stale
// replies (round already terminated, or for a round this driver has moved
// past) are discarded.
func (d *Driver) handleVoteReply(round *electionRound, reply types.ElectionReply, err error) {
	if err != nil {
		log.WithTerm(round.term).Warn().Err(err).Msg("vote request failed")
		return
	}

	if reply.Term > d.Term() {
		d.stepDownTo(reply.Term)
		return
	}

	if !reply.Granted {
		return
	}

	round.mu.Lock()
	defer round.mu.Unlock()
	if round.terminated {
		return
	}
	round.quorumLeft--
	if round.quorumLeft <= 0 {
		round.terminated = true
		round.valid = true
		select {
		case round.wonCh <- struct{}{}:
		default:
		}
	}
}

// StartElection implements transport.Receiver: it is the voter's side of
// an election, invoked when this node receives a vote request from a
// candidate.
func (d *Driver) StartElection(ctx context.Context, req types.ElectionRequest) (types.ElectionReply, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if req.Term < d.term {
		return types.ElectionReply{Term: d.term, Granted: false}, nil
	}

	myLastTerm := d.logMgr.LastLogTerm()
	myLastIndex := d.logMgr.LastLogIndex()
	upToDate := req.LastLogTerm > myLastTerm ||
		(req.LastLogTerm == myLastTerm && req.LastLogIndex >= myLastIndex)

	if req.Term > d.term {
		d.term = req.Term
		d.role = types.RoleFollower
		d.leader = nil
	}

	granted := false
	if upToDate {
		switch {
		case d.votedTerm < req.Term:
			d.votedTerm = req.Term
			granted = true
		case d.votedTerm == req.Term:
			granted = true // idempotent re-grant within the same term
		}
	}

	return types.ElectionReply{Term: d.term, Granted: granted}, nil
}
