/*
Package consensus implements a Raft-style consensus driver: role
transitions between Leader, Follower, and Elector, heartbeat broadcast and
staleness detection, and randomized-timeout elections gated on quorum. It
depends on pkg/clockutil.Clock, pkg/transport.Transport, and a LogManager,
never on concrete implementations, so tests can run the whole state
machine deterministically against fakes.
*/
package consensus
