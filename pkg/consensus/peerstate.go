package consensus

import "sync/atomic"

// PeerState holds per-node auxiliary flags the Leader loop consults before
// each heartbeat: whether the target has been marked as having an
// identifier conflict. Kept as atomics rather than under Driver's term
// lock since they are read and written independently of term/role/leader
// state.
type PeerState struct {
	IdentifierConflict atomic.Bool
}
