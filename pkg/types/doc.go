// Package types defines the wire-shaped data structures exchanged between
// nodes: node identity and role, and the heartbeat/election request and
// reply bodies. pkg/consensus and pkg/transport both depend on this
// package rather than on each other.
package types
