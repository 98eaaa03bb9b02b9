// Package logmanager provides a concrete LogManager collaborator: a
// read-only index of (term, index) log coordinates that the consensus
// driver compares against when answering vote requests and advertising
// its own last-log position in heartbeats. Appending log content and
// choosing what to commit belongs to the log-content writer, an external
// collaborator this package doesn't implement; Manager only tracks
// coordinates already decided elsewhere.
package logmanager

import (
	"sync"

	"github.com/google/btree"
)

// LogEntry is one (term, index) coordinate pair.
type LogEntry struct {
	Term  int64
	Index int64
}

func (e LogEntry) Less(than btree.Item) bool {
	o := than.(LogEntry)
	if e.Term != o.Term {
		return e.Term < o.Term
	}
	return e.Index < o.Index
}

// Manager holds an ordered set of log coordinates in a btree, which gives
// cheap ascending iteration for diagnostics and a natural place to add
// term-boundary lookups (e.g. "first index of term T") without a linear
// scan, should a future caller need one.
type Manager struct {
	mu        sync.RWMutex
	tree      *btree.BTree
	lastTerm  int64
	lastIndex int64
	commitIdx int64
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{tree: btree.New(32)}
}

// Append records a new log coordinate. Coordinates must be appended in
// strictly increasing (term, index) order; Append panics otherwise, since
// an out-of-order append indicates a Consensus-Driver bug rather than a
// condition callers are expected to recover from.
func (m *Manager) Append(term, index int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tree.Len() > 0 && (term < m.lastTerm || (term == m.lastTerm && index <= m.lastIndex)) {
		panic("logmanager: Append requires strictly increasing (term, index) coordinates")
	}

	m.tree.ReplaceOrInsert(LogEntry{Term: term, Index: index})
	m.lastTerm = term
	m.lastIndex = index
}

// AdvanceCommit moves the commit pointer forward to index. Calls that
// would move it backward are ignored.
func (m *Manager) AdvanceCommit(index int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index > m.commitIdx {
		m.commitIdx = index
	}
}

// LastLogIndex returns the index of the most recently appended entry, or 0
// if none have been appended.
func (m *Manager) LastLogIndex() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastIndex
}

// LastLogTerm returns the term of the most recently appended entry, or 0
// if none have been appended.
func (m *Manager) LastLogTerm() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastTerm
}

// CommitLogIndex returns the current commit pointer.
func (m *Manager) CommitLogIndex() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commitIdx
}

// Entries returns every recorded coordinate in ascending (term, index)
// order. It exists for diagnostics and tests; the Consensus-Driver never
// calls it.
func (m *Manager) Entries() []LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]LogEntry, 0, m.tree.Len())
	m.tree.Ascend(func(item btree.Item) bool {
		out = append(out, item.(LogEntry))
		return true
	})
	return out
}
