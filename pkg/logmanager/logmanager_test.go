package logmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastLogIndexAndTermTrackMostRecentAppend(t *testing.T) {
	m := New()
	assert.Equal(t, int64(0), m.LastLogIndex())
	assert.Equal(t, int64(0), m.LastLogTerm())

	m.Append(1, 1)
	m.Append(1, 2)
	m.Append(2, 3)

	assert.Equal(t, int64(3), m.LastLogIndex())
	assert.Equal(t, int64(2), m.LastLogTerm())
}

func TestAppendPanicsOnOutOfOrderCoordinates(t *testing.T) {
	m := New()
	m.Append(2, 5)
	assert.Panics(t, func() { m.Append(1, 6) })
	assert.Panics(t, func() { m.Append(2, 5) })
}

func TestAdvanceCommitNeverMovesBackward(t *testing.T) {
	m := New()
	m.AdvanceCommit(10)
	assert.Equal(t, int64(10), m.CommitLogIndex())

	m.AdvanceCommit(4)
	assert.Equal(t, int64(10), m.CommitLogIndex())

	m.AdvanceCommit(20)
	assert.Equal(t, int64(20), m.CommitLogIndex())
}

func TestEntriesReturnsAscendingOrder(t *testing.T) {
	m := New()
	m.Append(1, 1)
	m.Append(1, 2)
	m.Append(2, 3)

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []LogEntry{{1, 1}, {1, 2}, {2, 3}}, entries)
}
