// Package clockutil provides the Clock collaborator: a monotonic
// millisecond source for timeouts and a wall-clock source for
// lastHeartbeatReceivedTime. pkg/consensus and pkg/wal depend on the Clock
// interface rather than on time directly so election and backoff timing can
// be driven deterministically in tests.
package clockutil

import (
	"context"
	"time"
)

// Clock abstracts time so the consensus driver's timeouts and the WAL
// manager's buffer-admission backoff can be tested without real sleeps.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time
	// After returns a channel that fires once d has elapsed.
	After(d time.Duration) <-chan time.Time
	// NewTimer returns a resettable timer, mirroring time.NewTimer so
	// callers can Stop/Reset it the same way they would a *time.Timer.
	NewTimer(d time.Duration) Timer
	// Sleep blocks for d or until ctx is done, whichever comes first. It
	// reports false if ctx ended the wait early, the caller's cue to treat
	// this as an interruption rather than a normal timer expiry.
	Sleep(ctx context.Context, d time.Duration) bool
}

// Timer abstracts *time.Timer so fakes can fire it under test control.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// Real is the production Clock backed by the time package.
type Real struct{}

// Now implements Clock.
func (Real) Now() time.Time { return time.Now() }

// After implements Clock.
func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }

// NewTimer implements Clock.
func (Real) NewTimer(d time.Duration) Timer { return &realTimer{t: time.NewTimer(d)} }

// Sleep implements Clock.
func (Real) Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) C() <-chan time.Time        { return r.t.C }
func (r *realTimer) Stop() bool                 { return r.t.Stop() }
func (r *realTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }
