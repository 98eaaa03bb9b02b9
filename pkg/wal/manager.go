// Package wal implements the write-ahead log manager: a process-wide
// registry mapping a storage-group identifier to an exclusive LogNode,
// bounded buffer-pool admission with backoff, and a background force-sync
// scheduler. The registry is a sync.Map, whose LoadOrStore gives a
// lock-free "insert-if-absent" without a registry-wide mutex.
package wal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nimbusdb/core/pkg/clockutil"
	"github.com/nimbusdb/core/pkg/config"
	"github.com/nimbusdb/core/pkg/log"
)

// BufferSupplier returns a buffer array or reports unavailable, matching
// the buffer pool's non-blocking acquisition contract. It must never block.
type BufferSupplier func() ([][]byte, bool)

// BufferSink accepts buffers back for return to the pool.
type BufferSink func([][]byte)

// Manager is a single process-wide WAL registry. Construction is cheap and
// safe to call more than once in a test harness: a single running Manager
// per process is a deployment convention, not something this type enforces
// itself.
type Manager struct {
	cfg         config.Config
	clock       clockutil.Clock
	defaultSink BufferSink

	registry sync.Map // identifier -> *LogNode

	readOnly          atomic.Bool
	loggedReadOnlyOnce atomic.Bool
	bufferRejects      atomic.Uint64

	forceSyncObserver func(time.Duration)

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// SetForceSyncObserver registers a callback invoked with the wall-clock
// duration of every forceSweep, nil by default (no observation). Intended
// for wiring a metrics histogram without this package importing pkg/metrics,
// which already imports pkg/wal to poll Manager's cumulative counters.
func (m *Manager) SetForceSyncObserver(obs func(time.Duration)) {
	m.forceSyncObserver = obs
}

// New creates a Manager. defaultSink receives buffers released by Close's
// sweep over every still-registered node; it has no per-call sink argument
// the way DeleteNode does, so the Manager is given one up front.
func New(cfg config.Config, clock clockutil.Clock, defaultSink BufferSink) *Manager {
	return &Manager{
		cfg:         cfg,
		clock:       clock,
		defaultSink: defaultSink,
		done:        make(chan struct{}),
	}
}

// GetNode returns the registered LogNode for identifier, creating one if
// absent. If a concurrent caller wins the race to create it, this call
// discards its local candidate and returns the winner unchanged. A newly
// created node must obtain buffers from supplier before it is usable: the
// supplier is retried with a fixed sleep until it succeeds or cumulative
// wait reaches RegisterBufferRejectThreshold, at which point the
// half-registered node is removed and ErrBufferExhausted is returned. If
// ctx is cancelled mid-retry, the node is likewise removed and ctx.Err()
// is returned. If a concurrent DeleteNode removes the node before the
// supplier succeeds, the freshly supplied buffers are returned to the
// default sink and ErrNodeDeletedDuringRegistration is returned instead of
// attaching buffers to a node no caller can observe again.
func (m *Manager) GetNode(ctx context.Context, identifier string, supplier BufferSupplier) (*LogNode, error) {
	candidate := newLogNode(identifier)
	actual, loaded := m.registry.LoadOrStore(identifier, candidate)
	node := actual.(*LogNode)
	if loaded {
		return node, nil
	}

	logger := log.WithGroupID(identifier).With().Str("generation", node.Generation()).Logger()
	sleepInterval := m.cfg.RegisterBufferSleepInterval()
	rejectThreshold := m.cfg.RegisterBufferRejectThreshold()

	var waited time.Duration
	loggedFirstFailure := false
	for {
		bufs, ok := supplier()
		if ok {
			if !node.attachBuffers(bufs) {
				// A concurrent DeleteNode already removed this node from
				// the registry and returned its (then-empty) buffers to
				// the sink; these newly supplied buffers never made it
				// into the registry, so return them the same way rather
				// than leaking them from the pool.
				if m.defaultSink != nil {
					m.defaultSink(bufs)
				}
				return nil, ErrNodeDeletedDuringRegistration
			}
			return node, nil
		}

		if !loggedFirstFailure {
			logger.Warn().Msg("buffer pool unavailable, retrying with backoff")
			loggedFirstFailure = true
		}

		if waited >= rejectThreshold {
			m.registry.CompareAndDelete(identifier, node)
			m.bufferRejects.Add(1)
			return nil, ErrBufferExhausted
		}

		if !m.clock.Sleep(ctx, sleepInterval) {
			m.registry.CompareAndDelete(identifier, node)
			m.bufferRejects.Add(1)
			return nil, ctx.Err()
		}
		waited += sleepInterval
	}
}

// DeleteNode atomically removes identifier's node, if any, invoking its
// delete() and handing the returned buffers to sink. Calling DeleteNode for
// an identifier with no registered node is a safe no-op.
func (m *Manager) DeleteNode(identifier string, sink BufferSink) {
	val, ok := m.registry.LoadAndDelete(identifier)
	if !ok {
		return
	}
	node := val.(*LogNode)
	bufs := node.delete()
	if len(bufs) > 0 && sink != nil {
		sink(bufs)
	}
}

// Close iterates every registered node, closing each and releasing its
// buffers to the Manager's default sink regardless of per-node errors, then
// clears the registry.
func (m *Manager) Close() {
	m.registry.Range(func(key, val any) bool {
		node := val.(*LogNode)
		bufs := node.Close()
		if len(bufs) > 0 && m.defaultSink != nil {
			m.defaultSink(bufs)
		}
		m.registry.Delete(key)
		return true
	})
}

// SetReadOnly toggles read-only mode. forceSweep skips its sweep while
// read-only, logging the transition into read-only exactly once per
// transition.
func (m *Manager) SetReadOnly(readOnly bool) {
	wasReadOnly := m.readOnly.Swap(readOnly)
	if readOnly && !wasReadOnly {
		m.loggedReadOnlyOnce.Store(false)
	}
}

// ReadOnly reports whether the manager is currently in read-only mode.
func (m *Manager) ReadOnly() bool {
	return m.readOnly.Load()
}

// Len reports the number of currently registered nodes, for metrics
// collection.
func (m *Manager) Len() int {
	n := 0
	m.registry.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// BufferRejects returns the cumulative number of GetNode calls rejected
// after exceeding the buffer admission threshold or having their context
// cancelled mid-retry, for metrics collection.
func (m *Manager) BufferRejects() uint64 { return m.bufferRejects.Load() }

// forceSweep invokes ForceSync on every registered node, logging but not
// propagating per-node IO errors, unless the manager is in read-only mode,
// in which case it logs the transition exactly once and does no IO.
func (m *Manager) forceSweep() {
	if m.readOnly.Load() {
		if !m.loggedReadOnlyOnce.Swap(true) {
			log.WithComponent("wal").Info().Msg("entering read-only mode, skipping force-sync sweep")
		}
		return
	}

	start := time.Now()
	m.registry.Range(func(_, val any) bool {
		node := val.(*LogNode)
		if err := node.ForceSync(); err != nil {
			log.WithGroupID(node.Identifier()).Error().Err(err).Msg("force-sync failed")
		}
		return true
	})
	if m.forceSyncObserver != nil {
		m.forceSyncObserver(time.Since(start))
	}
}

// Start schedules forceSweep every ForceWalPeriod. If WAL is disabled, or
// the period is zero, Start is a no-op. Start must be called at most once.
func (m *Manager) Start(ctx context.Context) {
	if !m.cfg.EnableWAL {
		return
	}
	period := m.cfg.ForceWalPeriod()
	if period <= 0 {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	go func() {
		defer close(m.done)
		for m.clock.Sleep(runCtx, period) {
			m.forceSweep()
		}
	}()
}

// Stop shuts the scheduler down, waiting up to a 30s grace period, then
// calls Close. Stop is safe to call even if Start was never called (or was
// a no-op because WAL is disabled).
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
			select {
			case <-m.done:
			case <-time.After(30 * time.Second):
				log.WithComponent("wal").Warn().Msg("scheduler did not stop within grace period")
			}
		}
		m.Close()
	})
}
