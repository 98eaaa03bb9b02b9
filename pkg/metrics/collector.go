package metrics

import (
	"time"

	"github.com/nimbusdb/core/pkg/bufpool"
	"github.com/nimbusdb/core/pkg/consensus"
	"github.com/nimbusdb/core/pkg/tvstore"
	"github.com/nimbusdb/core/pkg/types"
	"github.com/nimbusdb/core/pkg/wal"
)

// Collector periodically polls the durability core's collaborators and
// updates the gauge metrics in metrics.go, including the cumulative event
// counts (elections, heartbeats, buffer rejects) that Driver and wal.Manager
// track internally as atomics. Polling avoids pkg/consensus and pkg/wal
// needing to import pkg/metrics to increment a Counter inline.
type Collector struct {
	driver   *consensus.Driver
	walMgr   *wal.Manager
	pool     *bufpool.Pool
	store    *tvstore.Store
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a Collector. store may be nil if the caller has no
// single TV-Store to report row counts for (e.g. one store per shard,
// reported elsewhere).
//
// It also wires walMgr's force-sync timing and store's sort/insert timing
// into the corresponding histograms, since wal and tvstore can't import
// this package directly without creating an import cycle (this package
// already imports both to poll their gauges).
func NewCollector(driver *consensus.Driver, walMgr *wal.Manager, pool *bufpool.Pool, store *tvstore.Store) *Collector {
	if walMgr != nil {
		walMgr.SetForceSyncObserver(func(d time.Duration) { WALForceSyncDuration.Observe(d.Seconds()) })
	}
	if store != nil {
		store.SetSortObserver(func(d time.Duration) { TVStoreSortDuration.Observe(d.Seconds()) })
		store.SetInsertObserver(func(d time.Duration) { TVStoreInsertDuration.Observe(d.Seconds()) })
	}
	return &Collector{
		driver:   driver,
		walMgr:   walMgr,
		pool:     pool,
		store:    store,
		interval: 15 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling on a background goroutine until Stop is called.
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts polling.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectConsensusMetrics()
	c.collectWALMetrics()
	c.collectBufferPoolMetrics()
	c.collectTVStoreMetrics()
}

func (c *Collector) collectConsensusMetrics() {
	if c.driver == nil {
		return
	}

	ConsensusTerm.Set(float64(c.driver.Term()))
	ConsensusPeersTotal.Set(float64(c.driver.PeerCount()))

	role := c.driver.Role()
	isLeader := float64(0)
	if role == types.RoleLeader {
		isLeader = 1
	}
	ConsensusIsLeader.Set(isLeader)

	for _, r := range []types.Role{types.RoleLeader, types.RoleFollower, types.RoleElector} {
		value := float64(0)
		if r == role {
			value = 1
		}
		ConsensusRole.WithLabelValues(r.String()).Set(value)
	}

	ElectionsStartedTotal.Set(float64(c.driver.ElectionsStarted()))
	ElectionsWonTotal.Set(float64(c.driver.ElectionsWon()))
	HeartbeatsSentTotal.Set(float64(c.driver.HeartbeatsSent()))
	HeartbeatsFailedTotal.Set(float64(c.driver.HeartbeatsFailed()))
}

func (c *Collector) collectWALMetrics() {
	if c.walMgr == nil {
		return
	}

	WALNodesRegistered.Set(float64(c.walMgr.Len()))
	WALBufferRejectsTotal.Set(float64(c.walMgr.BufferRejects()))
	readOnly := float64(0)
	if c.walMgr.ReadOnly() {
		readOnly = 1
	}
	WALReadOnly.Set(readOnly)
}

func (c *Collector) collectBufferPoolMetrics() {
	if c.pool == nil {
		return
	}

	BufferPoolInUse.Set(float64(c.pool.InUse()))
	BufferPoolHighWater.Set(float64(c.pool.HighWater()))
	BufferPoolCapacity.Set(float64(c.pool.Capacity()))
}

func (c *Collector) collectTVStoreMetrics() {
	if c.store == nil {
		return
	}

	TVStoreRowsTotal.Set(float64(c.store.RowCount()))
}
