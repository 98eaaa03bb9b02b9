/*
Package metrics provides Prometheus metrics collection and exposition for
the durability core. Metrics are registered at package init and exposed via
an HTTP handler for scraping.

# Metrics Catalog

Consensus driver:

  - nimbusdb_consensus_term: current term
  - nimbusdb_consensus_is_leader: 1 if this node believes itself Leader
  - nimbusdb_consensus_role{role}: 1 for the node's current role, 0 otherwise
  - nimbusdb_consensus_peers_total: known peer count
  - nimbusdb_elections_started_total / nimbusdb_elections_won_total
  - nimbusdb_heartbeats_sent_total / nimbusdb_heartbeats_failed_total

WAL manager:

  - nimbusdb_wal_nodes_registered: currently registered LogNodes
  - nimbusdb_wal_buffer_rejects_total: GetNode calls rejected past the
    admission threshold or cancelled mid-retry
  - nimbusdb_wal_force_sync_duration_seconds
  - nimbusdb_wal_read_only: 1 while in read-only mode

Buffer pool:

  - nimbusdb_bufpool_in_use / nimbusdb_bufpool_high_water / nimbusdb_bufpool_capacity

TV-Store:

  - nimbusdb_tvstore_rows_total
  - nimbusdb_tvstore_sort_duration_seconds / nimbusdb_tvstore_insert_duration_seconds

# Collection model

Collector polls Term/Role/peer count, WAL registry size, buffer pool occupancy,
and TV-Store row count on a fixed interval and Sets the corresponding
gauges — the same poll-and-Set pattern the teacher's Collector used for
Raft and node counts, rather than instrumenting every call site inline.
Event counters that do live on the hot path (elections started/won,
heartbeats sent/failed, buffer rejects) are tracked as atomic counters on
Driver and wal.Manager themselves and exposed as gauges polled the same
way, since pkg/metrics importing pkg/consensus and pkg/wal to read their
state rules out the reverse import an inline prometheus.Counter.Inc() call
from those packages would require.

The three duration histograms (force-sync sweep, TV-Store sort, TV-Store
batch insert) can't be polled — duration only exists at call time — so
NewCollector instead registers a plain func(time.Duration) callback on
wal.Manager and tvstore.Store the first time it is given a non-nil
instance of either. The callback closes over the histogram and lives in
this package, so wal and tvstore still never import pkg/metrics.

# Usage

	http.Handle("/metrics", metrics.Handler())
	http.Handle("/health", metrics.HealthHandler())
	http.Handle("/ready", metrics.ReadyHandler())
	http.Handle("/live", metrics.LivenessHandler())

	collector := metrics.NewCollector(driver, walMgr, pool, store)
	collector.Start()
	defer collector.Stop()
*/
package metrics
