/*
Package wal implements the write-ahead log manager: a process-wide
registry of LogNodes keyed by storage-group identifier, bounded
buffer-pool admission with retry-and-reject backoff, and a background
force-sync scheduler that skips its sweep while the node is in read-only
mode.
*/
package wal
