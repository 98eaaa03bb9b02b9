// Package clockutil isolates wall-clock and timer access behind the Clock
// interface so consensus and WAL timing (heartbeats, election backoff,
// buffer-admission retries) can be exercised deterministically in tests via
// Fake instead of real sleeps.
package clockutil
