// Package store keeps registry snapshots in SQLite.
//
// A snapshot is the full registry at one point in time, in List order. Only
// the registry is persisted; the attendance queue, operation log and
// priority heap live and die with their session.
//
// # Ordering
//
// Snapshots are numbered by seq, a monotonically increasing integer assigned
// inside the write transaction. "Latest" means highest seq, never newest
// timestamp. Patients within a snapshot are ordered by position.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Failures to open or query the database wrap engine.ErrStorageUnavailable.
package store
