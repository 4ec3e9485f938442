// Package store provides a SQLite-backed journal of render passes.
//
// Every committed pass is written with its unit count, the effects it applied
// (in commit order) and an optional canonical JSON snapshot of the host tree.
// Failed passes are written with their error code, message and fiber path.
//
// # Ordering
//
// Passes are keyed by (root_id, pass) where pass is the engine's logical pass
// sequence. Queries order by pass and effect ordinal, never by wall time, so
// two runs of the same scenario produce identical journals.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait up to 5s for locks
//   - foreign_keys=ON: enforce referential integrity
package store
