// Package journal provides a SQLite-backed audit log of storefront hook
// events.
//
// The journal records what the engine announced, not engine state: a
// session is one run of a registry (a scenario, a catalog load), and each
// event row is one fired hook stamped with the registry's logical seq.
// Restoring a registry from the journal is not supported.
//
// # Ordering
//
//   - Events are ordered by seq, never by wall time
//   - (session_id, seq) is unique; re-appending an event is a no-op
//   - Sessions are listed in creation order
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Events require their session
package journal
