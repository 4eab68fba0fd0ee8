// Package store provides SQLite-backed document storage for UniClaim.
//
// The layout mirrors the hosted document database the mobile and web clients
// write to:
//   - Posts: item reports, each carrying its claim history as a JSON array
//   - Conversations: chat threads referencing a post by ID (not a foreign key)
//   - Messages: chat messages, deleted with their conversation
//
// # Transactions
//
// UpdatePost is the only way to modify a post's claim history or turnover
// details. It reads the post, hands it to a mutate function and writes the
// result back inside a single transaction, so concurrent claim updates never
// interleave.
//
// # Ordering
//
// All list queries order by created_at then id, so scans over messages are
// deterministic across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Messages cascade with their conversation
package store
