// Package store provides SQLite-backed durable storage for the café client's
// local snapshots.
//
// The store is a small key/value table. Every value is a JSON document
// encoded as canonical JSON, so rewriting an unchanged snapshot produces
// identical bytes.
//
// Logical keys:
//   - moa_menu: last known menu
//   - moa_orders: last known orders, newest first
//   - moa_offline_queue: orders awaiting remote confirmation, FIFO
//   - moa_event: event-mode configuration
//   - moa_pending_sync: admin edits not yet pushed to the remote store
//   - moa_lang_customer, moa_lang_admin: language preference per role
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: one writer at a time
//
// Snapshots (see snapshot.go) never surface decode errors to callers. A
// corrupt or missing document yields the caller-supplied default.
package store
