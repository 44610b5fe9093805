// Package engine implements the café client's synchronization engine.
//
// The engine owns the converged view of menu, orders and event configuration
// and decides, for every mutation, whether it goes straight to the remote
// document store or waits in the offline queue.
//
// ARCHITECTURE:
//
// Single Background Loop:
// Run is the only background goroutine. It reacts to connectivity changes
// reported through the Monitor and to a poll ticker. Bootstrap, PollOnce and
// Drain are serialized by one mutex, so two of them never talk to the same
// remote collection at the same time.
//
// Write Path:
// Every mutation is applied to memory and to the local store first, then,
// only when the device is online and the remote store is connected, sent
// remotely. Orders that cannot be sent go to the durable OfflineQueue.
// Menu and event edits are never queued; they are marked pending and
// re-sent during the next connected window.
//
// Connectivity:
// The Monitor combines the platform's online signal with the outcome of
// remote reads into disconnected, connected or permission-denied. Going
// offline advances an epoch; results of requests started under an older
// epoch are discarded.
//
// Consistency:
// The remote store is authoritative on every successful full-collection
// read. There is no per-field merge. Orders still waiting in the offline
// queue stay visible locally until the remote store returns them.
package engine
