package engine

import (
	"context"
	"slices"
	"sync"

	"github.com/roach88/moacafe/internal/ir"
)

// QueuePersister saves the offline queue. *store.Snapshots implements it.
type QueuePersister interface {
	SaveQueue(ctx context.Context, queue []ir.Order) error
}

// OfflineQueue is a durable FIFO of orders awaiting remote confirmation.
//
// The queue is append-only except for removal of entries whose send was
// confirmed (or that a verified head-first drain cleared). It never reorders or
// deduplicates; keeping duplicates out is the engine's job.
//
// Every mutation persists the whole queue before returning. A failed save
// leaves the in-memory queue updated and reports the error.
//
// Thread-safety: all methods are safe for concurrent use.
type OfflineQueue struct {
	mu      sync.Mutex
	entries []ir.Order
	persist QueuePersister
}

// NewOfflineQueue creates a queue holding the given entries, typically the
// snapshot loaded at startup.
func NewOfflineQueue(persist QueuePersister, entries []ir.Order) *OfflineQueue {
	return &OfflineQueue{
		entries: ir.CloneOrders(entries),
		persist: persist,
	}
}

// Append adds an order at the back of the queue.
func (q *OfflineQueue) Append(ctx context.Context, order ir.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, ir.CloneOrders([]ir.Order{order})[0])
	return q.saveLocked(ctx)
}

// Peek returns the head of the queue.
func (q *OfflineQueue) Peek() (ir.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return ir.Order{}, false
	}
	return ir.CloneOrders(q.entries[:1])[0], true
}

// Snapshot returns a copy of the queue in FIFO order. Never nil.
func (q *OfflineQueue) Snapshot() []ir.Order {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := ir.CloneOrders(q.entries)
	if out == nil {
		out = []ir.Order{}
	}
	return out
}

// Len returns the number of queued orders.
func (q *OfflineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Contains reports whether an order with id is queued.
func (q *OfflineQueue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return ir.FindOrder(q.entries, id) >= 0
}

// Remove drops the first queued entry for each id and persists the queue.
// It returns how many entries were removed.
func (q *OfflineQueue) Remove(ctx context.Context, ids ...string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	for _, id := range ids {
		if i := ir.FindOrder(q.entries, id); i >= 0 {
			q.entries = slices.Delete(q.entries, i, i+1)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, q.saveLocked(ctx)
}

// Update applies fn to the queued order with id. It reports whether the
// order was found.
func (q *OfflineQueue) Update(ctx context.Context, id string, fn func(*ir.Order)) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := ir.FindOrder(q.entries, id)
	if i < 0 {
		return false, nil
	}
	fn(&q.entries[i])
	return true, q.saveLocked(ctx)
}

// Clear empties the queue and persists the empty queue.
func (q *OfflineQueue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = nil
	return q.saveLocked(ctx)
}

func (q *OfflineQueue) saveLocked(ctx context.Context) error {
	if q.persist == nil {
		return nil
	}
	snapshot := ir.CloneOrders(q.entries)
	if snapshot == nil {
		snapshot = []ir.Order{}
	}
	return q.persist.SaveQueue(ctx, snapshot)
}
