package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/moacafe/internal/ir"
)

// DrainReport describes one drain attempt.
type DrainReport struct {
	Strategy  DrainStrategy `json:"strategy"`
	Attempted bool          `json:"attempted"`
	Sent      []string      `json:"sent"`
	Failed    []string      `json:"failed"`
	Remaining int           `json:"remaining"`
}

// Drain flushes the offline queue when connected.
//
// With DrainProbe the head is sent first. If it fails the queue is left
// exactly as it was. If it succeeds every entry of the drained snapshot is
// removed and persisted at once, the rest are sent in order best-effort,
// and entries that then fail are reported in Failed but not re-queued.
//
// With DrainSequential each entry is removed only after its own send
// succeeds, and the drain stops at the first failure.
//
// Sends are strictly sequential. After any successful send the orders
// collection is re-fetched to reconcile.
func (e *Engine) Drain(ctx context.Context) DrainReport {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	report := DrainReport{Strategy: e.drain, Sent: []string{}, Failed: []string{}}

	state, epoch := e.monitor.Current()
	if !state.CanSync() || e.queue.Len() == 0 {
		report.Remaining = e.queue.Len()
		return report
	}
	report.Attempted = true

	if e.drain == DrainSequential {
		e.drainSequential(ctx, epoch, &report)
	} else {
		e.drainHeadFirst(ctx, epoch, &report)
	}

	if len(report.Sent) > 0 || len(report.Failed) > 0 {
		e.emit(ChangeQueue)
	}
	if len(report.Sent) > 0 {
		e.refreshOrders(ctx, epoch)
	}

	report.Remaining = e.queue.Len()
	slog.Info("offline queue drain finished",
		"strategy", report.Strategy,
		"sent", len(report.Sent),
		"failed", len(report.Failed),
		"remaining", report.Remaining,
	)
	return report
}

func (e *Engine) drainHeadFirst(ctx context.Context, epoch uint64, report *DrainReport) {
	entries := e.queue.Snapshot()
	head, ok := e.trackQueueHead()
	if !ok {
		return
	}

	if !e.sendOrder(ctx, head.ID, e.removeIfSent(ctx)) {
		slog.Info("offline queue drain aborted: head send failed",
			"order_id", head.ID,
			"queued", len(entries),
		)
		return
	}
	report.Sent = append(report.Sent, head.ID)

	if !e.monitor.Valid(epoch) {
		// Connectivity dropped during the head send: only the head is confirmed.
		return
	}

	for _, id := range e.takeQueued(ctx, orderIDs(entries[1:])) {
		if e.sendOrder(ctx, id, nil) {
			report.Sent = append(report.Sent, id)
			continue
		}
		report.Failed = append(report.Failed, id)
		slog.Warn("queued order not confirmed after successful head send; not re-queued", "order_id", id)
	}
}

func (e *Engine) drainSequential(ctx context.Context, epoch uint64, report *DrainReport) {
	for e.monitor.Valid(epoch) {
		head, ok := e.trackQueueHead()
		if !ok {
			return
		}
		if !e.sendOrder(ctx, head.ID, e.removeIfSent(ctx)) {
			slog.Info("offline queue drain stopped: send failed", "order_id", head.ID)
			return
		}
		report.Sent = append(report.Sent, head.ID)
	}
}

// trackQueueHead marks the queue head as in flight while leaving it queued.
func (e *Engine) trackQueueHead() (ir.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	head, ok := e.queue.Peek()
	if ok {
		e.inflight[head.ID] = head
	}
	return head, ok
}

// removeIfSent returns a settle callback that drops a confirmed order from
// the queue.
func (e *Engine) removeIfSent(ctx context.Context) func(ir.Order, bool) {
	return func(latest ir.Order, sent bool) {
		if sent {
			e.removeQueued(ctx, latest.ID)
		}
	}
}

// takeQueued moves the given queued orders to the in-flight set in one
// step and returns the ids it moved, in queue order.
func (e *Engine) takeQueued(ctx context.Context, ids []string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var taken []string
	for _, o := range e.queue.Snapshot() {
		if slices.Contains(ids, o.ID) {
			e.inflight[o.ID] = o
			taken = append(taken, o.ID)
		}
	}
	e.removeQueued(ctx, taken...)
	return taken
}

func (e *Engine) removeQueued(ctx context.Context, ids ...string) {
	if _, err := e.queue.Remove(ctx, ids...); err != nil {
		logPersist("offline queue", err)
	}
}

func orderIDs(orders []ir.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}
