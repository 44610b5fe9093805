package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/store"
)

// applyMenu replaces the menu when its content differs and reports whether
// anything changed. Equal content causes no local write and no notification.
func (e *Engine) applyMenu(ctx context.Context, menu []ir.MenuItem) bool {
	e.mu.Lock()
	if ir.SameContent(ir.DomainMenu, e.menu, menu) {
		e.mu.Unlock()
		return false
	}
	e.menu = ir.CloneMenu(menu)
	e.persistMenuLocked(ctx)
	e.mu.Unlock()

	e.emit(ChangeMenu)
	return true
}

// applyRemoteOrders adopts a remote orders snapshot. Orders still waiting in
// the offline queue, or being created right now, stay in the view until the
// remote store returns them.
func (e *Engine) applyRemoteOrders(ctx context.Context, remoteOrders []ir.Order) bool {
	queued := e.queue.Snapshot()

	e.mu.Lock()
	view := mergeOrders(remoteOrders, queued, e.inflight)
	if ir.SameContent(ir.DomainOrders, e.orders, view) {
		e.mu.Unlock()
		return false
	}
	e.orders = view
	e.persistOrdersLocked(ctx)
	e.mu.Unlock()

	e.emit(ChangeOrders)
	return true
}

// applyEvent replaces the event config when it differs.
func (e *Engine) applyEvent(ctx context.Context, cfg ir.EventConfig) bool {
	e.mu.Lock()
	if e.event == cfg {
		e.mu.Unlock()
		return false
	}
	e.event = cfg
	e.persistEventLocked(ctx)
	e.mu.Unlock()

	e.emit(ChangeEvent)
	return true
}

// mergeOrders returns remote plus every local-only order, newest first.
func mergeOrders(remoteOrders, queued []ir.Order, inflight map[string]ir.Order) []ir.Order {
	view := ir.CloneOrders(remoteOrders)
	if view == nil {
		view = []ir.Order{}
	}
	for _, o := range queued {
		if ir.FindOrder(view, o.ID) < 0 {
			view = append(view, o)
		}
	}
	for id, o := range inflight {
		if ir.FindOrder(view, id) < 0 {
			view = append(view, ir.CloneOrders([]ir.Order{o})[0])
		}
	}
	ir.SortOrders(view)
	return view
}

// refreshOrders fetches orders and adopts them if the read is still current.
func (e *Engine) refreshOrders(ctx context.Context, epoch uint64) bool {
	res := e.remote.FetchOrders(ctx)
	if !e.observe(epoch, res.Outcome) || !res.Outcome.Reachable() {
		return false
	}
	return e.applyRemoteOrders(ctx, res.Orders)
}

// refreshEvent fetches the event config, or re-sends the local one when an
// admin edit is still pending.
func (e *Engine) refreshEvent(ctx context.Context, epoch uint64) bool {
	if e.Pending().Event {
		e.pushEvent(ctx, "resync")
		return false
	}
	res := e.remote.FetchEventConfig(ctx)
	if !e.observe(epoch, res.Outcome) || !res.Outcome.Reachable() {
		return false
	}
	return e.applyEvent(ctx, res.Config)
}

// pushMenu replaces the remote menu with the local one. A failure leaves the
// menu marked pending for the next connected window.
func (e *Engine) pushMenu(ctx context.Context, reason string) bool {
	menu := e.Menu()
	out := e.remote.SyncMenu(ctx, menu)
	ok := out.Reachable()
	if ok {
		slog.Info("menu pushed to remote store", "reason", reason, "items", len(menu))
	} else {
		slog.Warn("menu push failed; will resend when connected", "reason", reason)
	}
	e.markPending(ctx, func(p *store.PendingSync) { p.Menu = !ok })
	return ok
}

// pushEvent replaces the remote event config with the local one.
func (e *Engine) pushEvent(ctx context.Context, reason string) bool {
	cfg := e.EventConfig()
	ok := e.remote.ReplaceEventConfig(ctx, cfg).Reachable()
	if ok {
		slog.Info("event config pushed to remote store", "reason", reason)
	} else {
		slog.Warn("event config push failed; will resend when connected", "reason", reason)
	}
	e.markPending(ctx, func(p *store.PendingSync) { p.Event = !ok })
	return ok
}

// markPending updates and persists the pending-resync marks.
func (e *Engine) markPending(ctx context.Context, fn func(p *store.PendingSync)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.pending
	fn(&e.pending)
	if e.pending == before {
		return
	}
	logPersist("pending sync", e.local.SavePending(ctx, e.pending))
}

func (e *Engine) persistMenuLocked(ctx context.Context) {
	logPersist("menu", e.local.SaveMenu(ctx, e.menu))
}

func (e *Engine) persistOrdersLocked(ctx context.Context) {
	logPersist("orders", e.local.SaveOrders(ctx, e.orders))
}

func (e *Engine) persistEventLocked(ctx context.Context) {
	logPersist("event config", e.local.SaveEvent(ctx, e.event))
}

func logPersist(what string, err error) {
	if err != nil {
		slog.Error("local snapshot write failed", "snapshot", what, "error", err)
	}
}
