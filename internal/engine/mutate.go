package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/store"
)

// AddOrder records a new order.
//
// The order appears in Orders and in the local store before any network
// attempt. When connected it is sent immediately; if that send fails, or
// when not connected at all, it is appended to the offline queue exactly
// once. Remote failures are not errors.
func (e *Engine) AddOrder(ctx context.Context, order ir.Order) error {
	if err := order.Validate(); err != nil {
		return orderError(ErrCodeInvalidOrder, order.ID, "%v", err)
	}
	if order.Status != ir.StatusPending {
		return orderError(ErrCodeInvalidOrder, order.ID, "new orders start pending, got %s", order.Status)
	}
	order = ir.CloneOrders([]ir.Order{order})[0]

	e.mu.Lock()
	if ir.FindOrder(e.orders, order.ID) >= 0 || e.queue.Contains(order.ID) {
		e.mu.Unlock()
		return orderError(ErrCodeDuplicateOrder, order.ID, "order id already used")
	}
	e.orders = append([]ir.Order{order}, e.orders...)
	ir.SortOrders(e.orders)
	e.persistOrdersLocked(ctx)
	canSync := e.monitor.State().CanSync()
	if canSync {
		e.inflight[order.ID] = order
	}
	e.mu.Unlock()
	e.emit(ChangeOrders)

	if !canSync {
		slog.Info("order queued while disconnected", "order_id", order.ID, "table", order.TableNumber)
		e.enqueue(ctx, order)
		return nil
	}

	sent := e.sendOrder(ctx, order.ID, func(latest ir.Order, sent bool) {
		if !sent {
			if err := e.queue.Append(ctx, latest); err != nil {
				logPersist("offline queue", err)
			}
		}
	})
	if sent {
		slog.Info("order sent", "order_id", order.ID, "table", order.TableNumber)
	} else {
		slog.Warn("order send failed; queued for retry", "order_id", order.ID)
		e.emit(ChangeQueue)
	}
	return nil
}

// sendOrder creates the tracked in-flight order id remotely and reports
// whether the store accepted it.
//
// settle runs under the state lock with the latest copy once the outcome
// is known, while the order is still tracked. After a successful send, a
// status set while the order was in flight is patched before tracking
// ends, so the PUT of the older snapshot never has the last word.
func (e *Engine) sendOrder(ctx context.Context, id string, settle func(latest ir.Order, sent bool)) bool {
	e.mu.Lock()
	order := e.inflight[id]
	e.mu.Unlock()

	sent := e.remote.CreateOrder(ctx, order).Reachable()

	e.mu.Lock()
	// Reset drops tracking; the order no longer exists locally.
	if latest, tracked := e.inflight[id]; tracked && settle != nil {
		settle(latest, sent)
	}
	if !sent {
		delete(e.inflight, id)
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()

	confirmed := order.Status
	for {
		e.mu.Lock()
		latest, tracked := e.inflight[id]
		if !tracked || latest.Status == confirmed {
			delete(e.inflight, id)
			e.mu.Unlock()
			return true
		}
		e.mu.Unlock()

		if !e.remote.PatchOrderStatus(ctx, id, latest.Status).Reachable() {
			slog.Warn("status set during send not patched; next poll reconciles", "order_id", id, "status", latest.Status)
			e.mu.Lock()
			delete(e.inflight, id)
			e.mu.Unlock()
			return true
		}
		confirmed = latest.Status
	}
}

func (e *Engine) enqueue(ctx context.Context, order ir.Order) {
	if err := e.queue.Append(ctx, order); err != nil {
		logPersist("offline queue", err)
	}
	e.emit(ChangeQueue)
}

// UpdateOrderStatus moves an order along its lifecycle.
//
// An order still in the offline queue, or being sent right now, has its
// queued or in-flight copy updated instead of being patched remotely; the
// pending send carries the new status. A failed remote patch is left for
// the next poll to reconcile.
func (e *Engine) UpdateOrderStatus(ctx context.Context, id string, status ir.OrderStatus) error {
	if !ir.ValidStatuses[status] {
		return orderError(ErrCodeInvalidTransition, id, "unknown status %q", status)
	}

	e.mu.Lock()
	i := ir.FindOrder(e.orders, id)
	if i < 0 {
		e.mu.Unlock()
		return orderError(ErrCodeUnknownOrder, id, "no such order")
	}
	from := e.orders[i].Status
	if !ir.CanTransition(from, status) {
		e.mu.Unlock()
		return &Error{
			Code:    ErrCodeInvalidTransition,
			OrderID: id,
			Message: "status change not allowed",
			Details: map[string]string{"from": string(from), "to": string(status)},
		}
	}
	e.orders[i].Status = status
	e.persistOrdersLocked(ctx)
	tracked, inflight := e.inflight[id]
	if inflight {
		tracked.Status = status
		e.inflight[id] = tracked
	}
	queued, err := e.queue.Update(ctx, id, func(o *ir.Order) { o.Status = status })
	if err != nil {
		logPersist("offline queue", err)
	}
	e.mu.Unlock()
	e.emit(ChangeOrders)

	if queued {
		e.emit(ChangeQueue)
	}
	if queued || inflight {
		return nil
	}

	if e.monitor.State().CanSync() {
		if !e.remote.PatchOrderStatus(ctx, id, status).Reachable() {
			slog.Warn("status update not sent; next poll reconciles", "order_id", id, "status", status)
		}
	}
	return nil
}

// UpdateEventConfig replaces the event configuration. When the remote write
// is not possible the change stays local and is re-sent in the next
// connected window.
func (e *Engine) UpdateEventConfig(ctx context.Context, cfg ir.EventConfig) error {
	if err := cfg.Validate(); err != nil {
		return &Error{Code: ErrCodeInvalidEventConfig, Message: err.Error()}
	}

	e.mu.Lock()
	e.event = cfg
	e.persistEventLocked(ctx)
	e.mu.Unlock()
	e.emit(ChangeEvent)

	if e.monitor.State().CanSync() {
		e.pushEvent(ctx, "update")
	} else {
		e.markPending(ctx, func(p *store.PendingSync) { p.Event = true })
	}
	return nil
}

// AddMenuItem appends an item to the menu.
func (e *Engine) AddMenuItem(ctx context.Context, item ir.MenuItem) error {
	if err := item.Validate(); err != nil {
		return menuError(ErrCodeInvalidMenuItem, item.ID, "%v", err)
	}
	return e.editMenu(ctx, func(menu []ir.MenuItem) ([]ir.MenuItem, error) {
		if ir.FindMenuItem(menu, item.ID) >= 0 {
			return nil, menuError(ErrCodeDuplicateMenuItem, item.ID, "menu item id already used")
		}
		return append(menu, ir.CloneMenu([]ir.MenuItem{item})...), nil
	})
}

// UpdateMenuItem replaces the item with the same id.
func (e *Engine) UpdateMenuItem(ctx context.Context, item ir.MenuItem) error {
	if err := item.Validate(); err != nil {
		return menuError(ErrCodeInvalidMenuItem, item.ID, "%v", err)
	}
	return e.editMenu(ctx, func(menu []ir.MenuItem) ([]ir.MenuItem, error) {
		i := ir.FindMenuItem(menu, item.ID)
		if i < 0 {
			return nil, menuError(ErrCodeUnknownMenuItem, item.ID, "no such menu item")
		}
		menu[i] = ir.CloneMenu([]ir.MenuItem{item})[0]
		return menu, nil
	})
}

// SetAvailability toggles whether an item can be ordered.
func (e *Engine) SetAvailability(ctx context.Context, id string, available bool) error {
	return e.editMenu(ctx, func(menu []ir.MenuItem) ([]ir.MenuItem, error) {
		i := ir.FindMenuItem(menu, id)
		if i < 0 {
			return nil, menuError(ErrCodeUnknownMenuItem, id, "no such menu item")
		}
		menu[i].IsAvailable = available
		return menu, nil
	})
}

// DeleteMenuItem removes an item. Placed orders keep their frozen copy.
func (e *Engine) DeleteMenuItem(ctx context.Context, id string) error {
	return e.editMenu(ctx, func(menu []ir.MenuItem) ([]ir.MenuItem, error) {
		i := ir.FindMenuItem(menu, id)
		if i < 0 {
			return nil, menuError(ErrCodeUnknownMenuItem, id, "no such menu item")
		}
		return slices.Delete(menu, i, i+1), nil
	})
}

// SetMenu replaces the whole menu.
func (e *Engine) SetMenu(ctx context.Context, menu []ir.MenuItem) error {
	seen := make(map[string]bool, len(menu))
	for _, item := range menu {
		if err := item.Validate(); err != nil {
			return menuError(ErrCodeInvalidMenuItem, item.ID, "%v", err)
		}
		if seen[item.ID] {
			return menuError(ErrCodeDuplicateMenuItem, item.ID, "menu item id appears twice")
		}
		seen[item.ID] = true
	}
	return e.editMenu(ctx, func([]ir.MenuItem) ([]ir.MenuItem, error) {
		out := ir.CloneMenu(menu)
		if out == nil {
			out = []ir.MenuItem{}
		}
		return out, nil
	})
}

// editMenu applies fn to a copy of the menu, stores the result locally and
// then pushes the full menu, or marks it pending when not connected.
func (e *Engine) editMenu(ctx context.Context, fn func([]ir.MenuItem) ([]ir.MenuItem, error)) error {
	e.mu.Lock()
	next, err := fn(ir.CloneMenu(e.menu))
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.menu = next
	e.persistMenuLocked(ctx)
	e.mu.Unlock()
	e.emit(ChangeMenu)

	if e.monitor.State().CanSync() {
		e.pushMenu(ctx, "edit")
	} else {
		e.markPending(ctx, func(p *store.PendingSync) { p.Menu = true })
	}
	return nil
}

// Reset restores the default menu and event config and clears orders, the
// offline queue and pending marks. An order mid-send is forgotten. Only local state is touched; the next
// bootstrap adopts whatever the remote store holds.
func (e *Engine) Reset(ctx context.Context) {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	e.mu.Lock()
	e.menu = ir.CloneMenu(e.defaultMenu)
	e.orders = []ir.Order{}
	e.event = e.defaultEvent
	e.pending = store.PendingSync{}
	clear(e.inflight)
	e.persistMenuLocked(ctx)
	e.persistOrdersLocked(ctx)
	e.persistEventLocked(ctx)
	logPersist("pending sync", e.local.SavePending(ctx, e.pending))
	e.mu.Unlock()

	if err := e.queue.Clear(ctx); err != nil {
		logPersist("offline queue", err)
	}
	e.bootstrapped = 0

	slog.Info("local state reset to defaults")
	for _, kind := range []ChangeKind{ChangeMenu, ChangeOrders, ChangeEvent, ChangeQueue} {
		e.emit(kind)
	}
}
