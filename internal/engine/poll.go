package engine

import (
	"context"
	"log/slog"
)

// PollOnce re-fetches orders and event config while connected and adopts
// whatever differs. It reports whether local state changed.
//
// Value-equal snapshots (same content in any key order) cause no local
// write and no notification. A pending menu edit is re-sent first.
func (e *Engine) PollOnce(ctx context.Context) bool {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	state, epoch := e.monitor.Current()
	if !state.CanSync() {
		return false
	}

	if e.Pending().Menu {
		e.pushMenu(ctx, "resync")
	}

	changed := e.refreshOrders(ctx, epoch)
	if e.refreshEvent(ctx, epoch) {
		changed = true
	}
	if changed {
		slog.Debug("poll adopted remote changes")
	}
	return changed
}
