package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/moacafe/internal/remote"
)

// Bootstrap reconciles local and remote state at the start of an online
// session.
//
// One menu read decides the outcome:
//   - unavailable while online: permission-denied; local state untouched
//   - empty: seed the remote store with the current local menu, connected
//   - non-empty: the remote menu replaces the local one, connected
//
// After a successful read, orders and event config are fetched and adopted
// the same way. Admin edits still marked pending are re-sent instead of
// being overwritten. Running Bootstrap again against a populated store
// changes nothing.
func (e *Engine) Bootstrap(ctx context.Context) Connectivity {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	state, epoch := e.monitor.Current()
	if !state.Online {
		return state
	}

	res := e.remote.FetchMenu(ctx)
	if !e.observe(epoch, res.Outcome) {
		slog.Debug("bootstrap result discarded: connectivity changed", "outcome", res.Outcome)
		return e.monitor.State()
	}

	switch res.Outcome {
	case remote.OutcomeUnavailable:
		slog.Warn("remote store rejected bootstrap read while online; continuing on local data")
		return e.monitor.State()

	case remote.OutcomeEmpty:
		e.pushMenu(ctx, "seed")

	case remote.OutcomeOK:
		if e.Pending().Menu {
			e.pushMenu(ctx, "resync")
		} else {
			e.applyMenu(ctx, res.Items)
		}
	}
	e.bootstrapped = epoch

	e.refreshOrders(ctx, epoch)
	e.refreshEvent(ctx, epoch)

	final := e.monitor.State()
	slog.Info("bootstrap complete",
		"menu_outcome", res.Outcome,
		"db_status", final.DB,
		"queued", e.queue.Len(),
	)
	return final
}
