package remote

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/roach88/moacafe/internal/ir"
)

const menuPath = "/menu.json"

// MenuResult is the outcome of FetchMenu. Items is non-nil for OutcomeOK.
type MenuResult struct {
	Outcome Outcome
	Items   []ir.MenuItem
}

// FetchMenu reads the menu collection.
//
// OutcomeEmpty means the remote store holds no menu and should be seeded:
// the path is null or the collection has no non-null elements.
// OutcomeUnavailable means the caller should keep its local cache. A stored
// menu in which no item is valid is unavailable, never empty, so it is not
// overwritten by a seed.
func (g *Gateway) FetchMenu(ctx context.Context) MenuResult {
	res := g.Do(ctx, http.MethodGet, menuPath, nil)
	if res.Outcome != OutcomeOK {
		return MenuResult{Outcome: res.Outcome}
	}
	items, stored, err := decodeCollection("menu", res.Data, ir.MenuItem.Validate)
	if err != nil {
		slog.Warn("remote menu malformed", "error", err)
		return MenuResult{Outcome: OutcomeUnavailable}
	}
	if stored == 0 {
		return MenuResult{Outcome: OutcomeEmpty}
	}
	if len(items) == 0 {
		slog.Warn("remote menu has no valid items; keeping local menu", "stored", stored)
		return MenuResult{Outcome: OutcomeUnavailable}
	}
	return MenuResult{Outcome: OutcomeOK, Items: items}
}

// SyncMenu replaces the remote menu wholesale with a map keyed by item id.
// There is no per-item merge: the last writer wins for the whole collection.
func (g *Gateway) SyncMenu(ctx context.Context, menu []ir.MenuItem) Outcome {
	byID := make(map[string]ir.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}
	return g.Do(ctx, http.MethodPut, menuPath, byID).Outcome
}
