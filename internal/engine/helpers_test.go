package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/store"
	"github.com/roach88/moacafe/internal/testutil"
)

func defaultTestMenu() []ir.MenuItem {
	return []ir.MenuItem{
		{ID: "c1", NameEN: "MOA Signature Latte", NameID: "Kopi Susu MOA", Price: 25000,
			Category: ir.CategoryCoffee, HealthyScore: 6, Ingredients: []string{"Espresso", "Milk"}, IsAvailable: true},
		{ID: "s1", NameEN: "Butter Croissant", NameID: "Croissant Mentega", Price: 18000,
			Category: ir.CategorySnacks, HealthyScore: 3, Ingredients: []string{"Butter"}, IsAvailable: true},
	}
}

func remoteTestMenu() []ir.MenuItem {
	return []ir.MenuItem{
		{ID: "r1", NameEN: "Remote Americano", NameID: "Americano", Price: 20000,
			Category: ir.CategoryCoffee, HealthyScore: 8, Ingredients: []string{"Espresso", "Water"}, IsAvailable: true},
	}
}

// testOrder builds a pending order with one line of the latte.
func testOrder(id string, table int, ts int64) ir.Order {
	items := []ir.CartItem{{
		MenuItem:   defaultTestMenu()[0],
		CartID:     "cart-" + id,
		Quantity:   2,
		SugarLevel: ir.Sugar50,
		IceLevel:   ir.IceLess,
	}}
	return ir.NewOrder(id, table, items, ir.PaymentCash, ts)
}

type testEnv struct {
	engine *Engine
	remote *testutil.ScriptedRemote
	db     *store.Store
	snaps  *store.Snapshots
}

// newTestEnv creates an engine over a fresh SQLite store and a scripted
// remote.
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := testutil.NewScriptedRemote()
	snaps := store.NewSnapshots(db)
	all := append([]Option{WithDefaultMenu(defaultTestMenu())}, opts...)
	e := New(context.Background(), r, snaps, all...)
	return &testEnv{engine: e, remote: r, db: db, snaps: snaps}
}

func (env *testEnv) lastSeq(t *testing.T) int64 {
	t.Helper()
	seq, err := env.db.LastSeq(context.Background())
	require.NoError(t, err)
	return seq
}

// changeRecorder collects change notifications.
type changeRecorder struct {
	mu      sync.Mutex
	changes []Change
}

func record(e *Engine) *changeRecorder {
	rec := &changeRecorder{}
	e.Subscribe(func(c Change) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.changes = append(rec.changes, c)
	})
	return rec
}

func (r *changeRecorder) kinds() []ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChangeKind, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Kind
	}
	return out
}

func (r *changeRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = nil
}

func ids(orders []ir.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}
