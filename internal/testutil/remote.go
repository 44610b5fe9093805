package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/remote"
)

// Remote operation names recorded by ScriptedRemote.
const (
	OpFetchMenu    = "fetch-menu"
	OpSyncMenu     = "sync-menu"
	OpFetchOrders  = "fetch-orders"
	OpCreateOrder  = "create-order"
	OpPatchStatus  = "patch-status"
	OpFetchEvent   = "fetch-event"
	OpReplaceEvent = "replace-event"
)

// Call is one recorded remote operation.
type Call struct {
	Op string
	ID string // order id for create-order and patch-status
}

// ScriptedRemote is an in-memory stand-in for the remote gateway.
//
// It keeps a real document state (menu, orders in creation order, event
// config) so data round-trips, records every call, and fails on demand:
// SetDown fails everything, FailNext fails the next n calls of one
// operation, FailOrder fails create-order for specific ids.
//
// Thread-safety: all methods are safe for concurrent use.
type ScriptedRemote struct {
	mu        sync.Mutex
	menu      []ir.MenuItem
	orders    []ir.Order
	event     *ir.EventConfig
	down      bool
	failNext  map[string]int
	failOrder map[string]bool
	reverse   bool
	calls     []Call
	onCall    func(op string)
}

// NewScriptedRemote creates an empty, reachable remote.
func NewScriptedRemote() *ScriptedRemote {
	return &ScriptedRemote{
		failNext:  map[string]int{},
		failOrder: map[string]bool{},
	}
}

// SetDown makes every call return OutcomeUnavailable.
func (r *ScriptedRemote) SetDown(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down = down
}

// FailNext makes the next n calls of op return OutcomeUnavailable.
func (r *ScriptedRemote) FailNext(op string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext[op] = n
}

// FailOrder makes create-order fail for the given ids until cleared.
func (r *ScriptedRemote) FailOrder(fail bool, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.failOrder[id] = fail
	}
}

// ReverseOrders makes FetchOrders return orders newest-created first, to
// show that list order from the store does not matter.
func (r *ScriptedRemote) ReverseOrders(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reverse = on
}

// OnCall registers a hook that runs at the start of every call, outside
// the remote's lock. Tests use it to flip connectivity mid-request.
func (r *ScriptedRemote) OnCall(fn func(op string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCall = fn
}

// SeedMenu stores a menu as if another client had written it.
func (r *ScriptedRemote) SeedMenu(menu []ir.MenuItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.menu = ir.CloneMenu(menu)
}

// SeedOrders stores orders as if another client had created them.
func (r *ScriptedRemote) SeedOrders(orders ...ir.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		r.upsertLocked(o)
	}
}

// SeedEvent stores an event config.
func (r *ScriptedRemote) SeedEvent(cfg ir.EventConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event = &cfg
}

// RemoteMenu returns the stored menu.
func (r *ScriptedRemote) RemoteMenu() []ir.MenuItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ir.CloneMenu(r.menu)
}

// RemoteOrders returns the stored orders in creation order.
func (r *ScriptedRemote) RemoteOrders() []ir.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ir.CloneOrders(r.orders)
}

// RemoteEvent returns the stored event config, if any.
func (r *ScriptedRemote) RemoteEvent() (ir.EventConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.event == nil {
		return ir.EventConfig{}, false
	}
	return *r.event, true
}

// Calls returns the recorded calls.
func (r *ScriptedRemote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Count returns how many calls of op were made.
func (r *ScriptedRemote) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (r *ScriptedRemote) ResetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// begin records a call and reports whether it should fail.
func (r *ScriptedRemote) begin(op, id string) bool {
	r.mu.Lock()
	hook := r.onCall
	r.mu.Unlock()
	if hook != nil {
		hook(op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: op, ID: id})
	if r.down {
		return true
	}
	if op == OpCreateOrder && r.failOrder[id] {
		return true
	}
	if n := r.failNext[op]; n > 0 {
		r.failNext[op] = n - 1
		return true
	}
	return false
}

func (r *ScriptedRemote) upsertLocked(o ir.Order) {
	o = ir.CloneOrders([]ir.Order{o})[0]
	if i := ir.FindOrder(r.orders, o.ID); i >= 0 {
		r.orders[i] = o
		return
	}
	r.orders = append(r.orders, o)
}

// FetchMenu implements engine.Remote.
func (r *ScriptedRemote) FetchMenu(ctx context.Context) remote.MenuResult {
	if r.begin(OpFetchMenu, "") {
		return remote.MenuResult{Outcome: remote.OutcomeUnavailable}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.menu) == 0 {
		return remote.MenuResult{Outcome: remote.OutcomeEmpty}
	}
	return remote.MenuResult{Outcome: remote.OutcomeOK, Items: ir.CloneMenu(r.menu)}
}

// SyncMenu implements engine.Remote.
func (r *ScriptedRemote) SyncMenu(ctx context.Context, menu []ir.MenuItem) remote.Outcome {
	if r.begin(OpSyncMenu, "") {
		return remote.OutcomeUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.menu = ir.CloneMenu(menu)
	return remote.OutcomeOK
}

// FetchOrders implements engine.Remote.
func (r *ScriptedRemote) FetchOrders(ctx context.Context) remote.OrdersResult {
	if r.begin(OpFetchOrders, "") {
		return remote.OrdersResult{Outcome: remote.OutcomeUnavailable}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.orders) == 0 {
		return remote.OrdersResult{Outcome: remote.OutcomeEmpty, Orders: []ir.Order{}}
	}
	out := ir.CloneOrders(r.orders)
	if r.reverse {
		slices.Reverse(out)
	}
	return remote.OrdersResult{Outcome: remote.OutcomeOK, Orders: out}
}

// CreateOrder implements engine.Remote.
func (r *ScriptedRemote) CreateOrder(ctx context.Context, order ir.Order) remote.Outcome {
	if r.begin(OpCreateOrder, order.ID) {
		return remote.OutcomeUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertLocked(order)
	return remote.OutcomeOK
}

// PatchOrderStatus implements engine.Remote.
func (r *ScriptedRemote) PatchOrderStatus(ctx context.Context, id string, status ir.OrderStatus) remote.Outcome {
	if r.begin(OpPatchStatus, id) {
		return remote.OutcomeUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := ir.FindOrder(r.orders, id); i >= 0 {
		r.orders[i].Status = status
	}
	return remote.OutcomeOK
}

// FetchEventConfig implements engine.Remote.
func (r *ScriptedRemote) FetchEventConfig(ctx context.Context) remote.EventResult {
	if r.begin(OpFetchEvent, "") {
		return remote.EventResult{Outcome: remote.OutcomeUnavailable}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.event == nil {
		return remote.EventResult{Outcome: remote.OutcomeEmpty, Config: remote.DefaultEventConfig()}
	}
	return remote.EventResult{Outcome: remote.OutcomeOK, Config: *r.event}
}

// ReplaceEventConfig implements engine.Remote.
func (r *ScriptedRemote) ReplaceEventConfig(ctx context.Context, cfg ir.EventConfig) remote.Outcome {
	if r.begin(OpReplaceEvent, "") {
		return remote.OutcomeUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event = &cfg
	return remote.OutcomeOK
}
