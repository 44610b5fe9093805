package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/remote"
	"github.com/roach88/moacafe/internal/store"
)

// DefaultPollInterval is how often orders and event config are re-fetched
// while connected.
const DefaultPollInterval = 5 * time.Second

// Remote is the part of the remote gateway the engine uses.
// Implemented by *remote.Gateway and testutil.ScriptedRemote.
type Remote interface {
	FetchMenu(ctx context.Context) remote.MenuResult
	SyncMenu(ctx context.Context, menu []ir.MenuItem) remote.Outcome
	FetchOrders(ctx context.Context) remote.OrdersResult
	CreateOrder(ctx context.Context, order ir.Order) remote.Outcome
	PatchOrderStatus(ctx context.Context, id string, status ir.OrderStatus) remote.Outcome
	FetchEventConfig(ctx context.Context) remote.EventResult
	ReplaceEventConfig(ctx context.Context, cfg ir.EventConfig) remote.Outcome
}

// Local is the durable snapshot store. Implemented by *store.Snapshots.
// Loads never fail; they fall back to the supplied defaults.
type Local interface {
	QueuePersister
	LoadMenu(ctx context.Context, def []ir.MenuItem) []ir.MenuItem
	SaveMenu(ctx context.Context, menu []ir.MenuItem) error
	LoadOrders(ctx context.Context) []ir.Order
	SaveOrders(ctx context.Context, orders []ir.Order) error
	LoadQueue(ctx context.Context) []ir.Order
	LoadEvent(ctx context.Context, def ir.EventConfig) ir.EventConfig
	SaveEvent(ctx context.Context, cfg ir.EventConfig) error
	LoadPending(ctx context.Context) store.PendingSync
	SavePending(ctx context.Context, p store.PendingSync) error
}

// DrainStrategy selects how the offline queue is flushed.
type DrainStrategy string

const (
	// DrainProbe sends the head first; on success it clears the whole
	// queue and sends the rest best-effort.
	DrainProbe DrainStrategy = "probe"

	// DrainSequential sends one entry at a time and removes each only after
	// its own confirmed send, stopping at the first failure.
	DrainSequential DrainStrategy = "sequential"
)

// ParseDrainStrategy validates a strategy name.
func ParseDrainStrategy(s string) (DrainStrategy, error) {
	switch DrainStrategy(s) {
	case DrainProbe, DrainSequential:
		return DrainStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown drain strategy %q (want probe or sequential)", s)
	}
}

// Engine is the synchronization engine.
//
// Thread-safety model:
//   - Mutations and accessors: safe from any goroutine
//   - Bootstrap, PollOnce, Drain: safe from any goroutine, serialized by syncMu
//   - Run: must be called from exactly one goroutine
//
// Lock order: syncMu before mu. mu is never held across a remote call.
type Engine struct {
	remote  Remote
	local   Local
	monitor *Monitor
	queue   *OfflineQueue
	clock   *Clock

	pollInterval time.Duration
	drain        DrainStrategy
	defaultMenu  []ir.MenuItem
	defaultEvent ir.EventConfig
	online       bool

	syncMu       sync.Mutex
	bootstrapped uint64 // epoch of the last successful bootstrap

	mu       sync.RWMutex
	menu     []ir.MenuItem
	orders   []ir.Order
	event    ir.EventConfig
	pending  store.PendingSync
	inflight map[string]ir.Order // orders being created remotely right now

	subsMu  sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithPollInterval sets the poll interval. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithDrainStrategy selects the offline-queue drain strategy.
func WithDrainStrategy(s DrainStrategy) Option {
	return func(e *Engine) {
		e.drain = s
	}
}

// WithDefaultMenu sets the menu used when nothing is cached locally. It is
// also what Reset restores and what an empty remote store is seeded with on
// a fresh device.
func WithDefaultMenu(menu []ir.MenuItem) Option {
	return func(e *Engine) {
		e.defaultMenu = ir.CloneMenu(menu)
	}
}

// WithDefaultEventConfig sets the event config used when nothing is cached.
func WithDefaultEventConfig(cfg ir.EventConfig) Option {
	return func(e *Engine) {
		e.defaultEvent = cfg
	}
}

// WithInitialOnline sets the platform online flag at construction.
// Default: true.
func WithInitialOnline(online bool) Option {
	return func(e *Engine) {
		e.online = online
	}
}

// New creates an engine and loads the local snapshots.
// No remote request is made until Bootstrap or Run.
func New(ctx context.Context, r Remote, l Local, opts ...Option) *Engine {
	e := &Engine{
		remote:       r,
		local:        l,
		clock:        NewClock(),
		pollInterval: DefaultPollInterval,
		drain:        DrainProbe,
		defaultMenu:  []ir.MenuItem{},
		defaultEvent: ir.DefaultEventConfig(),
		online:       true,
		inflight:     make(map[string]ir.Order),
		subs:         make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.defaultMenu == nil {
		e.defaultMenu = []ir.MenuItem{}
	}
	e.monitor = NewMonitor(e.online)
	e.menu = l.LoadMenu(ctx, e.defaultMenu)
	e.orders = l.LoadOrders(ctx)
	ir.SortOrders(e.orders)
	e.event = l.LoadEvent(ctx, e.defaultEvent)
	e.pending = l.LoadPending(ctx)
	e.queue = NewOfflineQueue(l, l.LoadQueue(ctx))

	slog.Debug("engine loaded local snapshots",
		"menu_items", len(e.menu),
		"orders", len(e.orders),
		"queued", e.queue.Len(),
		"pending_menu", e.pending.Menu,
		"pending_event", e.pending.Event,
	)
	return e
}

// Monitor returns the connectivity monitor.
func (e *Engine) Monitor() *Monitor {
	return e.monitor
}

// Queue returns the offline queue.
func (e *Engine) Queue() *OfflineQueue {
	return e.queue
}

// PollInterval returns the configured poll interval.
func (e *Engine) PollInterval() time.Duration {
	return e.pollInterval
}

// DrainStrategy returns the configured drain strategy.
func (e *Engine) DrainStrategy() DrainStrategy {
	return e.drain
}

// DefaultMenu returns a copy of the compiled-in default menu.
func (e *Engine) DefaultMenu() []ir.MenuItem {
	return ir.CloneMenu(e.defaultMenu)
}

// Connectivity returns the current connectivity state.
func (e *Engine) Connectivity() Connectivity {
	return e.monitor.State()
}

// SetOnline forwards a platform online/offline transition to the monitor.
// Run picks the change up and bootstraps when coming back online.
func (e *Engine) SetOnline(online bool) {
	if e.monitor.SetOnline(online) {
		slog.Info("platform connectivity changed", "online", online)
		e.emit(ChangeConnectivity)
	}
}

// Menu returns a copy of the current menu.
func (e *Engine) Menu() []ir.MenuItem {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ir.CloneMenu(e.menu)
}

// Orders returns a copy of the current orders, newest first.
func (e *Engine) Orders() []ir.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ir.CloneOrders(e.orders)
}

// EventConfig returns the current event configuration.
func (e *Engine) EventConfig() ir.EventConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.event
}

// Pending returns the pending-resync marks.
func (e *Engine) Pending() store.PendingSync {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pending
}

// State is a consistent copy of everything the engine exposes.
type State struct {
	Menu         []ir.MenuItem     `json:"menu"`
	Orders       []ir.Order        `json:"orders"`
	Event        ir.EventConfig    `json:"eventConfig"`
	Queue        []ir.Order        `json:"offlineQueue"`
	Pending      store.PendingSync `json:"pendingSync"`
	Connectivity Connectivity      `json:"connectivity"`
}

// Snapshot returns a copy of the converged state.
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	s := State{
		Menu:    ir.CloneMenu(e.menu),
		Orders:  ir.CloneOrders(e.orders),
		Event:   e.event,
		Pending: e.pending,
	}
	e.mu.RUnlock()
	s.Queue = e.queue.Snapshot()
	s.Connectivity = e.monitor.State()
	return s
}

// Run drives bootstrap, polling and draining until ctx is cancelled.
//
// A connectivity signal bootstraps once per online epoch. Each poll tick
// either retries bootstrap (when not connected) or polls and drains.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("sync engine starting",
		"poll_interval", e.pollInterval,
		"drain_strategy", e.drain,
	)

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	e.onConnectivity(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("sync engine stopping: context cancelled")
			return ctx.Err()

		case <-e.monitor.Wait():
			e.onConnectivity(ctx)

		case <-ticker.C:
			e.onTick(ctx)
		}
	}
}

func (e *Engine) onConnectivity(ctx context.Context) {
	state, epoch := e.monitor.Current()
	if !state.Online {
		return
	}
	if e.bootstrappedEpoch() != epoch {
		e.Bootstrap(ctx)
	}
	if e.monitor.State().CanSync() && e.queue.Len() > 0 {
		e.Drain(ctx)
	}
}

func (e *Engine) onTick(ctx context.Context) {
	state, epoch := e.monitor.Current()
	if !state.Online {
		return
	}
	if !state.CanSync() || e.bootstrappedEpoch() != epoch {
		e.Bootstrap(ctx)
		if e.monitor.State().CanSync() && e.queue.Len() > 0 {
			e.Drain(ctx)
		}
		return
	}
	e.PollOnce(ctx)
	if e.queue.Len() > 0 {
		e.Drain(ctx)
	}
}

func (e *Engine) bootstrappedEpoch() uint64 {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()
	return e.bootstrapped
}

// observe reports a read outcome to the monitor and emits a connectivity
// change when the status moved.
func (e *Engine) observe(epoch uint64, outcome remote.Outcome) bool {
	accepted, changed := e.monitor.Observe(epoch, outcome)
	if changed {
		slog.Info("remote store status changed", "db_status", e.monitor.State().DB)
		e.emit(ChangeConnectivity)
	}
	return accepted
}
