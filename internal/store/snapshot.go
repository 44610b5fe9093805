package store

import (
	"context"
	"log/slog"

	"github.com/roach88/moacafe/internal/ir"
)

// Logical keys for local snapshots.
const (
	KeyMenu         = "moa_menu"
	KeyOrders       = "moa_orders"
	KeyOfflineQueue = "moa_offline_queue"
	KeyEvent        = "moa_event"
	KeyPendingSync  = "moa_pending_sync"
	keyLangPrefix   = "moa_lang_"
)

// Role selects whose language preference is read or written.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// LanguageKey returns the storage key for a role's language preference.
func LanguageKey(role Role) string {
	return keyLangPrefix + string(role)
}

// PendingSync marks admin edits that were applied locally but have not
// reached the remote store yet.
type PendingSync struct {
	Menu  bool `json:"menu"`
	Event bool `json:"event"`
}

// Any reports whether anything is waiting to be pushed.
func (p PendingSync) Any() bool {
	return p.Menu || p.Event
}

// KV is the raw key/value surface Snapshots is built on. *Store implements it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Snapshots reads and writes typed snapshots over a KV.
//
// Loads never fail: a missing, unreadable or invalid document yields the
// supplied default and a warning in the log. Saves return errors so that
// callers can decide whether to continue.
type Snapshots struct {
	kv KV
}

// NewSnapshots wraps kv.
func NewSnapshots(kv KV) *Snapshots {
	return &Snapshots{kv: kv}
}

// load decodes key into out. It returns false when the caller should use
// its default.
func (s *Snapshots) load(ctx context.Context, key string, out any) bool {
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		slog.Warn("local snapshot unreadable, using default", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := unmarshalSnapshot(key, data, out); err != nil {
		slog.Warn("local snapshot corrupt, using default", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Snapshots) save(ctx context.Context, key string, v any) error {
	data, err := marshalSnapshot(key, v)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, key, data)
}

// LoadMenu returns the cached menu or a copy of def. Items that fail
// validation discard the whole snapshot.
func (s *Snapshots) LoadMenu(ctx context.Context, def []ir.MenuItem) []ir.MenuItem {
	var menu []ir.MenuItem
	if s.load(ctx, KeyMenu, &menu) {
		valid := true
		for _, m := range menu {
			if err := m.Validate(); err != nil {
				slog.Warn("local menu snapshot invalid, using default", "error", err)
				valid = false
				break
			}
		}
		if valid {
			return menu
		}
	}
	return nonNilMenu(ir.CloneMenu(def))
}

// SaveMenu persists the menu snapshot.
func (s *Snapshots) SaveMenu(ctx context.Context, menu []ir.MenuItem) error {
	return s.save(ctx, KeyMenu, nonNilMenu(menu))
}

// LoadOrders returns the cached orders, or an empty list.
func (s *Snapshots) LoadOrders(ctx context.Context) []ir.Order {
	var orders []ir.Order
	if s.load(ctx, KeyOrders, &orders) {
		return nonNilOrders(orders)
	}
	return []ir.Order{}
}

// SaveOrders persists the orders snapshot.
func (s *Snapshots) SaveOrders(ctx context.Context, orders []ir.Order) error {
	return s.save(ctx, KeyOrders, nonNilOrders(orders))
}

// LoadQueue returns the cached offline queue, or an empty list.
func (s *Snapshots) LoadQueue(ctx context.Context) []ir.Order {
	var queue []ir.Order
	if s.load(ctx, KeyOfflineQueue, &queue) {
		return nonNilOrders(queue)
	}
	return []ir.Order{}
}

// SaveQueue persists the offline queue.
func (s *Snapshots) SaveQueue(ctx context.Context, queue []ir.Order) error {
	return s.save(ctx, KeyOfflineQueue, nonNilOrders(queue))
}

// LoadEvent returns the cached event configuration or def.
func (s *Snapshots) LoadEvent(ctx context.Context, def ir.EventConfig) ir.EventConfig {
	var cfg ir.EventConfig
	if s.load(ctx, KeyEvent, &cfg) {
		err := cfg.Validate()
		if err == nil {
			return cfg
		}
		slog.Warn("local event snapshot invalid, using default", "error", err)
	}
	return def
}

// SaveEvent persists the event configuration.
func (s *Snapshots) SaveEvent(ctx context.Context, cfg ir.EventConfig) error {
	return s.save(ctx, KeyEvent, cfg)
}

// LoadPending returns the pending-resync marks.
func (s *Snapshots) LoadPending(ctx context.Context) PendingSync {
	var p PendingSync
	if s.load(ctx, KeyPendingSync, &p) {
		return p
	}
	return PendingSync{}
}

// SavePending persists the pending-resync marks.
func (s *Snapshots) SavePending(ctx context.Context, p PendingSync) error {
	return s.save(ctx, KeyPendingSync, p)
}

// LoadLanguage returns the stored language tag for role, or def.
func (s *Snapshots) LoadLanguage(ctx context.Context, role Role, def string) string {
	var tag string
	if s.load(ctx, LanguageKey(role), &tag) && tag != "" {
		return tag
	}
	return def
}

// SaveLanguage persists the language tag for role.
func (s *Snapshots) SaveLanguage(ctx context.Context, role Role, tag string) error {
	return s.save(ctx, LanguageKey(role), tag)
}

// Clear removes the given keys.
func (s *Snapshots) Clear(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func nonNilMenu(m []ir.MenuItem) []ir.MenuItem {
	if m == nil {
		return []ir.MenuItem{}
	}
	return m
}

func nonNilOrders(o []ir.Order) []ir.Order {
	if o == nil {
		return []ir.Order{}
	}
	return o
}
