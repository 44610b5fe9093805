// Package app is the state facade the user interface talks to.
//
// An App wraps one engine and adds the customer and staff workflows that sit
// on top of it: carts and checkout, table scoping, the admin sales summary
// and per-role language preferences. It holds no globals; callers build one
// with New and pass it where it is needed.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/moacafe/internal/engine"
	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/store"
)

// Preferences persists small per-role UI settings. *store.Snapshots
// implements it.
type Preferences interface {
	LoadLanguage(ctx context.Context, role store.Role, def string) string
	SaveLanguage(ctx context.Context, role store.Role, tag string) error
	Clear(ctx context.Context, keys ...string) error
}

// App is the application state facade.
//
// Thread-safety: safe for concurrent use. Carts are owned by their caller.
type App struct {
	engine   *engine.Engine
	prefs    Preferences
	orderIDs engine.IDGenerator
	cartIDs  engine.IDGenerator
	now      engine.TimeSource
}

// Option configures an App.
type Option func(*App)

// WithOrderIDs sets the order id generator. Default: engine.OrderTokenGenerator.
func WithOrderIDs(gen engine.IDGenerator) Option {
	return func(a *App) { a.orderIDs = gen }
}

// WithCartIDs sets the cart line id generator. Default: engine.UUIDv7Generator.
func WithCartIDs(gen engine.IDGenerator) Option {
	return func(a *App) { a.cartIDs = gen }
}

// WithTimeSource sets the clock used for order timestamps.
func WithTimeSource(ts engine.TimeSource) Option {
	return func(a *App) { a.now = ts }
}

// New creates a facade over e. prefs may be nil, in which case language
// preferences are not persisted.
func New(e *engine.Engine, prefs Preferences, opts ...Option) *App {
	a := &App{
		engine:   e,
		prefs:    prefs,
		orderIDs: engine.OrderTokenGenerator{},
		cartIDs:  engine.UUIDv7Generator{},
		now:      engine.SystemTime{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Engine returns the underlying engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Menu returns the current menu.
func (a *App) Menu() []ir.MenuItem {
	return a.engine.Menu()
}

// MenuByCategory returns the items shown under a category tab. The Best
// Seller tab also lists every coffee.
func (a *App) MenuByCategory(c ir.Category) []ir.MenuItem {
	var out []ir.MenuItem
	for _, item := range a.engine.Menu() {
		if item.Category == c || (c == ir.CategoryBestSeller && item.Category == ir.CategoryCoffee) {
			out = append(out, item)
		}
	}
	return out
}

// Orders returns all orders, newest first.
func (a *App) Orders() []ir.Order {
	return a.engine.Orders()
}

// TableOrders returns the orders placed from one table, newest first.
func (a *App) TableOrders(table int) []ir.Order {
	var out []ir.Order
	for _, o := range a.engine.Orders() {
		if o.TableNumber == table {
			out = append(out, o)
		}
	}
	return out
}

// Order returns the order with id.
func (a *App) Order(id string) (ir.Order, bool) {
	orders := a.engine.Orders()
	if i := ir.FindOrder(orders, id); i >= 0 {
		return orders[i], true
	}
	return ir.Order{}, false
}

// EventConfig returns the event configuration.
func (a *App) EventConfig() ir.EventConfig {
	return a.engine.EventConfig()
}

// Connectivity returns the connectivity state.
func (a *App) Connectivity() engine.Connectivity {
	return a.engine.Connectivity()
}

// Queue returns the orders waiting in the offline queue.
func (a *App) Queue() []ir.Order {
	return a.engine.Queue().Snapshot()
}

// State returns the converged state.
func (a *App) State() engine.State {
	return a.engine.Snapshot()
}

// Subscribe registers fn for state-change notifications.
func (a *App) Subscribe(fn func(engine.Change)) (unsubscribe func()) {
	return a.engine.Subscribe(fn)
}

// NewCart starts an empty cart.
func (a *App) NewCart() *Cart {
	return NewCart(a.cartIDs)
}

// Checkout turns the cart into a pending order for table and records it.
// The cart is cleared only when the order was accepted.
func (a *App) Checkout(ctx context.Context, cart *Cart, table int, method ir.PaymentMethod) (ir.Order, error) {
	lines := cart.Lines()
	if len(lines) == 0 {
		return ir.Order{}, &Error{Code: ErrCodeEmptyCart, Message: "cart is empty"}
	}
	if err := a.checkTable(table); err != nil {
		return ir.Order{}, err
	}
	if !ir.ValidPaymentMethods[method] {
		return ir.Order{}, &Error{Code: ErrCodeInvalidOption, Message: fmt.Sprintf("unknown payment method %q", method)}
	}

	order := ir.NewOrder(a.orderIDs.Generate(), table, lines, method, a.now.Now().UnixMilli())
	if err := a.engine.AddOrder(ctx, order); err != nil {
		return ir.Order{}, err
	}
	cart.Clear()
	return order, nil
}

func (a *App) checkTable(table int) error {
	count := a.engine.EventConfig().TableCount
	if table < 1 || table > count {
		return &Error{
			Code:    ErrCodeTableOutOfRange,
			Message: fmt.Sprintf("table %d is outside 1..%d", table, count),
		}
	}
	return nil
}

// UpdateOrderStatus moves an order along its lifecycle.
func (a *App) UpdateOrderStatus(ctx context.Context, id string, status ir.OrderStatus) error {
	return a.engine.UpdateOrderStatus(ctx, id, status)
}

// CancelOrder cancels a pending order.
func (a *App) CancelOrder(ctx context.Context, id string) error {
	return a.engine.UpdateOrderStatus(ctx, id, ir.StatusCancelled)
}

// MenuDraft is the admin's new-item form. Unset fields take the form's
// defaults.
type MenuDraft struct {
	ID          string
	NameEN      string
	NameID      string
	Price       int64
	Category    ir.Category
	Description string
	Image       string
}

// Draft defaults.
const (
	DraftImage        = "https://picsum.photos/400/400"
	DraftHealthyScore = 5
	DraftIngredient   = "House Blend"
)

// AddMenuItem creates a menu item from a draft. A missing id is generated.
func (a *App) AddMenuItem(ctx context.Context, d MenuDraft) (ir.MenuItem, error) {
	if strings.TrimSpace(d.NameEN) == "" {
		return ir.MenuItem{}, &Error{Code: ErrCodeInvalidOption, Message: "english name is required"}
	}
	if d.Price <= 0 {
		return ir.MenuItem{}, &Error{Code: ErrCodeInvalidOption, Message: "price must be positive"}
	}
	item := ir.MenuItem{
		ID:           d.ID,
		NameEN:       d.NameEN,
		NameID:       d.NameID,
		Price:        d.Price,
		Category:     d.Category,
		Description:  d.Description,
		Image:        d.Image,
		HealthyScore: DraftHealthyScore,
		Ingredients:  []string{DraftIngredient},
		IsAvailable:  true,
	}
	if item.ID == "" {
		item.ID = strings.ToLower(a.orderIDs.Generate())
	}
	if item.NameID == "" {
		item.NameID = item.NameEN
	}
	if item.Category == "" {
		item.Category = ir.CategoryCoffee
	}
	if item.Image == "" {
		item.Image = DraftImage
	}
	if err := a.engine.AddMenuItem(ctx, item); err != nil {
		return ir.MenuItem{}, err
	}
	return item, nil
}

// UpdateMenuItem replaces an existing item.
func (a *App) UpdateMenuItem(ctx context.Context, item ir.MenuItem) error {
	return a.engine.UpdateMenuItem(ctx, item)
}

// DeleteMenuItem removes an item from the menu.
func (a *App) DeleteMenuItem(ctx context.Context, id string) error {
	return a.engine.DeleteMenuItem(ctx, id)
}

// SetAvailability marks an item orderable or sold out.
func (a *App) SetAvailability(ctx context.Context, id string, available bool) error {
	return a.engine.SetAvailability(ctx, id, available)
}

// UpdateEventConfig replaces the event configuration.
func (a *App) UpdateEventConfig(ctx context.Context, cfg ir.EventConfig) error {
	return a.engine.UpdateEventConfig(ctx, cfg)
}

// Reset restores defaults locally and forgets both language preferences.
func (a *App) Reset(ctx context.Context) {
	a.engine.Reset(ctx)
	if a.prefs == nil {
		return
	}
	keys := []string{store.LanguageKey(store.RoleCustomer), store.LanguageKey(store.RoleAdmin)}
	if err := a.prefs.Clear(ctx, keys...); err != nil {
		slog.Warn("language preferences not cleared", "error", err)
	}
}
