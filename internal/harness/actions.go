package harness

import (
	"context"
	"fmt"

	"github.com/roach88/moacafe/internal/app"
	"github.com/roach88/moacafe/internal/engine"
	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/store"
)

// Step actions.
const (
	ActionGoOffline       = "go_offline"
	ActionGoOnline        = "go_online"
	ActionDenyRemote      = "deny_remote"
	ActionAllowRemote     = "allow_remote"
	ActionRemotePut       = "remote_put"
	ActionBootstrap       = "bootstrap"
	ActionPoll            = "poll"
	ActionDrain           = "drain"
	ActionCheckout        = "checkout"
	ActionSetStatus       = "set_status"
	ActionCancel          = "cancel"
	ActionAddMenuItem     = "add_menu_item"
	ActionUpdatePrice     = "update_price"
	ActionSetAvailability = "set_availability"
	ActionDeleteMenuItem  = "delete_menu_item"
	ActionUpdateEvent     = "update_event"
	ActionSetLanguage     = "set_language"
	ActionReset           = "reset"
)

type actionFunc func(h *Harness, ctx context.Context, args map[string]any) (map[string]any, error)

var actions = map[string]actionFunc{
	ActionGoOffline:       (*Harness).goOffline,
	ActionGoOnline:        (*Harness).goOnline,
	ActionDenyRemote:      (*Harness).denyRemote,
	ActionAllowRemote:     (*Harness).allowRemote,
	ActionRemotePut:       (*Harness).remotePut,
	ActionBootstrap:       (*Harness).bootstrap,
	ActionPoll:            (*Harness).poll,
	ActionDrain:           (*Harness).drain,
	ActionCheckout:        (*Harness).checkout,
	ActionSetStatus:       (*Harness).setStatus,
	ActionCancel:          (*Harness).cancel,
	ActionAddMenuItem:     (*Harness).addMenuItem,
	ActionUpdatePrice:     (*Harness).updatePrice,
	ActionSetAvailability: (*Harness).setAvailability,
	ActionDeleteMenuItem:  (*Harness).deleteMenuItem,
	ActionUpdateEvent:     (*Harness).updateEvent,
	ActionSetLanguage:     (*Harness).setLanguage,
	ActionReset:           (*Harness).reset,
}

// argError marks a malformed scenario argument. It aborts the run instead
// of becoming an outcome.
type argError struct {
	key string
	msg string
}

func (e *argError) Error() string {
	return fmt.Sprintf("argument %q: %s", e.key, e.msg)
}

func connectivityResult(c engine.Connectivity) map[string]any {
	return map[string]any{"online": c.Online, "dbStatus": string(c.DB)}
}

func (h *Harness) goOffline(_ context.Context, _ map[string]any) (map[string]any, error) {
	h.engine.SetOnline(false)
	return connectivityResult(h.engine.Connectivity()), nil
}

func (h *Harness) goOnline(_ context.Context, _ map[string]any) (map[string]any, error) {
	h.engine.SetOnline(true)
	return connectivityResult(h.engine.Connectivity()), nil
}

func (h *Harness) denyRemote(_ context.Context, _ map[string]any) (map[string]any, error) {
	h.docs.SetDeny(true)
	return nil, nil
}

func (h *Harness) allowRemote(_ context.Context, _ map[string]any) (map[string]any, error) {
	h.docs.SetDeny(false)
	return nil, nil
}

// remotePut writes straight into the remote store, as another device would.
func (h *Harness) remotePut(_ context.Context, args map[string]any) (map[string]any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	value, ok := args["value"]
	if !ok {
		return nil, &argError{key: "value", msg: "required"}
	}
	if err := h.docs.Seed(path, value); err != nil {
		return nil, &argError{key: "value", msg: err.Error()}
	}
	return nil, nil
}

func (h *Harness) bootstrap(ctx context.Context, _ map[string]any) (map[string]any, error) {
	return connectivityResult(h.engine.Bootstrap(ctx)), nil
}

func (h *Harness) poll(ctx context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{"changed": h.engine.PollOnce(ctx)}, nil
}

func (h *Harness) drain(ctx context.Context, _ map[string]any) (map[string]any, error) {
	report := h.engine.Drain(ctx)
	return map[string]any{
		"attempted": report.Attempted,
		"sent":      report.Sent,
		"failed":    report.Failed,
		"remaining": report.Remaining,
	}, nil
}

// checkout fills a cart from the items argument and places the order.
//
//	args: {table: 3, payment: cash, items: [{id: c1, quantity: 2, sugar: "50%", ice: Less, extra_shot: true}]}
func (h *Harness) checkout(ctx context.Context, args map[string]any) (map[string]any, error) {
	table, err := intArg(args, "table")
	if err != nil {
		return nil, err
	}
	payment := optString(args, "payment", string(ir.PaymentCash))
	rawItems, ok := args["items"].([]any)
	if !ok {
		return nil, &argError{key: "items", msg: "must be a list"}
	}

	menu := h.app.Menu()
	cart := h.app.NewCart()
	for i, raw := range rawItems {
		line, ok := raw.(map[string]any)
		if !ok {
			return nil, &argError{key: fmt.Sprintf("items[%d]", i), msg: "must be a mapping"}
		}
		id, err := stringArg(line, "id")
		if err != nil {
			return nil, err
		}
		idx := ir.FindMenuItem(menu, id)
		if idx < 0 {
			return nil, &engine.Error{Code: engine.ErrCodeUnknownMenuItem, ItemID: id, Message: "not on the menu"}
		}
		added, err := cart.Add(menu[idx], app.LineOptions{
			Sugar:     ir.SugarLevel(optString(line, "sugar", "")),
			Ice:       ir.IceLevel(optString(line, "ice", "")),
			ExtraShot: optBool(line, "extra_shot", false),
			Notes:     optString(line, "notes", ""),
		})
		if err != nil {
			return nil, err
		}
		if qty := optInt(line, "quantity", 1); qty > 1 {
			if _, err := cart.UpdateQuantity(added.CartID, qty-1); err != nil {
				return nil, err
			}
		}
	}

	order, err := h.app.Checkout(ctx, cart, table, ir.PaymentMethod(payment))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"order":  order.ID,
		"total":  order.TotalAmount,
		"queued": h.engine.Queue().Contains(order.ID),
	}, nil
}

func (h *Harness) setStatus(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := stringArg(args, "order")
	if err != nil {
		return nil, err
	}
	status, err := stringArg(args, "status")
	if err != nil {
		return nil, err
	}
	return nil, h.app.UpdateOrderStatus(ctx, id, ir.OrderStatus(status))
}

func (h *Harness) cancel(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := stringArg(args, "order")
	if err != nil {
		return nil, err
	}
	return nil, h.app.CancelOrder(ctx, id)
}

func (h *Harness) addMenuItem(ctx context.Context, args map[string]any) (map[string]any, error) {
	name, err := stringArg(args, "name_en")
	if err != nil {
		return nil, err
	}
	item, err := h.app.AddMenuItem(ctx, app.MenuDraft{
		ID:       optString(args, "id", ""),
		NameEN:   name,
		NameID:   optString(args, "name_id", ""),
		Price:    int64(optInt(args, "price", 0)),
		Category: ir.Category(optString(args, "category", "")),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": item.ID}, nil
}

func (h *Harness) updatePrice(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	price, err := intArg(args, "price")
	if err != nil {
		return nil, err
	}
	menu := h.app.Menu()
	idx := ir.FindMenuItem(menu, id)
	if idx < 0 {
		return nil, &engine.Error{Code: engine.ErrCodeUnknownMenuItem, ItemID: id, Message: "not on the menu"}
	}
	item := menu[idx]
	item.Price = int64(price)
	return nil, h.app.UpdateMenuItem(ctx, item)
}

func (h *Harness) setAvailability(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	available, ok := args["available"].(bool)
	if !ok {
		return nil, &argError{key: "available", msg: "must be a boolean"}
	}
	return nil, h.app.SetAvailability(ctx, id, available)
}

func (h *Harness) deleteMenuItem(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	return nil, h.app.DeleteMenuItem(ctx, id)
}

// updateEvent applies the given fields on top of the current event config.
func (h *Harness) updateEvent(ctx context.Context, args map[string]any) (map[string]any, error) {
	cfg := h.app.EventConfig()
	cfg.IsActive = optBool(args, "is_active", cfg.IsActive)
	cfg.EventName = optString(args, "event_name", cfg.EventName)
	cfg.TableCount = optInt(args, "table_count", cfg.TableCount)
	cfg.DiscountPercentage = optInt(args, "discount_percentage", cfg.DiscountPercentage)
	return nil, h.app.UpdateEventConfig(ctx, cfg)
}

func (h *Harness) setLanguage(ctx context.Context, args map[string]any) (map[string]any, error) {
	role := store.Role(optString(args, "role", string(store.RoleCustomer)))
	lang, err := stringArg(args, "lang")
	if err != nil {
		return nil, err
	}
	tag, err := h.app.SetLanguage(ctx, role, lang)
	if err != nil {
		return nil, err
	}
	return map[string]any{"lang": tag.String()}, nil
}

func (h *Harness) reset(ctx context.Context, _ map[string]any) (map[string]any, error) {
	h.app.Reset(ctx)
	return nil, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", &argError{key: key, msg: "required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &argError{key: key, msg: fmt.Sprintf("must be a string, got %T", v)}
	}
	return s, nil
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, &argError{key: key, msg: "required"}
	}
	n, ok := v.(int)
	if !ok {
		return 0, &argError{key: key, msg: fmt.Sprintf("must be an integer, got %T", v)}
	}
	return n, nil
}

func optString(args map[string]any, key, def string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return def
}

func optInt(args map[string]any, key string, def int) int {
	if n, ok := args[key].(int); ok {
		return n
	}
	return def
}

func optBool(args map[string]any, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}
