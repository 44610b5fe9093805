package remote

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/roach88/moacafe/internal/ir"
)

const ordersPath = "/orders.json"

// OrdersResult is the outcome of FetchOrders. Orders is never nil when the
// store was reachable.
type OrdersResult struct {
	Outcome Outcome
	Orders  []ir.Order
}

// FetchOrders reads every order in the order the store serves them.
// An empty path is a valid, empty collection. Stored orders none of which
// are valid make the read unavailable so the local list is kept.
func (g *Gateway) FetchOrders(ctx context.Context) OrdersResult {
	res := g.Do(ctx, http.MethodGet, ordersPath, nil)
	switch res.Outcome {
	case OutcomeEmpty:
		return OrdersResult{Outcome: OutcomeEmpty, Orders: []ir.Order{}}
	case OutcomeUnavailable:
		return OrdersResult{Outcome: OutcomeUnavailable}
	}
	orders, stored, err := decodeCollection("orders", res.Data, ir.Order.Validate)
	if err != nil {
		slog.Warn("remote orders malformed", "error", err)
		return OrdersResult{Outcome: OutcomeUnavailable}
	}
	if stored > 0 && len(orders) == 0 {
		slog.Warn("remote orders have no valid entries; keeping local orders", "stored", stored)
		return OrdersResult{Outcome: OutcomeUnavailable}
	}
	return OrdersResult{Outcome: OutcomeOK, Orders: orders}
}

// CreateOrder upserts one order under its id. Repeating the call with the
// same order is harmless.
func (g *Gateway) CreateOrder(ctx context.Context, order ir.Order) Outcome {
	return g.Do(ctx, http.MethodPut, orderPath(order.ID), order).Outcome
}

// PatchOrderStatus updates only the status field of one order.
func (g *Gateway) PatchOrderStatus(ctx context.Context, id string, status ir.OrderStatus) Outcome {
	body := map[string]ir.OrderStatus{"status": status}
	return g.Do(ctx, http.MethodPatch, orderPath(id), body).Outcome
}

func orderPath(id string) string {
	return "/orders/" + url.PathEscape(id) + ".json"
}
