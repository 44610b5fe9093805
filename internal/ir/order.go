package ir

import (
	"fmt"
	"slices"
	"strings"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// ValidStatuses defines the allowed order statuses.
var ValidStatuses = map[OrderStatus]bool{
	StatusPending:   true,
	StatusPreparing: true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// transitions lists the statuses reachable from each status.
// delivered and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return slices.Contains(transitions[from], to)
}

// IsTerminal reports whether no further transitions exist from s.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// NewOrder freezes the given line items into a pending order.
// The total is computed once here and never again.
func NewOrder(id string, table int, items []CartItem, method PaymentMethod, timestampMillis int64) Order {
	frozen := make([]CartItem, len(items))
	for i, it := range items {
		frozen[i] = it
		frozen[i].Ingredients = slices.Clone(it.Ingredients)
	}
	return Order{
		ID:            id,
		TableNumber:   table,
		Items:         frozen,
		TotalAmount:   SumLines(frozen),
		Status:        StatusPending,
		Timestamp:     timestampMillis,
		PaymentMethod: method,
	}
}

// SumLines returns Σ price × quantity over the items.
func SumLines(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// Validate checks the structural invariants of a freshly created order.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("order id is required")
	}
	if o.TableNumber < 1 {
		return fmt.Errorf("table number must be positive, got %d", o.TableNumber)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("order %s has no items", o.ID)
	}
	for i, it := range o.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("order %s item[%d]: quantity must be >= 1", o.ID, i)
		}
		if it.Price < 0 {
			return fmt.Errorf("order %s item[%d]: negative price", o.ID, i)
		}
	}
	if want := SumLines(o.Items); o.TotalAmount != want {
		return fmt.Errorf("order %s total %d does not match line sum %d", o.ID, o.TotalAmount, want)
	}
	if !ValidStatuses[o.Status] {
		return fmt.Errorf("order %s has unknown status %q", o.ID, o.Status)
	}
	if !ValidPaymentMethods[o.PaymentMethod] {
		return fmt.Errorf("order %s has unknown payment method %q", o.ID, o.PaymentMethod)
	}
	return nil
}

// SortOrders orders newest first. Equal timestamps fall back to id so the
// result does not depend on the remote store's key order.
func SortOrders(orders []Order) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// FindOrder returns the index of the order with the given id, or -1.
func FindOrder(orders []Order, id string) int {
	return slices.IndexFunc(orders, func(o Order) bool { return o.ID == id })
}
