package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks a menu item before it is accepted into the menu.
func (m MenuItem) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("menu item id is required")
	}
	if m.Price < 0 {
		return fmt.Errorf("menu item %s: price must be non-negative, got %d", m.ID, m.Price)
	}
	if !ValidCategories[m.Category] {
		return fmt.Errorf("menu item %s: unknown category %q", m.ID, m.Category)
	}
	if m.HealthyScore < 1 || m.HealthyScore > 10 {
		return fmt.Errorf("menu item %s: healthy score must be within 1..10, got %d", m.ID, m.HealthyScore)
	}
	return nil
}

// Validate checks the event configuration bounds.
func (c EventConfig) Validate() error {
	if c.TableCount < 1 {
		return fmt.Errorf("table count must be at least 1, got %d", c.TableCount)
	}
	if c.DiscountPercentage < 0 || c.DiscountPercentage > 100 {
		return fmt.Errorf("discount percentage must be within 0..100, got %d", c.DiscountPercentage)
	}
	return nil
}

// FindMenuItem returns the index of the item with the given id, or -1.
func FindMenuItem(menu []MenuItem, id string) int {
	return slices.IndexFunc(menu, func(m MenuItem) bool { return m.ID == id })
}

// CloneMenu returns a deep copy so callers cannot alias engine state.
func CloneMenu(menu []MenuItem) []MenuItem {
	if menu == nil {
		return nil
	}
	out := make([]MenuItem, len(menu))
	for i, m := range menu {
		out[i] = m
		out[i].Ingredients = slices.Clone(m.Ingredients)
	}
	return out
}

// CloneOrders returns a deep copy of the orders and their line items.
func CloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o
		out[i].Items = make([]CartItem, len(o.Items))
		for j, it := range o.Items {
			out[i].Items[j] = it
			out[i].Items[j].Ingredients = slices.Clone(it.Ingredients)
		}
	}
	return out
}
