package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/moacafe/internal/ir"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestItem creates a valid menu item with the given id and price.
func createTestItem(id string, price int64) ir.MenuItem {
	return ir.MenuItem{
		ID:           id,
		NameEN:       "Item " + id,
		NameID:       "Menu " + id,
		Price:        price,
		Category:     ir.CategoryCoffee,
		HealthyScore: 5,
		Ingredients:  []string{"Espresso"},
		IsAvailable:  true,
	}
}

// createTestOrder creates a pending single-line order.
func createTestOrder(id string, table int, ts int64) ir.Order {
	items := []ir.CartItem{{MenuItem: createTestItem("c1", 25000), CartID: "cart-" + id, Quantity: 1,
		SugarLevel: ir.Sugar100, IceLevel: ir.IceNormal}}
	return ir.NewOrder(id, table, items, ir.PaymentCash, ts)
}
