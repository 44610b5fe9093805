package app

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/moacafe/internal/engine"
	"github.com/roach88/moacafe/internal/ir"
)

// LineOptions are the choices made when adding an item to the cart.
// Zero values mean the defaults: sugar 100%, ice Normal, no extra shot.
type LineOptions struct {
	Sugar     ir.SugarLevel
	Ice       ir.IceLevel
	ExtraShot bool
	Notes     string
}

// Cart is an in-progress order. The same menu item may appear on several
// lines with different options; each line has its own cart id.
//
// Thread-safety: all methods are safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	ids   engine.IDGenerator
	lines []ir.CartItem
}

// NewCart creates an empty cart whose line ids come from ids.
func NewCart(ids engine.IDGenerator) *Cart {
	return &Cart{ids: ids}
}

// Add appends one unit of item with the given options and returns the new
// line. Drink options are ignored for items that are not drinks.
func (c *Cart) Add(item ir.MenuItem, opts LineOptions) (ir.CartItem, error) {
	if !item.IsAvailable {
		return ir.CartItem{}, &Error{Code: ErrCodeItemUnavailable, Message: fmt.Sprintf("%s is sold out", item.ID)}
	}

	line := ir.CartItem{
		MenuItem:   item,
		Quantity:   1,
		SugarLevel: ir.Sugar100,
		IceLevel:   ir.IceNormal,
		Notes:      opts.Notes,
	}
	line.Ingredients = slices.Clone(item.Ingredients)

	if item.Category.IsDrink() {
		if opts.Sugar != "" {
			if !ir.ValidSugarLevels[opts.Sugar] {
				return ir.CartItem{}, &Error{Code: ErrCodeInvalidOption, Message: fmt.Sprintf("unknown sugar level %q", opts.Sugar)}
			}
			line.SugarLevel = opts.Sugar
		}
		if opts.Ice != "" {
			if !ir.ValidIceLevels[opts.Ice] {
				return ir.CartItem{}, &Error{Code: ErrCodeInvalidOption, Message: fmt.Sprintf("unknown ice level %q", opts.Ice)}
			}
			line.IceLevel = opts.Ice
		}
		if opts.ExtraShot {
			line.ExtraShot = true
			line.Price += ir.ExtraShotSurcharge
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	line.CartID = c.ids.Generate()
	c.lines = append(c.lines, line)
	return line, nil
}

// Remove drops a line.
func (c *Cart) Remove(cartID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(cartID)
	if i < 0 {
		return &Error{Code: ErrCodeUnknownCartLine, Message: fmt.Sprintf("no cart line %s", cartID)}
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return nil
}

// UpdateQuantity changes a line's quantity by delta. Quantity never drops
// below 1; use Remove to take a line out. Returns the new quantity.
func (c *Cart) UpdateQuantity(cartID string, delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(cartID)
	if i < 0 {
		return 0, &Error{Code: ErrCodeUnknownCartLine, Message: fmt.Sprintf("no cart line %s", cartID)}
	}
	c.lines[i].Quantity = max(1, c.lines[i].Quantity+delta)
	return c.lines[i].Quantity, nil
}

// Lines returns a copy of the cart lines in the order they were added.
func (c *Cart) Lines() []ir.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ir.CartItem, len(c.lines))
	for i, l := range c.lines {
		out[i] = l
		out[i].Ingredients = slices.Clone(l.Ingredients)
	}
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Total returns Σ price × quantity over the lines.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ir.SumLines(c.lines)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

func (c *Cart) indexLocked(cartID string) int {
	return slices.IndexFunc(c.lines, func(l ir.CartItem) bool { return l.CartID == cartID })
}
