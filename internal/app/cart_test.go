package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/testutil"
)

func TestCart_DrinkOptionsAndSurcharge(t *testing.T) {
	cart := NewCart(testutil.NewSequenceIDs("line-"))
	latte := testMenu()[0]

	line, err := cart.Add(latte, LineOptions{Sugar: ir.Sugar25, Ice: ir.IceNone, ExtraShot: true, Notes: "oat milk"})
	require.NoError(t, err)

	assert.Equal(t, "line-000001", line.CartID)
	assert.Equal(t, latte.Price+ir.ExtraShotSurcharge, line.Price)
	assert.Equal(t, ir.Sugar25, line.SugarLevel)
	assert.Equal(t, ir.IceNone, line.IceLevel)
	assert.True(t, line.ExtraShot)
	assert.Equal(t, "oat milk", line.Notes)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, "c1", line.ID, "menu id is kept alongside the cart id")
}

func TestCart_DrinkDefaults(t *testing.T) {
	cart := NewCart(testutil.NewSequenceIDs("line-"))

	line, err := cart.Add(testMenu()[1], LineOptions{})
	require.NoError(t, err)
	assert.Equal(t, ir.Sugar100, line.SugarLevel)
	assert.Equal(t, ir.IceNormal, line.IceLevel)
	assert.False(t, line.ExtraShot)
	assert.Equal(t, int64(25000), line.Price)
}

func TestCart_NonDrinkIgnoresDrinkOptions(t *testing.T) {
	cart := NewCart(testutil.NewSequenceIDs("line-"))
	croissant := testMenu()[2]

	line, err := cart.Add(croissant, LineOptions{Sugar: ir.Sugar0, Ice: ir.IceExtra, ExtraShot: true})
	require.NoError(t, err)

	assert.Equal(t, croissant.Price, line.Price, "no surcharge on snacks")
	assert.Equal(t, ir.Sugar100, line.SugarLevel)
	assert.Equal(t, ir.IceNormal, line.IceLevel)
	assert.False(t, line.ExtraShot)
}

func TestCart_Rejections(t *testing.T) {
	cart := NewCart(testutil.NewSequenceIDs("line-"))

	_, err := cart.Add(testMenu()[3], LineOptions{})
	assert.True(t, IsCode(err, ErrCodeItemUnavailable))

	_, err = cart.Add(testMenu()[0], LineOptions{Sugar: "60%"})
	assert.True(t, IsCode(err, ErrCodeInvalidOption))
	_, err = cart.Add(testMenu()[0], LineOptions{Ice: "Crushed"})
	assert.True(t, IsCode(err, ErrCodeInvalidOption))

	assert.Equal(t, 0, cart.Len())
}

func TestCart_SameItemTwiceKeepsSeparateLines(t *testing.T) {
	cart := NewCart(testutil.NewSequenceIDs("line-"))
	latte := testMenu()[0]

	a, err := cart.Add(latte, LineOptions{Sugar: ir.Sugar0})
	require.NoError(t, err)
	b, err := cart.Add(latte, LineOptions{Sugar: ir.Sugar100})
	require.NoError(t, err)

	assert.NotEqual(t, a.CartID, b.CartID)
	assert.Equal(t, 2, cart.Len())
}

func TestCart_QuantityFloorAndTotal(t *testing.T) {
	cart := NewCart(testutil.NewSequenceIDs("line-"))
	line, err := cart.Add(testMenu()[2], LineOptions{})
	require.NoError(t, err)

	q, err := cart.UpdateQuantity(line.CartID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, q)
	assert.Equal(t, int64(5*18000), cart.Total())

	q, err = cart.UpdateQuantity(line.CartID, -10)
	require.NoError(t, err)
	assert.Equal(t, 1, q, "quantity never drops below 1")

	_, err = cart.UpdateQuantity("missing", 1)
	assert.True(t, IsCode(err, ErrCodeUnknownCartLine))
}

func TestCart_Remove(t *testing.T) {
	cart := NewCart(testutil.NewSequenceIDs("line-"))
	a, _ := cart.Add(testMenu()[0], LineOptions{})
	b, _ := cart.Add(testMenu()[2], LineOptions{})

	require.NoError(t, cart.Remove(a.CartID))
	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, b.CartID, lines[0].CartID)

	assert.True(t, IsCode(cart.Remove(a.CartID), ErrCodeUnknownCartLine))
}

func TestCart_LinesAreCopies(t *testing.T) {
	cart := NewCart(testutil.NewSequenceIDs("line-"))
	latte := testMenu()[0]
	_, err := cart.Add(latte, LineOptions{})
	require.NoError(t, err)

	latte.Ingredients[0] = "Decaf"
	lines := cart.Lines()
	lines[0].Quantity = 7
	lines[0].Ingredients[0] = "Changed"

	again := cart.Lines()
	assert.Equal(t, 1, again[0].Quantity)
	assert.Equal(t, "Espresso", again[0].Ingredients[0])
}
