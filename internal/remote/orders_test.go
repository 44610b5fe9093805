package remote

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/moacafe/internal/ir"
)

func testOrder(id string, ts int64) ir.Order {
	items := []ir.CartItem{{MenuItem: testMenu()[0], CartID: "k-" + id, Quantity: 2,
		SugarLevel: ir.Sugar50, IceLevel: ir.IceLess}}
	return ir.NewOrder(id, 3, items, ir.PaymentQRIS, ts)
}

func TestFetchOrders_EmptyIsEmptyList(t *testing.T) {
	_, g := newDocstore(t)

	res := g.FetchOrders(context.Background())
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.NotNil(t, res.Orders)
	assert.Empty(t, res.Orders)
}

func TestCreateOrderIsIdempotent(t *testing.T) {
	store, g := newDocstore(t)
	ctx := context.Background()
	order := testOrder("ABC123XYZ", 1000)

	require.Equal(t, OutcomeOK, g.CreateOrder(ctx, order))
	require.Equal(t, OutcomeOK, g.CreateOrder(ctx, order))
	assert.Equal(t, 2, store.Count(http.MethodPut, "/orders/ABC123XYZ.json"))

	res := g.FetchOrders(ctx)
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, order, res.Orders[0])
}

func TestPatchOrderStatusTouchesOnlyStatus(t *testing.T) {
	_, g := newDocstore(t)
	ctx := context.Background()
	order := testOrder("A1", 1000)

	require.Equal(t, OutcomeOK, g.CreateOrder(ctx, order))
	require.Equal(t, OutcomeOK, g.PatchOrderStatus(ctx, "A1", ir.StatusPreparing))

	res := g.FetchOrders(ctx)
	require.Len(t, res.Orders, 1)
	want := order
	want.Status = ir.StatusPreparing
	assert.Equal(t, want, res.Orders[0])
}

func TestFetchOrders_SkipsInvalid(t *testing.T) {
	good := `{"id":"A1","tableNumber":1,"items":[{"id":"c1","price":100,"category":"Coffee","healthyScore":5,"cartId":"k","quantity":2}],"totalAmount":200,"status":"pending","timestamp":1,"paymentMethod":"cash"}`
	wrongTotal := `{"id":"A2","tableNumber":1,"items":[{"id":"c1","price":100,"quantity":2}],"totalAmount":1,"status":"pending","timestamp":1,"paymentMethod":"cash"}`
	g := staticServer(t, http.StatusOK, `{"A1":`+good+`,"A2":`+wrongTotal+`}`)

	res := g.FetchOrders(context.Background())
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "A1", res.Orders[0].ID)
}

func TestOrderPathEscapesID(t *testing.T) {
	assert.Equal(t, "/orders/A%2FB.json", orderPath("A/B"))
}

func TestFetchOrders_NoValidEntriesIsUnavailable(t *testing.T) {
	g := staticServer(t, http.StatusOK, `{"A1":{"id":"A1","tableNumber":0}}`)
	res := g.FetchOrders(context.Background())
	assert.Equal(t, OutcomeUnavailable, res.Outcome)
	assert.Nil(t, res.Orders)
}
