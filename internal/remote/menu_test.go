package remote

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/moacafe/internal/ir"
)

func TestFetchMenu_EmptyStore(t *testing.T) {
	_, g := newDocstore(t)

	res := g.FetchMenu(context.Background())
	assert.Equal(t, OutcomeEmpty, res.Outcome)
	assert.Nil(t, res.Items)
}

func TestFetchMenu_Denied(t *testing.T) {
	store, g := newDocstore(t)
	store.SetDeny(true)

	res := g.FetchMenu(context.Background())
	assert.Equal(t, OutcomeUnavailable, res.Outcome)
}

func TestSyncMenuRoundTrip_ObjectAndArrayEncoding(t *testing.T) {
	for _, asArray := range []bool{false, true} {
		name := "object"
		if asArray {
			name = "array"
		}
		t.Run(name, func(t *testing.T) {
			store, g := newDocstore(t)
			store.ServeAsArray("/menu.json", asArray)
			ctx := context.Background()

			require.Equal(t, OutcomeOK, g.SyncMenu(ctx, testMenu()))
			assert.Equal(t, 1, store.Count(http.MethodPut, "/menu.json"))

			res := g.FetchMenu(ctx)
			require.Equal(t, OutcomeOK, res.Outcome)
			assert.ElementsMatch(t, testMenu(), res.Items)
		})
	}
}

func TestFetchMenu_ObjectKeyOrderPreserved(t *testing.T) {
	body := `{"z":{"id":"z","price":1,"category":"Snacks","healthyScore":2},` +
		`"a":{"id":"a","price":2,"category":"Coffee","healthyScore":3}}`
	g := staticServer(t, http.StatusOK, body)

	res := g.FetchMenu(context.Background())
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "z", res.Items[0].ID)
	assert.Equal(t, "a", res.Items[1].ID)
}

func TestFetchMenu_SkipsHolesAndMalformed(t *testing.T) {
	body := `[null,{"id":"c1","price":25000,"category":"Coffee","healthyScore":6},` +
		`{"id":"bad","price":"free"},{"id":"neg","price":-1,"category":"Coffee","healthyScore":5}]`
	g := staticServer(t, http.StatusOK, body)

	res := g.FetchMenu(context.Background())
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "c1", res.Items[0].ID)
}

func TestFetchMenu_NoValidItemsIsUnavailable(t *testing.T) {
	for name, body := range map[string]string{
		"array":            `[null,{"id":""}]`,
		"missing score":    `{"x1":{"id":"x1","price":30000,"category":"Coffee"}}`,
		"fractional price": `{"x2":{"id":"x2","price":30000.5,"category":"Coffee","healthyScore":5}}`,
	} {
		t.Run(name, func(t *testing.T) {
			g := staticServer(t, http.StatusOK, body)
			res := g.FetchMenu(context.Background())
			assert.Equal(t, OutcomeUnavailable, res.Outcome)
			assert.Nil(t, res.Items)
		})
	}
}

func TestFetchMenu_NoStoredElementsIsEmpty(t *testing.T) {
	for _, body := range []string{`[]`, `{}`, `[null,null]`} {
		g := staticServer(t, http.StatusOK, body)
		assert.Equal(t, OutcomeEmpty, g.FetchMenu(context.Background()).Outcome, body)
	}
}

func TestFetchMenu_ScalarIsUnavailable(t *testing.T) {
	g := staticServer(t, http.StatusOK, `"menu"`)
	assert.Equal(t, OutcomeUnavailable, g.FetchMenu(context.Background()).Outcome)
}

func TestSyncMenu_KeyedByID(t *testing.T) {
	store, g := newDocstore(t)
	require.Equal(t, OutcomeOK, g.SyncMenu(context.Background(), testMenu()))

	assert.JSONEq(t, `25000`, string(store.Value("/menu/c1/price.json")))
	assert.JSONEq(t, `"Croissant"`, string(store.Value("/menu/s1/name_en.json")))
}

func TestSyncMenu_Denied(t *testing.T) {
	store, g := newDocstore(t)
	store.SetDeny(true)
	assert.Equal(t, OutcomeUnavailable, g.SyncMenu(context.Background(), []ir.MenuItem{}))
}
