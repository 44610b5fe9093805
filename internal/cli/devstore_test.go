package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/moacafe/internal/docstore"
	"github.com/roach88/moacafe/internal/ir"
)

var listeningLine = regexp.MustCompile(`listening on (http://\S+)`)

func TestDevstore_ServesSeededStore(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	opts := &RootOptions{Format: "text", LookupEnv: noEnv}
	cmd := NewDevstoreCommand(opts)
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(&syncBuffer{})
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0", "--seed"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	var base string
	require.Eventually(t, func() bool {
		m := listeningLine.FindStringSubmatch(out.String())
		if m == nil {
			return false
		}
		base = m[1]
		return true
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get(base + "/menu.json")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var menu map[string]ir.MenuItem
	require.NoError(t, json.Unmarshal(body, &menu))
	assert.Len(t, menu, 9)
	assert.Equal(t, "MOA Signature Latte", menu["c1"].NameEN)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("devstore did not stop after cancel")
	}
}

func TestDevstore_AddressInUse(t *testing.T) {
	env := newCLIEnv(t)
	addr := env.url[len("http://"):]

	_, err := execute(t, NewDevstoreCommand(&RootOptions{Format: "text", LookupEnv: noEnv}), "--addr", addr)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSeedDevstore(t *testing.T) {
	docs := docstore.New()
	menu := []ir.MenuItem{
		{ID: "c1", NameEN: "Latte", NameID: "Latte", Price: 25000, Category: ir.CategoryCoffee, IsAvailable: true},
		{ID: "s1", NameEN: "Croissant", NameID: "Croissant", Price: 18000, Category: ir.CategorySnacks},
	}
	event := ir.EventConfig{IsActive: true, EventName: "Opening", TableCount: 8, DiscountPercentage: 10}

	require.NoError(t, seedDevstore(docs, menu, event))

	var gotMenu map[string]ir.MenuItem
	require.NoError(t, json.Unmarshal(docs.Value("menu"), &gotMenu))
	assert.Equal(t, map[string]ir.MenuItem{"c1": menu[0], "s1": menu[1]}, gotMenu)

	var gotEvent ir.EventConfig
	require.NoError(t, json.Unmarshal(docs.Value("eventConfig"), &gotEvent))
	assert.Equal(t, event, gotEvent)
}
