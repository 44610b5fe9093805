package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/store"
	"github.com/roach88/moacafe/internal/testutil"
)

func TestNew_LoadsDefaultsOnFreshStore(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, defaultTestMenu(), env.engine.Menu())
	assert.Equal(t, []ir.Order{}, env.engine.Orders())
	assert.Equal(t, ir.DefaultEventConfig(), env.engine.EventConfig())
	assert.Equal(t, 0, env.engine.Queue().Len())
	assert.Equal(t, Connectivity{Online: true, DB: DBDisconnected}, env.engine.Connectivity())
	assert.Empty(t, env.remote.Calls(), "construction makes no remote calls")
}

func TestNew_RestoresLocalSnapshots(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	ctx := context.Background()

	require.NoError(t, env.engine.AddOrder(ctx, testOrder("A1", 1, 100)))
	require.NoError(t, env.engine.SetAvailability(ctx, "c1", false))

	reopened := New(ctx, env.remote, env.snaps, WithDefaultMenu(defaultTestMenu()))
	assert.Equal(t, []string{"A1"}, ids(reopened.Orders()))
	assert.Equal(t, []string{"A1"}, ids(reopened.Queue().Snapshot()))
	assert.False(t, reopened.Menu()[0].IsAvailable)
	assert.True(t, reopened.Pending().Menu)
}

func TestAddOrder_OfflineQueuesEveryOrder(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			env := newTestEnv(t, WithInitialOnline(false))
			ctx := context.Background()

			var want []string
			for i := 0; i < n; i++ {
				id := fmt.Sprintf("Q%03d", i)
				want = append(want, id)
				require.NoError(t, env.engine.AddOrder(ctx, testOrder(id, 1+i%5, int64(1000+i))))
			}
			assert.Equal(t, n, env.engine.Queue().Len())
			assert.Equal(t, want, ids(env.engine.Queue().Snapshot()), "queue keeps submission order")

			env.engine.SetOnline(true)
			env.engine.Bootstrap(ctx)
			report := env.engine.Drain(ctx)

			assert.Equal(t, want, report.Sent, "replay follows submission order")
			assert.Equal(t, 0, env.engine.Queue().Len())
			assert.ElementsMatch(t, want, ids(env.remote.RemoteOrders()))
			assert.ElementsMatch(t, want, ids(env.engine.Orders()))
		})
	}
}

func TestAddOrder_OfflineVisibleImmediatelyWithoutRemoteCall(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	ctx := context.Background()
	rec := record(env.engine)

	require.NoError(t, env.engine.AddOrder(ctx, testOrder("OFF1", 4, 500)))

	orders := env.engine.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "OFF1", orders[0].ID)
	assert.Empty(t, env.remote.Calls(), "no remote call while offline")
	assert.Equal(t, []string{"OFF1"}, ids(env.engine.Queue().Snapshot()))
	assert.Equal(t, []ChangeKind{ChangeOrders, ChangeQueue}, rec.kinds())

	assert.Equal(t, []string{"OFF1"}, ids(env.snaps.LoadOrders(ctx)), "persisted before returning")
	assert.Equal(t, []string{"OFF1"}, ids(env.snaps.LoadQueue(ctx)))
}

func TestAddOrder_PermissionDeniedAlsoQueues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.remote.SetDown(true)

	env.engine.Bootstrap(ctx)
	require.Equal(t, DBPermissionDenied, env.engine.Connectivity().DB)
	env.remote.ResetCalls()

	require.NoError(t, env.engine.AddOrder(ctx, testOrder("PD1", 2, 1)))
	assert.Empty(t, env.remote.Calls())
	assert.Equal(t, 1, env.engine.Queue().Len())
}

func TestAddOrder_ConnectedSendsDirectly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)
	require.True(t, env.engine.Connectivity().CanSync())

	require.NoError(t, env.engine.AddOrder(ctx, testOrder("ON1", 2, 1)))

	assert.Equal(t, 1, env.remote.Count(testutil.OpCreateOrder))
	assert.Equal(t, 0, env.engine.Queue().Len())
	assert.Equal(t, []string{"ON1"}, ids(env.remote.RemoteOrders()))
}

func TestAddOrder_ConnectedSendFailureQueues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)

	env.remote.FailNext(testutil.OpCreateOrder, 1)
	require.NoError(t, env.engine.AddOrder(ctx, testOrder("F1", 2, 1)))

	assert.Equal(t, []string{"F1"}, ids(env.engine.Queue().Snapshot()))
	assert.Equal(t, []string{"F1"}, ids(env.engine.Orders()))
	assert.Empty(t, env.remote.RemoteOrders())

	// The queued order survives a poll that does not return it.
	env.engine.PollOnce(ctx)
	assert.Equal(t, []string{"F1"}, ids(env.engine.Orders()))

	report := env.engine.Drain(ctx)
	assert.Equal(t, []string{"F1"}, report.Sent)
	assert.Equal(t, []string{"F1"}, ids(env.remote.RemoteOrders()))
}

func TestAddOrder_RejectsDuplicatesAndInvalid(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	ctx := context.Background()

	require.NoError(t, env.engine.AddOrder(ctx, testOrder("D1", 1, 1)))

	err := env.engine.AddOrder(ctx, testOrder("D1", 1, 2))
	assert.True(t, IsCode(err, ErrCodeDuplicateOrder))
	assert.Equal(t, 1, env.engine.Queue().Len(), "duplicate never reaches the queue")

	bad := testOrder("D2", 1, 3)
	bad.TotalAmount++
	assert.True(t, IsCode(env.engine.AddOrder(ctx, bad), ErrCodeInvalidOrder))

	notPending := testOrder("D3", 1, 4)
	notPending.Status = ir.StatusDelivered
	assert.True(t, IsCode(env.engine.AddOrder(ctx, notPending), ErrCodeInvalidOrder))
}

func TestOrderTotal_FrozenAcrossMenuPriceEdits(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	ctx := context.Background()

	order := testOrder("T1", 3, 10)
	require.Equal(t, int64(50000), order.TotalAmount)
	require.NoError(t, env.engine.AddOrder(ctx, order))

	latte := env.engine.Menu()[0]
	latte.Price = 99000
	require.NoError(t, env.engine.UpdateMenuItem(ctx, latte))
	require.NoError(t, env.engine.DeleteMenuItem(ctx, "c1"))

	got := env.engine.Orders()[0]
	assert.Equal(t, int64(50000), got.TotalAmount)
	assert.Equal(t, int64(25000), got.Items[0].Price)
	assert.Equal(t, ir.SumLines(got.Items), got.TotalAmount)
	require.NoError(t, got.Validate())
}

func TestBootstrap_EmptyRemoteSeedsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	state := env.engine.Bootstrap(ctx)
	assert.Equal(t, DBConnected, state.DB)
	assert.Equal(t, 1, env.remote.Count(testutil.OpSyncMenu))
	assert.Equal(t, defaultTestMenu(), env.remote.RemoteMenu())

	env.engine.Bootstrap(ctx)
	assert.Equal(t, 1, env.remote.Count(testutil.OpSyncMenu), "populated store is not re-seeded")
}

func TestBootstrap_UnavailableWhileOnlineIsPermissionDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cached := defaultTestMenu()
	cached[0].Price = 27000
	require.NoError(t, env.snaps.SaveMenu(ctx, cached))
	env = &testEnv{
		engine: New(ctx, env.remote, env.snaps, WithDefaultMenu(defaultTestMenu())),
		remote: env.remote, db: env.db, snaps: env.snaps,
	}

	env.remote.SeedMenu(remoteTestMenu())
	env.remote.FailNext(testutil.OpFetchMenu, 1)

	state := env.engine.Bootstrap(ctx)
	assert.Equal(t, Connectivity{Online: true, DB: DBPermissionDenied}, state)
	assert.Equal(t, cached, env.engine.Menu(), "menu stays at the cached snapshot")
	assert.Equal(t, 1, len(env.remote.Calls()), "nothing else is attempted")
}

func TestBootstrap_RemoteMenuIsAuthoritativeAndIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.remote.SeedMenu(remoteTestMenu())
	env.remote.SeedOrders(testOrder("R1", 1, 10), testOrder("R2", 2, 20))
	env.remote.SeedEvent(ir.EventConfig{IsActive: true, EventName: "Launch", TableCount: 6, DiscountPercentage: 15})

	env.engine.Bootstrap(ctx)
	first := env.engine.Snapshot()
	assert.Equal(t, remoteTestMenu(), first.Menu)
	assert.Equal(t, []string{"R2", "R1"}, ids(first.Orders), "newest first")
	assert.Equal(t, 6, first.Event.TableCount)

	seq := env.lastSeq(t)
	env.engine.Bootstrap(ctx)
	second := env.engine.Snapshot()

	assert.Equal(t, first.Menu, second.Menu, "no duplicated items, no changed ids")
	assert.Equal(t, first.Orders, second.Orders)
	assert.Equal(t, seq, env.lastSeq(t), "second bootstrap writes nothing locally")
	assert.Equal(t, 0, env.remote.Count(testutil.OpSyncMenu))
	assert.Equal(t, remoteTestMenu(), env.snaps.LoadMenu(ctx, nil))
}

func TestBootstrap_OfflineDoesNothing(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))

	state := env.engine.Bootstrap(context.Background())
	assert.Equal(t, Connectivity{Online: false, DB: DBDisconnected}, state)
	assert.Empty(t, env.remote.Calls())
}

func TestBootstrap_OfflineTransitionPreemptsInflightRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.remote.SeedMenu(remoteTestMenu())
	env.remote.OnCall(func(op string) {
		if op == testutil.OpFetchMenu {
			env.engine.SetOnline(false)
		}
	})

	state := env.engine.Bootstrap(ctx)
	assert.Equal(t, Connectivity{Online: false, DB: DBDisconnected}, state)
	assert.Equal(t, defaultTestMenu(), env.engine.Menu(), "late result is discarded")
	assert.Equal(t, 1, len(env.remote.Calls()))
}

func TestBootstrap_ResendsPendingAdminEdits(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	ctx := context.Background()
	env.remote.SeedMenu(remoteTestMenu())
	env.remote.SeedEvent(ir.DefaultEventConfig())

	require.NoError(t, env.engine.SetAvailability(ctx, "s1", false))
	cfg := ir.EventConfig{IsActive: true, EventName: "Soft Launch", TableCount: 8, DiscountPercentage: 5}
	require.NoError(t, env.engine.UpdateEventConfig(ctx, cfg))
	require.Equal(t, store.PendingSync{Menu: true, Event: true}, env.engine.Pending())
	assert.Empty(t, env.remote.Calls(), "admin edits are not sent while offline")

	env.engine.SetOnline(true)
	env.engine.Bootstrap(ctx)

	assert.Equal(t, env.engine.Menu(), env.remote.RemoteMenu(), "local edit wins over the remote menu")
	assert.False(t, env.remote.RemoteMenu()[1].IsAvailable)
	got, ok := env.remote.RemoteEvent()
	require.True(t, ok)
	assert.Equal(t, cfg, got)
	assert.Equal(t, store.PendingSync{}, env.engine.Pending())
	assert.Equal(t, store.PendingSync{}, env.snaps.LoadPending(ctx))
}

func TestPoll_ValueEqualSnapshotsCauseNoWriteOrNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.remote.SeedMenu(remoteTestMenu())
	env.remote.SeedOrders(testOrder("P1", 1, 10), testOrder("P2", 2, 20), testOrder("P3", 3, 20))
	env.engine.Bootstrap(ctx)

	rec := record(env.engine)
	seq := env.lastSeq(t)

	assert.False(t, env.engine.PollOnce(ctx))
	env.remote.ReverseOrders(true)
	assert.False(t, env.engine.PollOnce(ctx))

	assert.Equal(t, seq, env.lastSeq(t), "no local-storage write")
	assert.Empty(t, rec.kinds(), "no state-change notification")
	assert.Equal(t, 3, env.remote.Count(testutil.OpFetchOrders), "bootstrap plus two polls")
}

func TestPoll_AdoptsRemoteChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.remote.SeedMenu(remoteTestMenu())
	env.engine.Bootstrap(ctx)
	rec := record(env.engine)

	env.remote.SeedOrders(testOrder("N1", 5, 99))
	env.remote.SeedEvent(ir.EventConfig{IsActive: true, EventName: "Night", TableCount: 3, DiscountPercentage: 0})

	assert.True(t, env.engine.PollOnce(ctx))
	assert.Equal(t, []string{"N1"}, ids(env.engine.Orders()))
	assert.Equal(t, "Night", env.engine.EventConfig().EventName)
	assert.Equal(t, []ChangeKind{ChangeOrders, ChangeEvent}, rec.kinds())
	assert.Equal(t, []string{"N1"}, ids(env.snaps.LoadOrders(ctx)))
}

func TestPoll_SkippedUnlessConnected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.False(t, env.engine.PollOnce(ctx), "disconnected before bootstrap")
	env.engine.SetOnline(false)
	assert.False(t, env.engine.PollOnce(ctx))
	assert.Empty(t, env.remote.Calls())
}

func TestPoll_FailureMovesToPermissionDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)

	env.remote.SetDown(true)
	env.engine.PollOnce(ctx)
	assert.Equal(t, DBPermissionDenied, env.engine.Connectivity().DB)

	env.remote.SetDown(false)
	env.engine.Bootstrap(ctx)
	assert.Equal(t, DBConnected, env.engine.Connectivity().DB)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)
	require.NoError(t, env.engine.AddOrder(ctx, testOrder("S1", 1, 1)))

	require.NoError(t, env.engine.UpdateOrderStatus(ctx, "S1", ir.StatusPreparing))
	assert.Equal(t, ir.StatusPreparing, env.engine.Orders()[0].Status)
	assert.Equal(t, ir.StatusPreparing, env.remote.RemoteOrders()[0].Status)

	err := env.engine.UpdateOrderStatus(ctx, "S1", ir.StatusCancelled)
	assert.True(t, IsCode(err, ErrCodeInvalidTransition))
	assert.True(t, IsCode(env.engine.UpdateOrderStatus(ctx, "nope", ir.StatusDelivered), ErrCodeUnknownOrder))
	assert.True(t, IsCode(env.engine.UpdateOrderStatus(ctx, "S1", "lost"), ErrCodeInvalidTransition))

	require.NoError(t, env.engine.UpdateOrderStatus(ctx, "S1", ir.StatusDelivered))
	assert.Equal(t, 2, env.remote.Count(testutil.OpPatchStatus))
}

func TestUpdateOrderStatus_QueuedOrderCarriesNewStatus(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	ctx := context.Background()
	require.NoError(t, env.engine.AddOrder(ctx, testOrder("QS1", 1, 1)))

	require.NoError(t, env.engine.UpdateOrderStatus(ctx, "QS1", ir.StatusCancelled))
	assert.Equal(t, ir.StatusCancelled, env.engine.Queue().Snapshot()[0].Status)

	env.engine.SetOnline(true)
	env.engine.Bootstrap(ctx)
	env.engine.Drain(ctx)

	assert.Equal(t, 0, env.remote.Count(testutil.OpPatchStatus), "never patched before creation")
	require.Len(t, env.remote.RemoteOrders(), 1)
	assert.Equal(t, ir.StatusCancelled, env.remote.RemoteOrders()[0].Status)
}

func TestUpdateEventConfig(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)

	cfg := ir.EventConfig{IsActive: true, EventName: "Grand Opening", TableCount: 20, DiscountPercentage: 10}
	require.NoError(t, env.engine.UpdateEventConfig(ctx, cfg))
	got, _ := env.remote.RemoteEvent()
	assert.Equal(t, cfg, got)
	assert.Equal(t, cfg, env.snaps.LoadEvent(ctx, ir.DefaultEventConfig()))

	err := env.engine.UpdateEventConfig(ctx, ir.EventConfig{TableCount: 0})
	assert.True(t, IsCode(err, ErrCodeInvalidEventConfig))
}

func TestUpdateEventConfig_FailedPushIsResentOnPoll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)

	env.remote.FailNext(testutil.OpReplaceEvent, 1)
	cfg := ir.EventConfig{IsActive: true, EventName: "Retry", TableCount: 4}
	require.NoError(t, env.engine.UpdateEventConfig(ctx, cfg))
	assert.True(t, env.engine.Pending().Event)

	env.engine.PollOnce(ctx)
	got, _ := env.remote.RemoteEvent()
	assert.Equal(t, cfg, got)
	assert.False(t, env.engine.Pending().Event)
	assert.Equal(t, cfg, env.engine.EventConfig(), "pending edit is not overwritten by the poll")
}

func TestMenuMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)
	env.remote.ResetCalls()

	item := ir.MenuItem{ID: "e1", NameEN: "Event Brew", NameID: "Seduhan Acara", Price: 30000,
		Category: ir.CategoryEvent, HealthyScore: 7, Ingredients: []string{"Espresso"}, IsAvailable: true}
	require.NoError(t, env.engine.AddMenuItem(ctx, item))
	assert.True(t, IsCode(env.engine.AddMenuItem(ctx, item), ErrCodeDuplicateMenuItem))

	item.Price = 32000
	require.NoError(t, env.engine.UpdateMenuItem(ctx, item))
	require.NoError(t, env.engine.SetAvailability(ctx, "e1", false))
	require.NoError(t, env.engine.DeleteMenuItem(ctx, "s1"))

	assert.True(t, IsCode(env.engine.DeleteMenuItem(ctx, "zzz"), ErrCodeUnknownMenuItem))
	assert.True(t, IsCode(env.engine.UpdateMenuItem(ctx, ir.MenuItem{ID: "zzz", Category: ir.CategorySnacks, HealthyScore: 1}), ErrCodeUnknownMenuItem))
	assert.True(t, IsCode(env.engine.AddMenuItem(ctx, ir.MenuItem{ID: "bad"}), ErrCodeInvalidMenuItem))

	assert.Equal(t, []string{"c1", "e1"}, []string{env.engine.Menu()[0].ID, env.engine.Menu()[1].ID})
	assert.Equal(t, 4, env.remote.Count(testutil.OpSyncMenu), "every successful edit re-syncs the full menu")
	assert.Equal(t, env.engine.Menu(), env.remote.RemoteMenu())
}

func TestSetMenu_RejectsDuplicateIDs(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	menu := append(defaultTestMenu(), defaultTestMenu()[0])

	err := env.engine.SetMenu(context.Background(), menu)
	assert.True(t, IsCode(err, ErrCodeDuplicateMenuItem))
	assert.Equal(t, defaultTestMenu(), env.engine.Menu())
}

func TestReset(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	ctx := context.Background()
	require.NoError(t, env.engine.AddOrder(ctx, testOrder("X1", 1, 1)))
	require.NoError(t, env.engine.DeleteMenuItem(ctx, "c1"))

	env.engine.Reset(ctx)

	s := env.engine.Snapshot()
	assert.Equal(t, defaultTestMenu(), s.Menu)
	assert.Empty(t, s.Orders)
	assert.Empty(t, s.Queue)
	assert.Equal(t, store.PendingSync{}, s.Pending)
	assert.Empty(t, env.snaps.LoadQueue(ctx))
	assert.Empty(t, env.remote.Calls())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false))
	calls := 0
	unsubscribe := env.engine.Subscribe(func(Change) { calls++ })

	env.engine.SetOnline(true)
	assert.Equal(t, 1, calls)
	env.engine.SetOnline(true)
	assert.Equal(t, 1, calls, "no change, no notification")

	unsubscribe()
	env.engine.SetOnline(false)
	assert.Equal(t, 1, calls)
}

func TestParseDrainStrategy(t *testing.T) {
	s, err := ParseDrainStrategy("sequential")
	require.NoError(t, err)
	assert.Equal(t, DrainSequential, s)

	_, err = ParseDrainStrategy("parallel")
	assert.Error(t, err)
}

func TestRun_ReconnectDrainsQueueAndPolls(t *testing.T) {
	env := newTestEnv(t, WithInitialOnline(false), WithPollInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- env.engine.Run(ctx) }()

	require.NoError(t, env.engine.AddOrder(context.Background(), testOrder("RUN1", 1, 1)))
	require.NoError(t, env.engine.AddOrder(context.Background(), testOrder("RUN2", 1, 2)))
	assert.Empty(t, env.remote.Calls())

	env.engine.SetOnline(true)

	require.Eventually(t, func() bool {
		return env.engine.Queue().Len() == 0 && len(env.remote.RemoteOrders()) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"RUN1", "RUN2"}, ids(env.remote.RemoteOrders()), "sent in submission order")
	assert.True(t, env.engine.Connectivity().CanSync())

	env.remote.SeedOrders(testOrder("OTHER", 9, 50))
	require.Eventually(t, func() bool {
		return ir.FindOrder(env.engine.Orders(), "OTHER") >= 0
	}, 2*time.Second, 5*time.Millisecond, "poll loop picks up remote orders")

	env.engine.SetOnline(false)
	require.Eventually(t, func() bool {
		return env.engine.Connectivity() == Connectivity{Online: false, DB: DBDisconnected}
	}, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond) // let an in-flight tick finish
	env.remote.ResetCalls()
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, env.remote.Calls(), "polling stops while offline")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestUpdateOrderStatus_DuringSendIsPatchedAfterCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)
	env.remote.ResetCalls()

	var statusErr error
	updated := false
	env.remote.OnCall(func(op string) {
		if op == testutil.OpCreateOrder && !updated {
			updated = true
			statusErr = env.engine.UpdateOrderStatus(ctx, "S1", ir.StatusPreparing)
		}
	})

	require.NoError(t, env.engine.AddOrder(ctx, testOrder("S1", 2, 10)))
	require.NoError(t, statusErr)

	assert.Equal(t, []testutil.Call{
		{Op: testutil.OpCreateOrder, ID: "S1"},
		{Op: testutil.OpPatchStatus, ID: "S1"},
	}, env.remote.Calls(), "the status follows the create, never precedes it")
	require.Len(t, env.remote.RemoteOrders(), 1)
	assert.Equal(t, ir.StatusPreparing, env.remote.RemoteOrders()[0].Status)
	assert.Equal(t, ir.StatusPreparing, env.engine.Orders()[0].Status)
	assert.Equal(t, 0, env.engine.Queue().Len())
}

func TestUpdateOrderStatus_DuringFailedSendIsQueued(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Bootstrap(ctx)
	env.remote.FailOrder(true, "S2")

	updated := false
	env.remote.OnCall(func(op string) {
		if op == testutil.OpCreateOrder && !updated {
			updated = true
			require.NoError(t, env.engine.UpdateOrderStatus(ctx, "S2", ir.StatusCancelled))
		}
	})

	require.NoError(t, env.engine.AddOrder(ctx, testOrder("S2", 2, 10)))

	queued := env.engine.Queue().Snapshot()
	require.Len(t, queued, 1)
	assert.Equal(t, ir.StatusCancelled, queued[0].Status, "queued copy carries the later status")
	assert.Zero(t, env.remote.Count(testutil.OpPatchStatus))
}
