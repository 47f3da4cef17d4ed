package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	"github.com/yungbote/storefront-backend/internal/domain"
)

type fakeStore struct {
	saves   chan []domain.LineItem
	deletes chan uuid.UUID
	seed    []domain.LineItem
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		saves:   make(chan []domain.LineItem, 16),
		deletes: make(chan uuid.UUID, 4),
	}
}

func (f *fakeStore) Save(ctx context.Context, sessionID uuid.UUID, items []domain.LineItem) error {
	f.saves <- items
	return f.saveErr
}

func (f *fakeStore) Load(ctx context.Context, sessionID uuid.UUID) ([]domain.LineItem, bool, error) {
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	if f.seed == nil {
		return nil, false, nil
	}
	return f.seed, true, nil
}

func (f *fakeStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	f.deletes <- sessionID
	return nil
}

type fakeRemote struct {
	pushes  chan []domain.LineItem
	pulled  []domain.LineItem
	hasCart bool
	pullErr error
	pushErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{pushes: make(chan []domain.LineItem, 16)}
}

func (f *fakeRemote) PullCart(ctx context.Context) ([]domain.LineItem, bool, error) {
	if f.pullErr != nil {
		return nil, false, f.pullErr
	}
	return f.pulled, f.hasCart, nil
}

func (f *fakeRemote) PushCart(ctx context.Context, items []domain.LineItem) error {
	f.pushes <- items
	return f.pushErr
}

func awaitItems(t *testing.T, ch chan []domain.LineItem, what string) []domain.LineItem {
	t.Helper()
	select {
	case items := <-ch:
		return items
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return nil
	}
}

func newTestEngine(t *testing.T, seed []domain.LineItem, store SnapshotStore, remote RemoteSync) *Engine {
	t.Helper()
	e := NewEngine(testutil.Logger(t), uuid.New(), seed, store, remote)
	t.Cleanup(e.Close)
	return e
}

func TestEngineAddDerivesTotals(t *testing.T) {
	e := newTestEngine(t, nil, nil, nil)

	snap := e.Add(tee, 1)
	if snap.ItemCount != 1 || snap.SubtotalCents != 1999 {
		t.Fatalf("after first add: count=%d subtotal=%d", snap.ItemCount, snap.SubtotalCents)
	}
	snap = e.Add(tee, 1)
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 {
		t.Fatalf("same product must merge: %+v", snap.Items)
	}
	if snap.ItemCount != 2 || snap.SubtotalCents != 3998 {
		t.Fatalf("after second add: count=%d subtotal=%d", snap.ItemCount, snap.SubtotalCents)
	}
	if snap.Subtotal != "$39.98" {
		t.Fatalf("formatted subtotal = %q", snap.Subtotal)
	}
}

func TestEngineRemoveOneDownToEmpty(t *testing.T) {
	e := newTestEngine(t, nil, nil, nil)
	e.Add(tee, 2)

	snap := e.RemoveOne(tee.ID)
	if snap.ItemCount != 1 {
		t.Fatalf("count after removeOne = %d", snap.ItemCount)
	}
	snap = e.RemoveOne(tee.ID)
	if !snap.Empty() || snap.SubtotalCents != 0 || snap.ItemCount != 0 {
		t.Fatalf("cart must be empty: %+v", snap)
	}
}

func TestEngineSetQuantityFloor(t *testing.T) {
	e := newTestEngine(t, nil, nil, nil)
	e.Add(tee, 1)

	snap := e.SetQuantity(tee.ID, 4)
	if snap.Items[0].Quantity != 4 || snap.SubtotalCents != 4*1999 {
		t.Fatalf("setQuantity(4): %+v", snap)
	}
	for _, qty := range []int{0, -3} {
		snap = e.SetQuantity(tee.ID, qty)
		if snap.Items[0].Quantity != 4 {
			t.Fatalf("setQuantity(%d) must not change state: %+v", qty, snap)
		}
	}
}

func TestEngineRemoveAndClear(t *testing.T) {
	e := newTestEngine(t, nil, nil, nil)
	e.Add(tee, 5)
	e.Add(tote, 1)

	snap := e.Remove(tee.ID)
	if len(snap.Items) != 1 || snap.Items[0].ProductID != tote.ID {
		t.Fatalf("remove: %+v", snap.Items)
	}
	// Removing again is idempotent.
	snap = e.Remove(tee.ID)
	if len(snap.Items) != 1 {
		t.Fatalf("second remove changed state: %+v", snap.Items)
	}
	snap = e.Clear()
	if !snap.Empty() {
		t.Fatalf("clear: %+v", snap)
	}
}

func TestEngineMutationTriggersSaveAndPush(t *testing.T) {
	store := newFakeStore()
	remote := newFakeRemote()
	e := newTestEngine(t, nil, store, remote)

	e.Add(tee, 2)

	saved := awaitItems(t, store.saves, "snapshot save")
	if len(saved) != 1 || saved[0].Quantity != 2 {
		t.Fatalf("saved items: %+v", saved)
	}
	pushed := awaitItems(t, remote.pushes, "remote push")
	if len(pushed) != 1 || pushed[0].ProductID != tee.ID {
		t.Fatalf("pushed items: %+v", pushed)
	}
}

func TestEngineNoopSkipsSaveAndPush(t *testing.T) {
	store := newFakeStore()
	remote := newFakeRemote()
	e := newTestEngine(t, nil, store, remote)

	e.RemoveOne(99)
	e.SetQuantity(99, 3)
	e.Clear()

	select {
	case items := <-store.saves:
		t.Fatalf("no-op must not save, got %+v", items)
	case items := <-remote.pushes:
		t.Fatalf("no-op must not push, got %+v", items)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEnginePushFailureKeepsLocalState(t *testing.T) {
	remote := newFakeRemote()
	remote.pushErr = errors.New("upstream down")
	e := newTestEngine(t, nil, nil, remote)

	e.Add(tee, 1)
	awaitItems(t, remote.pushes, "remote push")

	if snap := e.Snapshot(); snap.ItemCount != 1 {
		t.Fatalf("push failure must not roll back the mutation: %+v", snap)
	}
}

func TestEngineAdoptRemote(t *testing.T) {
	e := newTestEngine(t, []domain.LineItem{
		{ProductID: tee.ID, Title: tee.Name, UnitPriceCents: tee.PriceCents, Quantity: 1},
	}, nil, nil)

	remote := []domain.LineItem{
		{ProductID: tote.ID, Title: tote.Name, UnitPriceCents: tote.PriceCents, Quantity: 3},
	}
	if !e.AdoptRemote(remote) {
		t.Fatalf("pristine engine must adopt the remote cart")
	}
	snap := e.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ProductID != tote.ID || snap.ItemCount != 3 {
		t.Fatalf("adopted snapshot: %+v", snap)
	}
}

func TestEngineAdoptRemoteRejectedAfterMutation(t *testing.T) {
	e := newTestEngine(t, nil, nil, nil)
	e.Add(tee, 1)

	if e.AdoptRemote([]domain.LineItem{{ProductID: tote.ID, Quantity: 1, UnitPriceCents: 1}}) {
		t.Fatalf("a mutated session must keep its local state")
	}
	if snap := e.Snapshot(); snap.Items[0].ProductID != tee.ID {
		t.Fatalf("local state was replaced: %+v", snap.Items)
	}
}

func TestEngineAdoptRemoteRejectedAfterClose(t *testing.T) {
	e := NewEngine(testutil.Logger(t), uuid.New(), nil, nil, nil)
	e.Close()
	if e.AdoptRemote([]domain.LineItem{{ProductID: tee.ID, Quantity: 1, UnitPriceCents: 1}}) {
		t.Fatalf("a closed engine must not adopt a late pull result")
	}
}

func TestEngineSubscribe(t *testing.T) {
	e := newTestEngine(t, nil, nil, nil)

	var got []domain.CartSnapshot
	unsub := e.Subscribe(func(snap domain.CartSnapshot) {
		got = append(got, snap)
	})

	e.Add(tee, 1)
	e.Add(tee, 1)
	e.RemoveOne(99) // no-op, no notification
	if len(got) != 2 {
		t.Fatalf("notifications = %d, want 2", len(got))
	}
	if got[1].ItemCount != 2 {
		t.Fatalf("last notified count = %d", got[1].ItemCount)
	}

	unsub()
	e.Add(tote, 1)
	if len(got) != 2 {
		t.Fatalf("unsubscribed listener was notified")
	}
}

func TestEngineConcurrentMutationsNotifyInOrder(t *testing.T) {
	e := newTestEngine(t, nil, nil, nil)

	// Listener invocations are serialized, so appends here need no lock.
	var counts []int
	e.Subscribe(func(snap domain.CartSnapshot) {
		counts = append(counts, snap.ItemCount)
	})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Add(tee, 1)
		}()
	}
	wg.Wait()

	if len(counts) != n {
		t.Fatalf("notifications = %d, want %d", len(counts), n)
	}
	// Each add grows the count by one; ordered delivery means subscribers see
	// 1..n with no older snapshot arriving after a newer one.
	for i, got := range counts {
		if got != i+1 {
			t.Fatalf("notification %d carried count %d, want %d (out-of-order delivery)", i, got, i+1)
		}
	}
}

func TestEngineSeedIsSanitized(t *testing.T) {
	seed := []domain.LineItem{
		{ProductID: 1, Title: "Tee", UnitPriceCents: 1999, Quantity: 1},
		{ProductID: 1, Title: "Tee", UnitPriceCents: 1999, Quantity: 2},
		{ProductID: 2, Title: "Broken", UnitPriceCents: 100, Quantity: 0},
	}
	e := newTestEngine(t, seed, nil, nil)
	snap := e.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 3 {
		t.Fatalf("seed not sanitized: %+v", snap.Items)
	}
}
