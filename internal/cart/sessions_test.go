package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	"github.com/yungbote/storefront-backend/internal/domain"
)

func TestSessionsGetReturnsSameEngine(t *testing.T) {
	s := NewSessions(testutil.Logger(t), nil, nil)
	t.Cleanup(s.Close)

	id := uuid.New()
	if s.Get(context.Background(), id) != s.Get(context.Background(), id) {
		t.Fatalf("repeated Get must return the same engine")
	}
	if s.Get(context.Background(), uuid.New()) == s.Get(context.Background(), id) {
		t.Fatalf("distinct sessions must get distinct engines")
	}
}

func TestSessionsRehydrateFromStore(t *testing.T) {
	store := newFakeStore()
	store.seed = []domain.LineItem{
		{ProductID: tee.ID, Title: tee.Name, UnitPriceCents: tee.PriceCents, Quantity: 2},
	}
	s := NewSessions(testutil.Logger(t), store, nil)
	t.Cleanup(s.Close)

	e := s.Get(context.Background(), uuid.New())
	snap := e.Snapshot()
	if snap.ItemCount != 2 || snap.SubtotalCents != 3998 {
		t.Fatalf("rehydrated snapshot: %+v", snap)
	}
}

func TestSessionsUnreadableSnapshotStartsEmpty(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("corrupt payload")
	s := NewSessions(testutil.Logger(t), store, nil)
	t.Cleanup(s.Close)

	e := s.Get(context.Background(), uuid.New())
	if !e.Snapshot().Empty() {
		t.Fatalf("load failure must fall back to an empty cart")
	}
}

func TestSessionsRemotePullOverridesSeed(t *testing.T) {
	store := newFakeStore()
	store.seed = []domain.LineItem{
		{ProductID: tee.ID, Title: tee.Name, UnitPriceCents: tee.PriceCents, Quantity: 1},
	}
	remote := newFakeRemote()
	remote.hasCart = true
	remote.pulled = []domain.LineItem{
		{ProductID: tote.ID, Title: tote.Name, UnitPriceCents: tote.PriceCents, Quantity: 5},
	}
	s := NewSessions(testutil.Logger(t), store, remote)
	t.Cleanup(s.Close)

	e := s.Get(context.Background(), uuid.New())

	// The pull runs in the background; the re-save it triggers marks adoption.
	awaitItems(t, store.saves, "post-adoption save")
	snap := e.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ProductID != tote.ID || snap.ItemCount != 5 {
		t.Fatalf("remote cart must win over the local seed: %+v", snap)
	}
}

func TestSessionsPullFailureKeepsLocalSeed(t *testing.T) {
	store := newFakeStore()
	store.seed = []domain.LineItem{
		{ProductID: tee.ID, Title: tee.Name, UnitPriceCents: tee.PriceCents, Quantity: 1},
	}
	remote := newFakeRemote()
	remote.pullErr = errors.New("upstream down")
	s := NewSessions(testutil.Logger(t), store, remote)
	t.Cleanup(s.Close)

	e := s.Get(context.Background(), uuid.New())
	time.Sleep(100 * time.Millisecond)
	snap := e.Snapshot()
	if snap.ItemCount != 1 || snap.Items[0].ProductID != tee.ID {
		t.Fatalf("failed pull must keep local state: %+v", snap)
	}
}

func TestSessionsAbsentRemoteCartKeepsLocalSeed(t *testing.T) {
	store := newFakeStore()
	store.seed = []domain.LineItem{
		{ProductID: tee.ID, Title: tee.Name, UnitPriceCents: tee.PriceCents, Quantity: 1},
	}
	remote := newFakeRemote() // hasCart stays false
	s := NewSessions(testutil.Logger(t), store, remote)
	t.Cleanup(s.Close)

	e := s.Get(context.Background(), uuid.New())
	time.Sleep(100 * time.Millisecond)
	if e.Snapshot().ItemCount != 1 {
		t.Fatalf("absent remote cart must not wipe local state")
	}
}

func TestSessionsOnCreateHook(t *testing.T) {
	s := NewSessions(testutil.Logger(t), nil, nil)
	t.Cleanup(s.Close)

	var created []*Engine
	s.OnCreate(func(e *Engine) { created = append(created, e) })

	id := uuid.New()
	e := s.Get(context.Background(), id)
	s.Get(context.Background(), id)

	if len(created) != 1 || created[0] != e {
		t.Fatalf("onCreate must fire exactly once per new engine, fired %d times", len(created))
	}
}

func TestSessionsDrop(t *testing.T) {
	store := newFakeStore()
	s := NewSessions(testutil.Logger(t), store, nil)
	t.Cleanup(s.Close)

	id := uuid.New()
	e := s.Get(context.Background(), id)
	e.Add(tee, 1)
	awaitItems(t, store.saves, "snapshot save")

	s.Drop(context.Background(), id)

	select {
	case deleted := <-store.deletes:
		if deleted != id {
			t.Fatalf("deleted snapshot for %s, want %s", deleted, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Drop must delete the durable snapshot")
	}

	// A dropped then re-fetched session starts from the store again.
	if next := s.Get(context.Background(), id); next == e {
		t.Fatalf("Drop must forget the old engine")
	}
}
