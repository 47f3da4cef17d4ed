package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// SnapshotStore is the durable local store for a session's cart. Consumers
// define the interface; gorm and redis implementations live elsewhere.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID uuid.UUID, items []domain.LineItem) error
	Load(ctx context.Context, sessionID uuid.UUID) ([]domain.LineItem, bool, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// RemoteSync is the upstream cart endpoint. Pull runs once per session at
// rehydration; Push is fire-and-forget after each mutation.
type RemoteSync interface {
	PullCart(ctx context.Context) ([]domain.LineItem, bool, error)
	PushCart(ctx context.Context, items []domain.LineItem) error
}

const backgroundOpTimeout = 10 * time.Second

// Engine is the exclusive owner of one session's cart aggregate. Views get
// read-only snapshots and a change subscription; all mutation goes through
// the five operations so the invariants are enforced in one place.
//
// Every operation is synchronous with respect to the in-memory state and
// returns the new snapshot immediately; the durable save and the remote push
// it triggers run on background goroutines tied to the engine's lifecycle
// context, so a Close cancels anything still in flight.
type Engine struct {
	log       *logger.Logger
	sessionID uuid.UUID
	store     SnapshotStore
	remote    RemoteSync

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	items     []domain.LineItem
	mutated   bool
	listeners map[int]func(domain.CartSnapshot)
	nextSub   int

	// notifyMu serializes listener delivery in mutation order. It is always
	// acquired while mu is still held, so two concurrent mutations can never
	// deliver their snapshots to subscribers out of order.
	notifyMu sync.Mutex
}

// NewEngine builds an engine seeded with already-validated items (pass nil
// for an empty cart). Store and remote may each be nil.
func NewEngine(log *logger.Logger, sessionID uuid.UUID, seed []domain.LineItem, store SnapshotStore, remote RemoteSync) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		log:       log.With("component", "CartEngine", "session_id", sessionID.String()),
		sessionID: sessionID,
		store:     store,
		remote:    remote,
		ctx:       ctx,
		cancel:    cancel,
		items:     sanitizeItems(seed),
		listeners: make(map[int]func(domain.CartSnapshot)),
	}
}

// Snapshot returns the current read-only view.
func (e *Engine) Snapshot() domain.CartSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.NewCartSnapshot(e.items)
}

// Add merges quantity into an existing line item or appends a new one at the
// end of the ordered sequence. A non-positive quantity is a no-op.
func (e *Engine) Add(p domain.Product, quantity int) domain.CartSnapshot {
	return e.mutate("add", func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return applyAdd(items, p, quantity)
	})
}

// RemoveOne decrements the item's quantity, deleting the line entirely when
// it reaches zero. Absent ids are a harmless no-op.
func (e *Engine) RemoveOne(productID int64) domain.CartSnapshot {
	return e.mutate("remove_one", func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return applyRemoveOne(items, productID)
	})
}

// SetQuantity sets the exact quantity for an item. Quantities below 1 and
// absent ids are no-ops; use Remove to delete a line.
func (e *Engine) SetQuantity(productID int64, quantity int) domain.CartSnapshot {
	return e.mutate("set_quantity", func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return applySetQuantity(items, productID, quantity)
	})
}

// Remove deletes the line item regardless of quantity. Absent ids are a
// harmless no-op.
func (e *Engine) Remove(productID int64) domain.CartSnapshot {
	return e.mutate("remove", func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return applyRemove(items, productID)
	})
}

// Clear empties the cart.
func (e *Engine) Clear() domain.CartSnapshot {
	return e.mutate("clear", func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return applyClear(items)
	})
}

func (e *Engine) mutate(op string, fn func([]domain.LineItem) ([]domain.LineItem, bool)) domain.CartSnapshot {
	e.mu.Lock()
	next, changed := fn(e.items)
	if changed {
		e.items = next
		e.mutated = true
	}
	snap := domain.NewCartSnapshot(e.items)
	if !changed {
		e.mu.Unlock()
		if m := observability.Current(); m != nil {
			m.ObserveCartOp(op, changed)
		}
		return snap
	}
	fns := e.listenerList()
	e.notifyMu.Lock()
	e.mu.Unlock()

	if m := observability.Current(); m != nil {
		m.ObserveCartOp(op, changed)
	}
	for _, notify := range fns {
		notify(snap)
	}
	e.notifyMu.Unlock()

	go e.saveSnapshot(snap.Items)
	go e.pushSnapshot(snap.Items)
	return snap
}

// AdoptRemote replaces local state with a successfully pulled remote cart.
// The remote cart is authoritative at startup, but only while the session
// has not yet expressed intent of its own: once a local mutation has landed,
// or the engine is closed, the stale pull result is discarded.
func (e *Engine) AdoptRemote(items []domain.LineItem) bool {
	e.mu.Lock()
	if e.mutated || e.ctx.Err() != nil {
		e.mu.Unlock()
		return false
	}
	e.items = sanitizeItems(items)
	snap := domain.NewCartSnapshot(e.items)
	fns := e.listenerList()
	e.notifyMu.Lock()
	e.mu.Unlock()

	for _, notify := range fns {
		notify(snap)
	}
	e.notifyMu.Unlock()

	go e.saveSnapshot(snap.Items)
	return true
}

// Subscribe registers a change listener invoked with every new snapshot,
// serialized in mutation order. Listeners must not mutate the cart from
// inside the callback. The returned function unsubscribes.
func (e *Engine) Subscribe(fn func(domain.CartSnapshot)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.listeners[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Close cancels the lifecycle context. Outstanding saves and pushes may
// still complete in the background but can no longer start, and a pending
// remote pull can no longer be adopted.
func (e *Engine) Close() {
	e.cancel()
	e.mu.Lock()
	e.listeners = make(map[int]func(domain.CartSnapshot))
	e.mu.Unlock()
}

func (e *Engine) SessionID() uuid.UUID { return e.sessionID }

// listenerList snapshots the listener set. Caller holds mu.
func (e *Engine) listenerList() []func(domain.CartSnapshot) {
	fns := make([]func(domain.CartSnapshot), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// saveSnapshot writes the durable snapshot. Failures are logged and
// swallowed: the in-memory aggregate stays the source of truth for the
// session.
func (e *Engine) saveSnapshot(items []domain.LineItem) {
	if e.store == nil || e.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(e.ctx, backgroundOpTimeout)
	defer cancel()
	err := e.store.Save(ctx, e.sessionID, items)
	if m := observability.Current(); m != nil {
		m.ObserveSnapshotSave(outcome(err))
	}
	if err != nil {
		e.log.Warn("Cart snapshot save failed", "error", err)
	}
}

// pushSnapshot mirrors the full current item list to the remote cart
// endpoint. Failures never roll back the local mutation; the worst case is
// an out-of-sync remote cart. Pushes are not serialized against each other
// on purpose: each one carries the complete snapshot, so only payload
// content matters, not completion order.
func (e *Engine) pushSnapshot(items []domain.LineItem) {
	if e.remote == nil || e.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(e.ctx, backgroundOpTimeout)
	defer cancel()
	err := e.remote.PushCart(ctx, items)
	if m := observability.Current(); m != nil {
		m.ObserveRemotePush(outcome(err))
	}
	if err != nil {
		e.log.Warn("Cart remote push failed", "error", err)
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
