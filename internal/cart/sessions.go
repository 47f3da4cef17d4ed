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

const (
	loadTimeout = 5 * time.Second
	pullTimeout = 10 * time.Second
)

// Sessions owns one cart engine per client session. Engines are created
// lazily on first access, rehydrated from the snapshot store, and then
// reconciled against the remote cart in the background.
type Sessions struct {
	log    *logger.Logger
	store  SnapshotStore
	remote RemoteSync

	mu       sync.Mutex
	engines  map[uuid.UUID]*Engine
	closed   bool
	onCreate func(*Engine)
}

func NewSessions(log *logger.Logger, store SnapshotStore, remote RemoteSync) *Sessions {
	return &Sessions{
		log:     log.With("component", "CartSessions"),
		store:   store,
		remote:  remote,
		engines: make(map[uuid.UUID]*Engine),
	}
}

// OnCreate registers a hook invoked once for every newly created engine,
// before it is returned from Get. Set it during wiring, before any Get.
func (s *Sessions) OnCreate(fn func(*Engine)) {
	s.onCreate = fn
}

// Get returns the engine for the session, creating it on first access.
//
// Creation order: the locally persisted snapshot seeds the engine
// synchronously (missing or unreadable payloads fall back to an empty cart),
// then a background pull asks the remote cart endpoint for its copy. A
// successful pull takes precedence over the local seed; a failed pull leaves
// the session on its local state. The pull runs under the engine's lifecycle
// context so a torn-down engine can never adopt a late result.
func (s *Sessions) Get(ctx context.Context, sessionID uuid.UUID) *Engine {
	s.mu.Lock()
	if e, ok := s.engines[sessionID]; ok {
		s.mu.Unlock()
		return e
	}
	s.mu.Unlock()

	seed := s.loadSeed(ctx, sessionID)
	e := NewEngine(s.log, sessionID, seed, s.store, s.remote)

	s.mu.Lock()
	if existing, ok := s.engines[sessionID]; ok {
		// Lost the creation race; keep the first engine.
		s.mu.Unlock()
		e.Close()
		return existing
	}
	if s.closed {
		s.mu.Unlock()
		e.Close()
		return e
	}
	s.engines[sessionID] = e
	s.mu.Unlock()

	if s.onCreate != nil {
		s.onCreate(e)
	}
	if s.remote != nil {
		go s.reconcileRemote(e)
	}
	return e
}

// Drop closes and forgets the session's engine and deletes its durable
// snapshot. Used for explicit session reset.
func (s *Sessions) Drop(ctx context.Context, sessionID uuid.UUID) {
	s.mu.Lock()
	e, ok := s.engines[sessionID]
	delete(s.engines, sessionID)
	s.mu.Unlock()
	if ok {
		e.Close()
	}
	if s.store != nil {
		if err := s.store.Delete(ctx, sessionID); err != nil {
			s.log.Warn("Cart snapshot delete failed", "error", err, "session_id", sessionID.String())
		}
	}
}

// Close tears down every engine. Outstanding pulls and pushes are left to
// finish in the background but can no longer touch engine state.
func (s *Sessions) Close() {
	s.mu.Lock()
	engines := s.engines
	s.engines = make(map[uuid.UUID]*Engine)
	s.closed = true
	s.mu.Unlock()
	for _, e := range engines {
		e.Close()
	}
}

func (s *Sessions) loadSeed(ctx context.Context, sessionID uuid.UUID) []domain.LineItem {
	if s.store == nil {
		return nil
	}
	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	items, ok, err := s.store.Load(loadCtx, sessionID)
	if m := observability.Current(); m != nil {
		m.ObserveSnapshotLoad(loadOutcome(ok, err))
	}
	if err != nil {
		// Unreadable snapshot: start empty instead of failing construction.
		s.log.Warn("Cart snapshot load failed, starting empty", "error", err, "session_id", sessionID.String())
		return nil
	}
	if !ok {
		return nil
	}
	return items
}

func (s *Sessions) reconcileRemote(e *Engine) {
	ctx, cancel := context.WithTimeout(e.ctx, pullTimeout)
	defer cancel()
	items, ok, err := s.remote.PullCart(ctx)
	if m := observability.Current(); m != nil {
		m.ObserveRemotePull(loadOutcome(ok, err))
	}
	if err != nil {
		s.log.Warn("Cart remote pull failed, keeping local state", "error", err, "session_id", e.SessionID().String())
		return
	}
	if !ok {
		return
	}
	if adopted := e.AdoptRemote(items); adopted {
		s.log.Debug("Adopted remote cart", "session_id", e.SessionID().String(), "items", len(items))
	}
}

func loadOutcome(ok bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case !ok:
		return "absent"
	default:
		return "ok"
	}
}
