package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/cart"
	"github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/sse"
)

// CartService is the mutation surface handlers talk to. It resolves the
// session's engine and bridges every state change onto the session's SSE
// channel so subscribed views re-render.
type CartService interface {
	Snapshot(ctx context.Context, sessionID uuid.UUID) domain.CartSnapshot
	Add(ctx context.Context, sessionID uuid.UUID, product domain.Product, quantity int) domain.CartSnapshot
	RemoveOne(ctx context.Context, sessionID uuid.UUID, productID int64) domain.CartSnapshot
	SetQuantity(ctx context.Context, sessionID uuid.UUID, productID int64, quantity int) domain.CartSnapshot
	Remove(ctx context.Context, sessionID uuid.UUID, productID int64) domain.CartSnapshot
	Clear(ctx context.Context, sessionID uuid.UUID) domain.CartSnapshot
	Reset(ctx context.Context, sessionID uuid.UUID)
	Close()
}

type cartService struct {
	log      *logger.Logger
	sessions *cart.Sessions
	hub      *sse.SSEHub
}

func NewCartService(log *logger.Logger, sessions *cart.Sessions, hub *sse.SSEHub) CartService {
	s := &cartService{
		log:      log.With("service", "CartService"),
		sessions: sessions,
		hub:      hub,
	}
	if hub != nil {
		sessions.OnCreate(s.bridge)
	}
	return s
}

// bridge forwards every snapshot an engine produces onto its cart channel.
// The subscription lives as long as the engine; Close drops all listeners.
func (s *cartService) bridge(e *cart.Engine) {
	channel := sse.CartChannel(e.SessionID())
	e.Subscribe(func(snap domain.CartSnapshot) {
		event := sse.SSEEventCartUpdated
		if snap.Empty() {
			event = sse.SSEEventCartCleared
		}
		s.hub.Broadcast(sse.SSEMessage{
			Channel: channel,
			Event:   event,
			Data:    snap,
		})
	})
}

func (s *cartService) engine(ctx context.Context, sessionID uuid.UUID) *cart.Engine {
	return s.sessions.Get(ctx, sessionID)
}

func (s *cartService) Snapshot(ctx context.Context, sessionID uuid.UUID) domain.CartSnapshot {
	return s.engine(ctx, sessionID).Snapshot()
}

func (s *cartService) Add(ctx context.Context, sessionID uuid.UUID, product domain.Product, quantity int) domain.CartSnapshot {
	return s.engine(ctx, sessionID).Add(product, quantity)
}

func (s *cartService) RemoveOne(ctx context.Context, sessionID uuid.UUID, productID int64) domain.CartSnapshot {
	return s.engine(ctx, sessionID).RemoveOne(productID)
}

func (s *cartService) SetQuantity(ctx context.Context, sessionID uuid.UUID, productID int64, quantity int) domain.CartSnapshot {
	return s.engine(ctx, sessionID).SetQuantity(productID, quantity)
}

func (s *cartService) Remove(ctx context.Context, sessionID uuid.UUID, productID int64) domain.CartSnapshot {
	return s.engine(ctx, sessionID).Remove(productID)
}

func (s *cartService) Clear(ctx context.Context, sessionID uuid.UUID) domain.CartSnapshot {
	return s.engine(ctx, sessionID).Clear()
}

func (s *cartService) Reset(ctx context.Context, sessionID uuid.UUID) {
	s.sessions.Drop(ctx, sessionID)
}

func (s *cartService) Close() {
	s.sessions.Close()
}
