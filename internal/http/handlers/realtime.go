package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/sse"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *sse.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*sse.SSEClient // key: session id
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		Log:     log,
		Hub:     hub,
		clients: make(map[uuid.UUID]*sse.SSEClient),
	}
}

// GET /api/sse/stream
//
// Streams cart-change events for the caller's session. The client is
// auto-subscribed to its own cart channel; no explicit subscribe step.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	h.Log.Info("SSEStream open", "session_id", sid.String())

	h.mu.Lock()
	// If this session already has a client, close it and replace.
	if existing, exists := h.clients[sid]; exists {
		h.Hub.CloseClient(existing)
		delete(h.clients, sid)
	}
	client := h.Hub.NewSSEClient(sid)
	h.clients[sid] = client
	h.mu.Unlock()

	h.Hub.AddChannel(client, sse.CartChannel(sid))

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	// Cleanup after disconnect. A replaced client was already closed by the
	// replacing request; closing it twice would panic on the done channel.
	h.mu.Lock()
	current, exists := h.clients[sid]
	if exists && current == client {
		delete(h.clients, sid)
	}
	h.mu.Unlock()
	if exists && current == client {
		h.Hub.CloseClient(client)
	}
}
