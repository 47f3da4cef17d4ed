package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type CartHandler struct {
	log  *logger.Logger
	cart services.CartService
}

func NewCartHandler(log *logger.Logger, cart services.CartService) *CartHandler {
	return &CartHandler{
		log:  log.With("handler", "CartHandler"),
		cart: cart,
	}
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "missing_session", nil)
		return uuid.Nil, false
	}
	return rd.SessionID, true
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return 0, false
	}
	return id, true
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	response.RespondOK(c, h.cart.Snapshot(c.Request.Context(), sid))
}

type addItemRequest struct {
	Product  domain.Product `json:"product"`
	Quantity *int           `json:"quantity"`
}

// POST /api/cart/items
//
// Quantity defaults to 1 only when omitted. An explicit non-positive value
// passes through to the engine, which rejects it as a no-op and returns the
// unchanged snapshot; the handler must not rewrite it into an add.
func (h *CartHandler) AddItem(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.Product.ID == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_product_id", nil)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	response.RespondOK(c, h.cart.Add(c.Request.Context(), sid, req.Product, quantity))
}

// POST /api/cart/items/:productId/remove-one
func (h *CartHandler) RemoveOne(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	response.RespondOK(c, h.cart.RemoveOne(c.Request.Context(), sid, id))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PUT /api/cart/items/:productId
func (h *CartHandler) SetQuantity(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	response.RespondOK(c, h.cart.SetQuantity(c.Request.Context(), sid, id, req.Quantity))
}

// DELETE /api/cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	response.RespondOK(c, h.cart.Remove(c.Request.Context(), sid, id))
}

// GET /api/cart/summary
//
// Order summary derived from the current snapshot: subtotal, flat shipping,
// estimated tax, and the resulting total.
func (h *CartHandler) GetSummary(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	response.RespondOK(c, domain.NewOrderSummary(h.cart.Snapshot(c.Request.Context(), sid)))
}

// POST /api/cart/reset
//
// Unlike Clear, which empties the cart and keeps the engine alive, Reset
// tears the session's engine down and deletes its durable snapshot. The next
// request rebuilds the cart from scratch.
func (h *CartHandler) ResetCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	h.cart.Reset(c.Request.Context(), sid)
	response.RespondOK(c, domain.NewCartSnapshot(nil))
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	response.RespondOK(c, h.cart.Clear(c.Request.Context(), sid))
}
