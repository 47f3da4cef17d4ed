package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/errs"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type ProductsHandler struct {
	log      *logger.Logger
	products services.ProductService
}

func NewProductsHandler(log *logger.Logger, products services.ProductService) *ProductsHandler {
	return &ProductsHandler{
		log:      log.With("handler", "ProductsHandler"),
		products: products,
	}
}

// GET /api/products?page=N
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.RespondError(c, http.StatusBadRequest, "invalid_page", err)
			return
		}
		page = parsed
	}

	products, err := h.products.ListProducts(c.Request.Context(), page)
	if err != nil {
		h.log.Error("ListProducts failed", "error", err, "page", page)
		if errors.Is(err, errs.ErrUnavailable) {
			response.RespondError(c, http.StatusBadGateway, "product_feed_unavailable", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "product_feed_error", err)
		return
	}
	response.RespondOK(c, gin.H{"data": products, "page": page})
}
