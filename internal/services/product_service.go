package services

import (
	"context"
	"fmt"

	"github.com/yungbote/storefront-backend/internal/clients/storeapi"
	"github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/errs"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// ProductService serves the paginated product feed the storefront lists.
type ProductService interface {
	ListProducts(ctx context.Context, page int) ([]domain.Product, error)
}

type productService struct {
	log    *logger.Logger
	client *storeapi.Client
}

func NewProductService(log *logger.Logger, client *storeapi.Client) ProductService {
	return &productService{
		log:    log.With("service", "ProductService"),
		client: client,
	}
}

func (s *productService) ListProducts(ctx context.Context, page int) ([]domain.Product, error) {
	products, err := s.client.ListProducts(ctx, page)
	if err != nil {
		s.log.Warn("Product feed fetch failed", "error", err, "page", page)
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return products, nil
}
