package app

import (
	"github.com/yungbote/storefront-backend/internal/cart"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
	"github.com/yungbote/storefront-backend/internal/sse"
)

type Services struct {
	Cart     services.CartService
	Products services.ProductService
}

func wireServices(log *logger.Logger, clients Clients, store cart.SnapshotStore, sseHub *sse.SSEHub) Services {
	log.Info("Wiring services...")

	// A typed-nil client must not become a non-nil RemoteSync interface.
	var remote cart.RemoteSync
	if clients.StoreAPI != nil {
		remote = clients.StoreAPI
	}
	sessions := cart.NewSessions(log, store, remote)

	serviceset := Services{
		Cart: services.NewCartService(log, sessions, sseHub),
	}
	if clients.StoreAPI != nil {
		serviceset.Products = services.NewProductService(log, clients.StoreAPI)
	}
	return serviceset
}
