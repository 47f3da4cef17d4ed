package app

import (
	"github.com/yungbote/storefront-backend/internal/http"
	httpH "github.com/yungbote/storefront-backend/internal/http/handlers"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/sse"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Cart     *httpH.CartHandler
	Products *httpH.ProductsHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, sseHub *sse.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	handlerset := Handlers{
		Health:   httpH.NewHealthHandler(),
		Cart:     httpH.NewCartHandler(log, serviceset.Cart),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
	}
	if serviceset.Products != nil {
		handlerset.Products = httpH.NewProductsHandler(log, serviceset.Products)
	}
	return handlerset
}

func wireServer(log *logger.Logger, metrics *observability.Metrics, handlerset Handlers) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		HealthHandler:   handlerset.Health,
		CartHandler:     handlerset.Cart,
		ProductsHandler: handlerset.Products,
		RealtimeHandler: handlerset.Realtime,
	})
}
