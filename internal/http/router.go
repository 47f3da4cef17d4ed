package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/storefront-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storefront-backend/internal/http/middleware"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	HealthHandler   *httpH.HealthHandler
	CartHandler     *httpH.CartHandler
	ProductsHandler *httpH.ProductsHandler
	RealtimeHandler *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("storefront"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.Session())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	api.Use(httpMW.RequireSession())
	{
		// Product feed
		if cfg.ProductsHandler != nil {
			api.GET("/products", cfg.ProductsHandler.ListProducts)
		}

		// Cart
		if cfg.CartHandler != nil {
			api.GET("/cart", cfg.CartHandler.GetCart)
			api.GET("/cart/summary", cfg.CartHandler.GetSummary)
			api.DELETE("/cart", cfg.CartHandler.ClearCart)
			api.POST("/cart/items", cfg.CartHandler.AddItem)
			api.PUT("/cart/items/:productId", cfg.CartHandler.SetQuantity)
			api.DELETE("/cart/items/:productId", cfg.CartHandler.RemoveItem)
			api.POST("/cart/items/:productId/remove-one", cfg.CartHandler.RemoveOne)
			api.POST("/cart/reset", cfg.CartHandler.ResetCart)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
