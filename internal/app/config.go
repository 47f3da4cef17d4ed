package app

import (
	"time"

	"github.com/yungbote/storefront-backend/internal/platform/env"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Config struct {
	HTTPAddr    string
	Environment string
	Version     string

	CartStoreProvider string

	StoreAPIBaseURL string
	StoreAPITimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	httpAddr := env.Get("HTTP_ADDR", ":8080", log)
	environment := env.Get("APP_ENV", "development", log)
	version := env.Get("APP_VERSION", "dev", log)
	provider := env.Get("CART_STORE_PROVIDER", "db", log)
	storeAPIBaseURL := env.Get("STORE_API_BASE_URL", "", log)
	storeAPITimeoutSeconds := env.GetAsInt("STORE_API_TIMEOUT_SECONDS", 10, log)
	return Config{
		HTTPAddr:          httpAddr,
		Environment:       environment,
		Version:           version,
		CartStoreProvider: provider,
		StoreAPIBaseURL:   storeAPIBaseURL,
		StoreAPITimeout:   time.Duration(storeAPITimeoutSeconds) * time.Second,
	}
}
