package app

import (
	"github.com/yungbote/storefront-backend/internal/clients/storeapi"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Clients struct {
	StoreAPI *storeapi.Client
}

// wireClients builds outbound clients. The store API client is optional:
// with no base URL configured the storefront runs standalone, without a
// product feed or remote cart sync.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var clients Clients
	if cfg.StoreAPIBaseURL != "" {
		c, err := storeapi.NewClient(log, cfg.StoreAPIBaseURL, cfg.StoreAPITimeout)
		if err != nil {
			return Clients{}, err
		}
		clients.StoreAPI = c
	} else {
		log.Warn("STORE_API_BASE_URL not set; product feed and remote cart sync disabled")
	}
	return clients, nil
}
