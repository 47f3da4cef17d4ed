package app

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/cart"
	redisclient "github.com/yungbote/storefront-backend/internal/clients/redis"
	cartrepo "github.com/yungbote/storefront-backend/internal/data/repos/cart"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type SnapshotProviderBootstrapErrorCode string

const (
	SnapshotProviderBootstrapErrorInvalidMode   SnapshotProviderBootstrapErrorCode = "invalid_mode"
	SnapshotProviderBootstrapErrorMissingDB     SnapshotProviderBootstrapErrorCode = "missing_db"
	SnapshotProviderBootstrapErrorConnectFailed SnapshotProviderBootstrapErrorCode = "connect_failed"
)

type SnapshotProviderBootstrapError struct {
	Code  SnapshotProviderBootstrapErrorCode
	Mode  string
	Cause error
}

func (e *SnapshotProviderBootstrapError) Error() string {
	if e == nil {
		return "cart snapshot store bootstrap failed"
	}
	return fmt.Sprintf("cart snapshot store bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *SnapshotProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveSnapshotStore selects the durable snapshot backend by provider
// mode: "db" (gorm, the default) or "redis".
func resolveSnapshotStore(log *logger.Logger, cfg Config, db *gorm.DB) (cart.SnapshotStore, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.CartStoreProvider))
	if mode == "" {
		mode = "db"
	}

	switch mode {
	case "db":
		if db == nil {
			err := &SnapshotProviderBootstrapError{
				Code:  SnapshotProviderBootstrapErrorMissingDB,
				Mode:  mode,
				Cause: fmt.Errorf("snapshot database not initialized"),
			}
			log.Error("Cart snapshot store selection failed", "mode", mode, "error_code", err.Code, "error", err)
			return nil, err
		}
		log.Info("Selecting cart snapshot store", "mode", mode)
		return cartrepo.NewSnapshotRepo(db, log), nil
	case "redis":
		store, err := redisclient.NewSnapshotStore(log)
		if err != nil {
			berr := &SnapshotProviderBootstrapError{
				Code:  SnapshotProviderBootstrapErrorConnectFailed,
				Mode:  mode,
				Cause: err,
			}
			log.Error("Cart snapshot store selection failed", "mode", mode, "error_code", berr.Code, "error", berr)
			return nil, berr
		}
		log.Info("Selecting cart snapshot store", "mode", mode)
		return store, nil
	default:
		err := &SnapshotProviderBootstrapError{
			Code:  SnapshotProviderBootstrapErrorInvalidMode,
			Mode:  mode,
			Cause: fmt.Errorf("unsupported cart store provider %q", mode),
		}
		log.Error("Cart snapshot store selection failed", "mode", mode, "error_code", err.Code, "error", err)
		return nil, err
	}
}
