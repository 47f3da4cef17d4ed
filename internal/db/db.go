package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/env"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// StoreService owns the durable snapshot database. The default driver is a
// local sqlite file (the cart's durable local storage); postgres is available
// for deployments that already run one.
type StoreService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoreService(log *logger.Logger) (*StoreService, error) {
	serviceLog := log.With("service", "StoreService")

	driver := strings.ToLower(env.Get("CART_DB_DRIVER", "sqlite", log))

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		path := env.Get("CART_DB_PATH", "storefront.db", log)
		dialector = sqlite.Open(path)
	case "postgres":
		host := env.Get("POSTGRES_HOST", "localhost", log)
		port := env.Get("POSTGRES_PORT", "5432", log)
		user := env.Get("POSTGRES_USER", "postgres", log)
		password := env.Get("POSTGRES_PASSWORD", "", log)
		name := env.Get("POSTGRES_NAME", "storefront", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported CART_DB_DRIVER %q", driver)
	}

	serviceLog.Info("Connecting to snapshot database...", "driver", driver)
	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		serviceLog.Error("Failed to connect to snapshot database", "error", err)
		return nil, fmt.Errorf("connect snapshot db: %w", err)
	}

	return &StoreService{db: gdb, log: serviceLog}, nil
}

func (s *StoreService) AutoMigrateAll() error {
	s.log.Info("Auto migrating snapshot tables...")
	if err := s.db.AutoMigrate(&domain.CartRecord{}); err != nil {
		s.log.Error("Auto migration failed for snapshot tables", "error", err)
		return err
	}
	return nil
}

func (s *StoreService) DB() *gorm.DB {
	return s.db
}
