package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/cart"
	"github.com/yungbote/storefront-backend/internal/db"
	httpserver "github.com/yungbote/storefront-backend/internal/http"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/sse"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Log           *logger.Logger
	DB            *gorm.DB
	Server        *httpserver.Server
	Cfg           Config
	Services      Services
	SSEHub        *sse.SSEHub
	SnapshotStore cart.SnapshotStore

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	metrics := observability.Init()
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "storefront",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	var theDB *gorm.DB
	if cfg.CartStoreProvider != "redis" {
		storeService, err := db.NewStoreService(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init snapshot db: %w", err)
		}
		if err := storeService.AutoMigrateAll(); err != nil {
			log.Sync()
			return nil, fmt.Errorf("snapshot db automigrate: %w", err)
		}
		theDB = storeService.DB()
	}

	snapshotStore, err := resolveSnapshotStore(log, cfg, theDB)
	if err != nil {
		log.Sync()
		return nil, err
	}

	clientset, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	sseHub := sse.NewSSEHub(log)
	serviceset := wireServices(log, clientset, snapshotStore, sseHub)
	handlerset := wireHandlers(log, serviceset, sseHub)
	server := wireServer(log, metrics, handlerset)

	return &App{
		Log:           log,
		DB:            theDB,
		Server:        server,
		Cfg:           cfg,
		Services:      serviceset,
		SSEHub:        sseHub,
		SnapshotStore: snapshotStore,
		otelShutdown:  otelShutdown,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Cart != nil {
		a.Services.Cart.Close()
	}
	// The redis-backed store holds a client connection; the gorm repo is a
	// no-op here.
	if closer, ok := a.SnapshotStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && a.Log != nil {
			a.Log.Warn("Snapshot store close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
