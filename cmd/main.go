package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/storefront-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("Starting HTTP server", "addr", a.Cfg.HTTPAddr)
		return a.Run(a.Cfg.HTTPAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutdown signal received")
		return gctx.Err()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		a.Log.Error("Server exited", "error", err)
	}
}
