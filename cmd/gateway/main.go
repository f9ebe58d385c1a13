package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/foodshop/gateway"
	"github.com/example/foodshop/pkg/bootstrap"
	"github.com/example/foodshop/pkg/catalog"
	"github.com/example/foodshop/pkg/checkout"
	"github.com/example/foodshop/pkg/config"
	_ "github.com/example/foodshop/pkg/docs"
	"github.com/example/foodshop/pkg/logger"
	"github.com/example/foodshop/pkg/orders"
	"github.com/example/foodshop/pkg/payment"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting API Gateway",
		zap.Int("port", cfg.Gateway.Port),
		zap.String("host", cfg.Gateway.Host))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	stores, err := bootstrap.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	mp := payment.NewMercadoPago(&cfg.MercadoPago, log)
	if !mp.Configured() {
		log.Warn("MercadoPago access token not set, only WhatsApp checkout will succeed")
	}

	var activity gateway.ActivityReader
	if stores.Mongo != nil {
		activity = stores.Mongo
	}

	gw := gateway.NewGateway(cfg, log, gateway.Services{
		Checkout: checkout.NewService(stores.MySQL, mp, stores.Notifier, checkout.Options{
			Shipping:      &cfg.Shipping,
			WhatsAppPhone: cfg.WhatsApp.Phone,
			AdminEmails:   cfg.Email.AdminEmails,
		}, log),
		Catalog:  catalog.NewService(stores.MySQL, stores.ProductCache(), log),
		Orders:   orders.NewService(stores.MySQL, stores.OrderCache(), stores.Notifier, log),
		Payments: mp,
		Activity: activity,
	})
	gw.SetupRoutes()

	// Start gateway in goroutine
	gwErr := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			gwErr <- err
		}
	}()

	log.Info("Gateway started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-gwErr:
		log.Error("Gateway error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := gw.Shutdown(shutdownCtx); err != nil {
		log.Error("Gateway shutdown failed", zap.Error(err))
	}

	log.Info("Gateway stopped")
}
