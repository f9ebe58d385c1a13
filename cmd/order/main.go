package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/foodshop/pkg/bootstrap"
	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/discovery"
	"github.com/example/foodshop/pkg/grpc"
	"github.com/example/foodshop/pkg/logger"
	"github.com/example/foodshop/pkg/orders"
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

	log.Info("Starting order service",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	svc := orders.NewService(stores.MySQL, stores.OrderCache(), stores.Notifier, log)
	server := grpc.NewOrderServer(svc, log)

	// Connect to etcd for service discovery
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, log)
	if err != nil {
		log.Warn("Failed to connect to etcd, running unregistered", zap.Error(err))
	} else {
		defer sd.Close()
		if err := sd.Register(ctx, instance); err != nil {
			log.Warn("Failed to register service", zap.Error(err))
		} else {
			log.Info("Service registered in etcd",
				zap.String("name", cfg.Server.Name),
				zap.String("address", instance.Addr()))
		}
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(instance.Addr()); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		log.Error("Server error", zap.Error(err))
	}

	// Deregister service
	if sd != nil {
		if err := sd.Deregister(context.Background(), instance); err != nil {
			log.Error("Failed to deregister service", zap.Error(err))
		}
	}
	server.Stop()

	log.Info("Service stopped")
}
