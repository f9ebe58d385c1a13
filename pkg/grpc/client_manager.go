package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/example/foodshop/pkg/discovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ClientManager manages the gRPC connection to the order service
type ClientManager struct {
	serviceName string
	fallback    string
	discovery   *discovery.ServiceDiscovery
	logger      *zap.Logger

	orderClient OrderServiceClient
	orderConn   *grpc.ClientConn
}

// NewClientManager creates a client manager. disc may be nil, in which case
// fallback is dialed directly.
func NewClientManager(serviceName, fallback string, logger *zap.Logger, disc *discovery.ServiceDiscovery) *ClientManager {
	return &ClientManager{
		serviceName: serviceName,
		fallback:    fallback,
		discovery:   disc,
		logger:      logger,
	}
}

// Connect resolves the order service address and dials it
func (m *ClientManager) Connect(ctx context.Context) error {
	target := m.resolve(ctx)
	m.logger.Info("Connecting to order service", zap.String("target", target))

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to order service: %w", err)
	}

	m.orderConn = conn
	m.orderClient = NewOrderServiceClient(conn)

	m.logger.Info("Successfully connected to order service")
	return nil
}

func (m *ClientManager) resolve(ctx context.Context) string {
	if m.discovery == nil {
		return m.fallback
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	instances, err := m.discovery.Discover(ctx, m.serviceName)
	if err != nil || len(instances) == 0 {
		m.logger.Info("Using default address for order service", zap.String("address", m.fallback), zap.Error(err))
		return m.fallback
	}
	addr := instances[0].Addr()
	m.logger.Info("Discovered order service", zap.String("address", addr))
	return addr
}

// OrderClient returns the order service gRPC client
func (m *ClientManager) OrderClient() OrderServiceClient {
	return m.orderClient
}

func (m *ClientManager) Close() error {
	if m.orderConn == nil {
		return nil
	}
	if err := m.orderConn.Close(); err != nil {
		return fmt.Errorf("order connection close error: %w", err)
	}
	return nil
}
