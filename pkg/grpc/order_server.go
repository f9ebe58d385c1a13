package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/orders"
	"github.com/example/foodshop/pkg/repository"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// OrderServer exposes order administration over gRPC.
type OrderServer struct {
	orders *orders.Service
	logger *zap.Logger
	server *grpc.Server
	health *health.Server
}

func NewOrderServer(svc *orders.Service, logger *zap.Logger) *OrderServer {
	s := &OrderServer{
		orders: svc,
		logger: logger.Named("order-server"),
		health: health.NewServer(),
	}

	s.server = grpc.NewServer(grpc.UnaryInterceptor(s.logUnary))
	RegisterOrderServiceServer(s.server, s)
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	s.health.SetServingStatus(orderServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}

// Start listens on addr and serves until Stop is called.
func (s *OrderServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.logger.Info("Order service started", zap.String("address", addr))
	return s.Serve(lis)
}

func (s *OrderServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *OrderServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *OrderServer) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "order id is required")
	}
	order, err := s.orders.Get(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(err, "failed to get order")
	}
	return &OrderResponse{Order: order}, nil
}

func (s *OrderServer) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	page, err := s.orders.List(ctx, repository.OrderFilter{
		Status:   models.OrderStatus(req.Status),
		UserID:   req.UserID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, s.toStatus(err, "failed to list orders")
	}
	return &ListOrdersResponse{Orders: page.Orders, Total: page.Total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *OrderServer) UpdateOrderStatus(ctx context.Context, req *UpdateOrderStatusRequest) (*OrderResponse, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order id is required")
	}
	actor := req.Actor
	if actor == "" {
		actor = "grpc"
	}
	order, err := s.orders.UpdateStatus(ctx, req.OrderID, orders.StatusChange{
		Status:         req.Status,
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		Actor:          actor,
	})
	if err != nil {
		return nil, s.toStatus(err, "failed to update order")
	}
	return &OrderResponse{Order: order}, nil
}

func (s *OrderServer) toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, orders.ErrInvalidStatus):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, orders.ErrIllegalTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	s.logger.Error(msg, zap.Error(err))
	return status.Error(codes.Internal, msg)
}

func (s *OrderServer) logUnary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info("gRPC request",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
		zap.Duration("latency", time.Since(start)))
	return resp, err
}
