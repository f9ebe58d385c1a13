package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/orders"
	"github.com/example/foodshop/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubStore struct {
	orders map[string]*models.Order
}

func (s *stubStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubStore) ListOrders(_ context.Context, f repository.OrderFilter) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range s.orders {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) UpdateOrderStatus(_ context.Context, id string, u repository.StatusUpdate) error {
	o := s.orders[id]
	if o.Status != u.From {
		return repository.ErrStatusConflict
	}
	o.Status = u.To
	o.Carrier = u.Carrier
	o.TrackingNumber = u.TrackingNumber
	return nil
}

func startServer(t *testing.T) (*grpc.ClientConn, *stubStore) {
	t.Helper()
	store := &stubStore{orders: map[string]*models.Order{
		"o1": {ID: "o1", Status: models.OrderStatusPaid, Total: decimal.NewFromInt(2000), CustomerEmail: "ana@example.com"},
	}}
	svc := orders.NewService(store, nil, nil, zap.NewNop())
	server := NewOrderServer(svc, zap.NewNop())

	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, store
}

func TestOrderService_RoundTrip(t *testing.T) {
	conn, store := startServer(t)
	client := NewOrderServiceClient(conn)
	ctx := context.Background()

	got, err := client.GetOrder(ctx, &GetOrderRequest{ID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, got.Order.Status)
	assert.True(t, decimal.NewFromInt(2000).Equal(got.Order.Total))

	list, err := client.ListOrders(ctx, &ListOrdersRequest{Status: "paid"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	updated, err := client.UpdateOrderStatus(ctx, &UpdateOrderStatusRequest{
		OrderID:        "o1",
		Status:         "shipped",
		Carrier:        "Correo",
		TrackingNumber: "CA123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Order.Status)
	assert.Equal(t, "CA123", store.orders["o1"].TrackingNumber)
}

func TestOrderService_ErrorCodes(t *testing.T) {
	conn, _ := startServer(t)
	client := NewOrderServiceClient(conn)
	ctx := context.Background()

	_, err := client.GetOrder(ctx, &GetOrderRequest{ID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetOrder(ctx, &GetOrderRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.UpdateOrderStatus(ctx, &UpdateOrderStatusRequest{OrderID: "o1", Status: "pending"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.UpdateOrderStatus(ctx, &UpdateOrderStatusRequest{OrderID: "o1", Status: "lost"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestOrderService_Health(t *testing.T) {
	conn, _ := startServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: orderServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
