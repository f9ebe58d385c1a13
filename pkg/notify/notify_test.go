package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu   sync.Mutex
	logs []*repository.ActivityLog
	err  error
}

func (f *fakeStore) CreateActivityLog(_ context.Context, log *repository.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, log)
	return f.err
}

type fakeSender struct {
	mu   sync.Mutex
	sent []*Email
	err  error
}

func (f *fakeSender) Send(_ context.Context, e *Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, e)
	return f.err
}

func TestNotifier_DeliversOnClose(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	n, err := NewNotifier(store, sender, zap.NewNop())
	require.NoError(t, err)

	n.RecordActivity("checkout", "order_created", "o1", "ana@example.com", map[string]interface{}{"total": 2000})
	n.SendEmail(&Email{To: []string{"ana@example.com"}, Subject: "hi"}, "test")
	n.SendEmail(&Email{}, "no recipients")
	require.NoError(t, n.Close())

	require.Len(t, store.logs, 1)
	assert.Equal(t, "order_created", store.logs[0].Action)
	assert.Equal(t, "o1", store.logs[0].EntityID)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hi", sender.sent[0].Subject)
}

func TestNotifier_SwallowsFailures(t *testing.T) {
	store := &fakeStore{err: errors.New("mongo down")}
	sender := &fakeSender{err: errors.New("smtp down")}
	n, err := NewNotifier(store, sender, zap.NewNop())
	require.NoError(t, err)

	n.RecordActivity("orders", "status_changed", "o1", "", nil)
	n.SendEmail(&Email{To: []string{"x@example.com"}}, "test")
	n.RecordActivity("orders", "status_changed", "o2", "", nil)
	require.NoError(t, n.Close())

	assert.Len(t, store.logs, 2)
	assert.Len(t, sender.sent, 1)
}

func TestNotifier_NilCollaborators(t *testing.T) {
	n, err := NewNotifier(nil, nil, zap.NewNop())
	require.NoError(t, err)

	n.RecordActivity("checkout", "order_created", "o1", "", nil)
	n.SendEmail(&Email{To: []string{"a@example.com"}}, "test")
	assert.NoError(t, n.Close())
}

func TestMailer_Send(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer KEY", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	m := NewMailer(&config.EmailConfig{APIKey: "KEY", BaseURL: srv.URL, From: "shop@example.com", Timeout: time.Second})
	err := m.Send(context.Background(), &Email{To: []string{"ana@example.com"}, Subject: "Pedido", HTML: "<p>ok</p>"})
	require.NoError(t, err)

	assert.Equal(t, "shop@example.com", body["from"])
	assert.Equal(t, "Pedido", body["subject"])
	assert.Equal(t, []interface{}{"ana@example.com"}, body["to"])
}

func TestMailer_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"bad from"}`))
	}))
	defer srv.Close()

	m := NewMailer(&config.EmailConfig{APIKey: "KEY", BaseURL: srv.URL})
	err := m.Send(context.Background(), &Email{To: []string{"a@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email send failed")

	unconfigured := NewMailer(&config.EmailConfig{})
	assert.ErrorIs(t, unconfigured.Send(context.Background(), &Email{To: []string{"a@example.com"}}), ErrMailerNotConfigured)
}

func TestTemplates(t *testing.T) {
	o := &models.Order{
		ID:             "o1",
		CustomerName:   "Ana",
		CustomerEmail:  "ana@example.com",
		Carrier:        "Correo",
		TrackingNumber: "TRK-9",
		Total:          decimal.NewFromInt(2500),
		ShippingCost:   decimal.NewFromInt(500),
		PaymentMethod:  models.PaymentWhatsApp,
		Items: []models.OrderItem{
			{ProductName: "Pizza", Quantity: 2, Size: "Grande", PriceAtTime: decimal.NewFromInt(1000)},
		},
	}

	shipped, err := ShippedEmail(o)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, shipped.To)
	assert.Contains(t, shipped.HTML, "TRK-9")
	assert.Contains(t, shipped.HTML, "2500.00")

	admin, err := NewOrderEmail(o, []string{"admin@example.com"})
	require.NoError(t, err)
	assert.Contains(t, admin.Subject, "whatsapp")
	assert.Contains(t, admin.HTML, "2 x Pizza [Grande]")
}
