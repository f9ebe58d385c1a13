package checkout

import (
	"context"
	"sync"

	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/notify"
	"github.com/example/foodshop/pkg/payment"
	"github.com/example/foodshop/pkg/repository"
	"go.uber.org/zap"
)

// fakeStore implements Store for testing
type fakeStore struct {
	Products     map[string]*models.Product
	GetErr       error
	CreateErr    error
	Lookups      []string
	Created      *models.Order
	CreatedItems []models.OrderItem
	Updates      []repository.StatusUpdate
}

func (f *fakeStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	f.Lookups = append(f.Lookups, id)
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	p, ok := f.Products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.Created = order
	f.CreatedItems = items
	return nil
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, _ string, u repository.StatusUpdate) error {
	f.Updates = append(f.Updates, u)
	return nil
}

// fakeProvider implements PaymentProvider for testing
type fakeProvider struct {
	NotConfigured bool
	Err           error
	Requests      []*payment.PreferenceRequest
}

func (f *fakeProvider) Configured() bool { return !f.NotConfigured }

func (f *fakeProvider) Currency() string { return "ARS" }

func (f *fakeProvider) CreatePreference(_ context.Context, req *payment.PreferenceRequest) (*payment.Preference, error) {
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return &payment.Preference{ID: "pref-" + req.OrderID, InitPoint: "https://mp.test/checkout/" + req.OrderID}, nil
}

type activity struct {
	Service, Action, EntityID string
}

// fakeNotifier implements Notifier for testing
type fakeNotifier struct {
	mu         sync.Mutex
	Activities []activity
	Emails     []*notify.Email
}

func (f *fakeNotifier) RecordActivity(service, action, entityID, _ string, _ map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Activities = append(f.Activities, activity{service, action, entityID})
}

func (f *fakeNotifier) SendEmail(email *notify.Email, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Emails = append(f.Emails, email)
}

func newTestService(store *fakeStore, provider *fakeProvider, notifier *fakeNotifier) *Service {
	svc := NewService(store, provider, notifier, Options{
		Shipping:      &config.ShippingConfig{Zones: []config.ShippingZone{{Name: "Centro", Fee: 500}}},
		WhatsAppPhone: "+54 9 11 5555-0000",
		AdminEmails:   []string{"admin@example.com"},
	}, zap.NewNop())
	svc.newID = func() string { return "order-1" }
	return svc
}

func intPtr(n int) *int { return &n }
