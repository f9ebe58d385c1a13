package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/foodshop/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MercadoPago {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMercadoPago(&config.MercadoPagoConfig{
		AccessToken:     "TEST-TOKEN",
		BaseURL:         srv.URL,
		SuccessURL:      "https://shop.test/ok",
		FailureURL:      "https://shop.test/fail",
		PendingURL:      "https://shop.test/pending",
		NotificationURL: "https://shop.test/webhook",
	}, zap.NewNop())
}

func TestCreatePreference(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer TEST-TOKEN", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"pref-1","init_point":"https://mp.test/init"}`))
	})

	pref, err := client.CreatePreference(context.Background(), &PreferenceRequest{
		OrderID: "order-1",
		Items:   []Item{{ID: "A", Title: "Pizza", Quantity: 2, UnitPrice: 1000}},
		Payer:   Payer{Name: "Ana", Email: "ana@example.com", Phone: "123"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://mp.test/init", pref.InitPoint)

	assert.Equal(t, "order-1", got["external_reference"])
	assert.Equal(t, "approved", got["auto_return"])
	items := got["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "ARS", item["currency_id"])
	assert.Equal(t, 1000.0, item["unit_price"])
	payer := got["payer"].(map[string]interface{})
	assert.Equal(t, "123", payer["phone"].(map[string]interface{})["number"])
}

func TestCreatePreference_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid items","status":400}`))
	})

	pref, err := client.CreatePreference(context.Background(), &PreferenceRequest{OrderID: "o"})
	require.Error(t, err)
	assert.Nil(t, pref)
}

func TestCreatePreference_NotConfigured(t *testing.T) {
	client := NewMercadoPago(&config.MercadoPagoConfig{}, zap.NewNop())
	assert.False(t, client.Configured())

	_, err := client.CreatePreference(context.Background(), &PreferenceRequest{OrderID: "o"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGetPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/987", r.URL.Path)
		w.Write([]byte(`{"id":987,"status":"approved","external_reference":"order-1"}`))
	})

	p, err := client.GetPayment(context.Background(), "987")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, p.Status)
	assert.Equal(t, "order-1", p.ExternalReference)
}

func TestGetPayment_RejectsNonNumericID(t *testing.T) {
	var hits int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"id":1}`))
	})

	for _, id := range []string{"", "abc", "../checkout/preferences", "12/34", "12?x=1", "-5", "0", " 7"} {
		_, err := client.GetPayment(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidPaymentID, id)
	}
	assert.Zero(t, hits)
}

func TestParsePaymentID(t *testing.T) {
	id, err := ParsePaymentID("1234567890")
	require.NoError(t, err)
	assert.Equal(t, 1234567890, id)

	_, err = ParsePaymentID("99999999999999999999999")
	assert.ErrorIs(t, err, ErrInvalidPaymentID)
}
