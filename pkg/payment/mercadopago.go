package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/example/foodshop/pkg/config"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured    = errors.New("mercado pago access token is not configured")
	ErrInvalidPaymentID = errors.New("payment id must be numeric")
)

type Item struct {
	ID          string
	Title       string
	Description string
	CategoryID  string
	Quantity    int
	CurrencyID  string
	UnitPrice   float64
}

type Payer struct {
	Name  string
	Email string
	Phone string
}

type PreferenceRequest struct {
	OrderID string
	Items   []Item
	Payer   Payer
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type Payment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail"`
	ExternalReference string `json:"external_reference"`
}

const StatusApproved = "approved"

// MercadoPago wraps the preference and payment clients of the official SDK.
type MercadoPago struct {
	cfg         config.MercadoPagoConfig
	preferences preference.Client
	payments    mppayment.Client
	logger      *zap.Logger
}

func NewMercadoPago(cfg *config.MercadoPagoConfig, logger *zap.Logger) *MercadoPago {
	m := &MercadoPago{cfg: *cfg, logger: logger}
	if cfg.AccessToken == "" {
		return m
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	requester := &hostRequester{client: &http.Client{Timeout: timeout}}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			logger.Warn("Ignoring invalid mercado pago base url",
				zap.String("base_url", cfg.BaseURL),
				zap.Error(err))
		} else {
			requester.base = base
		}
	}

	sdkCfg, err := mpconfig.New(cfg.AccessToken, mpconfig.WithHTTPClient(requester))
	if err != nil {
		logger.Error("Failed to configure mercado pago client", zap.Error(err))
		return m
	}
	m.preferences = preference.NewClient(sdkCfg)
	m.payments = mppayment.NewClient(sdkCfg)
	return m
}

func (m *MercadoPago) Configured() bool {
	return m.cfg.AccessToken != "" && m.preferences != nil && m.payments != nil
}

func (m *MercadoPago) Currency() string {
	if m.cfg.Currency == "" {
		return "ARS"
	}
	return m.cfg.Currency
}

// CreatePreference registers a checkout preference keyed to the order id
// and returns the redirect URLs.
func (m *MercadoPago) CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error) {
	if !m.Configured() {
		return nil, ErrNotConfigured
	}

	body := preference.Request{
		Items:             make([]preference.ItemRequest, 0, len(req.Items)),
		Payer:             &preference.PayerRequest{Name: req.Payer.Name, Email: req.Payer.Email},
		ExternalReference: req.OrderID,
		NotificationURL:   m.cfg.NotificationURL,
		Metadata:          map[string]any{"order_id": req.OrderID},
	}
	if req.Payer.Phone != "" {
		body.Payer.Phone = &preference.PhoneRequest{Number: req.Payer.Phone}
	}
	if m.cfg.SuccessURL != "" {
		body.BackURLs = &preference.BackURLsRequest{
			Success: m.cfg.SuccessURL,
			Failure: m.cfg.FailureURL,
			Pending: m.cfg.PendingURL,
		}
		body.AutoReturn = StatusApproved
	}
	for _, it := range req.Items {
		currency := it.CurrencyID
		if currency == "" {
			currency = m.Currency()
		}
		body.Items = append(body.Items, preference.ItemRequest{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			CategoryID:  it.CategoryID,
			CurrencyID:  currency,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	resp, err := m.preferences.Create(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("mercado pago preference failed: %w", err)
	}

	m.logger.Info("Payment preference created",
		zap.String("order_id", req.OrderID),
		zap.String("preference_id", resp.ID))
	return &Preference{ID: resp.ID, InitPoint: resp.InitPoint, SandboxInitPoint: resp.SandboxInitPoint}, nil
}

// GetPayment fetches a payment by its numeric provider id. Anything else is
// rejected before a request is built.
func (m *MercadoPago) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if !m.Configured() {
		return nil, ErrNotConfigured
	}
	id, err := ParsePaymentID(paymentID)
	if err != nil {
		return nil, err
	}

	resp, err := m.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercado pago payment lookup failed: %w", err)
	}
	return &Payment{
		ID:                int64(resp.ID),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
	}, nil
}

// ParsePaymentID accepts only a positive decimal id.
func ParsePaymentID(raw string) (int, error) {
	if raw == "" {
		return 0, ErrInvalidPaymentID
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPaymentID, raw)
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPaymentID, raw)
	}
	return id, nil
}

// hostRequester sends SDK requests through the configured client, pointing
// them at base when one is set.
type hostRequester struct {
	client *http.Client
	base   *url.URL
}

func (h *hostRequester) Do(req *http.Request) (*http.Response, error) {
	if h.base != nil && h.base.Host != "" {
		req = req.Clone(req.Context())
		req.URL.Scheme = h.base.Scheme
		req.URL.Host = h.base.Host
		req.Host = ""
	}
	return h.client.Do(req)
}
