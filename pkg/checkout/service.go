package checkout

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/notify"
	"github.com/example/foodshop/pkg/payment"
	"github.com/example/foodshop/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ShippingLineID marks a cart line that carries the delivery fee rather
// than a product.
const ShippingLineID = "shipping"

const (
	maxDescriptionLen = 256
	providerCategory  = "food"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Store interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	UpdateOrderStatus(ctx context.Context, id string, u repository.StatusUpdate) error
}

type PaymentProvider interface {
	Configured() bool
	Currency() string
	CreatePreference(ctx context.Context, req *payment.PreferenceRequest) (*payment.Preference, error)
}

type Notifier interface {
	RecordActivity(service, action, entityID, actor string, data map[string]interface{})
	SendEmail(email *notify.Email, reason string)
}

type LineRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
	// Title and UnitPrice are what the client believes; both are ignored.
	Title     string  `json:"title,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
}

type Metadata struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Notes        string `json:"notes,omitempty"`
	UserID       string `json:"user_id,omitempty"`
}

type Request struct {
	Items         []LineRequest   `json:"items"`
	Metadata      Metadata        `json:"metadata"`
	Total         float64         `json:"total"`
	ShippingCost  decimal.Decimal `json:"shippingCost"`
	PaymentMethod string          `json:"paymentMethod"`
}

type Result struct {
	OrderID     string `json:"orderId"`
	WhatsApp    bool   `json:"whatsapp,omitempty"`
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
	URL         string `json:"url,omitempty"`
}

type Options struct {
	Shipping      *config.ShippingConfig
	WhatsAppPhone string
	AdminEmails   []string
}

type Service struct {
	store    Store
	provider PaymentProvider
	notifier Notifier
	opts     Options
	logger   *zap.Logger
	newID    func() string
}

func NewService(store Store, provider PaymentProvider, notifier Notifier, opts Options, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		provider: provider,
		notifier: notifier,
		opts:     opts,
		logger:   logger.Named("checkout"),
		newID:    uuid.NewString,
	}
}

// Checkout re-derives price and stock for every cart line from the product
// records, persists the order with its items, and starts payment. Any
// invalid line rejects the whole request before anything is written.
func (s *Service) Checkout(ctx context.Context, req *Request) (*Result, error) {
	method := models.ParsePaymentMethod(req.PaymentMethod)
	if err := s.precheck(req, method); err != nil {
		return nil, err
	}

	orderID := s.newID()
	subtotal := decimal.Zero
	var providerItems []payment.Item
	var items []models.OrderItem

	for i, line := range req.Items {
		if line.ID == ShippingLineID {
			continue
		}

		product, err := s.store.GetProduct(ctx, line.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, inputError(CodeProductNotFound, "product not found", map[string]interface{}{
					"line":       i,
					"product_id": line.ID,
				})
			}
			return nil, &Error{Kind: KindPersistence, Code: CodeOrderCreateFailed, Message: "failed to load product",
				DebugInfo: map[string]interface{}{"message": err.Error()}, Err: err}
		}

		res := resolveLine(product, line.Size)
		if res.Available < line.Quantity {
			return nil, inputError(CodeInsufficientStock, "insufficient stock", map[string]interface{}{
				"line":       i,
				"product_id": product.ID,
				"product":    product.Name,
				"size":       line.Size,
				"available":  res.Available,
				"requested":  line.Quantity,
			})
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(res.UnitPrice.Mul(qty))

		providerItems = append(providerItems, payment.Item{
			ID:          product.ID,
			Title:       itemTitle(product.Name, line.Size, res.Size),
			Description: truncate(descriptionOf(product), maxDescriptionLen),
			CategoryID:  providerCategory,
			Quantity:    line.Quantity,
			UnitPrice:   res.UnitPrice.InexactFloat64(),
		})
		items = append(items, models.OrderItem{
			OrderID:     orderID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			PriceAtTime: res.UnitPrice,
			Size:        res.Size,
		})
	}

	s.checkShippingQuote(req.Metadata.City, req.ShippingCost)

	now := time.Now()
	order := &models.Order{
		ID:            orderID,
		Status:        models.OrderStatusPending,
		Total:         subtotal.Add(req.ShippingCost),
		ShippingCost:  req.ShippingCost,
		PaymentMethod: method,
		CustomerName:  strings.TrimSpace(req.Metadata.Name),
		CustomerEmail: strings.TrimSpace(req.Metadata.Email),
		CustomerPhone: strings.TrimSpace(req.Metadata.Phone),
		Address:       req.Metadata.Address,
		City:          req.Metadata.City,
		Neighborhood:  req.Metadata.Neighborhood,
		Notes:         req.Metadata.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Metadata.UserID != "" {
		uid := req.Metadata.UserID
		order.UserID = &uid
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		s.logger.Error("Failed to create order", zap.String("order_id", orderID), zap.Error(err))
		return nil, persistenceError(err)
	}
	order.Items = items

	s.logger.Info("Order created",
		zap.String("order_id", orderID),
		zap.String("payment_method", string(method)),
		zap.String("total", order.Total.String()),
		zap.Int("items", len(items)))
	s.announce(order)

	if method == models.PaymentWhatsApp {
		return &Result{
			OrderID:     orderID,
			WhatsApp:    true,
			WhatsAppURL: WhatsAppURL(s.opts.WhatsAppPhone, order),
		}, nil
	}

	if req.ShippingCost.IsPositive() {
		providerItems = append(providerItems, payment.Item{
			ID:         ShippingLineID,
			Title:      "Envío",
			CategoryID: providerCategory,
			Quantity:   1,
			UnitPrice:  req.ShippingCost.InexactFloat64(),
		})
	}

	pref, err := s.provider.CreatePreference(ctx, &payment.PreferenceRequest{
		OrderID: orderID,
		Items:   providerItems,
		Payer:   payment.Payer{Name: order.CustomerName, Email: order.CustomerEmail, Phone: order.CustomerPhone},
	})
	if err != nil {
		s.logger.Error("Failed to create payment preference", zap.String("order_id", orderID), zap.Error(err))
		s.cancelUnpaid(order, err)
		return nil, &Error{
			Kind:    KindProvider,
			Code:    CodePaymentFailed,
			Message: "failed to start payment",
			Params:  map[string]interface{}{"order_id": orderID},
			Err:     err,
		}
	}

	return &Result{OrderID: orderID, URL: pref.InitPoint}, nil
}

// precheck rejects requests that can be refused without touching storage.
func (s *Service) precheck(req *Request, method models.PaymentMethod) error {
	email := strings.TrimSpace(req.Metadata.Email)
	if !emailPattern.MatchString(email) {
		return inputError(CodeInvalidEmail, "invalid email address", map[string]interface{}{"email": email})
	}

	products := 0
	for i, line := range req.Items {
		if line.ID == ShippingLineID {
			continue
		}
		products++
		if line.Quantity <= 0 {
			return inputError(CodeInvalidQuantity, "quantity must be positive", map[string]interface{}{
				"line":       i,
				"product_id": line.ID,
				"quantity":   line.Quantity,
			})
		}
	}
	if products == 0 {
		return inputError(CodeEmptyCart, "cart is empty", nil)
	}

	if req.ShippingCost.IsNegative() {
		return inputError(CodeInvalidShipping, "shipping cost cannot be negative", map[string]interface{}{
			"shipping_cost": req.ShippingCost,
		})
	}

	if method == models.PaymentMercadoPago && (s.provider == nil || !s.provider.Configured()) {
		return &Error{Kind: KindConfiguration, Code: CodePaymentNotConfigured, Message: "payment provider credentials are missing"}
	}
	return nil
}

// checkShippingQuote only reports disagreement; the client's fee is used.
func (s *Service) checkShippingQuote(city string, fee decimal.Decimal) {
	if s.opts.Shipping == nil || len(s.opts.Shipping.Zones) == 0 {
		return
	}
	zone, ok := s.opts.Shipping.Zone(city)
	if !ok {
		s.logger.Warn("Checkout city has no shipping zone", zap.String("city", city), zap.String("fee", fee.String()))
		return
	}
	if !decimal.NewFromFloat(zone.Fee).Equal(fee) {
		s.logger.Warn("Shipping fee differs from zone table",
			zap.String("city", city),
			zap.Float64("expected", zone.Fee),
			zap.String("received", fee.String()))
	}
}

func (s *Service) announce(order *models.Order) {
	if s.notifier == nil {
		return
	}
	s.notifier.RecordActivity("checkout", "order_created", order.ID, order.CustomerEmail, map[string]interface{}{
		"total":          order.Total.String(),
		"payment_method": string(order.PaymentMethod),
		"items":          len(order.Items),
	})
	if len(s.opts.AdminEmails) == 0 {
		return
	}
	email, err := notify.NewOrderEmail(order, s.opts.AdminEmails)
	if err != nil {
		s.logger.Warn("Failed to render new order email", zap.Error(err))
		return
	}
	s.notifier.SendEmail(email, "new_order")
}

// cancelUnpaid closes an order whose payment could not be started so it
// does not linger as pending.
func (s *Service) cancelUnpaid(order *models.Order, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.store.UpdateOrderStatus(ctx, order.ID, repository.StatusUpdate{
		From: models.OrderStatusPending,
		To:   models.OrderStatusCancelled,
	})
	if err != nil {
		s.logger.Error("Failed to cancel order after payment failure", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if s.notifier != nil {
		s.notifier.RecordActivity("checkout", "order_cancelled", order.ID, "system", map[string]interface{}{
			"reason": cause.Error(),
		})
	}
}

func itemTitle(name, requested, resolved string) string {
	if requested == "" {
		return name
	}
	return name + " - " + resolved
}

func descriptionOf(p *models.Product) string {
	if p.Description != "" {
		return p.Description
	}
	return p.Name
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
