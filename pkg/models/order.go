package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered, OrderStatusCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return status, nil
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentMercadoPago PaymentMethod = "mercadopago"
	PaymentWhatsApp    PaymentMethod = "whatsapp"
)

// ParsePaymentMethod maps anything other than "whatsapp" to Mercado Pago.
func ParsePaymentMethod(s string) PaymentMethod {
	if PaymentMethod(s) == PaymentWhatsApp {
		return PaymentWhatsApp
	}
	return PaymentMercadoPago
}

type Order struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         *string         `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	Status         OrderStatus     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	ShippingCost   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_cost"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentID      string          `gorm:"type:varchar(64)" json:"payment_id,omitempty"`
	CustomerName   string          `gorm:"type:varchar(150);not null" json:"customer_name"`
	CustomerEmail  string          `gorm:"type:varchar(150);not null;index" json:"customer_email"`
	CustomerPhone  string          `gorm:"type:varchar(40)" json:"customer_phone"`
	Address        string          `gorm:"type:varchar(255)" json:"address"`
	City           string          `gorm:"type:varchar(100)" json:"city"`
	Neighborhood   string          `gorm:"type:varchar(100)" json:"neighborhood,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	Carrier        string          `gorm:"type:varchar(100)" json:"carrier,omitempty"`
	TrackingNumber string          `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	ShippedAt      *time.Time      `json:"shipped_at,omitempty"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is immutable once written; PriceAtTime is the unit price
// resolved at checkout.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID   string          `gorm:"type:varchar(36);not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(150)" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	PriceAtTime decimal.Decimal `gorm:"column:price_at_time;type:decimal(12,2);not null" json:"price_at_time"`
	Size        string          `gorm:"type:varchar(50)" json:"size"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
